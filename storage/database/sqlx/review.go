package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/review"
)

type reviewRow struct {
	ID           int       `db:"id"`
	Rating       int       `db:"rating"`
	Comment      string    `db:"comment"`
	UserID       int       `db:"user_id"`
	PaidCourseID int       `db:"paid_course_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row reviewRow) toCore() review.Review {
	return review.Review{
		ID:           row.ID,
		Rating:       row.Rating,
		Comment:      row.Comment,
		UserID:       row.UserID,
		PaidCourseID: row.PaidCourseID,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type reviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) review.Repository {
	return &reviewRepository{db: db}
}

// recalcRating refreshes the course's average rating from its reviews.
// Must run in the same transaction as the mutation it follows.
func recalcRating(ctx context.Context, tx *sqlx.Tx, courseID int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE paid_courses
		SET rating = COALESCE((SELECT AVG(rating) FROM reviews WHERE paid_course_id = $1), 0),
		    updated_at = now()
		WHERE id = $1`, courseID)
	return errors.Wrap(err, "recalculating rating")
}

func (repo *reviewRepository) CreateReview(ctx context.Context, rev review.Review) (review.Review, error) {
	var row reviewRow
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &row, `
			INSERT INTO reviews (rating, comment, user_id, paid_course_id)
			VALUES ($1, $2, $3, $4)
			RETURNING *`,
			rev.Rating, rev.Comment, rev.UserID, rev.PaidCourseID)
		if err != nil {
			return errors.Wrap(err, "creating review")
		}
		return recalcRating(ctx, tx, rev.PaidCourseID)
	})
	if err != nil {
		return review.Review{}, err
	}
	return row.toCore(), nil
}

func (repo *reviewRepository) QueryReviewsByCourse(ctx context.Context, courseID int) ([]review.Review, error) {
	var rows []reviewRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM reviews WHERE paid_course_id = $1 ORDER BY id DESC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	revs := make([]review.Review, 0, len(rows))
	for _, row := range rows {
		revs = append(revs, row.toCore())
	}
	return revs, nil
}

func (repo *reviewRepository) GetReviewByID(ctx context.Context, id int) (review.Review, error) {
	var row reviewRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM reviews WHERE id = $1`, id); err != nil {
		return review.Review{}, mapNoRows(err, review.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *reviewRepository) GetReviewByUserAndCourse(ctx context.Context, userID, courseID int) (review.Review, error) {
	var row reviewRow
	err := repo.db.GetContext(ctx, &row,
		`SELECT * FROM reviews WHERE user_id = $1 AND paid_course_id = $2`, userID, courseID)
	if err != nil {
		return review.Review{}, mapNoRows(err, review.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *reviewRepository) UpdateReview(ctx context.Context, rev review.Review) error {
	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE reviews SET rating = $2, comment = $3, updated_at = now() WHERE id = $1`,
			rev.ID, rev.Rating, rev.Comment)
		if err != nil {
			return errors.Wrap(err, "updating review")
		}
		return recalcRating(ctx, tx, rev.PaidCourseID)
	})
}

func (repo *reviewRepository) DeleteReview(ctx context.Context, id int) error {
	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var courseID int
		if err := tx.GetContext(ctx, &courseID, `DELETE FROM reviews WHERE id = $1 RETURNING paid_course_id`, id); err != nil {
			return mapNoRows(err, review.ErrNotFound)
		}
		return recalcRating(ctx, tx, courseID)
	})
}
