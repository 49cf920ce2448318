package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/enroll"
)

type enrollmentRow struct {
	ID           int       `db:"id"`
	UserID       int       `db:"user_id"`
	FreeCourseID *int      `db:"free_course_id"`
	PaidCourseID *int      `db:"paid_course_id"`
	Status       string    `db:"status"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row enrollmentRow) toCore() enroll.Enrollment {
	return enroll.Enrollment{
		ID:           row.ID,
		UserID:       row.UserID,
		FreeCourseID: row.FreeCourseID,
		PaidCourseID: row.PaidCourseID,
		Status:       enroll.Status(row.Status),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type progressRow struct {
	ID           int       `db:"id"`
	UserID       int       `db:"user_id"`
	FreeLessonID *int      `db:"free_lesson_id"`
	PaidLessonID *int      `db:"paid_lesson_id"`
	CreatedAt    time.Time `db:"created_at"`
}

type enrollRepository struct {
	db *sqlx.DB
}

func NewEnrollRepository(db *sqlx.DB) enroll.Repository {
	return &enrollRepository{db: db}
}

func (repo *enrollRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	var row enrollmentRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO enrollments (user_id, free_course_id, paid_course_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING *`,
		enr.UserID, enr.FreeCourseID, enr.PaidCourseID, enr.Status)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return row.toCore(), nil
}

func (repo *enrollRepository) QueryEnrollmentsByUser(ctx context.Context, userID int) ([]enroll.Enrollment, error) {
	var rows []enrollmentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM enrollments WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enroll.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrs = append(enrs, row.toCore())
	}
	return enrs, nil
}

func (repo *enrollRepository) QueryEnrollmentsByPaidCourse(ctx context.Context, courseID int) ([]enroll.Enrollment, error) {
	var rows []enrollmentRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM enrollments WHERE paid_course_id = $1 ORDER BY id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enroll.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrs = append(enrs, row.toCore())
	}
	return enrs, nil
}

func (repo *enrollRepository) GetEnrollment(ctx context.Context, userID int, freeCourseID, paidCourseID *int) (enroll.Enrollment, error) {
	var (
		row enrollmentRow
		err error
	)
	if freeCourseID != nil {
		err = repo.db.GetContext(ctx, &row,
			`SELECT * FROM enrollments WHERE user_id = $1 AND free_course_id = $2`, userID, *freeCourseID)
	} else {
		err = repo.db.GetContext(ctx, &row,
			`SELECT * FROM enrollments WHERE user_id = $1 AND paid_course_id = $2`, userID, *paidCourseID)
	}
	if err != nil {
		return enroll.Enrollment{}, mapNoRows(err, enroll.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *enrollRepository) UpdateEnrollmentStatus(ctx context.Context, id int, status enroll.Status) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE enrollments SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	return errors.Wrap(err, "updating enrollment status")
}

func (repo *enrollRepository) CreateProgress(ctx context.Context, p enroll.LessonProgress) (enroll.LessonProgress, error) {
	var row progressRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO lesson_progress (user_id, free_lesson_id, paid_lesson_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING *`,
		p.UserID, p.FreeLessonID, p.PaidLessonID)
	if err == sql.ErrNoRows {
		// conflict: the lesson was already completed; report the existing record
		return repo.getProgress(ctx, p)
	}
	if err != nil {
		return enroll.LessonProgress{}, errors.Wrap(err, "recording progress")
	}
	return enroll.LessonProgress{
		ID:           row.ID,
		UserID:       row.UserID,
		FreeLessonID: row.FreeLessonID,
		PaidLessonID: row.PaidLessonID,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

func (repo *enrollRepository) getProgress(ctx context.Context, p enroll.LessonProgress) (enroll.LessonProgress, error) {
	var (
		row progressRow
		err error
	)
	if p.FreeLessonID != nil {
		err = repo.db.GetContext(ctx, &row,
			`SELECT * FROM lesson_progress WHERE user_id = $1 AND free_lesson_id = $2`, p.UserID, *p.FreeLessonID)
	} else {
		err = repo.db.GetContext(ctx, &row,
			`SELECT * FROM lesson_progress WHERE user_id = $1 AND paid_lesson_id = $2`, p.UserID, *p.PaidLessonID)
	}
	if err != nil {
		return enroll.LessonProgress{}, errors.Wrap(err, "recording progress")
	}
	return enroll.LessonProgress{
		ID:           row.ID,
		UserID:       row.UserID,
		FreeLessonID: row.FreeLessonID,
		PaidLessonID: row.PaidLessonID,
		CreatedAt:    row.CreatedAt.UTC(),
	}, nil
}

func (repo *enrollRepository) QueryProgressByUser(ctx context.Context, userID int) ([]enroll.LessonProgress, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM lesson_progress WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	progress := make([]enroll.LessonProgress, 0, len(rows))
	for _, row := range rows {
		progress = append(progress, enroll.LessonProgress{
			ID:           row.ID,
			UserID:       row.UserID,
			FreeLessonID: row.FreeLessonID,
			PaidLessonID: row.PaidLessonID,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return progress, nil
}

func (repo *enrollRepository) UpdateUserCourseCounters(ctx context.Context, userID, started, ongoing, finished int) error {
	_, err := repo.db.ExecContext(ctx, `
		UPDATE users
		SET started_courses = $2, ongoing_courses = $3, finished_courses = $4, updated_at = now()
		WHERE id = $1`,
		userID, started, ongoing, finished)
	return errors.Wrap(err, "updating course counters")
}
