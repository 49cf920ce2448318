package inmemdb

import (
	"context"
	"sort"

	"github.com/courcompanion/backend/core/review"
)

type reviewRepository struct {
	db *DB
}

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

// recalcRating must be called with the write lock held.
func (repo *reviewRepository) recalcRating(courseID int) {
	var sum, count int
	for _, rev := range repo.db.reviews {
		if rev.PaidCourseID == courseID {
			sum += rev.Rating
			count++
		}
	}
	if course, ok := repo.db.paidCourses[courseID]; ok {
		if count == 0 {
			course.Rating = 0
		} else {
			course.Rating = float64(sum) / float64(count)
		}
		course.UpdatedAt = now()
	}
}

func (repo *reviewRepository) CreateReview(ctx context.Context, rev review.Review) (review.Review, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rev.ID = repo.db.nextID()
	rev.CreatedAt = now()
	rev.UpdatedAt = rev.CreatedAt
	repo.db.reviews[rev.ID] = &rev
	repo.recalcRating(rev.PaidCourseID)
	return rev, nil
}

func (repo *reviewRepository) QueryReviewsByCourse(ctx context.Context, courseID int) ([]review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var revs []review.Review
	for _, rev := range repo.db.reviews {
		if rev.PaidCourseID == courseID {
			revs = append(revs, *rev)
		}
	}
	sort.Slice(revs, func(i, j int) bool { return revs[i].ID > revs[j].ID })
	return revs, nil
}

func (repo *reviewRepository) GetReviewByID(ctx context.Context, id int) (review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rev, ok := repo.db.reviews[id]; ok {
		return *rev, nil
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) GetReviewByUserAndCourse(ctx context.Context, userID, courseID int) (review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, rev := range repo.db.reviews {
		if rev.UserID == userID && rev.PaidCourseID == courseID {
			return *rev, nil
		}
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) UpdateReview(ctx context.Context, rev review.Review) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.reviews[rev.ID]
	if !ok {
		return review.ErrNotFound
	}
	orig.Rating = rev.Rating
	orig.Comment = rev.Comment
	orig.UpdatedAt = now()
	repo.recalcRating(orig.PaidCourseID)
	return nil
}

func (repo *reviewRepository) DeleteReview(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rev, ok := repo.db.reviews[id]
	if !ok {
		return review.ErrNotFound
	}
	delete(repo.db.reviews, id)
	repo.recalcRating(rev.PaidCourseID)
	return nil
}
