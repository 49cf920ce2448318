package review

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/catalog"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("you have already reviewed this course")
	ErrNotOwner        = errors.New("review belongs to another user")
)

type Repository interface {
	// CreateReview inserts the review and recomputes the course's average
	// rating in the same transaction. Same contract for update and delete.
	CreateReview(ctx context.Context, rev Review) (Review, error)
	QueryReviewsByCourse(ctx context.Context, courseID int) ([]Review, error)
	GetReviewByID(ctx context.Context, id int) (Review, error)
	GetReviewByUserAndCourse(ctx context.Context, userID, courseID int) (Review, error)
	UpdateReview(ctx context.Context, rev Review) error
	DeleteReview(ctx context.Context, id int) error
}

type ServiceInterface interface {
	Create(ctx context.Context, userID int, nr NewReview) (Review, error)
	QueryByCourse(ctx context.Context, courseID int) ([]Review, error)
	Update(ctx context.Context, userID, id int, ur UpdateReview) (Review, error)
	Delete(ctx context.Context, userID, id int) error
}

type Service struct {
	repo     Repository
	catalog  catalog.ServiceInterface
	validate *validator.Validate
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, catalogSvc catalog.ServiceInterface, validate *validator.Validate) *Service {
	return &Service{repo: repo, catalog: catalogSvc, validate: validate}
}

// Create adds a review for a paid course. One review per user per course.
func (svc *Service) Create(ctx context.Context, userID int, nr NewReview) (Review, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Review{}, err
	}
	if _, err := svc.catalog.GetPaidCourseByID(ctx, nr.PaidCourseID); err != nil {
		return Review{}, errors.Wrap(err, "checking course")
	}
	if _, err := svc.repo.GetReviewByUserAndCourse(ctx, userID, nr.PaidCourseID); err == nil {
		return Review{}, ErrAlreadyReviewed
	} else if errors.Cause(err) != ErrNotFound {
		return Review{}, err
	}
	return svc.repo.CreateReview(ctx, Review{
		Rating:       nr.Rating,
		Comment:      nr.Comment,
		UserID:       userID,
		PaidCourseID: nr.PaidCourseID,
	})
}

func (svc *Service) QueryByCourse(ctx context.Context, courseID int) ([]Review, error) {
	return svc.repo.QueryReviewsByCourse(ctx, courseID)
}

func (svc *Service) Update(ctx context.Context, userID, id int, ur UpdateReview) (Review, error) {
	if err := ur.Validate(svc.validate); err != nil {
		return Review{}, err
	}
	rev, err := svc.repo.GetReviewByID(ctx, id)
	if err != nil {
		return Review{}, err
	}
	if rev.UserID != userID {
		return Review{}, ErrNotOwner
	}
	if ur.Rating != 0 {
		rev.Rating = ur.Rating
	}
	if ur.Comment != "" {
		rev.Comment = ur.Comment
	}
	if err = svc.repo.UpdateReview(ctx, rev); err != nil {
		return Review{}, err
	}
	return svc.repo.GetReviewByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, userID, id int) error {
	rev, err := svc.repo.GetReviewByID(ctx, id)
	if err != nil {
		return err
	}
	if rev.UserID != userID {
		return ErrNotOwner
	}
	return svc.repo.DeleteReview(ctx, id)
}
