package enroll

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/catalog"
)

var (
	ErrNotFound        = errors.New("enrollment not found")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
)

type Repository interface {
	CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
	QueryEnrollmentsByUser(ctx context.Context, userID int) ([]Enrollment, error)
	QueryEnrollmentsByPaidCourse(ctx context.Context, courseID int) ([]Enrollment, error)
	GetEnrollment(ctx context.Context, userID int, freeCourseID, paidCourseID *int) (Enrollment, error)
	UpdateEnrollmentStatus(ctx context.Context, id int, status Status) error

	CreateProgress(ctx context.Context, p LessonProgress) (LessonProgress, error)
	QueryProgressByUser(ctx context.Context, userID int) ([]LessonProgress, error)

	// UpdateUserCourseCounters refreshes the denormalized course counts on the
	// user's account row.
	UpdateUserCourseCounters(ctx context.Context, userID, started, ongoing, finished int) error
}

type ServiceInterface interface {
	EnrollFree(ctx context.Context, userID int, ne NewEnrollment) (Enrollment, error)
	QueryByUser(ctx context.Context, userID int) ([]Enrollment, error)
	QueryByPaidCourse(ctx context.Context, courseID int) ([]Enrollment, error)
	CompleteLesson(ctx context.Context, userID int, np NewProgress) (LessonProgress, error)
	ProgressByUser(ctx context.Context, userID int) ([]LessonProgress, error)
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

// EnrollFree enrolls a user in a free course. Paid course enrollments are
// created by payment reconciliation only.
func (svc *Service) EnrollFree(ctx context.Context, userID int, ne NewEnrollment) (Enrollment, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Enrollment{}, err
	}
	if ne.FreeCourseID == nil {
		return Enrollment{}, errors.New("free course required")
	}
	if _, err := svc.catalog.GetFreeCourseByID(ctx, *ne.FreeCourseID); err != nil {
		return Enrollment{}, errors.Wrap(err, "checking course")
	}
	if _, err := svc.repo.GetEnrollment(ctx, userID, ne.FreeCourseID, nil); err == nil {
		return Enrollment{}, ErrAlreadyEnrolled
	} else if errors.Cause(err) != ErrNotFound {
		return Enrollment{}, err
	}

	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		UserID:       userID,
		FreeCourseID: ne.FreeCourseID,
		Status:       StatusStarted,
	})
	if err != nil {
		return Enrollment{}, err
	}
	if err = svc.refreshCounters(ctx, userID); err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByUser(ctx, userID)
}

func (svc *Service) QueryByPaidCourse(ctx context.Context, courseID int) ([]Enrollment, error) {
	return svc.repo.QueryEnrollmentsByPaidCourse(ctx, courseID)
}

// CompleteLesson records lesson completion and moves the owning enrollment
// to ongoing, or to finished once every lesson of the course is done.
func (svc *Service) CompleteLesson(ctx context.Context, userID int, np NewProgress) (LessonProgress, error) {
	if err := np.Validate(svc.validate); err != nil {
		return LessonProgress{}, err
	}

	var (
		courseFreeID, coursePaidID *int
		lessons                    []catalog.Lesson
		err                        error
	)
	if np.FreeLessonID != nil {
		lesson, lerr := svc.catalog.GetFreeLessonByID(ctx, *np.FreeLessonID)
		if lerr != nil {
			return LessonProgress{}, errors.Wrap(lerr, "checking lesson")
		}
		courseFreeID = &lesson.CourseID
		lessons, err = svc.catalog.QueryFreeLessonsByCourse(ctx, lesson.CourseID)
	} else {
		lesson, lerr := svc.catalog.GetPaidLessonByID(ctx, *np.PaidLessonID)
		if lerr != nil {
			return LessonProgress{}, errors.Wrap(lerr, "checking lesson")
		}
		coursePaidID = &lesson.CourseID
		lessons, err = svc.catalog.QueryPaidLessonsByCourse(ctx, lesson.CourseID)
	}
	if err != nil {
		return LessonProgress{}, err
	}

	enr, err := svc.repo.GetEnrollment(ctx, userID, courseFreeID, coursePaidID)
	if err != nil {
		return LessonProgress{}, err
	}

	prog, err := svc.repo.CreateProgress(ctx, LessonProgress{
		UserID:       userID,
		FreeLessonID: np.FreeLessonID,
		PaidLessonID: np.PaidLessonID,
	})
	if err != nil {
		return LessonProgress{}, err
	}

	done, err := svc.completedCount(ctx, userID, lessons, np.FreeLessonID != nil)
	if err != nil {
		return LessonProgress{}, err
	}
	status := StatusOngoing
	if done >= len(lessons) {
		status = StatusFinished
	}
	if status != enr.Status {
		if err = svc.repo.UpdateEnrollmentStatus(ctx, enr.ID, status); err != nil {
			return LessonProgress{}, err
		}
		if err = svc.refreshCounters(ctx, userID); err != nil {
			return LessonProgress{}, err
		}
	}
	return prog, nil
}

func (svc *Service) ProgressByUser(ctx context.Context, userID int) ([]LessonProgress, error) {
	return svc.repo.QueryProgressByUser(ctx, userID)
}

func (svc *Service) completedCount(ctx context.Context, userID int, lessons []catalog.Lesson, free bool) (int, error) {
	progress, err := svc.repo.QueryProgressByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	completed := make(map[int]bool, len(progress))
	for _, p := range progress {
		if free && p.FreeLessonID != nil {
			completed[*p.FreeLessonID] = true
		} else if !free && p.PaidLessonID != nil {
			completed[*p.PaidLessonID] = true
		}
	}
	count := 0
	for _, l := range lessons {
		if completed[l.ID] {
			count++
		}
	}
	return count, nil
}

func (svc *Service) refreshCounters(ctx context.Context, userID int) error {
	enrs, err := svc.repo.QueryEnrollmentsByUser(ctx, userID)
	if err != nil {
		return err
	}
	var started, ongoing, finished int
	for _, e := range enrs {
		switch e.Status {
		case StatusStarted:
			started++
		case StatusOngoing:
			ongoing++
		case StatusFinished:
			finished++
		}
	}
	return svc.repo.UpdateUserCourseCounters(ctx, userID, started, ongoing, finished)
}
