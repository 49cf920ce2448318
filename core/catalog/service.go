package catalog

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrNameExists = errors.New("a record with this name already exists")
)

// Repository is the catalog's persistence contract. Free and paid material
// live in separate tables; lesson methods are scoped by course kind.
type Repository interface {
	CreateCategory(ctx context.Context, cat Category) (Category, error)
	QueryAllCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id int) (Category, error)
	UpdateCategory(ctx context.Context, cat Category) error
	DeleteCategory(ctx context.Context, id int) error

	CreateFreeCourse(ctx context.Context, course FreeCourse) (FreeCourse, error)
	QueryAllFreeCourses(ctx context.Context) ([]FreeCourse, error)
	GetFreeCourseByID(ctx context.Context, id int) (FreeCourse, error)
	UpdateFreeCourse(ctx context.Context, course FreeCourse) error
	DeleteFreeCourse(ctx context.Context, id int) error

	CreatePaidCourse(ctx context.Context, course PaidCourse) (PaidCourse, error)
	QueryAllPaidCourses(ctx context.Context) ([]PaidCourse, error)
	QueryPaidCoursesByCoach(ctx context.Context, coachID int) ([]PaidCourse, error)
	GetPaidCourseByID(ctx context.Context, id int) (PaidCourse, error)
	UpdatePaidCourse(ctx context.Context, course PaidCourse) error
	DeletePaidCourse(ctx context.Context, id int) error

	CreateFreeLesson(ctx context.Context, lesson Lesson) (Lesson, error)
	QueryFreeLessonsByCourse(ctx context.Context, courseID int) ([]Lesson, error)
	GetFreeLessonByID(ctx context.Context, id int) (Lesson, error)
	UpdateFreeLesson(ctx context.Context, lesson Lesson) error
	DeleteFreeLesson(ctx context.Context, id int) error

	CreatePaidLesson(ctx context.Context, lesson Lesson) (Lesson, error)
	QueryPaidLessonsByCourse(ctx context.Context, courseID int) ([]Lesson, error)
	GetPaidLessonByID(ctx context.Context, id int) (Lesson, error)
	UpdatePaidLesson(ctx context.Context, lesson Lesson) error
	DeletePaidLesson(ctx context.Context, id int) error
}

type ServiceInterface interface {
	CreateCategory(ctx context.Context, nc NewCategory) (Category, error)
	QueryAllCategories(ctx context.Context) ([]Category, error)
	GetCategoryByID(ctx context.Context, id int) (Category, error)
	UpdateCategory(ctx context.Context, id int, nc NewCategory) (Category, error)
	DeleteCategory(ctx context.Context, id int) error

	CreateFreeCourse(ctx context.Context, nf NewFreeCourse) (FreeCourse, error)
	QueryAllFreeCourses(ctx context.Context) ([]FreeCourse, error)
	GetFreeCourseByID(ctx context.Context, id int) (FreeCourse, error)
	UpdateFreeCourse(ctx context.Context, id int, uf UpdateFreeCourse) (FreeCourse, error)
	DeleteFreeCourse(ctx context.Context, id int) error

	CreatePaidCourse(ctx context.Context, np NewPaidCourse) (PaidCourse, error)
	QueryAllPaidCourses(ctx context.Context) ([]PaidCourse, error)
	QueryPaidCoursesByCoach(ctx context.Context, coachID int) ([]PaidCourse, error)
	GetPaidCourseByID(ctx context.Context, id int) (PaidCourse, error)
	UpdatePaidCourse(ctx context.Context, id int, up UpdatePaidCourse) (PaidCourse, error)
	DeletePaidCourse(ctx context.Context, id int) error

	CreateFreeLesson(ctx context.Context, nl NewLesson) (Lesson, error)
	QueryFreeLessonsByCourse(ctx context.Context, courseID int) ([]Lesson, error)
	GetFreeLessonByID(ctx context.Context, id int) (Lesson, error)
	UpdateFreeLesson(ctx context.Context, id int, ul UpdateLesson) (Lesson, error)
	DeleteFreeLesson(ctx context.Context, id int) error

	CreatePaidLesson(ctx context.Context, nl NewLesson) (Lesson, error)
	QueryPaidLessonsByCourse(ctx context.Context, courseID int) ([]Lesson, error)
	GetPaidLessonByID(ctx context.Context, id int) (Lesson, error)
	UpdatePaidLesson(ctx context.Context, id int, ul UpdateLesson) (Lesson, error)
	DeletePaidLesson(ctx context.Context, id int) error
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) CreateCategory(ctx context.Context, nc NewCategory) (Category, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Category{}, err
	}
	return svc.repo.CreateCategory(ctx, Category{Name: nc.Name})
}

func (svc *Service) QueryAllCategories(ctx context.Context) ([]Category, error) {
	return svc.repo.QueryAllCategories(ctx)
}

func (svc *Service) GetCategoryByID(ctx context.Context, id int) (Category, error) {
	return svc.repo.GetCategoryByID(ctx, id)
}

func (svc *Service) UpdateCategory(ctx context.Context, id int, nc NewCategory) (Category, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Category{}, err
	}
	cat, err := svc.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return Category{}, err
	}
	cat.Name = nc.Name
	if err = svc.repo.UpdateCategory(ctx, cat); err != nil {
		return Category{}, err
	}
	return svc.repo.GetCategoryByID(ctx, id)
}

func (svc *Service) DeleteCategory(ctx context.Context, id int) error {
	return svc.repo.DeleteCategory(ctx, id)
}

func (svc *Service) CreateFreeCourse(ctx context.Context, nf NewFreeCourse) (FreeCourse, error) {
	if err := nf.Validate(svc.validate); err != nil {
		return FreeCourse{}, err
	}
	if _, err := svc.repo.GetCategoryByID(ctx, nf.CategoryID); err != nil {
		return FreeCourse{}, errors.Wrap(err, "checking category")
	}
	course := FreeCourse{
		Name:        nf.Name,
		Description: nf.Description,
		Thumbnail:   nf.Thumbnail,
		Content:     nf.Content,
		CategoryID:  nf.CategoryID,
	}
	return svc.repo.CreateFreeCourse(ctx, course)
}

func (svc *Service) QueryAllFreeCourses(ctx context.Context) ([]FreeCourse, error) {
	return svc.repo.QueryAllFreeCourses(ctx)
}

func (svc *Service) GetFreeCourseByID(ctx context.Context, id int) (FreeCourse, error) {
	return svc.repo.GetFreeCourseByID(ctx, id)
}

func (svc *Service) UpdateFreeCourse(ctx context.Context, id int, uf UpdateFreeCourse) (FreeCourse, error) {
	course, err := svc.repo.GetFreeCourseByID(ctx, id)
	if err != nil {
		return FreeCourse{}, err
	}
	if uf.Name != "" {
		course.Name = uf.Name
	}
	if uf.Description != "" {
		course.Description = uf.Description
	}
	if uf.Thumbnail != "" {
		course.Thumbnail = uf.Thumbnail
	}
	if uf.Content != nil {
		course.Content = uf.Content
	}
	if uf.CategoryID != 0 {
		course.CategoryID = uf.CategoryID
	}
	if err = svc.repo.UpdateFreeCourse(ctx, course); err != nil {
		return FreeCourse{}, err
	}
	return svc.repo.GetFreeCourseByID(ctx, id)
}

func (svc *Service) DeleteFreeCourse(ctx context.Context, id int) error {
	return svc.repo.DeleteFreeCourse(ctx, id)
}

func (svc *Service) CreatePaidCourse(ctx context.Context, np NewPaidCourse) (PaidCourse, error) {
	if err := np.Validate(svc.validate); err != nil {
		return PaidCourse{}, err
	}
	if _, err := svc.repo.GetCategoryByID(ctx, np.CategoryID); err != nil {
		return PaidCourse{}, errors.Wrap(err, "checking category")
	}
	course := PaidCourse{
		Name:              np.Name,
		Description:       np.Description,
		Thumbnail:         np.Thumbnail,
		Price:             np.Price,
		Duration:          np.Duration,
		RegisterStartDate: np.RegisterStartDate,
		RegisterEndDate:   np.RegisterEndDate,
		BeginDate:         np.BeginDate,
		EndDate:           np.EndDate,
		Status:            StatusOpen,
		CoachID:           np.CoachID,
		CategoryID:        np.CategoryID,
	}
	return svc.repo.CreatePaidCourse(ctx, course)
}

func (svc *Service) QueryAllPaidCourses(ctx context.Context) ([]PaidCourse, error) {
	return svc.repo.QueryAllPaidCourses(ctx)
}

func (svc *Service) QueryPaidCoursesByCoach(ctx context.Context, coachID int) ([]PaidCourse, error) {
	return svc.repo.QueryPaidCoursesByCoach(ctx, coachID)
}

func (svc *Service) GetPaidCourseByID(ctx context.Context, id int) (PaidCourse, error) {
	return svc.repo.GetPaidCourseByID(ctx, id)
}

func (svc *Service) UpdatePaidCourse(ctx context.Context, id int, up UpdatePaidCourse) (PaidCourse, error) {
	if err := up.Validate(svc.validate); err != nil {
		return PaidCourse{}, err
	}
	course, err := svc.repo.GetPaidCourseByID(ctx, id)
	if err != nil {
		return PaidCourse{}, err
	}
	if up.Name != "" {
		course.Name = up.Name
	}
	if up.Description != "" {
		course.Description = up.Description
	}
	if up.Thumbnail != "" {
		course.Thumbnail = up.Thumbnail
	}
	if up.Price != nil {
		course.Price = *up.Price
	}
	if up.Duration != "" {
		course.Duration = up.Duration
	}
	if up.RegisterStartDate != "" {
		course.RegisterStartDate = up.RegisterStartDate
	}
	if up.RegisterEndDate != "" {
		course.RegisterEndDate = up.RegisterEndDate
	}
	if up.BeginDate != "" {
		course.BeginDate = up.BeginDate
	}
	if up.EndDate != "" {
		course.EndDate = up.EndDate
	}
	if up.Status != nil {
		course.Status = *up.Status
	}
	if up.CategoryID != 0 {
		course.CategoryID = up.CategoryID
	}
	if err = svc.repo.UpdatePaidCourse(ctx, course); err != nil {
		return PaidCourse{}, err
	}
	return svc.repo.GetPaidCourseByID(ctx, id)
}

func (svc *Service) DeletePaidCourse(ctx context.Context, id int) error {
	return svc.repo.DeletePaidCourse(ctx, id)
}

func (svc *Service) CreateFreeLesson(ctx context.Context, nl NewLesson) (Lesson, error) {
	if err := nl.Validate(svc.validate); err != nil {
		return Lesson{}, err
	}
	if _, err := svc.repo.GetFreeCourseByID(ctx, nl.CourseID); err != nil {
		return Lesson{}, errors.Wrap(err, "checking course")
	}
	return svc.repo.CreateFreeLesson(ctx, Lesson{Name: nl.Name, Content: nl.Content, CourseID: nl.CourseID})
}

func (svc *Service) QueryFreeLessonsByCourse(ctx context.Context, courseID int) ([]Lesson, error) {
	return svc.repo.QueryFreeLessonsByCourse(ctx, courseID)
}

func (svc *Service) GetFreeLessonByID(ctx context.Context, id int) (Lesson, error) {
	return svc.repo.GetFreeLessonByID(ctx, id)
}

func (svc *Service) UpdateFreeLesson(ctx context.Context, id int, ul UpdateLesson) (Lesson, error) {
	lesson, err := svc.repo.GetFreeLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if ul.Name != "" {
		lesson.Name = ul.Name
	}
	if ul.Content != nil {
		lesson.Content = ul.Content
	}
	if err = svc.repo.UpdateFreeLesson(ctx, lesson); err != nil {
		return Lesson{}, err
	}
	return svc.repo.GetFreeLessonByID(ctx, id)
}

func (svc *Service) DeleteFreeLesson(ctx context.Context, id int) error {
	return svc.repo.DeleteFreeLesson(ctx, id)
}

func (svc *Service) CreatePaidLesson(ctx context.Context, nl NewLesson) (Lesson, error) {
	if err := nl.Validate(svc.validate); err != nil {
		return Lesson{}, err
	}
	if _, err := svc.repo.GetPaidCourseByID(ctx, nl.CourseID); err != nil {
		return Lesson{}, errors.Wrap(err, "checking course")
	}
	return svc.repo.CreatePaidLesson(ctx, Lesson{Name: nl.Name, Content: nl.Content, CourseID: nl.CourseID})
}

func (svc *Service) QueryPaidLessonsByCourse(ctx context.Context, courseID int) ([]Lesson, error) {
	return svc.repo.QueryPaidLessonsByCourse(ctx, courseID)
}

func (svc *Service) GetPaidLessonByID(ctx context.Context, id int) (Lesson, error) {
	return svc.repo.GetPaidLessonByID(ctx, id)
}

func (svc *Service) UpdatePaidLesson(ctx context.Context, id int, ul UpdateLesson) (Lesson, error) {
	lesson, err := svc.repo.GetPaidLessonByID(ctx, id)
	if err != nil {
		return Lesson{}, err
	}
	if ul.Name != "" {
		lesson.Name = ul.Name
	}
	if ul.Content != nil {
		lesson.Content = ul.Content
	}
	if err = svc.repo.UpdatePaidLesson(ctx, lesson); err != nil {
		return Lesson{}, err
	}
	return svc.repo.GetPaidLessonByID(ctx, id)
}

func (svc *Service) DeletePaidLesson(ctx context.Context, id int) error {
	return svc.repo.DeletePaidLesson(ctx, id)
}
