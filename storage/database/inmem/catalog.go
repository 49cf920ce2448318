package inmemdb

import (
	"context"
	"sort"

	"github.com/courcompanion/backend/core/catalog"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.categories {
		if existing.Name == cat.Name {
			return catalog.Category{}, catalog.ErrNameExists
		}
	}
	cat.ID = repo.db.nextID()
	cat.CreatedAt = now()
	cat.UpdatedAt = cat.CreatedAt
	repo.db.categories[cat.ID] = &cat
	return cat, nil
}

func (repo *catalogRepository) QueryAllCategories(ctx context.Context) ([]catalog.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	cats := make([]catalog.Category, 0, len(repo.db.categories))
	for _, cat := range repo.db.categories {
		cats = append(cats, *cat)
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (repo *catalogRepository) GetCategoryByID(ctx context.Context, id int) (catalog.Category, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cat, ok := repo.db.categories[id]; ok {
		return *cat, nil
	}
	return catalog.Category{}, catalog.ErrNotFound
}

func (repo *catalogRepository) UpdateCategory(ctx context.Context, cat catalog.Category) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.categories[cat.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	orig.Name = cat.Name
	orig.UpdatedAt = now()
	return nil
}

func (repo *catalogRepository) DeleteCategory(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.categories, id)
	return nil
}

func (repo *catalogRepository) CreateFreeCourse(ctx context.Context, course catalog.FreeCourse) (catalog.FreeCourse, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	course.ID = repo.db.nextID()
	course.CreatedAt = now()
	course.UpdatedAt = course.CreatedAt
	repo.db.freeCourses[course.ID] = &course
	return course, nil
}

func (repo *catalogRepository) QueryAllFreeCourses(ctx context.Context) ([]catalog.FreeCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]catalog.FreeCourse, 0, len(repo.db.freeCourses))
	for _, course := range repo.db.freeCourses {
		courses = append(courses, *course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *catalogRepository) GetFreeCourseByID(ctx context.Context, id int) (catalog.FreeCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if course, ok := repo.db.freeCourses[id]; ok {
		return *course, nil
	}
	return catalog.FreeCourse{}, catalog.ErrNotFound
}

func (repo *catalogRepository) UpdateFreeCourse(ctx context.Context, course catalog.FreeCourse) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.freeCourses[course.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	course.CreatedAt = orig.CreatedAt
	course.UpdatedAt = now()
	repo.db.freeCourses[course.ID] = &course
	return nil
}

func (repo *catalogRepository) DeleteFreeCourse(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.freeCourses, id)
	return nil
}

func (repo *catalogRepository) CreatePaidCourse(ctx context.Context, course catalog.PaidCourse) (catalog.PaidCourse, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	course.ID = repo.db.nextID()
	course.CreatedAt = now()
	course.UpdatedAt = course.CreatedAt
	repo.db.paidCourses[course.ID] = &course
	return course, nil
}

func (repo *catalogRepository) QueryAllPaidCourses(ctx context.Context) ([]catalog.PaidCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]catalog.PaidCourse, 0, len(repo.db.paidCourses))
	for _, course := range repo.db.paidCourses {
		courses = append(courses, *course)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *catalogRepository) QueryPaidCoursesByCoach(ctx context.Context, coachID int) ([]catalog.PaidCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var courses []catalog.PaidCourse
	for _, course := range repo.db.paidCourses {
		if course.CoachID == coachID {
			courses = append(courses, *course)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *catalogRepository) GetPaidCourseByID(ctx context.Context, id int) (catalog.PaidCourse, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if course, ok := repo.db.paidCourses[id]; ok {
		return *course, nil
	}
	return catalog.PaidCourse{}, catalog.ErrNotFound
}

func (repo *catalogRepository) UpdatePaidCourse(ctx context.Context, course catalog.PaidCourse) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.paidCourses[course.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	course.CreatedAt = orig.CreatedAt
	course.StudentQuantity = orig.StudentQuantity
	course.Rating = orig.Rating
	course.UpdatedAt = now()
	repo.db.paidCourses[course.ID] = &course
	return nil
}

func (repo *catalogRepository) DeletePaidCourse(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(repo.db.paidCourses, id)
	return nil
}

func (repo *catalogRepository) createLesson(table map[int]*catalog.Lesson, lesson catalog.Lesson) (catalog.Lesson, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	lesson.ID = repo.db.nextID()
	lesson.CreatedAt = now()
	lesson.UpdatedAt = lesson.CreatedAt
	table[lesson.ID] = &lesson
	return lesson, nil
}

func (repo *catalogRepository) queryLessons(table map[int]*catalog.Lesson, courseID int) ([]catalog.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var lessons []catalog.Lesson
	for _, lesson := range table {
		if lesson.CourseID == courseID {
			lessons = append(lessons, *lesson)
		}
	}
	sort.Slice(lessons, func(i, j int) bool { return lessons[i].ID < lessons[j].ID })
	return lessons, nil
}

func (repo *catalogRepository) getLesson(table map[int]*catalog.Lesson, id int) (catalog.Lesson, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if lesson, ok := table[id]; ok {
		return *lesson, nil
	}
	return catalog.Lesson{}, catalog.ErrNotFound
}

func (repo *catalogRepository) updateLesson(table map[int]*catalog.Lesson, lesson catalog.Lesson) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := table[lesson.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	orig.Name = lesson.Name
	orig.Content = lesson.Content
	orig.UpdatedAt = now()
	return nil
}

func (repo *catalogRepository) deleteLesson(table map[int]*catalog.Lesson, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	delete(table, id)
	return nil
}

func (repo *catalogRepository) CreateFreeLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	return repo.createLesson(repo.db.freeLessons, lesson)
}

func (repo *catalogRepository) QueryFreeLessonsByCourse(ctx context.Context, courseID int) ([]catalog.Lesson, error) {
	return repo.queryLessons(repo.db.freeLessons, courseID)
}

func (repo *catalogRepository) GetFreeLessonByID(ctx context.Context, id int) (catalog.Lesson, error) {
	return repo.getLesson(repo.db.freeLessons, id)
}

func (repo *catalogRepository) UpdateFreeLesson(ctx context.Context, lesson catalog.Lesson) error {
	return repo.updateLesson(repo.db.freeLessons, lesson)
}

func (repo *catalogRepository) DeleteFreeLesson(ctx context.Context, id int) error {
	return repo.deleteLesson(repo.db.freeLessons, id)
}

func (repo *catalogRepository) CreatePaidLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	return repo.createLesson(repo.db.paidLessons, lesson)
}

func (repo *catalogRepository) QueryPaidLessonsByCourse(ctx context.Context, courseID int) ([]catalog.Lesson, error) {
	return repo.queryLessons(repo.db.paidLessons, courseID)
}

func (repo *catalogRepository) GetPaidLessonByID(ctx context.Context, id int) (catalog.Lesson, error) {
	return repo.getLesson(repo.db.paidLessons, id)
}

func (repo *catalogRepository) UpdatePaidLesson(ctx context.Context, lesson catalog.Lesson) error {
	return repo.updateLesson(repo.db.paidLessons, lesson)
}

func (repo *catalogRepository) DeletePaidLesson(ctx context.Context, id int) error {
	return repo.deleteLesson(repo.db.paidLessons, id)
}
