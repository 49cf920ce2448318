package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/catalog"
)

type categoryRow struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row categoryRow) toCore() catalog.Category {
	return catalog.Category{ID: row.ID, Name: row.Name, CreatedAt: row.CreatedAt.UTC(), UpdatedAt: row.UpdatedAt.UTC()}
}

type freeCourseRow struct {
	ID          int             `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Thumbnail   string          `db:"thumbnail"`
	Content     json.RawMessage `db:"content"`
	CategoryID  int             `db:"category_id"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (row freeCourseRow) toCore() catalog.FreeCourse {
	return catalog.FreeCourse{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Thumbnail:   row.Thumbnail,
		Content:     row.Content,
		CategoryID:  row.CategoryID,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

type paidCourseRow struct {
	ID                int       `db:"id"`
	Name              string    `db:"name"`
	Description       string    `db:"description"`
	Thumbnail         string    `db:"thumbnail"`
	Price             float64   `db:"price"`
	Duration          string    `db:"duration"`
	RegisterStartDate string    `db:"register_start_date"`
	RegisterEndDate   string    `db:"register_end_date"`
	BeginDate         string    `db:"begin_date"`
	EndDate           string    `db:"end_date"`
	StudentQuantity   int       `db:"student_quantity"`
	Status            string    `db:"status"`
	Rating            float64   `db:"rating"`
	CoachID           int       `db:"coach_id"`
	CategoryID        int       `db:"category_id"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (row paidCourseRow) toCore() catalog.PaidCourse {
	return catalog.PaidCourse{
		ID:                row.ID,
		Name:              row.Name,
		Description:       row.Description,
		Thumbnail:         row.Thumbnail,
		Price:             row.Price,
		Duration:          row.Duration,
		RegisterStartDate: row.RegisterStartDate,
		RegisterEndDate:   row.RegisterEndDate,
		BeginDate:         row.BeginDate,
		EndDate:           row.EndDate,
		StudentQuantity:   row.StudentQuantity,
		Status:            catalog.CourseStatus(row.Status),
		Rating:            row.Rating,
		CoachID:           row.CoachID,
		CategoryID:        row.CategoryID,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
}

type lessonRow struct {
	ID        int             `db:"id"`
	Name      string          `db:"name"`
	Content   json.RawMessage `db:"content"`
	CourseID  int             `db:"course_id"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (row lessonRow) toCore() catalog.Lesson {
	return catalog.Lesson{
		ID:        row.ID,
		Name:      row.Name,
		Content:   row.Content,
		CourseID:  row.CourseID,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

type catalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	var row categoryRow
	err := repo.db.GetContext(ctx, &row, `INSERT INTO categories (name) VALUES ($1) RETURNING *`, cat.Name)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return catalog.Category{}, catalog.ErrNameExists
		}
		return catalog.Category{}, errors.Wrap(err, "creating category")
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) QueryAllCategories(ctx context.Context) ([]catalog.Category, error) {
	var rows []categoryRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM categories ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying categories")
	}
	cats := make([]catalog.Category, 0, len(rows))
	for _, row := range rows {
		cats = append(cats, row.toCore())
	}
	return cats, nil
}

func (repo *catalogRepository) GetCategoryByID(ctx context.Context, id int) (catalog.Category, error) {
	var row categoryRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM categories WHERE id = $1`, id); err != nil {
		return catalog.Category{}, mapNoRows(err, catalog.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) UpdateCategory(ctx context.Context, cat catalog.Category) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, updated_at = now() WHERE id = $1`, cat.ID, cat.Name)
	return errors.Wrap(err, "updating category")
}

func (repo *catalogRepository) DeleteCategory(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return errors.Wrap(err, "deleting category")
}

func (repo *catalogRepository) CreateFreeCourse(ctx context.Context, course catalog.FreeCourse) (catalog.FreeCourse, error) {
	var row freeCourseRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO free_courses (name, description, thumbnail, content, category_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		course.Name, course.Description, course.Thumbnail, course.Content, course.CategoryID)
	if err != nil {
		return catalog.FreeCourse{}, errors.Wrap(err, "creating free course")
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) QueryAllFreeCourses(ctx context.Context) ([]catalog.FreeCourse, error) {
	var rows []freeCourseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM free_courses ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying free courses")
	}
	courses := make([]catalog.FreeCourse, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCore())
	}
	return courses, nil
}

func (repo *catalogRepository) GetFreeCourseByID(ctx context.Context, id int) (catalog.FreeCourse, error) {
	var row freeCourseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM free_courses WHERE id = $1`, id); err != nil {
		return catalog.FreeCourse{}, mapNoRows(err, catalog.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) UpdateFreeCourse(ctx context.Context, course catalog.FreeCourse) error {
	_, err := repo.db.ExecContext(ctx, `
		UPDATE free_courses
		SET name = $2, description = $3, thumbnail = $4, content = $5, category_id = $6, updated_at = now()
		WHERE id = $1`,
		course.ID, course.Name, course.Description, course.Thumbnail, course.Content, course.CategoryID)
	return errors.Wrap(err, "updating free course")
}

func (repo *catalogRepository) DeleteFreeCourse(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM free_courses WHERE id = $1`, id)
	return errors.Wrap(err, "deleting free course")
}

func (repo *catalogRepository) CreatePaidCourse(ctx context.Context, course catalog.PaidCourse) (catalog.PaidCourse, error) {
	var row paidCourseRow
	err := repo.db.GetContext(ctx, &row, `
		INSERT INTO paid_courses
			(name, description, thumbnail, price, duration, register_start_date, register_end_date,
			 begin_date, end_date, status, coach_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING *`,
		course.Name, course.Description, course.Thumbnail, course.Price, course.Duration,
		course.RegisterStartDate, course.RegisterEndDate, course.BeginDate, course.EndDate,
		course.Status, course.CoachID, course.CategoryID)
	if err != nil {
		return catalog.PaidCourse{}, errors.Wrap(err, "creating paid course")
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) QueryAllPaidCourses(ctx context.Context) ([]catalog.PaidCourse, error) {
	var rows []paidCourseRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM paid_courses ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying paid courses")
	}
	courses := make([]catalog.PaidCourse, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCore())
	}
	return courses, nil
}

func (repo *catalogRepository) QueryPaidCoursesByCoach(ctx context.Context, coachID int) ([]catalog.PaidCourse, error) {
	var rows []paidCourseRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM paid_courses WHERE coach_id = $1 ORDER BY id`, coachID)
	if err != nil {
		return nil, errors.Wrap(err, "querying paid courses by coach")
	}
	courses := make([]catalog.PaidCourse, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCore())
	}
	return courses, nil
}

func (repo *catalogRepository) GetPaidCourseByID(ctx context.Context, id int) (catalog.PaidCourse, error) {
	var row paidCourseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM paid_courses WHERE id = $1`, id); err != nil {
		return catalog.PaidCourse{}, mapNoRows(err, catalog.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) UpdatePaidCourse(ctx context.Context, course catalog.PaidCourse) error {
	_, err := repo.db.ExecContext(ctx, `
		UPDATE paid_courses
		SET name = $2, description = $3, thumbnail = $4, price = $5, duration = $6,
		    register_start_date = $7, register_end_date = $8, begin_date = $9, end_date = $10,
		    status = $11, category_id = $12, updated_at = now()
		WHERE id = $1`,
		course.ID, course.Name, course.Description, course.Thumbnail, course.Price, course.Duration,
		course.RegisterStartDate, course.RegisterEndDate, course.BeginDate, course.EndDate,
		course.Status, course.CategoryID)
	return errors.Wrap(err, "updating paid course")
}

func (repo *catalogRepository) DeletePaidCourse(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM paid_courses WHERE id = $1`, id)
	return errors.Wrap(err, "deleting paid course")
}

func (repo *catalogRepository) createLesson(ctx context.Context, table string, lesson catalog.Lesson) (catalog.Lesson, error) {
	var row lessonRow
	err := repo.db.GetContext(ctx, &row,
		`INSERT INTO `+table+` (name, content, course_id) VALUES ($1, $2, $3) RETURNING *`,
		lesson.Name, lesson.Content, lesson.CourseID)
	if err != nil {
		return catalog.Lesson{}, errors.Wrap(err, "creating lesson")
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) queryLessons(ctx context.Context, table string, courseID int) ([]catalog.Lesson, error) {
	var rows []lessonRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM `+table+` WHERE course_id = $1 ORDER BY id`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying lessons")
	}
	lessons := make([]catalog.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toCore())
	}
	return lessons, nil
}

func (repo *catalogRepository) getLesson(ctx context.Context, table string, id int) (catalog.Lesson, error) {
	var row lessonRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM `+table+` WHERE id = $1`, id); err != nil {
		return catalog.Lesson{}, mapNoRows(err, catalog.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *catalogRepository) updateLesson(ctx context.Context, table string, lesson catalog.Lesson) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE `+table+` SET name = $2, content = $3, updated_at = now() WHERE id = $1`,
		lesson.ID, lesson.Name, lesson.Content)
	return errors.Wrap(err, "updating lesson")
}

func (repo *catalogRepository) deleteLesson(ctx context.Context, table string, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	return errors.Wrap(err, "deleting lesson")
}

func (repo *catalogRepository) CreateFreeLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	return repo.createLesson(ctx, "free_lessons", lesson)
}

func (repo *catalogRepository) QueryFreeLessonsByCourse(ctx context.Context, courseID int) ([]catalog.Lesson, error) {
	return repo.queryLessons(ctx, "free_lessons", courseID)
}

func (repo *catalogRepository) GetFreeLessonByID(ctx context.Context, id int) (catalog.Lesson, error) {
	return repo.getLesson(ctx, "free_lessons", id)
}

func (repo *catalogRepository) UpdateFreeLesson(ctx context.Context, lesson catalog.Lesson) error {
	return repo.updateLesson(ctx, "free_lessons", lesson)
}

func (repo *catalogRepository) DeleteFreeLesson(ctx context.Context, id int) error {
	return repo.deleteLesson(ctx, "free_lessons", id)
}

func (repo *catalogRepository) CreatePaidLesson(ctx context.Context, lesson catalog.Lesson) (catalog.Lesson, error) {
	return repo.createLesson(ctx, "paid_lessons", lesson)
}

func (repo *catalogRepository) QueryPaidLessonsByCourse(ctx context.Context, courseID int) ([]catalog.Lesson, error) {
	return repo.queryLessons(ctx, "paid_lessons", courseID)
}

func (repo *catalogRepository) GetPaidLessonByID(ctx context.Context, id int) (catalog.Lesson, error) {
	return repo.getLesson(ctx, "paid_lessons", id)
}

func (repo *catalogRepository) UpdatePaidLesson(ctx context.Context, lesson catalog.Lesson) error {
	return repo.updateLesson(ctx, "paid_lessons", lesson)
}

func (repo *catalogRepository) DeletePaidLesson(ctx context.Context, id int) error {
	return repo.deleteLesson(ctx, "paid_lessons", id)
}
