package enroll

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Status string

const (
	StatusStarted  Status = "started"
	StatusOngoing  Status = "ongoing"
	StatusFinished Status = "finished"
)

// Enrollment ties a user to one course, free or paid; the two foreign keys
// are mutually exclusive. Paid enrollments are only ever created by payment
// reconciliation, never directly.
type Enrollment struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	FreeCourseID *int      `json:"free_course_id,omitempty"`
	PaidCourseID *int      `json:"paid_course_id,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// LessonProgress marks a single lesson as completed by a user.
type LessonProgress struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	FreeLessonID *int      `json:"free_lesson_id,omitempty"`
	PaidLessonID *int      `json:"paid_lesson_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type NewEnrollment struct {
	FreeCourseID *int `json:"free_course_id" validate:"required_without=PaidCourseID,excluded_with=PaidCourseID"`
	PaidCourseID *int `json:"paid_course_id" validate:"required_without=FreeCourseID"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

type NewProgress struct {
	FreeLessonID *int `json:"free_lesson_id" validate:"required_without=PaidLessonID,excluded_with=PaidLessonID"`
	PaidLessonID *int `json:"paid_lesson_id" validate:"required_without=FreeLessonID"`
}

func (np *NewProgress) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}
