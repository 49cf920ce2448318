package review

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/courcompanion/backend/core"
)

type Review struct {
	ID           int       `json:"id"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	UserID       int       `json:"user_id"`
	PaidCourseID int       `json:"paid_course_id"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

type NewReview struct {
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"max=2000"`
	PaidCourseID int    `json:"paid_course_id" validate:"required"`
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Comment = core.CleanString(nr.Comment)
	return validate.Struct(nr)
}

type UpdateReview struct {
	Rating  int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

func (ur *UpdateReview) Validate(validate *validator.Validate) error {
	ur.Comment = core.CleanString(ur.Comment)
	return validate.Struct(ur)
}
