package catalog

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/courcompanion/backend/core"
)

type CourseStatus string

const (
	StatusOpen  CourseStatus = "open"
	StatusClose CourseStatus = "close"
)

type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// FreeCourse carries its content inline as a JSON document and has no
// registration window; any user may enroll at any time.
type FreeCourse struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Thumbnail   string          `json:"thumbnail"`
	Content     json.RawMessage `json:"content"`
	CategoryID  int             `json:"category_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// PaidCourse is coach-owned and purchasable within its registration window.
type PaidCourse struct {
	ID                int          `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Thumbnail         string       `json:"thumbnail"`
	Price             float64      `json:"price"`
	Duration          string       `json:"duration,omitempty"`
	RegisterStartDate string       `json:"register_start_date,omitempty"` // YYYY-MM-DD
	RegisterEndDate   string       `json:"register_end_date,omitempty"`
	BeginDate         string       `json:"begin_date,omitempty"`
	EndDate           string       `json:"end_date,omitempty"`
	StudentQuantity   int          `json:"student_quantity"`
	Status            CourseStatus `json:"status"`
	Rating            float64      `json:"rating"`
	CoachID           int          `json:"coach_id"`
	CategoryID        int          `json:"category_id"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

type Lesson struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Content   json.RawMessage `json:"content"`
	CourseID  int             `json:"course_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type NewCategory struct {
	Name string `json:"name" validate:"required,max=255"`
}

func (nc *NewCategory) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type NewFreeCourse struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description" validate:"required"`
	Thumbnail   string          `json:"thumbnail" validate:"required"`
	Content     json.RawMessage `json:"content" validate:"required"`
	CategoryID  int             `json:"category_id" validate:"required"`
}

func (nf *NewFreeCourse) Validate(validate *validator.Validate) error {
	nf.Name = core.CleanString(nf.Name)
	return validate.Struct(nf)
}

type UpdateFreeCourse struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Thumbnail   string          `json:"thumbnail"`
	Content     json.RawMessage `json:"content"`
	CategoryID  int             `json:"category_id"`
}

type NewPaidCourse struct {
	Name              string  `json:"name" validate:"required,max=255"`
	Description       string  `json:"description" validate:"required"`
	Thumbnail         string  `json:"thumbnail" validate:"required"`
	Price             float64 `json:"price" validate:"required,gt=0"`
	Duration          string  `json:"duration"`
	RegisterStartDate string  `json:"register_start_date" validate:"omitempty,datetime=2006-01-02"`
	RegisterEndDate   string  `json:"register_end_date" validate:"omitempty,datetime=2006-01-02"`
	BeginDate         string  `json:"begin_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate           string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	CoachID           int     `json:"coach_id" validate:"required"`
	CategoryID        int     `json:"category_id" validate:"required"`
}

func (np *NewPaidCourse) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	return validate.Struct(np)
}

type UpdatePaidCourse struct {
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Thumbnail         string        `json:"thumbnail"`
	Price             *float64      `json:"price" validate:"omitempty,gt=0"`
	Duration          string        `json:"duration"`
	RegisterStartDate string        `json:"register_start_date" validate:"omitempty,datetime=2006-01-02"`
	RegisterEndDate   string        `json:"register_end_date" validate:"omitempty,datetime=2006-01-02"`
	BeginDate         string        `json:"begin_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate           string        `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Status            *CourseStatus `json:"status" validate:"omitempty,oneof=open close"`
	CategoryID        int           `json:"category_id"`
}

func (up *UpdatePaidCourse) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	return validate.Struct(up)
}

type NewLesson struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Content  json.RawMessage `json:"content" validate:"required"`
	CourseID int             `json:"course_id" validate:"required"`
}

func (nl *NewLesson) Validate(validate *validator.Validate) error {
	nl.Name = core.CleanString(nl.Name)
	return validate.Struct(nl)
}

type UpdateLesson struct {
	Name    string          `json:"name"`
	Content json.RawMessage `json:"content"`
}
