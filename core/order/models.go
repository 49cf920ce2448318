package order

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

type Order struct {
	ID              int       `json:"id"`
	Total           float64   `json:"total"`
	Status          Status    `json:"status"`
	PaymentIntentID string    `json:"payment_intent_id"`
	PaidCourseID    int       `json:"paid_course_id"`
	UserID          int       `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

type NewOrder struct {
	PaidCourseID    int    `json:"paid_course_id" validate:"required"`
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

func (no *NewOrder) Validate(validate *validator.Validate) error {
	return validate.Struct(no)
}

type NewIntent struct {
	PaidCourseID int `json:"paid_course_id" validate:"required"`
}

func (ni *NewIntent) Validate(validate *validator.Validate) error {
	return validate.Struct(ni)
}

// Intent is the client-facing handle for a created payment attempt.
type Intent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"client_secret"`
	Amount       float64 `json:"amount"`
}

// MonthlyRevenue aggregates successful order totals for one calendar month.
type MonthlyRevenue struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}
