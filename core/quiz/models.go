package quiz

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/courcompanion/backend/core"
)

// Question belongs to exactly one lesson, free or paid; the two foreign keys
// are mutually exclusive.
type Question struct {
	ID           int       `json:"id"`
	Text         string    `json:"text"`
	RightAnswer  string    `json:"right_answer"`
	FreeLessonID *int      `json:"free_lesson_id,omitempty"`
	PaidLessonID *int      `json:"paid_lesson_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

type Answer struct {
	ID         int       `json:"id"`
	Text       string    `json:"text"`
	QuestionID int       `json:"question_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type NewQuestion struct {
	Text         string   `json:"text" validate:"required"`
	RightAnswer  string   `json:"right_answer" validate:"required"`
	Answers      []string `json:"answers" validate:"required,min=2,dive,required"`
	FreeLessonID *int     `json:"free_lesson_id" validate:"required_without=PaidLessonID,excluded_with=PaidLessonID"`
	PaidLessonID *int     `json:"paid_lesson_id" validate:"required_without=FreeLessonID"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.Text = core.CleanString(nq.Text)
	return validate.Struct(nq)
}

type UpdateQuestion struct {
	Text        string   `json:"text"`
	RightAnswer string   `json:"right_answer"`
	Answers     []string `json:"answers" validate:"omitempty,min=2,dive,required"`
}

func (uq *UpdateQuestion) Validate(validate *validator.Validate) error {
	uq.Text = core.CleanString(uq.Text)
	return validate.Struct(uq)
}

// SubmittedAnswer is a user's attempt at a single question.
type SubmittedAnswer struct {
	QuestionID int    `json:"question_id" validate:"required"`
	Answer     string `json:"answer" validate:"required"`
}

type QuizSubmission struct {
	Answers []SubmittedAnswer `json:"answers" validate:"required,min=1,dive"`
}

func (qs *QuizSubmission) Validate(validate *validator.Validate) error {
	return validate.Struct(qs)
}

// QuizResult reports a graded submission.
type QuizResult struct {
	Total   int   `json:"total"`
	Correct int   `json:"correct"`
	Wrong   []int `json:"wrong_question_ids"`
}
