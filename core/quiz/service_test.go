package quiz_test

import (
	"context"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courcompanion/backend/core"
	"github.com/courcompanion/backend/core/quiz"
	inmemdb "github.com/courcompanion/backend/storage/database/inmem"
)

func newQuizService(t *testing.T) (*quiz.Service, *inmemdb.DB) {
	t.Helper()
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	db := inmemdb.NewDB()
	return quiz.NewService(inmemdb.NewQuizRepository(db), validate), db
}

func intPtr(i int) *int { return &i }

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuizService(t)

	t.Run("needs a lesson", func(t *testing.T) {
		_, err := svc.Create(ctx, quiz.NewQuestion{
			Text:        "2 + 2 ?",
			RightAnswer: "4",
			Answers:     []string{"3", "4"},
		})
		assert.Error(t, err)
	})

	t.Run("needs at least two options", func(t *testing.T) {
		_, err := svc.Create(ctx, quiz.NewQuestion{
			Text:         "2 + 2 ?",
			RightAnswer:  "4",
			Answers:      []string{"4"},
			FreeLessonID: intPtr(1),
		})
		assert.Error(t, err)
	})

	q, err := svc.Create(ctx, quiz.NewQuestion{
		Text:         "2 + 2 ?",
		RightAnswer:  "4",
		Answers:      []string{"3", "4", "5"},
		FreeLessonID: intPtr(1),
	})
	require.NoError(t, err)
	assert.NotZero(t, q.ID)

	answers, err := svc.AnswersFor(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 3)
}

func TestService_Grade(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuizService(t)

	q1, err := svc.Create(ctx, quiz.NewQuestion{
		Text:         "capital of DRC?",
		RightAnswer:  "Kinshasa",
		Answers:      []string{"Kinshasa", "Lubumbashi"},
		FreeLessonID: intPtr(1),
	})
	require.NoError(t, err)
	q2, err := svc.Create(ctx, quiz.NewQuestion{
		Text:         "2 + 2 ?",
		RightAnswer:  "4",
		Answers:      []string{"3", "4"},
		FreeLessonID: intPtr(1),
	})
	require.NoError(t, err)

	t.Run("case-insensitive on trimmed text", func(t *testing.T) {
		res, err := svc.Grade(ctx, quiz.QuizSubmission{Answers: []quiz.SubmittedAnswer{
			{QuestionID: q1.ID, Answer: "  kinshasa "},
			{QuestionID: q2.ID, Answer: "5"},
		}})
		require.NoError(t, err)
		assert.Equal(t, quiz.QuizResult{Total: 2, Correct: 1, Wrong: []int{q2.ID}}, res)
	})

	t.Run("unknown question", func(t *testing.T) {
		_, err := svc.Grade(ctx, quiz.QuizSubmission{Answers: []quiz.SubmittedAnswer{
			{QuestionID: 999, Answer: "4"},
		}})
		assert.Equal(t, quiz.ErrNotFound, errors.Cause(err))
	})

	t.Run("empty submission", func(t *testing.T) {
		_, err := svc.Grade(ctx, quiz.QuizSubmission{})
		assert.Error(t, err)
	})
}

func TestService_Update_replacesAnswers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newQuizService(t)

	q, err := svc.Create(ctx, quiz.NewQuestion{
		Text:         "2 + 2 ?",
		RightAnswer:  "4",
		Answers:      []string{"3", "4", "5"},
		FreeLessonID: intPtr(1),
	})
	require.NoError(t, err)

	got, err := svc.Update(ctx, q.ID, quiz.UpdateQuestion{
		RightAnswer: "four",
		Answers:     []string{"four", "five"},
	})
	require.NoError(t, err)
	assert.Equal(t, "four", got.RightAnswer)
	assert.Equal(t, q.Text, got.Text)

	answers, err := svc.AnswersFor(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, answers, 2)
}
