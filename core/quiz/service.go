package quiz

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("question not found")

type Repository interface {
	// CreateQuestion persists the question and its answer options in one
	// transaction.
	CreateQuestion(ctx context.Context, q Question, answers []string) (Question, error)
	QueryQuestionsByFreeLesson(ctx context.Context, lessonID int) ([]Question, error)
	QueryQuestionsByPaidLesson(ctx context.Context, lessonID int) ([]Question, error)
	GetQuestionByID(ctx context.Context, id int) (Question, error)
	// UpdateQuestion replaces the answer options when answers is non-nil.
	UpdateQuestion(ctx context.Context, q Question, answers []string) error
	DeleteQuestion(ctx context.Context, id int) error

	QueryAnswersByQuestion(ctx context.Context, questionID int) ([]Answer, error)
}

type ServiceInterface interface {
	Create(ctx context.Context, nq NewQuestion) (Question, error)
	QueryByFreeLesson(ctx context.Context, lessonID int) ([]Question, error)
	QueryByPaidLesson(ctx context.Context, lessonID int) ([]Question, error)
	GetByID(ctx context.Context, id int) (Question, error)
	AnswersFor(ctx context.Context, questionID int) ([]Answer, error)
	Update(ctx context.Context, id int, uq UpdateQuestion) (Question, error)
	Delete(ctx context.Context, id int) error
	Grade(ctx context.Context, sub QuizSubmission) (QuizResult, error)
}

type Service struct {
	repo     Repository
	validate *validator.Validate
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, nq NewQuestion) (Question, error) {
	if err := nq.Validate(svc.validate); err != nil {
		return Question{}, err
	}
	q := Question{
		Text:         nq.Text,
		RightAnswer:  nq.RightAnswer,
		FreeLessonID: nq.FreeLessonID,
		PaidLessonID: nq.PaidLessonID,
	}
	return svc.repo.CreateQuestion(ctx, q, nq.Answers)
}

func (svc *Service) QueryByFreeLesson(ctx context.Context, lessonID int) ([]Question, error) {
	return svc.repo.QueryQuestionsByFreeLesson(ctx, lessonID)
}

func (svc *Service) QueryByPaidLesson(ctx context.Context, lessonID int) ([]Question, error) {
	return svc.repo.QueryQuestionsByPaidLesson(ctx, lessonID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Question, error) {
	return svc.repo.GetQuestionByID(ctx, id)
}

func (svc *Service) AnswersFor(ctx context.Context, questionID int) ([]Answer, error) {
	return svc.repo.QueryAnswersByQuestion(ctx, questionID)
}

func (svc *Service) Update(ctx context.Context, id int, uq UpdateQuestion) (Question, error) {
	if err := uq.Validate(svc.validate); err != nil {
		return Question{}, err
	}
	q, err := svc.repo.GetQuestionByID(ctx, id)
	if err != nil {
		return Question{}, err
	}
	if uq.Text != "" {
		q.Text = uq.Text
	}
	if uq.RightAnswer != "" {
		q.RightAnswer = uq.RightAnswer
	}
	if err = svc.repo.UpdateQuestion(ctx, q, uq.Answers); err != nil {
		return Question{}, err
	}
	return svc.repo.GetQuestionByID(ctx, id)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteQuestion(ctx, id)
}

// Grade checks a submission against the stored right answers. Comparison is
// case-insensitive on trimmed text.
func (svc *Service) Grade(ctx context.Context, sub QuizSubmission) (QuizResult, error) {
	if err := sub.Validate(svc.validate); err != nil {
		return QuizResult{}, err
	}
	res := QuizResult{Total: len(sub.Answers)}
	for _, ans := range sub.Answers {
		q, err := svc.repo.GetQuestionByID(ctx, ans.QuestionID)
		if err != nil {
			return QuizResult{}, err
		}
		if strings.EqualFold(strings.TrimSpace(ans.Answer), strings.TrimSpace(q.RightAnswer)) {
			res.Correct++
		} else {
			res.Wrong = append(res.Wrong, q.ID)
		}
	}
	return res, nil
}
