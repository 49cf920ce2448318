package inmemdb

import (
	"context"
	"sort"

	"github.com/courcompanion/backend/core/quiz"
)

type quizRepository struct {
	db *DB
}

func NewQuizRepository(db *DB) quiz.Repository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) CreateQuestion(ctx context.Context, q quiz.Question, answers []string) (quiz.Question, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	q.ID = repo.db.nextID()
	q.CreatedAt = now()
	q.UpdatedAt = q.CreatedAt
	repo.db.questions[q.ID] = &q

	for _, text := range answers {
		ans := quiz.Answer{ID: repo.db.nextID(), Text: text, QuestionID: q.ID, CreatedAt: now(), UpdatedAt: now()}
		repo.db.answers[ans.ID] = &ans
	}
	return q, nil
}

func (repo *quizRepository) queryQuestions(match func(*quiz.Question) bool) []quiz.Question {
	var qs []quiz.Question
	for _, q := range repo.db.questions {
		if match(q) {
			qs = append(qs, *q)
		}
	}
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	return qs
}

func (repo *quizRepository) QueryQuestionsByFreeLesson(ctx context.Context, lessonID int) ([]quiz.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.queryQuestions(func(q *quiz.Question) bool {
		return q.FreeLessonID != nil && *q.FreeLessonID == lessonID
	}), nil
}

func (repo *quizRepository) QueryQuestionsByPaidLesson(ctx context.Context, lessonID int) ([]quiz.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.queryQuestions(func(q *quiz.Question) bool {
		return q.PaidLessonID != nil && *q.PaidLessonID == lessonID
	}), nil
}

func (repo *quizRepository) GetQuestionByID(ctx context.Context, id int) (quiz.Question, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if q, ok := repo.db.questions[id]; ok {
		return *q, nil
	}
	return quiz.Question{}, quiz.ErrNotFound
}

func (repo *quizRepository) UpdateQuestion(ctx context.Context, q quiz.Question, answers []string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.questions[q.ID]
	if !ok {
		return quiz.ErrNotFound
	}
	orig.Text = q.Text
	orig.RightAnswer = q.RightAnswer
	orig.UpdatedAt = now()

	if answers != nil {
		for id, ans := range repo.db.answers {
			if ans.QuestionID == q.ID {
				delete(repo.db.answers, id)
			}
		}
		for _, text := range answers {
			ans := quiz.Answer{ID: repo.db.nextID(), Text: text, QuestionID: q.ID, CreatedAt: now(), UpdatedAt: now()}
			repo.db.answers[ans.ID] = &ans
		}
	}
	return nil
}

func (repo *quizRepository) DeleteQuestion(ctx context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.questions, id)
	for ansID, ans := range repo.db.answers {
		if ans.QuestionID == id {
			delete(repo.db.answers, ansID)
		}
	}
	return nil
}

func (repo *quizRepository) QueryAnswersByQuestion(ctx context.Context, questionID int) ([]quiz.Answer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var answers []quiz.Answer
	for _, ans := range repo.db.answers {
		if ans.QuestionID == questionID {
			answers = append(answers, *ans)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers, nil
}
