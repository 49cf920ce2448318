package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core/quiz"
)

type questionRow struct {
	ID           int       `db:"id"`
	Text         string    `db:"text"`
	RightAnswer  string    `db:"right_answer"`
	FreeLessonID *int      `db:"free_lesson_id"`
	PaidLessonID *int      `db:"paid_lesson_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (row questionRow) toCore() quiz.Question {
	return quiz.Question{
		ID:           row.ID,
		Text:         row.Text,
		RightAnswer:  row.RightAnswer,
		FreeLessonID: row.FreeLessonID,
		PaidLessonID: row.PaidLessonID,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

type answerRow struct {
	ID         int       `db:"id"`
	Text       string    `db:"text"`
	QuestionID int       `db:"question_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type quizRepository struct {
	db *sqlx.DB
}

func NewQuizRepository(db *sqlx.DB) quiz.Repository {
	return &quizRepository{db: db}
}

func (repo *quizRepository) CreateQuestion(ctx context.Context, q quiz.Question, answers []string) (quiz.Question, error) {
	var row questionRow
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &row, `
			INSERT INTO questions (text, right_answer, free_lesson_id, paid_lesson_id)
			VALUES ($1, $2, $3, $4)
			RETURNING *`,
			q.Text, q.RightAnswer, q.FreeLessonID, q.PaidLessonID)
		if err != nil {
			return errors.Wrap(err, "creating question")
		}
		for _, ans := range answers {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO answers (text, question_id) VALUES ($1, $2)`, ans, row.ID); err != nil {
				return errors.Wrap(err, "creating answer")
			}
		}
		return nil
	})
	if err != nil {
		return quiz.Question{}, err
	}
	return row.toCore(), nil
}

func (repo *quizRepository) queryQuestions(ctx context.Context, column string, lessonID int) ([]quiz.Question, error) {
	var rows []questionRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM questions WHERE `+column+` = $1 ORDER BY id`, lessonID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	qs := make([]quiz.Question, 0, len(rows))
	for _, row := range rows {
		qs = append(qs, row.toCore())
	}
	return qs, nil
}

func (repo *quizRepository) QueryQuestionsByFreeLesson(ctx context.Context, lessonID int) ([]quiz.Question, error) {
	return repo.queryQuestions(ctx, "free_lesson_id", lessonID)
}

func (repo *quizRepository) QueryQuestionsByPaidLesson(ctx context.Context, lessonID int) ([]quiz.Question, error) {
	return repo.queryQuestions(ctx, "paid_lesson_id", lessonID)
}

func (repo *quizRepository) GetQuestionByID(ctx context.Context, id int) (quiz.Question, error) {
	var row questionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM questions WHERE id = $1`, id); err != nil {
		return quiz.Question{}, mapNoRows(err, quiz.ErrNotFound)
	}
	return row.toCore(), nil
}

func (repo *quizRepository) UpdateQuestion(ctx context.Context, q quiz.Question, answers []string) error {
	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE questions SET text = $2, right_answer = $3, updated_at = now() WHERE id = $1`,
			q.ID, q.Text, q.RightAnswer)
		if err != nil {
			return errors.Wrap(err, "updating question")
		}
		if answers == nil {
			return nil
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM answers WHERE question_id = $1`, q.ID); err != nil {
			return errors.Wrap(err, "replacing answers")
		}
		for _, ans := range answers {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO answers (text, question_id) VALUES ($1, $2)`, ans, q.ID); err != nil {
				return errors.Wrap(err, "replacing answers")
			}
		}
		return nil
	})
}

func (repo *quizRepository) DeleteQuestion(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return errors.Wrap(err, "deleting question")
}

func (repo *quizRepository) QueryAnswersByQuestion(ctx context.Context, questionID int) ([]quiz.Answer, error) {
	var rows []answerRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM answers WHERE question_id = $1 ORDER BY id`, questionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying answers")
	}
	answers := make([]quiz.Answer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, quiz.Answer{
			ID:         row.ID,
			Text:       row.Text,
			QuestionID: row.QuestionID,
			CreatedAt:  row.CreatedAt.UTC(),
			UpdatedAt:  row.UpdatedAt.UTC(),
		})
	}
	return answers, nil
}
