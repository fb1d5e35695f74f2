package store

import (
	"context"
	"fmt"

	"github.com/abhisek/engreader/internal/model"
	"github.com/jmoiron/sqlx"
)

type quizRepo struct {
	db *sqlx.DB
}

func (r *quizRepo) Create(ctx context.Context, q *model.Quiz) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, `INSERT INTO quizzes (id, story_id, title, created_at)
		VALUES (:id, :story_id, :title, :created_at)`, q)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert quiz: %w", err)
	}

	for i := range q.Questions {
		_, err = tx.NamedExecContext(ctx, `INSERT INTO quiz_questions (
			id, quiz_id, question_number, question_text,
			option_a, option_b, option_c, option_d, correct_answer, explanation
		) VALUES (
			:id, :quiz_id, :question_number, :question_text,
			:option_a, :option_b, :option_c, :option_d, :correct_answer, :explanation)`, &q.Questions[i])
		if err != nil {
			return fmt.Errorf("insert question %d: %w", q.Questions[i].QuestionNumber, err)
		}
	}

	return tx.Commit()
}

func (r *quizRepo) Get(ctx context.Context, id string) (*model.Quiz, error) {
	var q model.Quiz
	err := r.db.GetContext(ctx, &q, r.db.Rebind(`SELECT id, story_id, title, created_at FROM quizzes WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return r.withQuestions(ctx, &q)
}

func (r *quizRepo) GetByStory(ctx context.Context, storyID string) (*model.Quiz, error) {
	var q model.Quiz
	err := r.db.GetContext(ctx, &q, r.db.Rebind(`SELECT id, story_id, title, created_at FROM quizzes WHERE story_id = ?`), storyID)
	if err != nil {
		return nil, notFound(err)
	}
	return r.withQuestions(ctx, &q)
}

func (r *quizRepo) withQuestions(ctx context.Context, q *model.Quiz) (*model.Quiz, error) {
	err := r.db.SelectContext(ctx, &q.Questions, r.db.Rebind(`SELECT id, quiz_id, question_number, question_text,
		option_a, option_b, option_c, option_d, correct_answer, explanation
		FROM quiz_questions WHERE quiz_id = ? ORDER BY question_number`), q.ID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return q, nil
}

func (r *quizRepo) CreateAttempt(ctx context.Context, a *model.QuizAttempt) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO quiz_attempts (
		id, user_id, quiz_id, answers, score, total_questions, percentage, time_spent_seconds, completed_at
	) VALUES (
		:id, :user_id, :quiz_id, :answers, :score, :total_questions, :percentage, :time_spent_seconds, :completed_at)`, a)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *quizRepo) ListAttempts(ctx context.Context, userID string, limit int) ([]model.QuizAttempt, error) {
	query := `SELECT id, user_id, quiz_id, answers, score, total_questions, percentage,
		time_spent_seconds, completed_at FROM quiz_attempts WHERE user_id = ? ORDER BY completed_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var out []model.QuizAttempt
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return out, nil
}

func (r *quizRepo) AverageScore(ctx context.Context, userID string) (float64, int, error) {
	var row struct {
		Avg   *float64 `db:"avg_pct"`
		Count int      `db:"n"`
	}
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT AVG(percentage) AS avg_pct, COUNT(*) AS n
		FROM quiz_attempts WHERE user_id = ?`), userID)
	if err != nil {
		return 0, 0, fmt.Errorf("average score: %w", err)
	}
	if row.Avg == nil {
		return 0, 0, nil
	}
	return *row.Avg, row.Count, nil
}
