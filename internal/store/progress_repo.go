package store

import (
	"context"
	"fmt"

	"github.com/abhisek/engreader/internal/model"
	"github.com/jmoiron/sqlx"
)

type progressRepo struct {
	db *sqlx.DB
}

const progressColumns = `user_id, current_level, total_stories_read, total_quizzes_completed,
	average_quiz_score, total_words_learned, total_translations_viewed, total_reading_minutes,
	current_streak_days, last_reading_date, updated_at`

func (r *progressRepo) Get(ctx context.Context, userID string) (*model.Progress, error) {
	var p model.Progress
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`SELECT `+progressColumns+` FROM progress WHERE user_id = ?`), userID)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *progressRepo) Save(ctx context.Context, p *model.Progress) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO progress (`+progressColumns+`) VALUES (
		:user_id, :current_level, :total_stories_read, :total_quizzes_completed,
		:average_quiz_score, :total_words_learned, :total_translations_viewed, :total_reading_minutes,
		:current_streak_days, :last_reading_date, :updated_at)
		ON CONFLICT (user_id) DO UPDATE SET
		current_level = excluded.current_level,
		total_stories_read = excluded.total_stories_read,
		total_quizzes_completed = excluded.total_quizzes_completed,
		average_quiz_score = excluded.average_quiz_score,
		total_words_learned = excluded.total_words_learned,
		total_translations_viewed = excluded.total_translations_viewed,
		total_reading_minutes = excluded.total_reading_minutes,
		current_streak_days = excluded.current_streak_days,
		last_reading_date = excluded.last_reading_date,
		updated_at = excluded.updated_at`, p)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}
