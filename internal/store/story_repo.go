package store

import (
	"context"
	"fmt"

	"github.com/abhisek/engreader/internal/model"
	"github.com/jmoiron/sqlx"
)

type storyRepo struct {
	db *sqlx.DB
}

const storyColumns = `id, user_id, title, content, topic, level, status, target_words,
	target_word_count, target_words_used, usage_percentage, word_count, reading_minutes,
	is_completed, completed_at, reading_seconds, is_deleted, created_at, updated_at`

func (r *storyRepo) Create(ctx context.Context, s *model.Story) error {
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO stories (`+storyColumns+`) VALUES (
		:id, :user_id, :title, :content, :topic, :level, :status, :target_words,
		:target_word_count, :target_words_used, :usage_percentage, :word_count, :reading_minutes,
		:is_completed, :completed_at, :reading_seconds, :is_deleted, :created_at, :updated_at)`, s)
	if err != nil {
		return fmt.Errorf("insert story: %w", err)
	}
	return nil
}

func (r *storyRepo) Update(ctx context.Context, s *model.Story) error {
	res, err := r.db.NamedExecContext(ctx, `UPDATE stories SET
		is_completed = :is_completed, completed_at = :completed_at,
		reading_seconds = :reading_seconds, is_deleted = :is_deleted, updated_at = :updated_at
		WHERE id = :id`, s)
	if err != nil {
		return fmt.Errorf("update story: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// statusChange binds the expected current status next to the story's
// columns for the guarded update.
type statusChange struct {
	model.Story
	From model.StoryStatus `db:"from_status"`
}

func (r *storyRepo) UpdateStatus(ctx context.Context, s *model.Story, from model.StoryStatus) error {
	res, err := r.db.NamedExecContext(ctx, `UPDATE stories SET
		title = :title, content = :content, status = :status,
		target_words_used = :target_words_used, usage_percentage = :usage_percentage,
		word_count = :word_count, reading_minutes = :reading_minutes, updated_at = :updated_at
		WHERE id = :id AND status = :from_status`, statusChange{Story: *s, From: from})
	if err != nil {
		return fmt.Errorf("update story status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update story status: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.Get(ctx, s.ID); err != nil {
		return err
	}
	return ErrConflict
}

func (r *storyRepo) Get(ctx context.Context, id string) (*model.Story, error) {
	var s model.Story
	err := r.db.GetContext(ctx, &s, r.db.Rebind(`SELECT `+storyColumns+` FROM stories WHERE id = ?`), id)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *storyRepo) ListByUser(ctx context.Context, userID string) ([]model.Story, error) {
	var out []model.Story
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`SELECT `+storyColumns+` FROM stories
		WHERE user_id = ? AND is_deleted = ? ORDER BY created_at DESC`), userID, false)
	if err != nil {
		return nil, fmt.Errorf("list stories: %w", err)
	}
	return out, nil
}

func (r *storyRepo) ListByStatus(ctx context.Context, status model.StoryStatus) ([]model.Story, error) {
	var out []model.Story
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`SELECT `+storyColumns+` FROM stories
		WHERE status = ? ORDER BY created_at`), string(status))
	if err != nil {
		return nil, fmt.Errorf("list stories by status: %w", err)
	}
	return out, nil
}
