package store

import (
	"context"
	"fmt"

	"github.com/abhisek/engreader/internal/model"
	"github.com/jmoiron/sqlx"
)

type translationRepo struct {
	db *sqlx.DB
}

const translationColumns = `id, story_id, source_text, normalized_text, source_language,
	target_language, translated_text, is_word, usage_count, created_at`

func (r *translationRepo) Find(ctx context.Context, normalized, src, tgt string) (*model.Translation, error) {
	var t model.Translation
	err := r.db.GetContext(ctx, &t, r.db.Rebind(`SELECT `+translationColumns+` FROM translations
		WHERE normalized_text = ? AND source_language = ? AND target_language = ?`), normalized, src, tgt)
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *translationRepo) Create(ctx context.Context, t *model.Translation) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `INSERT INTO translations (`+translationColumns+`) VALUES (
		:id, :story_id, :source_text, :normalized_text, :source_language,
		:target_language, :translated_text, :is_word, :usage_count, :created_at)
		ON CONFLICT (normalized_text, source_language, target_language) DO NOTHING`, t)
	if err != nil {
		return false, fmt.Errorf("insert translation: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return true, nil
	}

	// Another writer got there first; adopt its row.
	existing, err := r.Find(ctx, t.NormalizedText, t.SourceLanguage, t.TargetLanguage)
	if err != nil {
		return false, fmt.Errorf("reload translation: %w", err)
	}
	*t = *existing
	return false, nil
}

func (r *translationRepo) IncrementUsage(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE translations SET usage_count = usage_count + 1 WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("increment usage: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *translationRepo) ListByStory(ctx context.Context, storyID string) ([]model.Translation, error) {
	var out []model.Translation
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`SELECT `+translationColumns+` FROM translations
		WHERE story_id = ? ORDER BY usage_count DESC, created_at`), storyID)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	return out, nil
}
