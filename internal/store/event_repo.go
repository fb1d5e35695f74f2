package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/engreader/internal/model"
	"github.com/jmoiron/sqlx"
)

// eventRepo implements EventRepo over the user_events and
// llm_request_events tables.
type eventRepo struct {
	db *sqlx.DB
}

func (r *eventRepo) AppendUserEvent(ctx context.Context, e *model.UserEvent) error {
	if e.EventData == "" {
		e.EventData = "{}"
	}
	_, err := r.db.NamedExecContext(ctx, `INSERT INTO user_events (
		id, user_id, event_type, event_data, story_id, quiz_id, created_at
	) VALUES (:id, :user_id, :event_type, :event_data, :story_id, :quiz_id, :created_at)`, e)
	if err != nil {
		return fmt.Errorf("insert user event: %w", err)
	}
	return nil
}

func (r *eventRepo) ListUserEvents(ctx context.Context, userID string, limit int) ([]model.UserEvent, error) {
	query := `SELECT id, user_id, event_type, event_data, story_id, quiz_id, created_at
		FROM user_events WHERE user_id = ? ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	var out []model.UserEvent
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list user events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO llm_request_events (
		created_at, provider, model, purpose, input_tokens, output_tokens,
		latency_ms, success, error_message, request_body, response_body
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		time.Now().UTC(), data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

const llmEventColumns = `id, created_at, provider, model, purpose, input_tokens, output_tokens,
	latency_ms, success, error_message, request_body, response_body`

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	query := `SELECT ` + llmEventColumns + ` FROM llm_request_events`
	var args []any
	if opts.Purpose != "" {
		query += ` WHERE purpose = ?`
		args = append(args, opts.Purpose)
	}
	query += ` ORDER BY id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	var out []LLMEvent
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error) {
	var e LLMEvent
	err := r.db.GetContext(ctx, &e, r.db.Rebind(`SELECT `+llmEventColumns+` FROM llm_request_events WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error) {
	var out []LLMPurposeUsage
	err := r.db.SelectContext(ctx, &out, `SELECT purpose,
		COUNT(*) AS calls,
		COALESCE(SUM(input_tokens), 0) AS input_tokens,
		COALESCE(SUM(output_tokens), 0) AS output_tokens,
		CAST(COALESCE(AVG(latency_ms), 0) AS BIGINT) AS avg_latency_ms
		FROM llm_request_events GROUP BY purpose ORDER BY calls DESC`)
	if err != nil {
		return nil, fmt.Errorf("usage by purpose: %w", err)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error) {
	var out []LLMModelUsage
	err := r.db.SelectContext(ctx, &out, `SELECT model,
		COUNT(*) AS calls,
		COALESCE(SUM(input_tokens), 0) AS input_tokens,
		COALESCE(SUM(output_tokens), 0) AS output_tokens
		FROM llm_request_events GROUP BY model ORDER BY calls DESC`)
	if err != nil {
		return nil, fmt.Errorf("usage by model: %w", err)
	}
	return out, nil
}
