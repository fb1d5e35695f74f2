package store

import (
	"context"
	"errors"
	"time"

	"github.com/abhisek/engreader/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when an insert violates a unique index.
	ErrConflict = errors.New("conflict")
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match ("" = any)
}

// StoryRepo persists stories.
type StoryRepo interface {
	Create(ctx context.Context, s *model.Story) error

	// Update saves the completion and deletion fields. Status and the
	// generated text only change through UpdateStatus.
	Update(ctx context.Context, s *model.Story) error

	// UpdateStatus saves s only while the stored status is still from.
	// It returns ErrConflict when another writer moved the story first.
	UpdateStatus(ctx context.Context, s *model.Story, from model.StoryStatus) error

	// Get returns the story with id, including soft-deleted ones.
	Get(ctx context.Context, id string) (*model.Story, error)

	// ListByUser returns the user's non-deleted stories, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Story, error)

	// ListByStatus returns every story in the given status.
	ListByStatus(ctx context.Context, status model.StoryStatus) ([]model.Story, error)
}

// QuizRepo persists quizzes, their questions, and attempts.
type QuizRepo interface {
	// Create inserts the quiz and all its questions in one transaction.
	Create(ctx context.Context, q *model.Quiz) error

	// Get loads a quiz with its questions ordered by number.
	Get(ctx context.Context, id string) (*model.Quiz, error)
	GetByStory(ctx context.Context, storyID string) (*model.Quiz, error)

	CreateAttempt(ctx context.Context, a *model.QuizAttempt) error

	// ListAttempts returns the user's attempts, most recent first.
	ListAttempts(ctx context.Context, userID string, limit int) ([]model.QuizAttempt, error)

	// AverageScore returns the mean percentage over all of the user's
	// attempts and the number of attempts.
	AverageScore(ctx context.Context, userID string) (float64, int, error)
}

// TranslationRepo persists cached translations.
type TranslationRepo interface {
	// Find returns the row for the normalized key and language pair.
	Find(ctx context.Context, normalized, src, tgt string) (*model.Translation, error)

	// Create inserts t unless a row with the same key already exists, in
	// which case the existing row is loaded into t and created is false.
	Create(ctx context.Context, t *model.Translation) (created bool, err error)

	IncrementUsage(ctx context.Context, id string) error

	// ListByStory returns the story's translations by usage, highest first.
	ListByStory(ctx context.Context, storyID string) ([]model.Translation, error)
}

// ProgressRepo persists the per-user progress aggregate.
type ProgressRepo interface {
	Get(ctx context.Context, userID string) (*model.Progress, error)

	// Save inserts or overwrites the user's record.
	Save(ctx context.Context, p *model.Progress) error
}

// UserRepo persists users.
type UserRepo interface {
	// Create fails with ErrConflict when the email is already taken.
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID           int64     `db:"id"`
	Timestamp    time.Time `db:"created_at"`
	Provider     string    `db:"provider"`
	Model        string    `db:"model"`
	Purpose      string    `db:"purpose"`
	InputTokens  int       `db:"input_tokens"`
	OutputTokens int       `db:"output_tokens"`
	LatencyMs    int64     `db:"latency_ms"`
	Success      bool      `db:"success"`
	ErrorMessage string    `db:"error_message"`
	RequestBody  string    `db:"request_body"`
	ResponseBody string    `db:"response_body"`
}

// LLMPurposeUsage aggregates token usage for one purpose.
type LLMPurposeUsage struct {
	Purpose      string `db:"purpose"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
	AvgLatencyMs int64  `db:"avg_latency_ms"`
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string `db:"model"`
	Calls        int    `db:"calls"`
	InputTokens  int    `db:"input_tokens"`
	OutputTokens int    `db:"output_tokens"`
}

// EventRepo provides append and query access to learner and LLM events.
type EventRepo interface {
	AppendUserEvent(ctx context.Context, e *model.UserEvent) error
	ListUserEvents(ctx context.Context, userID string, limit int) ([]model.UserEvent, error)

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns nil, nil when no event has the id.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMPurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]LLMModelUsage, error)
}
