// Package translate resolves word and sentence translations through a
// fast expiring cache, then the translation store, then the provider.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/cache"
	"github.com/abhisek/engreader/internal/content"
	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/store"
)

const systemPrompt = "You are a professional translator. Provide accurate, natural translations."

// Config controls caching and generation.
type Config struct {
	TTL time.Duration

	// Dedup collapses concurrent identical misses into one provider call.
	Dedup bool

	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		TTL:         time.Hour,
		Dedup:       true,
		MaxTokens:   200,
		Temperature: 0.3,
	}
}

// EventTracker records learner events.
type EventTracker interface {
	TrackEvent(ctx context.Context, e *model.UserEvent) error
}

// Request is a translation lookup. UserID and StoryID are optional.
type Request struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
	IsWord         bool
	StoryID        string
	UserID         string
}

// Origin says which layer answered a lookup.
type Origin string

const (
	FromCache    Origin = "cache"
	FromStore    Origin = "store"
	FromProvider Origin = "provider"
)

// Result is a resolved translation.
type Result struct {
	ID             string `json:"id"`
	SourceText     string `json:"sourceText"`
	TranslatedText string `json:"translatedText"`
	IsWord         bool   `json:"isWord"`
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`

	Origin Origin `json:"-"`
}

// Service is the cache-aside translation service.
type Service struct {
	cache     cache.Cache
	repo      store.TranslationRepo
	requester *content.Requester
	events    EventTracker
	cfg       Config
	log       *logger.Logger

	group singleflight.Group
	now   func() time.Time
}

// NewService creates a translation Service. events may be nil.
func NewService(c cache.Cache, repo store.TranslationRepo, r *content.Requester, events EventTracker, cfg Config, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		cache:     c,
		repo:      repo,
		requester: r,
		events:    events,
		cfg:       cfg,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Key is the cache key for a lookup.
func Key(src, tgt, text string) string {
	return fmt.Sprintf("translation:%s:%s:%s", src, tgt, normalize(text))
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// Translate resolves req. A provider failure fails the lookup; cache and
// usage-counter failures are only logged.
func (s *Service) Translate(ctx context.Context, req Request) (*Result, error) {
	const op = "translate.Translate"

	req.Text = strings.TrimSpace(req.Text)
	req.SourceLanguage = strings.ToLower(strings.TrimSpace(req.SourceLanguage))
	req.TargetLanguage = strings.ToLower(strings.TrimSpace(req.TargetLanguage))
	if req.Text == "" {
		return nil, apperr.Validationf(op, "text to translate is empty")
	}
	if req.SourceLanguage == "" || req.TargetLanguage == "" {
		return nil, apperr.Validationf(op, "source and target languages are required")
	}

	res, err := s.resolve(ctx, op, req)
	if err != nil {
		return nil, err
	}
	s.track(ctx, req)
	return res, nil
}

func (s *Service) resolve(ctx context.Context, op string, req Request) (*Result, error) {
	key := Key(req.SourceLanguage, req.TargetLanguage, req.Text)

	if res, ok := s.fromCache(ctx, key); ok {
		s.incrementUsage(ctx, res.ID)
		return res, nil
	}

	t, err := s.repo.Find(ctx, normalize(req.Text), req.SourceLanguage, req.TargetLanguage)
	switch {
	case err == nil:
		res := resultFrom(t, FromStore)
		s.fillCache(ctx, key, res)
		s.incrementUsage(ctx, res.ID)
		return res, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	if !s.cfg.Dedup {
		return s.generate(ctx, op, key, req)
	}
	return s.shared(ctx, op, key, req)
}

// shared runs one provider call per key for every concurrent caller. The
// call outlives any single caller's cancellation; the provider timeout
// still bounds it. Callers that receive another caller's result count as
// a usage of the stored row.
func (s *Service) shared(ctx context.Context, op, key string, req Request) (*Result, error) {
	leader := false
	ch := s.group.DoChan(key, func() (any, error) {
		leader = true
		return s.generate(context.WithoutCancel(ctx), op, key, req)
	})

	select {
	case <-ctx.Done():
		return nil, apperr.E(apperr.Generation, op, "translation was cancelled", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		res := *r.Val.(*Result)
		if !leader {
			s.incrementUsage(ctx, res.ID)
		}
		return &res, nil
	}
}

// generate asks the provider, stores the row with usage 1, and fills the
// cache. If another process stored the key first its row is used.
func (s *Service) generate(ctx context.Context, op, key string, req Request) (*Result, error) {
	text, err := s.requester.Request(ctx, content.Prompt{
		Purpose:     llm.PurposeTranslation,
		System:      systemPrompt,
		User:        buildUserMessage(req),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	t := &model.Translation{
		ID:             uuid.NewString(),
		SourceText:     req.Text,
		NormalizedText: normalize(req.Text),
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		TranslatedText: strings.TrimSpace(text),
		IsWord:         req.IsWord,
		UsageCount:     1,
		CreatedAt:      s.now(),
	}
	if req.StoryID != "" {
		storyID := req.StoryID
		t.StoryID = &storyID
	}

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	if !created {
		s.incrementUsage(ctx, t.ID)
	}

	res := resultFrom(t, FromProvider)
	s.fillCache(ctx, key, res)
	return res, nil
}

func buildUserMessage(req Request) string {
	return fmt.Sprintf("Translate the following %s text to %s. Only provide the translation, no explanations:\n\n%s",
		LanguageName(req.SourceLanguage), LanguageName(req.TargetLanguage), req.Text)
}

func (s *Service) fromCache(ctx context.Context, key string) (*Result, bool) {
	b, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("translation cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var res Result
	if err := json.Unmarshal(b, &res); err != nil {
		s.log.Warn("dropping unreadable cache entry", "key", key, "error", err)
		return nil, false
	}
	res.Origin = FromCache
	return &res, true
}

func (s *Service) fillCache(ctx context.Context, key string, res *Result) {
	b, err := json.Marshal(res)
	if err != nil {
		s.log.Warn("encode cache entry", "key", key, "error", err)
		return
	}
	if err := s.cache.Set(ctx, key, b, s.cfg.TTL); err != nil {
		s.log.Warn("translation cache write failed", "key", key, "error", err)
	}
}

func (s *Service) incrementUsage(ctx context.Context, id string) {
	if err := s.repo.IncrementUsage(ctx, id); err != nil {
		s.log.Warn("translation usage increment failed", "id", id, "error", err)
	}
}

// track records a WordTap or SentencePress for signed-in lookups.
func (s *Service) track(ctx context.Context, req Request) {
	if s.events == nil || req.UserID == "" {
		return
	}
	typ := model.EventSentencePress
	if req.IsWord {
		typ = model.EventWordTap
	}
	data, _ := json.Marshal(map[string]string{
		"text":           req.Text,
		"sourceLanguage": req.SourceLanguage,
		"targetLanguage": req.TargetLanguage,
	})
	e := &model.UserEvent{UserID: req.UserID, EventType: typ, EventData: string(data)}
	if req.StoryID != "" {
		storyID := req.StoryID
		e.StoryID = &storyID
	}
	if err := s.events.TrackEvent(ctx, e); err != nil {
		s.log.Warn("tracking translation view failed", "user", req.UserID, "error", err)
	}
}

// ListForStory returns the story's translations, most used first.
func (s *Service) ListForStory(ctx context.Context, storyID string) ([]model.Translation, error) {
	list, err := s.repo.ListByStory(ctx, storyID)
	if err != nil {
		return nil, apperr.E(apperr.Internal, "translate.ListForStory", "", err)
	}
	return list, nil
}

func resultFrom(t *model.Translation, origin Origin) *Result {
	return &Result{
		ID:             t.ID,
		SourceText:     t.SourceText,
		TranslatedText: t.TranslatedText,
		IsWord:         t.IsWord,
		SourceLanguage: t.SourceLanguage,
		TargetLanguage: t.TargetLanguage,
		Origin:         origin,
	}
}
