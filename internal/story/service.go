// Package story runs the story pipeline: it records the request, asks for
// the text, derives the metrics, and optionally derives a quiz. It also
// covers reading completion and soft deletion.
package story

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/store"
	"github.com/abhisek/engreader/internal/storygen"
)

// Generator produces story text and metrics.
type Generator interface {
	Generate(ctx context.Context, req model.GenerationRequest) (*storygen.Result, error)
}

// QuizGenerator derives a quiz from a generated story.
type QuizGenerator interface {
	GenerateForStory(ctx context.Context, storyID string) (*model.Quiz, error)
}

// ProgressRecorder is told when a learner finishes a story.
type ProgressRecorder interface {
	StoryCompleted(ctx context.Context, userID string, readingSeconds, wordsLearned int) (*model.Progress, error)
}

// Service is the story pipeline.
type Service struct {
	stories  store.StoryRepo
	gen      Generator
	quizzes  QuizGenerator
	progress ProgressRecorder
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates a story Service. quizzes may be nil when automatic
// quizzes are never requested.
func NewService(stories store.StoryRepo, gen Generator, quizzes QuizGenerator, progress ProgressRecorder, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		stories:  stories,
		gen:      gen,
		quizzes:  quizzes,
		progress: progress,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Generated is the outcome of Generate. Quiz is nil unless one was
// requested and produced.
type Generated struct {
	Story *model.Story
	Quiz  *model.Quiz
}

// Generate creates a story for the user. On a generation failure the
// story is stored as failed and a Generation error is returned. With
// autoQuiz a quiz is derived afterwards; a quiz failure is logged and the
// story is still returned.
func (s *Service) Generate(ctx context.Context, userID string, req model.GenerationRequest, autoQuiz bool) (*Generated, error) {
	const op = "story.Generate"

	if err := validateRequest(op, userID, req); err != nil {
		return nil, err
	}

	now := s.now()
	st := &model.Story{
		ID:              uuid.NewString(),
		UserID:          userID,
		Topic:           strings.TrimSpace(req.Topic),
		Level:           req.Level,
		Status:          model.StatusPending,
		TargetWords:     model.StringList(req.TargetWords),
		TargetWordCount: len(req.TargetWords),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.stories.Create(ctx, st); err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	if err := s.advance(ctx, st, model.StatusGenerating); err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	log := s.log.With("story", st.ID, "user", userID)
	log.Info("generating story", "level", req.Level.String(), "topic", st.Topic, "target_words", len(req.TargetWords))

	res, err := s.gen.Generate(ctx, req)
	if err != nil {
		// The caller may have given up; the failure is still recorded.
		switch ferr := s.advance(context.WithoutCancel(ctx), st, model.StatusFailed); {
		case errors.Is(ferr, store.ErrConflict):
			log.Info("story already moved on before failure was recorded")
		case ferr != nil:
			log.Error("could not mark story failed", "error", ferr)
		}
		log.Warn("story generation failed", "error", err)
		if apperr.IsKind(err, apperr.Generation) {
			return nil, err
		}
		return nil, apperr.E(apperr.Generation, op, "story generation failed", err)
	}

	st.Title = res.Title
	st.Content = res.Body
	st.TargetWordsUsed = res.TargetWordsUsed
	st.UsagePercentage = res.UsagePercentage
	st.WordCount = res.WordCount
	st.ReadingMinutes = res.ReadingMinutes
	if err := s.advance(ctx, st, model.StatusGenerated); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// The sweeper gave up on this story while the provider was working.
			log.Warn("discarding story text, story was failed meanwhile")
			return nil, apperr.E(apperr.Generation, op, "story generation took too long and was abandoned", err)
		}
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	log.Info("story generated", "words", st.WordCount, "usage_pct", st.UsagePercentage)

	out := &Generated{Story: st}
	if autoQuiz && s.quizzes != nil {
		q, err := s.quizzes.GenerateForStory(ctx, st.ID)
		if err != nil {
			log.Warn("automatic quiz generation failed", "error", err)
		} else {
			out.Quiz = q
		}
	}
	return out, nil
}

func validateRequest(op, userID string, req model.GenerationRequest) error {
	if userID == "" {
		return apperr.Validationf(op, "user id is required")
	}
	if !req.Level.Valid() {
		return apperr.Validationf(op, "invalid CEFR level")
	}
	if len(req.TargetWords) == 0 {
		return apperr.Validationf(op, "at least one target word is required")
	}
	for i, w := range req.TargetWords {
		if strings.TrimSpace(w) == "" {
			return apperr.Validationf(op, "target word %d is blank", i+1)
		}
	}
	if req.WordCount < 0 {
		return apperr.Validationf(op, "word count cannot be negative")
	}
	return nil
}

// advance applies a lifecycle transition and persists it only if the
// stored status is still the one st was read with.
func (s *Service) advance(ctx context.Context, st *model.Story, to model.StoryStatus) error {
	from := st.Status
	if err := st.Transition(to, s.now()); err != nil {
		return err
	}
	return s.stories.UpdateStatus(ctx, st, from)
}

// Get returns a story that has not been deleted.
func (s *Service) Get(ctx context.Context, id string) (*model.Story, error) {
	const op = "story.Get"

	st, err := s.stories.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && st.IsDeleted) {
		return nil, apperr.NotFoundf(op, "story %s not found", id)
	}
	if err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	return st, nil
}

// List returns the user's stories, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]model.Story, error) {
	list, err := s.stories.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.E(apperr.Internal, "story.List", "", err)
	}
	return list, nil
}

// owned loads a story and checks it belongs to userID.
func (s *Service) owned(ctx context.Context, op, userID, storyID string) (*model.Story, error) {
	st, err := s.Get(ctx, storyID)
	if err != nil {
		return nil, err
	}
	if st.UserID != userID {
		return nil, apperr.NotFoundf(op, "story %s not found", storyID)
	}
	return st, nil
}

// Complete marks a generated story as read and updates the reader's
// progress. Completing an already completed story changes nothing.
func (s *Service) Complete(ctx context.Context, userID, storyID string, readingSeconds int) (*model.Story, error) {
	const op = "story.Complete"

	if readingSeconds < 0 {
		return nil, apperr.Validationf(op, "reading time cannot be negative")
	}
	st, err := s.owned(ctx, op, userID, storyID)
	if err != nil {
		return nil, err
	}
	if st.Status != model.StatusGenerated {
		return nil, apperr.Validationf(op, "story is %s and cannot be completed", st.Status)
	}
	if st.IsCompleted {
		return st, nil
	}

	now := s.now()
	st.IsCompleted = true
	st.CompletedAt = &now
	st.ReadingSeconds = readingSeconds
	st.UpdatedAt = now
	if err := s.stories.Update(ctx, st); err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	if _, err := s.progress.StoryCompleted(ctx, userID, readingSeconds, st.TargetWordsUsed); err != nil {
		s.log.Warn("progress update after story failed", "story", storyID, "user", userID, "error", err)
	}
	return st, nil
}

// Delete soft-deletes the user's story.
func (s *Service) Delete(ctx context.Context, userID, storyID string) error {
	const op = "story.Delete"

	st, err := s.owned(ctx, op, userID, storyID)
	if err != nil {
		return err
	}
	st.IsDeleted = true
	st.UpdatedAt = s.now()
	if err := s.stories.Update(ctx, st); err != nil {
		return apperr.E(apperr.Internal, op, "", err)
	}
	return nil
}

// FailStale moves stories stuck in generating for longer than olderThan
// to failed and returns how many it moved.
func (s *Service) FailStale(ctx context.Context, olderThan time.Duration) (int, error) {
	const op = "story.FailStale"

	stuck, err := s.stories.ListByStatus(ctx, model.StatusGenerating)
	if err != nil {
		return 0, apperr.E(apperr.Internal, op, "", err)
	}

	cutoff := s.now().Add(-olderThan)
	moved := 0
	for i := range stuck {
		st := &stuck[i]
		if !st.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := s.advance(ctx, st, model.StatusFailed); err != nil {
			if errors.Is(err, store.ErrConflict) {
				continue
			}
			return moved, apperr.E(apperr.Internal, op, "", err)
		}
		s.log.Info("failed stale story", "story", st.ID, "stuck_since", st.UpdatedAt)
		moved++
	}
	return moved, nil
}
