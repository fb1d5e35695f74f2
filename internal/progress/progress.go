// Package progress maintains the per-user learning aggregate. Every
// update reads the single record, changes it, and writes it back; the
// last writer wins.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/store"
)

// AttemptStats reports a user's quiz attempt average.
type AttemptStats interface {
	AverageScore(ctx context.Context, userID string) (float64, int, error)
}

// EventAppender appends learner events.
type EventAppender interface {
	AppendUserEvent(ctx context.Context, e *model.UserEvent) error
}

// Service is the progress aggregator.
type Service struct {
	repo     store.ProgressRepo
	attempts AttemptStats
	events   EventAppender
	log      *logger.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewService creates a progress Service.
func NewService(repo store.ProgressRepo, attempts AttemptStats, events EventAppender, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		attempts: attempts,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the user's record, creating a default one at level A1.
func (s *Service) Get(ctx context.Context, userID string) (*model.Progress, error) {
	const op = "progress.Get"

	p, err := s.repo.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	p = &model.Progress{
		UserID:       userID,
		CurrentLevel: model.A1,
		UpdatedAt:    s.now(),
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	return p, nil
}

// StoryCompleted counts a finished story, extends or resets the streak,
// and adds reading time and learned words.
func (s *Service) StoryCompleted(ctx context.Context, userID string, readingSeconds, wordsLearned int) (*model.Progress, error) {
	return s.update(ctx, "progress.StoryCompleted", userID, func(p *model.Progress, now time.Time) error {
		p.TotalStoriesRead++
		p.CurrentStreakDays = NextStreak(p.LastReadingDate, p.CurrentStreakDays, now)
		p.LastReadingDate = &now
		if readingSeconds > 0 {
			p.TotalReadingMinutes += (readingSeconds + 59) / 60
		}
		if wordsLearned > 0 {
			p.TotalWordsLearned += wordsLearned
		}
		return nil
	})
}

// QuizSubmitted counts a submitted quiz and recomputes the average score
// over all of the user's attempts.
func (s *Service) QuizSubmitted(ctx context.Context, userID string) (*model.Progress, error) {
	return s.update(ctx, "progress.QuizSubmitted", userID, func(p *model.Progress, _ time.Time) error {
		avg, _, err := s.attempts.AverageScore(ctx, userID)
		if err != nil {
			return err
		}
		p.TotalQuizzesCompleted++
		p.AverageQuizScore = avg
		return nil
	})
}

// TrackEvent appends e. Word taps and sentence presses also count as
// viewed translations.
func (s *Service) TrackEvent(ctx context.Context, e *model.UserEvent) error {
	const op = "progress.TrackEvent"

	if e.UserID == "" || e.EventType == "" {
		return apperr.Validationf(op, "event needs a user and a type")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	if err := s.events.AppendUserEvent(ctx, e); err != nil {
		return apperr.E(apperr.Internal, op, "", err)
	}

	switch e.EventType {
	case model.EventWordTap, model.EventSentencePress:
		_, err := s.update(ctx, op, e.UserID, func(p *model.Progress, _ time.Time) error {
			p.TotalTranslationsViewed++
			return nil
		})
		return err
	}
	return nil
}

func (s *Service) update(ctx context.Context, op, userID string, fn func(*model.Progress, time.Time) error) (*model.Progress, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := fn(p, now); err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	p.UpdatedAt = now
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	s.log.Debug("progress updated", "op", op, "user", userID)
	return p, nil
}
