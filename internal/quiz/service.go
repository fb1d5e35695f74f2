// Package quiz generates comprehension quizzes for stories, scores
// submissions, and keeps the attempt history.
package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/quizgen"
	"github.com/abhisek/engreader/internal/store"
)

// HistoryLimit is how many attempts History returns.
const HistoryLimit = 20

// QuestionGenerator produces questions for a story.
type QuestionGenerator interface {
	Generate(ctx context.Context, title string, level model.Level, body string) ([]model.QuizQuestion, error)
}

// ProgressUpdater is told about every stored attempt.
type ProgressUpdater interface {
	QuizSubmitted(ctx context.Context, userID string) (*model.Progress, error)
}

// Service manages quizzes and attempts.
type Service struct {
	quizzes  store.QuizRepo
	stories  store.StoryRepo
	gen      QuestionGenerator
	progress ProgressUpdater
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates a quiz Service.
func NewService(quizzes store.QuizRepo, stories store.StoryRepo, gen QuestionGenerator, progress ProgressUpdater, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		quizzes:  quizzes,
		stories:  stories,
		gen:      gen,
		progress: progress,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GenerateForStory returns the story's quiz, generating it when the story
// has none yet. The story must be generated. Nothing is stored unless the
// generated questions form a complete quiz.
func (s *Service) GenerateForStory(ctx context.Context, storyID string) (*model.Quiz, error) {
	const op = "quiz.GenerateForStory"

	story, err := s.stories.Get(ctx, storyID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && story.IsDeleted) {
		return nil, apperr.NotFoundf(op, "story %s not found", storyID)
	}
	if err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}
	if story.Status != model.StatusGenerated {
		return nil, apperr.Validationf(op, "story is %s, quizzes need a generated story", story.Status)
	}

	if existing, err := s.quizzes.GetByStory(ctx, storyID); err == nil {
		return existing, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	questions, err := s.gen.Generate(ctx, story.Title, story.Level, story.Content)
	if err != nil {
		return nil, err
	}
	if err := quizgen.Check(questions); err != nil {
		return nil, apperr.E(apperr.Generation, op, "generated quiz is incomplete", err)
	}

	q := &model.Quiz{
		ID:        uuid.NewString(),
		StoryID:   storyID,
		Title:     "Quiz: " + story.Title,
		CreatedAt: s.now(),
		Questions: questions,
	}
	for i := range q.Questions {
		q.Questions[i].ID = uuid.NewString()
		q.Questions[i].QuizID = q.ID
	}

	if err := s.quizzes.Create(ctx, q); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// A concurrent call stored one first.
			return s.GetForStory(ctx, storyID)
		}
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	s.log.Info("quiz generated", "story", storyID, "quiz", q.ID)
	return q, nil
}

// Get returns a quiz with its questions.
func (s *Service) Get(ctx context.Context, quizID string) (*model.Quiz, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	return q, lookupErr("quiz.Get", "quiz", quizID, err)
}

// GetForStory returns the quiz generated for a story.
func (s *Service) GetForStory(ctx context.Context, storyID string) (*model.Quiz, error) {
	q, err := s.quizzes.GetByStory(ctx, storyID)
	return q, lookupErr("quiz.GetForStory", "quiz for story", storyID, err)
}

// Submission is a stored, scored attempt.
type Submission struct {
	Attempt model.QuizAttempt
	Result  Result
}

// SubmitRequest carries a learner's answers.
type SubmitRequest struct {
	UserID           string
	QuizID           string
	Answers          map[string]string
	TimeSpentSeconds int
}

// Submit scores the answers, stores the attempt, and updates the user's
// progress. A progress failure is logged; the attempt stays stored.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*Submission, error) {
	const op = "quiz.Submit"

	if req.UserID == "" {
		return nil, apperr.Validationf(op, "user id is required")
	}
	if req.TimeSpentSeconds < 0 {
		return nil, apperr.Validationf(op, "time spent cannot be negative")
	}

	q, err := s.Get(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}

	res := Score(q.Questions, req.Answers)

	attempt := model.QuizAttempt{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		QuizID:           q.ID,
		Answers:          model.AnswerMap(req.Answers),
		Score:            res.Score,
		TotalQuestions:   res.Total,
		Percentage:       res.Percentage,
		TimeSpentSeconds: req.TimeSpentSeconds,
		CompletedAt:      s.now(),
	}
	if err := s.quizzes.CreateAttempt(ctx, &attempt); err != nil {
		return nil, apperr.E(apperr.Internal, op, "", err)
	}

	if _, err := s.progress.QuizSubmitted(ctx, req.UserID); err != nil {
		s.log.Warn("progress update after quiz failed", "user", req.UserID, "quiz", q.ID, "error", err)
	}

	return &Submission{Attempt: attempt, Result: res}, nil
}

// History returns the user's most recent attempts, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]model.QuizAttempt, error) {
	attempts, err := s.quizzes.ListAttempts(ctx, userID, HistoryLimit)
	if err != nil {
		return nil, apperr.E(apperr.Internal, "quiz.History", "", err)
	}
	return attempts, nil
}

func lookupErr(op, what, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFoundf(op, "%s %s not found", what, id)
	default:
		return apperr.E(apperr.Internal, op, "", err)
	}
}
