package story

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/content"
	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/progress"
	"github.com/abhisek/engreader/internal/quiz"
	"github.com/abhisek/engreader/internal/quizgen"
	"github.com/abhisek/engreader/internal/store"
	"github.com/abhisek/engreader/internal/storygen"
)

const tripStory = "TITLE: Trip\n\nAt the airport, she showed her passport and found her luggage."

func quizReply() llm.MockResponse {
	qs := make([]string, 5)
	for i := range qs {
		qs[i] = fmt.Sprintf(`{"questionNumber":%d,"questionText":"Q%d?","optionA":"a","optionB":"b","optionC":"c","optionD":"d","correctAnswer":"A"}`, i+1, i+1)
	}
	return llm.TextResponse(`{"questions":[` + strings.Join(qs, ",") + `]}`)
}

type fixture struct {
	svc   *Service
	mock  *llm.MockProvider
	store *store.Store
}

func newFixture(t *testing.T, responses ...llm.MockResponse) *fixture {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "story.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider(responses...)
	req := content.NewRequester(mock)
	prog := progress.NewService(st.Progress(), st.Quizzes(), st.EventRepo(), nil)
	quizzes := quiz.NewService(st.Quizzes(), st.Stories(), quizgen.New(req, quizgen.DefaultConfig(), nil), prog, nil)
	svc := NewService(st.Stories(), storygen.New(req, nil, storygen.DefaultConfig(), nil), quizzes, prog, nil)
	return &fixture{svc: svc, mock: mock, store: st}
}

func travelRequest() model.GenerationRequest {
	return model.GenerationRequest{
		Level:       model.B1,
		Topic:       "travel",
		TargetWords: []string{"airport", "passport", "luggage"},
		WordCount:   150,
	}
}

func TestGenerate_EndToEnd(t *testing.T) {
	f := newFixture(t, llm.TextResponse(tripStory))
	ctx := context.Background()

	out, err := f.svc.Generate(ctx, "u1", travelRequest(), false)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	s := out.Story
	if s.Title != "Trip" || s.TargetWordsUsed != 3 || s.UsagePercentage != 100 || s.WordCount != 12 || s.ReadingMinutes != 1 {
		t.Errorf("story = %+v", s)
	}
	if s.Status != model.StatusGenerated || s.TargetWordCount != 3 {
		t.Errorf("status = %s, target count = %d", s.Status, s.TargetWordCount)
	}
	if out.Quiz != nil {
		t.Error("no quiz requested")
	}

	stored, err := f.svc.Get(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != model.StatusGenerated || stored.Content != "At the airport, she showed her passport and found her luggage." {
		t.Errorf("stored = %+v", stored)
	}
	if len(stored.TargetWords) != 3 || stored.Level != model.B1 {
		t.Errorf("stored request fields = %v / %v", stored.TargetWords, stored.Level)
	}
}

func TestGenerate_AutoQuiz(t *testing.T) {
	f := newFixture(t, llm.TextResponse(tripStory), quizReply())

	out, err := f.svc.Generate(context.Background(), "u1", travelRequest(), true)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.Quiz == nil || len(out.Quiz.Questions) != 5 || out.Quiz.Title != "Quiz: Trip" {
		t.Fatalf("quiz = %+v", out.Quiz)
	}
}

func TestGenerate_AutoQuizFailureSwallowed(t *testing.T) {
	f := newFixture(t, llm.TextResponse(tripStory), llm.MockResponse{Err: errors.New("quota")})

	out, err := f.svc.Generate(context.Background(), "u1", travelRequest(), true)
	if err != nil {
		t.Fatalf("quiz failure must not fail the story: %v", err)
	}
	if out.Quiz != nil || out.Story.Status != model.StatusGenerated {
		t.Errorf("out = %+v", out)
	}
}

func TestGenerate_ProviderFailureMarksFailed(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Err: errors.New("503")})
	ctx := context.Background()

	_, err := f.svc.Generate(ctx, "u1", travelRequest(), false)
	if !apperr.IsKind(err, apperr.Generation) {
		t.Fatalf("expected generation error, got %v", err)
	}

	list, err := f.svc.List(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Status != model.StatusFailed {
		t.Fatalf("stories = %+v", list)
	}
}

func TestGenerate_CancelledContextStillRecordsFailure(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Content: []byte("late"), Delay: time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := f.svc.Generate(ctx, "u1", travelRequest(), false)
	if !apperr.IsKind(err, apperr.Generation) {
		t.Fatalf("expected generation error, got %v", err)
	}
	list, _ := f.svc.List(context.Background(), "u1")
	if len(list) != 1 || list[0].Status != model.StatusFailed {
		t.Fatalf("stories = %+v", list)
	}
}

func TestGenerate_SweptStoryStaysFailed(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Content: []byte(tripStory), Delay: 300 * time.Millisecond})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Generate(ctx, "u1", travelRequest(), false)
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		stuck, err := f.store.Stories().ListByStatus(ctx, model.StatusGenerating)
		if err != nil {
			t.Fatal(err)
		}
		if len(stuck) == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("story never reached generating")
		}
		time.Sleep(5 * time.Millisecond)
	}

	n, err := f.svc.FailStale(ctx, 0)
	if err != nil || n != 1 {
		t.Fatalf("FailStale = %d, %v", n, err)
	}

	if err := <-done; !apperr.IsKind(err, apperr.Generation) {
		t.Fatalf("expected generation error, got %v", err)
	}
	list, _ := f.svc.List(ctx, "u1")
	if len(list) != 1 || list[0].Status != model.StatusFailed || list[0].Title != "" {
		t.Fatalf("stories = %+v", list)
	}
}

func TestGenerate_Validation(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name   string
		user   string
		mutate func(*model.GenerationRequest)
	}{
		{"no user", "", func(*model.GenerationRequest) {}},
		{"bad level", "u1", func(r *model.GenerationRequest) { r.Level = model.Level(0) }},
		{"no target words", "u1", func(r *model.GenerationRequest) { r.TargetWords = nil }},
		{"blank target word", "u1", func(r *model.GenerationRequest) { r.TargetWords = []string{"airport", " "} }},
		{"negative word count", "u1", func(r *model.GenerationRequest) { r.WordCount = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := travelRequest()
			tt.mutate(&req)
			_, err := f.svc.Generate(context.Background(), tt.user, req, false)
			if !apperr.IsKind(err, apperr.Validation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if f.mock.CallCount() != 0 {
		t.Error("invalid requests must not reach the provider")
	}
}

func TestCompleteAndDelete(t *testing.T) {
	f := newFixture(t, llm.TextResponse(tripStory))
	ctx := context.Background()
	out, err := f.svc.Generate(ctx, "u1", travelRequest(), false)
	if err != nil {
		t.Fatal(err)
	}
	id := out.Story.ID

	if _, err := f.svc.Complete(ctx, "someone-else", id, 60); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("other user's story should be not found, got %v", err)
	}

	done, err := f.svc.Complete(ctx, "u1", id, 150)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !done.IsCompleted || done.CompletedAt == nil || done.ReadingSeconds != 150 {
		t.Errorf("completed story = %+v", done)
	}

	// Completing twice counts once.
	if _, err := f.svc.Complete(ctx, "u1", id, 150); err != nil {
		t.Fatal(err)
	}
	p, err := f.store.Progress().Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalStoriesRead != 1 || p.TotalReadingMinutes != 3 || p.TotalWordsLearned != 3 || p.CurrentStreakDays != 1 {
		t.Errorf("progress = %+v", p)
	}

	if err := f.svc.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.svc.Get(ctx, id); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("deleted story should be hidden, got %v", err)
	}
	list, _ := f.svc.List(ctx, "u1")
	if len(list) != 0 {
		t.Errorf("deleted story still listed: %+v", list)
	}
}

func TestComplete_RequiresGeneratedStory(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Err: errors.New("503")})
	ctx := context.Background()
	_, _ = f.svc.Generate(ctx, "u1", travelRequest(), false)
	list, _ := f.svc.List(ctx, "u1")

	if _, err := f.svc.Complete(ctx, "u1", list[0].ID, 10); !apperr.IsKind(err, apperr.Validation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFailStale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	add := func(id string, status model.StoryStatus, updated time.Time) {
		t.Helper()
		s := &model.Story{ID: id, UserID: "u1", Level: model.A2, Status: status, CreatedAt: updated, UpdatedAt: updated}
		if err := f.store.Stories().Create(ctx, s); err != nil {
			t.Fatal(err)
		}
	}
	add("old", model.StatusGenerating, now.Add(-30*time.Minute))
	add("fresh", model.StatusGenerating, now.Add(-time.Minute))
	add("done", model.StatusGenerated, now.Add(-time.Hour))

	n, err := f.svc.FailStale(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("FailStale: %v", err)
	}
	if n != 1 {
		t.Fatalf("moved = %d, want 1", n)
	}

	for id, want := range map[string]model.StoryStatus{"old": model.StatusFailed, "fresh": model.StatusGenerating, "done": model.StatusGenerated} {
		s, err := f.store.Stories().Get(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if s.Status != want {
			t.Errorf("%s status = %s, want %s", id, s.Status, want)
		}
	}
}
