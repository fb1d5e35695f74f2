package progress

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/model"
	"github.com/abhisek/engreader/internal/store"
)

func date(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestNextStreak(t *testing.T) {
	now := date(2026, 3, 10, 9)
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name   string
		last   *time.Time
		streak int
		want   int
	}{
		{"first reading", nil, 0, 1},
		{"yesterday extends", ptr(date(2026, 3, 9, 23)), 4, 5},
		{"yesterday early morning still one day", ptr(date(2026, 3, 9, 0)), 1, 2},
		{"three days ago resets", ptr(date(2026, 3, 7, 12)), 9, 1},
		{"same day unchanged", ptr(date(2026, 3, 10, 1)), 3, 3},
		{"future date unchanged", ptr(date(2026, 3, 11, 1)), 3, 3},
		{"gap across month end resets", ptr(date(2026, 2, 28, 20)), 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStreak(tt.last, tt.streak, now); got != tt.want {
				t.Fatalf("NextStreak = %d, want %d", got, tt.want)
			}
		})
	}

	// 28 Feb to 1 Mar is one day in 2026.
	if got := NextStreak(ptr(date(2026, 2, 28, 20)), 2, date(2026, 3, 1, 8)); got != 3 {
		t.Errorf("across month end = %d, want 3", got)
	}
	// Local midnight in another zone still counts by UTC date.
	ist := time.FixedZone("IST", 5*3600+1800)
	last := time.Date(2026, 3, 10, 2, 0, 0, 0, ist) // 9 Mar 20:30 UTC
	if got := NextStreak(&last, 1, now); got != 2 {
		t.Errorf("zone-shifted yesterday = %d, want 2", got)
	}
}

type stubAttempts struct {
	avg float64
	n   int
	err error
}

func (s stubAttempts) AverageScore(context.Context, string) (float64, int, error) {
	return s.avg, s.n, s.err
}

func newService(t *testing.T, attempts AttemptStats) (*Service, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewService(st.Progress(), attempts, st.EventRepo(), nil), st
}

func TestGet_CreatesDefault(t *testing.T) {
	svc, st := newService(t, stubAttempts{})
	ctx := context.Background()

	p, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.CurrentLevel != model.A1 || p.TotalStoriesRead != 0 || p.LastReadingDate != nil {
		t.Errorf("default progress = %+v", p)
	}
	if _, err := st.Progress().Get(ctx, "u1"); err != nil {
		t.Errorf("default record not persisted: %v", err)
	}
}

func TestStoryCompleted(t *testing.T) {
	svc, _ := newService(t, stubAttempts{})
	ctx := context.Background()

	day := date(2026, 5, 1, 10)
	svc.now = func() time.Time { return day }

	p, err := svc.StoryCompleted(ctx, "u1", 130, 3)
	if err != nil {
		t.Fatalf("StoryCompleted: %v", err)
	}
	if p.TotalStoriesRead != 1 || p.CurrentStreakDays != 1 || p.TotalReadingMinutes != 3 || p.TotalWordsLearned != 3 {
		t.Errorf("after first story = %+v", p)
	}

	// Same day: streak unchanged.
	p, _ = svc.StoryCompleted(ctx, "u1", 60, 0)
	if p.TotalStoriesRead != 2 || p.CurrentStreakDays != 1 || p.TotalReadingMinutes != 4 {
		t.Errorf("same day = %+v", p)
	}

	// Next day extends.
	svc.now = func() time.Time { return day.AddDate(0, 0, 1) }
	p, _ = svc.StoryCompleted(ctx, "u1", 0, 0)
	if p.CurrentStreakDays != 2 {
		t.Errorf("next day streak = %d", p.CurrentStreakDays)
	}

	// A gap resets.
	svc.now = func() time.Time { return day.AddDate(0, 0, 5) }
	p, _ = svc.StoryCompleted(ctx, "u1", 0, 0)
	if p.CurrentStreakDays != 1 || p.TotalStoriesRead != 4 {
		t.Errorf("after gap = %+v", p)
	}

	reloaded, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.LastReadingDate == nil || !reloaded.LastReadingDate.Equal(day.AddDate(0, 0, 5)) {
		t.Errorf("last reading date = %v", reloaded.LastReadingDate)
	}
}

func TestQuizSubmitted(t *testing.T) {
	svc, _ := newService(t, stubAttempts{avg: 70, n: 2})
	p, err := svc.QuizSubmitted(context.Background(), "u1")
	if err != nil {
		t.Fatalf("QuizSubmitted: %v", err)
	}
	if p.TotalQuizzesCompleted != 1 || p.AverageQuizScore != 70 {
		t.Errorf("progress = %+v", p)
	}
}

func TestQuizSubmitted_StatsFailure(t *testing.T) {
	svc, _ := newService(t, stubAttempts{err: errors.New("db gone")})
	_, err := svc.QuizSubmitted(context.Background(), "u1")
	if !apperr.IsKind(err, apperr.Internal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestTrackEvent(t *testing.T) {
	svc, st := newService(t, stubAttempts{})
	ctx := context.Background()
	story := "s1"

	for _, typ := range []string{model.EventWordTap, model.EventSentencePress, "Scroll"} {
		if err := svc.TrackEvent(ctx, &model.UserEvent{UserID: "u1", EventType: typ, EventData: `{"text":"hello"}`, StoryID: &story}); err != nil {
			t.Fatalf("TrackEvent(%s): %v", typ, err)
		}
	}

	p, _ := svc.Get(ctx, "u1")
	if p.TotalTranslationsViewed != 2 {
		t.Errorf("translations viewed = %d, want 2", p.TotalTranslationsViewed)
	}

	events, err := st.EventRepo().ListUserEvents(ctx, "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("events = %d, want 3", len(events))
	}

	if err := svc.TrackEvent(ctx, &model.UserEvent{EventType: model.EventWordTap}); !apperr.IsKind(err, apperr.Validation) {
		t.Errorf("missing user should be a validation error, got %v", err)
	}
}
