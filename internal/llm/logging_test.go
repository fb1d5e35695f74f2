package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/store"
)

type fakeRecorder struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeRecorder) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	rec := &fakeRecorder{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage("Merhaba"),
		Usage:   Usage{InputTokens: 12, OutputTokens: 3},
	})
	p := WithLogging(mock, "openai", rec, logger.Nop())

	ctx := WithPurpose(context.Background(), "translation")
	_, err := p.Generate(ctx, Request{
		System:     "You are a professional translator.",
		Messages:   []Message{{Role: RoleUser, Content: "Translate hello"}},
		JSONObject: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	e := rec.events[0]
	if e.Provider != "openai" || e.Model != "mock" || e.Purpose != "translation" {
		t.Errorf("event = %+v", e)
	}
	if !e.Success || e.InputTokens != 12 || e.OutputTokens != 3 {
		t.Errorf("event = %+v", e)
	}
	if e.ResponseBody != "Merhaba" {
		t.Errorf("response body = %q", e.ResponseBody)
	}
	for _, want := range []string{"[system]", "[user]", "Translate hello", "json_object"} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
}

func TestLoggingProvider_RecordsFailureAndSurvivesRecorderError(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: errors.New("boom")})
	p := WithLogging(mock, "openai", rec, nil)

	_, err := p.Generate(context.Background(), Request{})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("provider error must pass through, got %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Success || rec.events[0].ErrorMessage != "boom" {
		t.Fatalf("events = %+v", rec.events)
	}
}

func TestWrapWithoutRecorder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	mock := NewMockProvider(TextResponse("ok"))
	p := Wrap(mock, cfg, nil, logger.Nop())

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil || resp.Text() != "ok" {
		t.Fatalf("resp = %v, err = %v", resp, err)
	}
	if _, ok := p.(*TimeoutProvider); !ok {
		t.Errorf("outermost decorator = %T, want *TimeoutProvider", p)
	}
}

func TestNewProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "mock"
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err != nil {
		t.Fatalf("mock provider: %v", err)
	}

	cfg.Provider = "openai"
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("openai without key should fail")
	}

	cfg.Provider = "bogus"
	if _, err := NewProvider(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("unknown provider should fail")
	}
}
