package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsCredentialKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.Info("configured", "openai_api_key", "sk-123", "password_hash", "abc", "model", "gpt-4o-mini")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["openai_api_key"] != "[REDACTED]" {
		t.Errorf("api key = %v, want redacted", fields["openai_api_key"])
	}
	if fields["password_hash"] != "[REDACTED]" {
		t.Errorf("password_hash = %v, want redacted", fields["password_hash"])
	}
	if fields["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v, want passthrough", fields["model"])
	}
}

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := (&Logger{SugaredLogger: zap.New(core).Sugar()}).With("component", "translate")

	l.Warn("cache write failed", "key", "translation:en:tr:hello")

	fields := logs.All()[0].ContextMap()
	if fields["component"] != "translate" {
		t.Errorf("component = %v", fields["component"])
	}
	if fields["key"] != "translation:en:tr:hello" {
		t.Errorf("key = %v", fields["key"])
	}
}

func TestOddKVPassThrough(t *testing.T) {
	if got := sanitizeKVs([]any{"a", 1, "dangling"}); len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
}

func TestNop(t *testing.T) {
	Nop().Error("ignored", "k", "v")
}
