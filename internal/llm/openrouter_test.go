package llm

import (
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     OpenRouterConfig
		wantErr bool
		model   string
	}{
		{"empty API key", OpenRouterConfig{Model: "openai/gpt-4o-mini"}, true, ""},
		{"default base URL", OpenRouterConfig{APIKey: "sk-or", Model: "openai/gpt-4o-mini"}, false, "openai/gpt-4o-mini"},
		{"custom base URL", OpenRouterConfig{APIKey: "sk-or", Model: "meta-llama/llama-3-8b", BaseURL: "https://or.example/v1"}, false, "meta-llama/llama-3-8b"},
		// Friendly OpenAI names are not mapped for OpenRouter.
		{"no friendly mapping", OpenRouterConfig{APIKey: "sk-or", Model: "gpt-4o"}, false, "gpt-4o"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewOpenRouterProvider(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if p.ModelID() != tt.model {
				t.Errorf("model = %q, want %q", p.ModelID(), tt.model)
			}
		})
	}
}
