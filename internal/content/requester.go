// Package content turns a prompt into raw generated text through an LLM
// provider. It makes exactly one provider call per request.
package content

import (
	"context"
	"strings"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/llm"
)

// Prompt is a single system-plus-user exchange.
type Prompt struct {
	// Purpose labels the recorded request ("story_generation", ...).
	Purpose     string
	System      string
	User        string
	MaxTokens   int
	Temperature float64

	// JSON asks the provider for a JSON object response.
	JSON bool

	// Schema, when set, is sent to the provider for structured output and
	// the reply is validated against it. JSON stays the fallback for
	// providers without native schemas.
	Schema *llm.Schema
}

// Requester sends prompts to a provider.
type Requester struct {
	provider llm.Provider
}

// NewRequester returns a Requester over p.
func NewRequester(p llm.Provider) *Requester {
	return &Requester{provider: p}
}

// Request returns the text of the provider's first choice. Provider
// failures and blank output are Generation errors.
func (r *Requester) Request(ctx context.Context, p Prompt) (string, error) {
	const op = "content.Request"

	if p.Purpose != "" {
		ctx = llm.WithPurpose(ctx, p.Purpose)
	}

	req := llm.Request{
		System:      p.System,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: p.User}},
		MaxTokens:   p.MaxTokens,
		Temperature: p.Temperature,
		JSONObject:  p.JSON,
		Schema:      p.Schema,
	}

	resp, err := r.provider.Generate(ctx, req)
	if err != nil {
		return "", apperr.E(apperr.Generation, op, "provider call failed", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", apperr.E(apperr.Generation, op, "provider returned no content", llm.ErrEmptyContent)
	}
	return text, nil
}
