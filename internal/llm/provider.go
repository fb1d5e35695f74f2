package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for text-generation backends.
// Story, quiz and translation requests all go through Generate.
type Provider interface {
	// Generate sends a prompt to the LLM and returns its output.
	// When the request carries a Schema the provider asks for, and
	// validates, JSON conforming to it. Otherwise Content holds the raw
	// text of the first returned choice.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the persona and constraints.
	System string

	// Messages is the conversation history. Every engreader request is
	// single-turn, so this holds exactly one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When set, the provider uses its native structured output mechanism.
	Schema *Schema

	// JSONObject asks for a syntactically valid JSON object without
	// enforcing a schema ("json_object" response format). Ignored when
	// Schema is set.
	JSONObject bool

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema (used as tool name for Anthropic,
	// schema name for OpenAI). Kebab-case, e.g. "reading-quiz".
	Name string

	// Description is a human-readable description of what this schema
	// represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any

	// Strict makes OpenAI enforce the schema exactly. It needs every
	// property listed as required, so schemas with optional fields
	// leave it off and rely on ValidateResponse instead.
	Strict bool
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema was
	// provided, otherwise the raw text of the first choice.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Text returns Content as a plain string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
