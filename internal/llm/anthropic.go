package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicModels maps friendly names to Anthropic model IDs.
var anthropicModels = map[string]string{
	"claude-sonnet": "claude-sonnet-4-5-20250929",
	"claude-haiku":  "claude-haiku-4-5-20251001",
}

// jsonOnlyInstruction is appended to the system prompt when a bare JSON
// object is wanted; the Messages API has no json_object mode.
const jsonOnlyInstruction = "Respond with a single JSON object and nothing else."

// AnthropicProvider implements Provider using the Anthropic SDK.
type AnthropicProvider struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))
	return &AnthropicProvider{client: &client, model: resolveModel(cfg.Model, anthropicModels)}, nil
}

func (p *AnthropicProvider) ModelID() string { return p.model }

func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	msg, err := p.client.Messages.New(ctx, p.params(req))
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, classifyStatus(apiErr.StatusCode, retryAfter(apiErr.Response), err)
		}
		return nil, &ErrProviderUnavailable{Err: err}
	}

	text, ok := firstText(msg.Content)
	if !ok {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no text block in Anthropic response")}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &ErrInvalidResponse{Err: ErrEmptyContent}
	}
	content := json.RawMessage(text)
	if req.Schema != nil {
		if err := ValidateResponse(req.Schema, content); err != nil {
			return nil, err
		}
	}

	stop := "end"
	if msg.StopReason == anthropic.StopReasonMaxTokens {
		stop = "max_tokens"
	}
	in, out := int(msg.Usage.InputTokens), int(msg.Usage.OutputTokens)
	return &Response{
		Content:    content,
		Usage:      Usage{InputTokens: in, OutputTokens: out, TotalTokens: in + out},
		Model:      string(msg.Model),
		StopReason: stop,
	}, nil
}

func (p *AnthropicProvider) params(req Request) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: int64(req.MaxTokens),
	}
	for _, m := range req.Messages {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	system := req.System
	if req.JSONObject && req.Schema == nil {
		system = strings.TrimSpace(system + "\n\n" + jsonOnlyInstruction)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}
	if req.Schema != nil {
		// Structured output accepts a subset of JSON Schema; the SDK helper
		// folds unsupported bounds into descriptions. ValidateResponse still
		// checks the full schema afterwards.
		params.OutputConfig = anthropic.OutputConfigParam{
			Format: anthropic.JSONOutputFormatParam{
				Schema: anthropic.BetaJSONSchemaOutputFormat(req.Schema.Definition).Schema,
			},
		}
	}
	return params
}

func firstText(blocks []anthropic.ContentBlockUnion) (string, bool) {
	for _, b := range blocks {
		if b.Type == "text" {
			return b.Text, true
		}
	}
	return "", false
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names pass through so full model IDs work too.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
