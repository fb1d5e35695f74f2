package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/store"
)

// RequestRecorder persists LLM request events. store.EventRepo satisfies it.
type RequestRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider is a decorator that records every LLM request as an event.
type LoggingProvider struct {
	inner    Provider
	name     string
	recorder RequestRecorder
	log      *logger.Logger
}

// WithLogging wraps a Provider with event logging. name is the vendor
// label stored with each event.
func WithLogging(p Provider, name string, rec RequestRecorder, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, name: name, recorder: rec, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.name,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		l.log.Debug("llm request failed", "purpose", purpose, "model", data.Model, "error", err)
	}

	// A recording failure never fails the request. The caller's context
	// may already be done, so the write gets its own.
	if l.recorder != nil {
		recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if logErr := l.recorder.AppendLLMRequest(recCtx, data); logErr != nil {
			l.log.Warn("failed to record LLM request event", "purpose", purpose, "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	switch {
	case req.Schema != nil:
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	case req.JSONObject:
		b.WriteString("[response_format: json_object]\n")
	}

	return b.String()
}
