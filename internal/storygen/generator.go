// Package storygen builds story prompts, requests the text, and derives
// the story's title and reading metrics from it.
package storygen

import (
	"context"

	"github.com/abhisek/engreader/internal/content"
	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/model"
)

// Result is a generated story and its derived metrics.
type Result struct {
	Title           string
	Body            string
	TargetWordsUsed int
	UsagePercentage float64
	WordCount       int
	ReadingMinutes  int
}

// Generator produces stories through a content.Requester.
type Generator struct {
	requester *content.Requester
	retriever Retriever
	cfg       Config
	log       *logger.Logger
}

// New creates a Generator. A nil retriever means no reference passages.
func New(r *content.Requester, retriever Retriever, cfg Config, log *logger.Logger) *Generator {
	if retriever == nil {
		retriever = NoopRetriever{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{requester: r, retriever: retriever, cfg: cfg, log: log}
}

// Generate requests a story for req and analyses the returned text.
// Errors are apperr Generation errors from the requester.
func (g *Generator) Generate(ctx context.Context, req model.GenerationRequest) (*Result, error) {
	passages, err := g.retriever.Retrieve(ctx, req.Topic, req.Level, g.cfg.TopK)
	if err != nil {
		g.log.Warn("passage retrieval failed", "topic", req.Topic, "error", err)
		passages = nil
	}

	raw, err := g.requester.Request(ctx, content.Prompt{
		Purpose:     llm.PurposeStory,
		System:      systemPrompt,
		User:        buildUserMessage(req, passages),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	})
	if err != nil {
		return nil, err
	}

	return Analyze(raw, req.TargetWords), nil
}

// Analyze extracts the title and body from raw and computes target-word
// usage and reading metrics. The word count covers what the learner
// reads: the title line and the body.
func Analyze(raw string, targetWords []string) *Result {
	title, body, marked := extract(raw)

	used, pct := ValidateTargetWords(body, targetWords)

	words := CountWords(body)
	if marked {
		words += CountWords(title)
	}

	return &Result{
		Title:           title,
		Body:            body,
		TargetWordsUsed: used,
		UsagePercentage: pct,
		WordCount:       words,
		ReadingMinutes:  ReadingMinutes(words),
	}
}
