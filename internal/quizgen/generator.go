// Package quizgen asks for comprehension questions about a story and
// parses the structured reply.
package quizgen

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/content"
	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/logger"
	"github.com/abhisek/engreader/internal/model"
)

// Config controls quiz generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the standard quiz generation settings.
func DefaultConfig() Config {
	return Config{MaxTokens: 2000, Temperature: 0.7}
}

// Generator produces quiz questions through a content.Requester.
type Generator struct {
	requester *content.Requester
	cfg       Config
	log       *logger.Logger
}

// New creates a Generator.
func New(r *content.Requester, cfg Config, log *logger.Logger) *Generator {
	if log == nil {
		log = logger.Nop()
	}
	return &Generator{requester: r, cfg: cfg, log: log}
}

// Generate returns the questions for a story. Provider failures are
// returned; a reply that does not fit QuizSchema degrades to an empty
// list, whether the provider or Parse caught it.
func (g *Generator) Generate(ctx context.Context, title string, level model.Level, body string) ([]model.QuizQuestion, error) {
	raw, err := g.requester.Request(ctx, content.Prompt{
		Purpose:     llm.PurposeQuiz,
		System:      systemPrompt,
		User:        buildUserMessage(title, level, body),
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		JSON:        true,
		Schema:      QuizSchema,
	})
	if malformed(err) {
		g.log.Warn("discarding quiz reply rejected by schema", "title", title, "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	questions, err := Parse(raw)
	if err != nil {
		g.log.Warn("discarding unreadable quiz reply", "title", title, "error", err)
		return nil, nil
	}
	return questions, nil
}

type quizOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	QuestionNumber int    `json:"questionNumber"`
	QuestionText   string `json:"questionText"`
	OptionA        string `json:"optionA"`
	OptionB        string `json:"optionB"`
	OptionC        string `json:"optionC"`
	OptionD        string `json:"optionD"`
	CorrectAnswer  string `json:"correctAnswer"`
	Explanation    string `json:"explanation"`
}

// malformed reports whether err is a reply the provider received but
// could not match to the schema. Blank replies stay generation failures.
func malformed(err error) bool {
	var inv *llm.ErrInvalidResponse
	return errors.As(err, &inv) && !errors.Is(err, llm.ErrEmptyContent)
}

// Parse decodes and schema-checks a quiz reply, fenced or not. Failures
// are apperr Parse errors.
func Parse(raw string) ([]model.QuizQuestion, error) {
	const op = "quizgen.Parse"

	var out quizOutput
	if err := llm.DecodeResponse(QuizSchema, raw, &out); err != nil {
		return nil, apperr.E(apperr.Parse, op, "quiz reply does not match schema", err)
	}

	questions := make([]model.QuizQuestion, 0, len(out.Questions))
	for _, q := range out.Questions {
		questions = append(questions, model.QuizQuestion{
			QuestionNumber: q.QuestionNumber,
			QuestionText:   strings.TrimSpace(q.QuestionText),
			OptionA:        strings.TrimSpace(q.OptionA),
			OptionB:        strings.TrimSpace(q.OptionB),
			OptionC:        strings.TrimSpace(q.OptionC),
			OptionD:        strings.TrimSpace(q.OptionD),
			CorrectAnswer:  strings.ToUpper(strings.TrimSpace(q.CorrectAnswer)),
			Explanation:    strings.TrimSpace(q.Explanation),
		})
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].QuestionNumber < questions[j].QuestionNumber
	})
	return questions, nil
}

// Check enforces the quiz shape: exactly QuestionCount questions numbered
// 1..QuestionCount, non-empty text and options, answers A-D.
func Check(questions []model.QuizQuestion) error {
	if len(questions) != QuestionCount {
		return fmt.Errorf("got %d questions, want %d", len(questions), QuestionCount)
	}
	seen := make(map[int]bool, len(questions))
	for _, q := range questions {
		if q.QuestionNumber < 1 || q.QuestionNumber > QuestionCount || seen[q.QuestionNumber] {
			return fmt.Errorf("question number %d out of range or repeated", q.QuestionNumber)
		}
		seen[q.QuestionNumber] = true

		if strings.TrimSpace(q.QuestionText) == "" {
			return fmt.Errorf("question %d has no text", q.QuestionNumber)
		}
		for _, letter := range []string{"A", "B", "C", "D"} {
			if strings.TrimSpace(q.Option(letter)) == "" {
				return fmt.Errorf("question %d option %s is empty", q.QuestionNumber, letter)
			}
		}
		switch q.CorrectAnswer {
		case "A", "B", "C", "D":
		default:
			return fmt.Errorf("question %d has answer %q", q.QuestionNumber, q.CorrectAnswer)
		}
	}
	return nil
}
