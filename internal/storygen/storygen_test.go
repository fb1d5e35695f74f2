package storygen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/engreader/internal/apperr"
	"github.com/abhisek/engreader/internal/content"
	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/model"
)

func TestExtractTitle(t *testing.T) {
	long := strings.Repeat("a", 60)
	tests := []struct {
		name      string
		raw       string
		wantTitle string
		wantBody  string
	}{
		{"marker", "TITLE: X\n\nBody text", "X", "Body text"},
		{"lower case marker", "title:   The Lost Key  \nIt was gone.", "The Lost Key", "It was gone."},
		{"crlf", "Title: Rain\r\n\r\nIt rained.\r\nAgain.", "Rain", "It rained.\nAgain."},
		{"no marker", "Once upon a time\nthere was a cat.", "Once upon a time", "Once upon a time\nthere was a cat."},
		{"no marker long line", long + "\nrest", strings.Repeat("a", 50) + "...", long + "\nrest"},
		{"exactly fifty", strings.Repeat("b", 50), strings.Repeat("b", 50), strings.Repeat("b", 50)},
		{"marker only", "TITLE: Alone", "Alone", ""},
		{"empty", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := ExtractTitle(tt.raw)
			if title != tt.wantTitle {
				t.Errorf("title = %q, want %q", title, tt.wantTitle)
			}
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
		})
	}
}

func TestValidateTargetWords(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		words     []string
		wantCount int
		wantPct   float64
	}{
		{"empty list", "anything", nil, 0, 0},
		{"all present any case", "The AIRPORT was busy.", []string{"airport", "Busy"}, 2, 100},
		{"none present", "Hello.", []string{"luggage", "passport"}, 0, 0},
		{"substring counts", "She was running.", []string{"run"}, 1, 100},
		{"duplicates counted per entry", "A cat.", []string{"cat", "cat", "dog", "bird"}, 2, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, pct := ValidateTargetWords(tt.body, tt.words)
			if count != tt.wantCount || pct != tt.wantPct {
				t.Fatalf("got (%d, %v), want (%d, %v)", count, pct, tt.wantCount, tt.wantPct)
			}
			if count < 0 || count > len(tt.words) || pct < 0 || pct > 100 {
				t.Fatalf("out of range: (%d, %v)", count, pct)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   \n\t\r ", 0},
		{"one", 1},
		{"one two  three", 3},
		{"line one\nline\ttwo\r\nend", 5},
		{strings.TrimSpace(strings.Repeat("w ", 42)), 42},
	}
	for _, tt := range tests {
		if got := CountWords(tt.text); got != tt.want {
			t.Errorf("CountWords(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestReadingMinutes(t *testing.T) {
	for words, want := range map[int]int{0: 0, 1: 1, 199: 1, 200: 1, 201: 2, 400: 2, 401: 3} {
		if got := ReadingMinutes(words); got != want {
			t.Errorf("ReadingMinutes(%d) = %d, want %d", words, got, want)
		}
	}
}

func TestBuildUserMessage(t *testing.T) {
	req := model.GenerationRequest{
		Level:       model.B1,
		Topic:       "travel",
		TargetWords: []string{"airport", "passport", "luggage", "ticket"},
		WordCount:   150,
	}
	msg := buildUserMessage(req, nil)

	for _, want := range []string{
		"intermediate (B1) - clear standard language",
		"Topic: travel",
		"approximately 150 words",
		"at least 70%",
		"airport, passport, luggage, ticket",
		"Include at least 2 of the target words",
		"TITLE:",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(msg, "Reference material") {
		t.Error("no passages, no reference section")
	}

	withPassages := buildUserMessage(req, []string{"Airports are busy in summer."})
	if !strings.Contains(withPassages, "Reference material") || !strings.Contains(withPassages, "1. Airports are busy in summer.") {
		t.Errorf("passages not rendered:\n%s", withPassages)
	}
}

func TestBuildUserMessage_DefaultWordCount(t *testing.T) {
	msg := buildUserMessage(model.GenerationRequest{Level: model.A1, Topic: "food", TargetWords: []string{"apple"}}, nil)
	if !strings.Contains(msg, "approximately 300 words") {
		t.Errorf("default word count missing:\n%s", msg)
	}
}

type fixedRetriever struct {
	passages []string
	err      error
}

func (f fixedRetriever) Retrieve(context.Context, string, model.Level, int) ([]string, error) {
	return f.passages, f.err
}

func TestGenerator_EndToEnd(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("TITLE: Trip\n\nAt the airport, she showed her passport and found her luggage."))
	g := New(content.NewRequester(mock), nil, DefaultConfig(), nil)

	res, err := g.Generate(context.Background(), model.GenerationRequest{
		Level:       model.B1,
		Topic:       "travel",
		TargetWords: []string{"airport", "passport", "luggage"},
		WordCount:   150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Title != "Trip" {
		t.Errorf("title = %q", res.Title)
	}
	if res.TargetWordsUsed != 3 || res.UsagePercentage != 100 {
		t.Errorf("usage = %d / %v", res.TargetWordsUsed, res.UsagePercentage)
	}
	if res.WordCount != 12 || res.ReadingMinutes != 1 {
		t.Errorf("words = %d, minutes = %d", res.WordCount, res.ReadingMinutes)
	}

	req := mock.LastCall()
	if req.System != systemPrompt || req.MaxTokens != 2000 || req.Temperature != 0.7 {
		t.Errorf("request = %+v", req)
	}
}

func TestGenerator_RetrieverPassagesAndFailure(t *testing.T) {
	mock := llm.NewMockProvider(llm.TextResponse("TITLE: A\n\nb"), llm.TextResponse("TITLE: A\n\nb"))
	req := model.GenerationRequest{Level: model.A2, Topic: "x", TargetWords: []string{"b"}}

	g := New(content.NewRequester(mock), fixedRetriever{passages: []string{"Passage one."}}, DefaultConfig(), nil)
	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(mock.LastCall().Messages[0].Content, "Passage one.") {
		t.Error("passage not in prompt")
	}

	g = New(content.NewRequester(mock), fixedRetriever{err: errors.New("index offline")}, DefaultConfig(), nil)
	if _, err := g.Generate(context.Background(), req); err != nil {
		t.Fatalf("retrieval failure must not fail generation: %v", err)
	}
}

func TestGenerator_ProviderFailure(t *testing.T) {
	g := New(content.NewRequester(llm.NewMockProvider(llm.MockResponse{Err: errors.New("down")})), nil, DefaultConfig(), nil)
	_, err := g.Generate(context.Background(), model.GenerationRequest{Level: model.C1, Topic: "t", TargetWords: []string{"w"}})
	if !apperr.IsKind(err, apperr.Generation) {
		t.Fatalf("expected generation error, got %v", err)
	}
}

func TestAnalyze_UntitledCountsWholeText(t *testing.T) {
	res := Analyze("just four words here", []string{"four"})
	if res.Title != "just four words here" || res.WordCount != 4 || res.TargetWordsUsed != 1 {
		t.Errorf("result = %+v", res)
	}
}
