package quiz

import (
	"sort"
	"strconv"
	"strings"

	"github.com/abhisek/engreader/internal/model"
)

// AnswerResult is the outcome for one question.
type AnswerResult struct {
	QuestionNumber int
	QuestionText   string
	Submitted      string
	Correct        string
	IsCorrect      bool
	Explanation    string
}

// Result is a scored submission.
type Result struct {
	Score      int
	Total      int
	Percentage float64
	Answers    []AnswerResult
}

// Score grades answers against questions. Answers are keyed by question
// number in decimal; a missing key is an empty answer. Letters compare
// case-insensitively after trimming.
func Score(questions []model.QuizQuestion, answers map[string]string) Result {
	sorted := make([]model.QuizQuestion, len(questions))
	copy(sorted, questions)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].QuestionNumber < sorted[j].QuestionNumber
	})

	res := Result{Total: len(sorted), Answers: make([]AnswerResult, 0, len(sorted))}
	for _, q := range sorted {
		submitted := strings.TrimSpace(answers[strconv.Itoa(q.QuestionNumber)])
		ok := submitted != "" && strings.EqualFold(submitted, strings.TrimSpace(q.CorrectAnswer))
		if ok {
			res.Score++
		}
		res.Answers = append(res.Answers, AnswerResult{
			QuestionNumber: q.QuestionNumber,
			QuestionText:   q.QuestionText,
			Submitted:      submitted,
			Correct:        q.CorrectAnswer,
			IsCorrect:      ok,
			Explanation:    q.Explanation,
		})
	}
	if res.Total > 0 {
		res.Percentage = 100 * float64(res.Score) / float64(res.Total)
	}
	return res
}
