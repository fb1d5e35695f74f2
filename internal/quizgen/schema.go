package quizgen

import "github.com/abhisek/engreader/internal/llm"

// QuestionCount is the number of questions every quiz carries.
const QuestionCount = 5

// QuizSchema describes the JSON object the quiz prompt asks for.
var QuizSchema = &llm.Schema{
	Name:        "reading-quiz",
	Description: "Five multiple-choice reading comprehension questions about a story",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": QuestionCount,
				"maxItems": QuestionCount,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"questionNumber": map[string]any{
							"type":    "integer",
							"minimum": 1,
							"maximum": QuestionCount,
						},
						"questionText": map[string]any{"type": "string", "minLength": 1},
						"optionA":      map[string]any{"type": "string", "minLength": 1},
						"optionB":      map[string]any{"type": "string", "minLength": 1},
						"optionC":      map[string]any{"type": "string", "minLength": 1},
						"optionD":      map[string]any{"type": "string", "minLength": 1},
						"correctAnswer": map[string]any{
							"type":        "string",
							"pattern":     "^\\s*[A-Da-d]\\s*$",
							"description": "Letter of the correct option",
						},
						"explanation": map[string]any{"type": "string"},
					},
					"required": []any{"questionNumber", "questionText", "optionA", "optionB", "optionC", "optionD", "correctAnswer"},
				},
			},
		},
		"required": []any{"questions"},
	},
}
