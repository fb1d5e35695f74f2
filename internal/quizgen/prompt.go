package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/engreader/internal/model"
)

const systemPrompt = "You are an expert at creating educational reading comprehension quizzes."

const formatExample = `{
  "questions": [
    {
      "questionNumber": 1,
      "questionText": "What is the main idea?",
      "optionA": "First option",
      "optionB": "Second option",
      "optionC": "Third option",
      "optionD": "Fourth option",
      "correctAnswer": "A",
      "explanation": "Brief explanation"
    }
  ]
}`

func buildUserMessage(title string, level model.Level, body string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following story, create exactly %d multiple-choice reading comprehension questions.\n\n", QuestionCount)
	fmt.Fprintf(&b, "Story Title: %s\n", title)
	fmt.Fprintf(&b, "CEFR Level: %s\n\n", level)
	b.WriteString("Story:\n")
	b.WriteString(body)
	b.WriteString("\n\n")

	b.WriteString("Requirements:\n")
	fmt.Fprintf(&b, "1. Create exactly %d questions, numbered 1 to %d\n", QuestionCount, QuestionCount)
	b.WriteString("2. Each question must have 4 options (A, B, C, D)\n")
	b.WriteString("3. Questions should test comprehension, not trivial details\n")
	b.WriteString("4. Include questions about main idea, details, inference, and vocabulary\n")
	b.WriteString("5. Make distractors (wrong answers) plausible but clearly incorrect\n")
	b.WriteString("6. Provide brief explanations for correct answers\n\n")

	b.WriteString("Return your response as JSON in this exact format:\n")
	b.WriteString(formatExample)

	return b.String()
}
