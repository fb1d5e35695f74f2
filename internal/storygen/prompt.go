package storygen

import (
	"fmt"
	"strings"

	"github.com/abhisek/engreader/internal/model"
)

const systemPrompt = "You are an expert English teacher creating educational reading materials."

// MinUsageRatio is the share of target words the story is asked to use.
const MinUsageRatio = 0.7

// buildUserMessage renders the story request and any reference passages.
func buildUserMessage(req model.GenerationRequest, passages []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create an engaging short story for English learners at %s level.\n\n", req.Level.Descriptor())
	fmt.Fprintf(&b, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&b, "Target word count: approximately %d words\n\n", req.DesiredWords())

	b.WriteString("CRITICAL REQUIREMENT: You MUST use at least 70% of these target words in your story:\n")
	b.WriteString(strings.Join(req.TargetWords, ", "))
	b.WriteString("\n\n")

	b.WriteString("Guidelines:\n")
	b.WriteString("1. Make the story interesting and educational\n")
	b.WriteString("2. Use natural, contextual sentences\n")
	fmt.Fprintf(&b, "3. Include at least %d of the target words naturally\n", int(float64(len(req.TargetWords))*MinUsageRatio))
	b.WriteString("4. Create a complete story with beginning, middle, and end\n")
	fmt.Fprintf(&b, "5. Use appropriate grammar and vocabulary for %s level\n", req.Level)
	b.WriteString("6. Make it relevant to the topic\n")

	if len(passages) > 0 {
		b.WriteString("\nReference material (use for facts and tone, do not copy):\n")
		for i, p := range passages {
			fmt.Fprintf(&b, "%d. %s\n", i+1, strings.TrimSpace(p))
		}
	}

	b.WriteString("\nFORMAT YOUR RESPONSE EXACTLY LIKE THIS:\n")
	b.WriteString("TITLE: [Write a short, catchy title for the story (max 8 words)]\n\n")
	b.WriteString("[Write the story here]\n\n")
	b.WriteString("Example:\n")
	b.WriteString("TITLE: Tom's New Car Adventure\n\n")
	b.WriteString("Tom loves cars. He wants to buy a new car...")

	return b.String()
}
