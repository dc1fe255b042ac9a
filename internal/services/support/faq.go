package support

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/supportdesk/internal/models"
)

const noFAQContext = "No matching FAQ entries found."

// FormatFAQContext renders retrieved candidates for the generation prompt
func FormatFAQContext(candidates []models.ScoredCandidate) string {
	if len(candidates) == 0 {
		return noFAQContext
	}

	var sb strings.Builder
	sb.WriteString("Relevant FAQ entries:\n\n")
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("--- FAQ %d (Relevance: %s) ---\n", i+1, percent(c.Similarity)))
		sb.WriteString(fmt.Sprintf("Question: %s\n", c.Question))
		sb.WriteString(fmt.Sprintf("Answer: %s\n", c.Answer))
		if c.SourceURL != "" {
			sb.WriteString(fmt.Sprintf("Source: %s\n", c.SourceURL))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// UserTurn combines the FAQ context with the user's question
func UserTurn(faqContext, question string) string {
	return faqContext + "\n\n---\n\nUser question: " + question
}

// FormatFAQMarkdown renders candidates for tool output
func FormatFAQMarkdown(candidates []models.ScoredCandidate) string {
	if len(candidates) == 0 {
		return noFAQContext
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# FAQ matches (%d)\n\n", len(candidates)))
	for i, c := range candidates {
		sb.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, c.Question))
		sb.WriteString(fmt.Sprintf("**Relevance:** %s\n\n", percent(c.Similarity)))
		sb.WriteString(c.Answer)
		sb.WriteString("\n\n")
		if c.SourceURL != "" {
			sb.WriteString(fmt.Sprintf("Source: %s\n\n", c.SourceURL))
		}
	}
	return sb.String()
}

func matchLabel(question string) string {
	return "FAQ Match: " + truncateRunes(question, 40) + "..."
}

func percent(similarity float64) string {
	return fmt.Sprintf("%.0f%%", similarity*100)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
