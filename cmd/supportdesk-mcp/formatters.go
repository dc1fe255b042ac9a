package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/supportdesk/internal/models"
	"github.com/ternarybob/supportdesk/internal/services/support"
)

// formatChatResponse formats a support answer as markdown
func formatChatResponse(resp *models.ChatResponse) string {
	var sb strings.Builder
	sb.WriteString(resp.Response)
	sb.WriteString("\n")

	if len(resp.Suggestions) > 0 {
		sb.WriteString("\n## Suggestions\n\n")
		for _, s := range resp.Suggestions {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
	}

	if resp.Escalate {
		sb.WriteString("\n**Escalation recommended:** a human agent should follow up.\n")
	}

	if len(resp.DebugInfo) > 0 {
		sb.WriteString("\n## Debug\n\n```json\n")
		debugJSON, _ := json.MarshalIndent(resp.DebugInfo, "", "  ")
		sb.WriteString(string(debugJSON))
		sb.WriteString("\n```\n")
	}

	return sb.String()
}

// formatSearchResults formats FAQ matches as markdown
func formatSearchResults(query string, candidates []models.ScoredCandidate) string {
	return fmt.Sprintf("Query: %s\n\n%s", query, support.FormatFAQMarkdown(candidates))
}
