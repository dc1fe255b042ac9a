// Package history compresses a conversation into a bounded prompt fragment.
package history

import (
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/supportdesk/internal/models"
)

const (
	// DefaultMaxRecent is the number of most recent messages forwarded verbatim
	DefaultMaxRecent = 4
	// DefaultMaxOlder is the number of messages before the recent window scanned for topics
	DefaultMaxOlder = 4

	maxTopics         = 4
	maxSummaryContent = 200
)

type topicKeyword struct {
	keyword string
	topic   string
}

// topicKeywords is scanned in order. Matching is a case-insensitive substring
// test, so "alarm" also hits "alarms" and any longer word containing it.
var topicKeywords = []topicKeyword{
	{"passwort", "Account management"},
	{"password", "Account management"},
	{"login", "Login"},
	{"anmelden", "Login"},
	{"watchlist", "Watchlist"},
	{"chart", "Charts"},
	{"alarm", "Alerts"},
	{"benachrichtigung", "Notifications"},
	{"notification", "Notifications"},
	{"email", "Email settings"},
	{"einstellung", "Settings"},
	{"settings", "Settings"},
}

// Window is the result of Build
type Window struct {
	// Messages are ready to append to a generation prompt
	Messages []models.ConversationMessage
	// Summary mirrors Messages for audit logging, with content capped at 200 characters
	Summary []models.ConversationMessage
}

// Builder builds context windows with fixed bounds
type Builder struct {
	maxRecent int
	maxOlder  int
}

// NewBuilder creates a builder. Non-positive maxRecent falls back to the default; negative maxOlder to zero.
func NewBuilder(maxRecent, maxOlder int) *Builder {
	if maxRecent <= 0 {
		maxRecent = DefaultMaxRecent
	}
	if maxOlder < 0 {
		maxOlder = 0
	}
	return &Builder{maxRecent: maxRecent, maxOlder: maxOlder}
}

// Build splits history (oldest first) into a recent window and an older
// window. The older window contributes only a synthetic topic summary message;
// anything before it is dropped. The input slice is not modified.
func (b *Builder) Build(history []models.ConversationMessage) Window {
	window := Window{
		Messages: []models.ConversationMessage{},
		Summary:  []models.ConversationMessage{},
	}
	if len(history) == 0 {
		return window
	}

	recent := history
	var older []models.ConversationMessage
	if len(history) > b.maxRecent {
		split := len(history) - b.maxRecent
		recent = history[split:]
		olderStart := split - b.maxOlder
		if olderStart < 0 {
			olderStart = 0
		}
		older = history[olderStart:split]
	}

	if topics := ExtractTopics(older); len(topics) > 0 {
		joined := strings.Join(topics, ", ")
		window.Messages = append(window.Messages, models.ConversationMessage{
			Role:    models.RoleSystem,
			Content: "[Earlier context: the user talked about " + joined + "]",
		})
		window.Summary = append(window.Summary, models.ConversationMessage{
			Role:    models.RoleSystem,
			Content: "Summary: " + joined,
		})
	}

	for _, msg := range recent {
		if msg.Role == "" {
			msg.Role = models.RoleUser
		}
		if msg.Content == "" {
			continue
		}
		if msg.Role != models.RoleUser && msg.Role != models.RoleAssistant {
			continue
		}
		window.Messages = append(window.Messages, msg)
		window.Summary = append(window.Summary, models.ConversationMessage{
			Role:    msg.Role,
			Content: truncateRunes(msg.Content, maxSummaryContent),
		})
	}

	return window
}

// ExtractTopics returns up to four distinct topic labels in first-seen order
func ExtractTopics(messages []models.ConversationMessage) []string {
	var topics []string
	seen := make(map[string]bool)

	for _, msg := range messages {
		content := strings.ToLower(msg.Content)
		for _, tk := range topicKeywords {
			if seen[tk.topic] || !strings.Contains(content, tk.keyword) {
				continue
			}
			seen[tk.topic] = true
			topics = append(topics, tk.topic)
			if len(topics) == maxTopics {
				return topics
			}
		}
	}
	return topics
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
