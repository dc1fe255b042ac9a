package models

// Conversation roles
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSupport   = "support"
)

// ConversationMessage is one turn of a chat history, oldest first
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
