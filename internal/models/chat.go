package models

// ChatRequest is the input of the support pipeline
type ChatRequest struct {
	Message     string                `json:"message" validate:"required,max=5000"`
	ChatHistory []ConversationMessage `json:"chat_history,omitempty"`
	Debug       bool                  `json:"debug"`
	SessionID   string                `json:"session_id,omitempty"`
}

// ChatResponse is always well formed, even when the pipeline failed.
// Suggestions serializes as null when the model offered none.
type ChatResponse struct {
	Response    string                 `json:"response"`
	Suggestions []string               `json:"suggestions"`
	Escalate    bool                   `json:"escalate"`
	DebugInfo   map[string]interface{} `json:"debug_info,omitempty"`
}
