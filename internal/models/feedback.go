package models

import "time"

// Feedback types
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// Feedback records a user's rating of one assistant answer
type Feedback struct {
	ID                string    `json:"id"`
	Agent             string    `json:"agent" validate:"required"`
	UserMessage       string    `json:"user_message" validate:"required"`
	AssistantResponse string    `json:"assistant_response" validate:"required"`
	FeedbackType      string    `json:"feedback_type" validate:"required,oneof=positive negative"`
	Comment           string    `json:"feedback_comment,omitempty" validate:"max=2000"`
	SessionID         string    `json:"session_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
