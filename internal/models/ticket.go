package models

import "time"

// TicketStatus is the lifecycle state of an escalation ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is a known ticket status
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status stamps ResolvedAt
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketMessage is one entry of a ticket conversation
type TicketMessage struct {
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	SupportName string    `json:"support_name,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Ticket is a human handoff created when the assistant escalates
type Ticket struct {
	ID          uint64          `json:"id" badgerhold:"key"`
	UserMessage string          `json:"user_message"`
	ChatHistory []TicketMessage `json:"chat_history"`
	UserEmail   string          `json:"user_email,omitempty"`
	SessionID   string          `json:"session_id,omitempty"`
	Status      TicketStatus    `json:"status" badgerhold:"index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
}

// EscalationRequest is the payload that opens a ticket
type EscalationRequest struct {
	UserMessage string                `json:"user_message" validate:"required,max=5000"`
	ChatHistory []ConversationMessage `json:"chat_history,omitempty"`
	UserEmail   string                `json:"user_email,omitempty" validate:"omitempty,email"`
	SessionID   string                `json:"session_id,omitempty"`
}
