package interfaces

import (
	"context"

	"github.com/ternarybob/supportdesk/internal/models"
)

// SupportService answers user questions from the FAQ corpus
type SupportService interface {
	// Respond runs the full pipeline. It never fails: on error the response is
	// a fixed fallback with Escalate set.
	Respond(ctx context.Context, req *models.ChatRequest) *models.ChatResponse

	// SearchFAQs runs retrieval only
	SearchFAQs(ctx context.Context, query string) []models.ScoredCandidate
}

// TicketService manages human handoff tickets
type TicketService interface {
	Escalate(ctx context.Context, req *models.EscalationRequest) (*models.Ticket, error)
	List(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error)
	Get(ctx context.Context, id uint64) (*models.Ticket, error)
	UpdateStatus(ctx context.Context, id uint64, status models.TicketStatus) (*models.Ticket, error)
	Respond(ctx context.Context, id uint64, supportName, message string) (*models.Ticket, error)
}

// FeedbackService records answer ratings
type FeedbackService interface {
	Submit(ctx context.Context, feedback *models.Feedback) (*models.Feedback, error)
}
