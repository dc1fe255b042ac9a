// Package tickets manages human handoff tickets opened by escalation.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

var (
	ErrTicketNotFound = errors.New("ticket not found")
	ErrInvalidStatus  = errors.New("invalid ticket status")
	ErrInvalidRequest = errors.New("invalid ticket request")
)

// Service implements TicketService
type Service struct {
	storage  interfaces.TicketStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates a ticket service
func NewService(storage interfaces.TicketStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

// Escalate opens a ticket carrying the conversation so far
func (s *Service) Escalate(ctx context.Context, req *models.EscalationRequest) (*models.Ticket, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidRequest)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	now := time.Now()
	ticket := &models.Ticket{
		UserMessage: req.UserMessage,
		ChatHistory: make([]models.TicketMessage, 0, len(req.ChatHistory)),
		UserEmail:   req.UserEmail,
		SessionID:   req.SessionID,
		Status:      models.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, msg := range req.ChatHistory {
		ticket.ChatHistory = append(ticket.ChatHistory, models.TicketMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: now,
		})
	}

	if err := s.storage.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}

	s.logger.Info().
		Str("ticket_id", fmt.Sprintf("%d", ticket.ID)).
		Int("history_messages", len(ticket.ChatHistory)).
		Msg("Support ticket created")

	return ticket, nil
}

// List returns tickets newest first, optionally filtered by status
func (s *Service) List(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	tickets, err := s.storage.ListTickets(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return tickets, nil
}

// Get returns one ticket
func (s *Service) Get(ctx context.Context, id uint64) (*models.Ticket, error) {
	if id == 0 {
		return nil, fmt.Errorf("%w: ticket id is required", ErrInvalidRequest)
	}
	ticket, err := s.storage.GetTicket(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrTicketNotFound, id)
		}
		return nil, fmt.Errorf("failed to get ticket %d: %w", id, err)
	}
	return ticket, nil
}

// UpdateStatus moves a ticket to status. Resolved and closed stamp ResolvedAt.
func (s *Service) UpdateStatus(ctx context.Context, id uint64, status models.TicketStatus) (*models.Ticket, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.Status = status
	ticket.UpdatedAt = now
	if status.Terminal() {
		ticket.ResolvedAt = &now
	} else {
		ticket.ResolvedAt = nil
	}

	if err := s.storage.UpdateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket %d: %w", id, err)
	}

	s.logger.Info().
		Str("ticket_id", fmt.Sprintf("%d", id)).
		Str("status", string(status)).
		Msg("Ticket status updated")

	return ticket, nil
}

// Respond appends a support agent message and moves the ticket to in_progress
func (s *Service) Respond(ctx context.Context, id uint64, supportName, message string) (*models.Ticket, error) {
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidRequest)
	}

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ticket.ChatHistory = append(ticket.ChatHistory, models.TicketMessage{
		Role:        models.RoleSupport,
		Content:     message,
		SupportName: supportName,
		Timestamp:   now,
	})
	ticket.Status = models.TicketStatusInProgress
	ticket.UpdatedAt = now
	ticket.ResolvedAt = nil

	if err := s.storage.UpdateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket %d: %w", id, err)
	}

	s.logger.Info().
		Str("ticket_id", fmt.Sprintf("%d", id)).
		Str("support_name", supportName).
		Msg("Support response added to ticket")

	return ticket, nil
}
