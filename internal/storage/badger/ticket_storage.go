package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// TicketStorage stores escalation tickets under sequential ids
type TicketStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewTicketStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TicketStorage {
	return &TicketStorage{
		db:     db,
		logger: logger,
	}
}

// CreateTicket inserts ticket and sets its ID from the store sequence
func (s *TicketStorage) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if err := s.db.Store().Insert(badgerhold.NextSequence(), ticket); err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (s *TicketStorage) GetTicket(ctx context.Context, id uint64) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.Store().Get(id, &ticket); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("ticket %d: %w", id, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

func (s *TicketStorage) UpdateTicket(ctx context.Context, ticket *models.Ticket) error {
	if err := s.db.Store().Update(ticket.ID, ticket); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("ticket %d: %w", ticket.ID, interfaces.ErrNotFound)
		}
		return fmt.Errorf("failed to update ticket: %w", err)
	}
	return nil
}

func (s *TicketStorage) ListTickets(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error) {
	// Records written by Insert carry a zero ID field, so the key is never filtered on
	query := &badgerhold.Query{}
	if status != "" {
		query = badgerhold.Where("Status").Eq(status)
	}

	var tickets []models.Ticket
	if err := s.db.Store().Find(&tickets, query.SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	result := make([]*models.Ticket, len(tickets))
	for i := range tickets {
		result[i] = &tickets[i]
	}
	return result, nil
}
