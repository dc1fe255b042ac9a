package tickets

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// memoryTicketStorage is an in-memory TicketStorage
type memoryTicketStorage struct {
	mu      sync.Mutex
	nextID  uint64
	tickets map[uint64]models.Ticket
}

func newMemoryTicketStorage() *memoryTicketStorage {
	return &memoryTicketStorage{tickets: make(map[uint64]models.Ticket)}
}

func (m *memoryTicketStorage) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ticket.ID = m.nextID
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memoryTicketStorage) GetTicket(ctx context.Context, id uint64) (*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &ticket, nil
}

func (m *memoryTicketStorage) UpdateTicket(ctx context.Context, ticket *models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[ticket.ID]; !ok {
		return interfaces.ErrNotFound
	}
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memoryTicketStorage) ListTickets(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Ticket
	for _, t := range m.tickets {
		if status != "" && t.Status != status {
			continue
		}
		ticket := t
		out = append(out, &ticket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func TestService_Escalate(t *testing.T) {
	service := NewService(newMemoryTicketStorage(), arbor.NewLogger())

	ticket, err := service.Escalate(context.Background(), &models.EscalationRequest{
		UserMessage: "The app crashes on start",
		ChatHistory: []models.ConversationMessage{
			{Role: models.RoleUser, Content: "The app crashes on start"},
			{Role: models.RoleAssistant, Content: "That sounds like a technical problem."},
		},
		UserEmail: "user@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, uint64(1), ticket.ID)
	assert.Equal(t, models.TicketStatusOpen, ticket.Status)
	assert.Len(t, ticket.ChatHistory, 2)
	assert.Nil(t, ticket.ResolvedAt)
}

func TestService_Escalate_Invalid(t *testing.T) {
	service := NewService(newMemoryTicketStorage(), arbor.NewLogger())

	_, err := service.Escalate(context.Background(), &models.EscalationRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = service.Escalate(context.Background(), &models.EscalationRequest{UserMessage: "help", UserEmail: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = service.Escalate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemoryTicketStorage(), arbor.NewLogger())
	ticket, err := service.Escalate(ctx, &models.EscalationRequest{UserMessage: "help"})
	require.NoError(t, err)

	updated, err := service.UpdateStatus(ctx, ticket.ID, models.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)

	reopened, err := service.UpdateStatus(ctx, ticket.ID, models.TicketStatusOpen)
	require.NoError(t, err)
	assert.Nil(t, reopened.ResolvedAt)

	_, err = service.UpdateStatus(ctx, ticket.ID, "archived")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = service.UpdateStatus(ctx, 42, models.TicketStatusClosed)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestService_Respond(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemoryTicketStorage(), arbor.NewLogger())
	ticket, err := service.Escalate(ctx, &models.EscalationRequest{
		UserMessage: "help",
		ChatHistory: []models.ConversationMessage{{Role: models.RoleUser, Content: "help"}},
	})
	require.NoError(t, err)

	updated, err := service.Respond(ctx, ticket.ID, "Sam", "We are looking into it")
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusInProgress, updated.Status)
	require.Len(t, updated.ChatHistory, 2)
	assert.Equal(t, models.RoleSupport, updated.ChatHistory[1].Role)
	assert.Equal(t, "Sam", updated.ChatHistory[1].SupportName)

	stored, err := service.Get(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, stored.ChatHistory, 2)

	_, err = service.Respond(ctx, ticket.ID, "Sam", "")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = service.Respond(ctx, 99, "Sam", "hello")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	service := NewService(newMemoryTicketStorage(), arbor.NewLogger())
	first, _ := service.Escalate(ctx, &models.EscalationRequest{UserMessage: "one"})
	_, _ = service.Escalate(ctx, &models.EscalationRequest{UserMessage: "two"})
	_, err := service.UpdateStatus(ctx, first.ID, models.TicketStatusClosed)
	require.NoError(t, err)

	all, err := service.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "two", all[0].UserMessage)

	open, err := service.List(ctx, models.TicketStatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "two", open[0].UserMessage)

	_, err = service.List(ctx, "pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}
