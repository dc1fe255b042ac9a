package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
	"github.com/ternarybob/supportdesk/internal/services/feedback"
	"github.com/ternarybob/supportdesk/internal/services/tickets"
)

// MockSupportService is a mock implementation of SupportService
type MockSupportService struct {
	mock.Mock
}

func (m *MockSupportService) Respond(ctx context.Context, req *models.ChatRequest) *models.ChatResponse {
	return m.Called(ctx, req).Get(0).(*models.ChatResponse)
}

func (m *MockSupportService) SearchFAQs(ctx context.Context, query string) []models.ScoredCandidate {
	return m.Called(ctx, query).Get(0).([]models.ScoredCandidate)
}

// MockTicketService is a mock implementation of TicketService
type MockTicketService struct {
	mock.Mock
}

func (m *MockTicketService) Escalate(ctx context.Context, req *models.EscalationRequest) (*models.Ticket, error) {
	args := m.Called(ctx, req)
	ticket, _ := args.Get(0).(*models.Ticket)
	return ticket, args.Error(1)
}

func (m *MockTicketService) List(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error) {
	args := m.Called(ctx, status)
	list, _ := args.Get(0).([]*models.Ticket)
	return list, args.Error(1)
}

func (m *MockTicketService) Get(ctx context.Context, id uint64) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	ticket, _ := args.Get(0).(*models.Ticket)
	return ticket, args.Error(1)
}

func (m *MockTicketService) UpdateStatus(ctx context.Context, id uint64, status models.TicketStatus) (*models.Ticket, error) {
	args := m.Called(ctx, id, status)
	ticket, _ := args.Get(0).(*models.Ticket)
	return ticket, args.Error(1)
}

func (m *MockTicketService) Respond(ctx context.Context, id uint64, supportName, message string) (*models.Ticket, error) {
	args := m.Called(ctx, id, supportName, message)
	ticket, _ := args.Get(0).(*models.Ticket)
	return ticket, args.Error(1)
}

type stubFeedbackService struct{}

func (stubFeedbackService) Submit(ctx context.Context, fb *models.Feedback) (*models.Feedback, error) {
	if fb.FeedbackType != models.FeedbackPositive && fb.FeedbackType != models.FeedbackNegative {
		return nil, fmt.Errorf("%w: FeedbackType failed on oneof", feedback.ErrInvalidFeedback)
	}
	fb.ID = "fb_test"
	return fb, nil
}

type countingTrigger struct{ calls int }

func (c *countingTrigger) RunNow() { c.calls++ }

type staticCounter struct{ count int }

func (s staticCounter) CountDocuments(ctx context.Context) (int, error) { return s.count, nil }

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestChatHandler(t *testing.T) {
	service := new(MockSupportService)
	service.On("Respond", mock.Anything, mock.MatchedBy(func(req *models.ChatRequest) bool {
		return req.Message == "How do I reset my password?" && len(req.ChatHistory) == 1
	})).Return(&models.ChatResponse{Response: "Use Settings > Reset.", Escalate: false})

	handler := NewChatHandler(service, arbor.NewLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(
		`{"message":"How do I reset my password?","chat_history":[{"role":"user","content":"hi"}]}`))
	rec := httptest.NewRecorder()
	handler.ChatHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Use Settings > Reset.", body["response"])
	assert.Nil(t, body["suggestions"])
	assert.Equal(t, false, body["escalate"])
	assert.NotContains(t, body, "debug_info")
}

func TestChatHandler_BadRequests(t *testing.T) {
	handler := NewChatHandler(new(MockSupportService), arbor.NewLogger())

	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{", http.StatusBadRequest},
		{"empty message", http.MethodPost, `{"message":""}`, http.StatusBadRequest},
		{"message too long", http.MethodPost, `{"message":"` + strings.Repeat("a", 5001) + `"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ChatHandler(rec, httptest.NewRequest(tt.method, "/api/chat", strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestTicketHandler_Escalate(t *testing.T) {
	service := new(MockTicketService)
	service.On("Escalate", mock.Anything, mock.Anything).Return(&models.Ticket{ID: 7, Status: models.TicketStatusOpen}, nil).Once()
	service.On("Escalate", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: missing message", tickets.ErrInvalidRequest)).Once()

	handler := NewTicketHandler(service, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.EscalateHandler(rec, httptest.NewRequest(http.MethodPost, "/api/escalate", strings.NewReader(`{"user_message":"app crashes"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(7), decodeBody(t, rec)["ticket_id"])

	rec = httptest.NewRecorder()
	handler.EscalateHandler(rec, httptest.NewRequest(http.MethodPost, "/api/escalate", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTicketHandler_Items(t *testing.T) {
	service := new(MockTicketService)
	service.On("Get", mock.Anything, uint64(3)).Return(&models.Ticket{ID: 3, Status: models.TicketStatusOpen}, nil)
	service.On("Get", mock.Anything, uint64(4)).Return(nil, fmt.Errorf("%w: 4", tickets.ErrTicketNotFound))
	service.On("UpdateStatus", mock.Anything, uint64(3), models.TicketStatusResolved).Return(&models.Ticket{ID: 3, Status: models.TicketStatusResolved}, nil)
	service.On("UpdateStatus", mock.Anything, uint64(3), models.TicketStatus("bogus")).Return(nil, fmt.Errorf("%w: bogus", tickets.ErrInvalidStatus))
	service.On("Respond", mock.Anything, uint64(3), "Sam", "On it").Return(&models.Ticket{
		ID:          3,
		Status:      models.TicketStatusInProgress,
		ChatHistory: []models.TicketMessage{{Role: models.RoleSupport, Content: "On it", SupportName: "Sam"}},
	}, nil)

	handler := NewTicketHandler(service, arbor.NewLogger())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"get", http.MethodGet, "/api/tickets/3", "", http.StatusOK},
		{"get missing", http.MethodGet, "/api/tickets/4", "", http.StatusNotFound},
		{"bad id", http.MethodGet, "/api/tickets/abc", "", http.StatusBadRequest},
		{"patch body", http.MethodPatch, "/api/tickets/3", `{"status":"resolved"}`, http.StatusOK},
		{"patch query", http.MethodPatch, "/api/tickets/3?status=resolved", "", http.StatusOK},
		{"patch invalid", http.MethodPatch, "/api/tickets/3", `{"status":"bogus"}`, http.StatusBadRequest},
		{"respond", http.MethodPost, "/api/tickets/3/respond", `{"message":"On it","support_name":"Sam"}`, http.StatusOK},
		{"respond wrong method", http.MethodGet, "/api/tickets/3/respond", "", http.StatusMethodNotAllowed},
		{"unknown subpath", http.MethodPost, "/api/tickets/3/close", "", http.StatusNotFound},
		{"delete", http.MethodDelete, "/api/tickets/3", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ItemHandler(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestTicketHandler_List(t *testing.T) {
	service := new(MockTicketService)
	service.On("List", mock.Anything, models.TicketStatusOpen).Return(nil, nil)

	handler := NewTicketHandler(service, arbor.NewLogger())
	rec := httptest.NewRecorder()
	handler.ListHandler(rec, httptest.NewRequest(http.MethodGet, "/api/tickets?status=open", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []interface{}{}, body["tickets"])
}

func TestFeedbackHandler(t *testing.T) {
	handler := NewFeedbackHandler(stubFeedbackService{}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.SubmitHandler(rec, httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(
		`{"agent":"support","user_message":"q","assistant_response":"a","feedback_type":"positive"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fb_test", decodeBody(t, rec)["id"])

	rec = httptest.NewRecorder()
	handler.SubmitHandler(rec, httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(`{"feedback_type":"meh"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCorpusHandler(t *testing.T) {
	trigger := &countingTrigger{}
	handler := NewCorpusHandler(trigger, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.BackfillHandler(rec, httptest.NewRequest(http.MethodPost, "/api/corpus/backfill", nil))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, trigger.calls)
}

func TestAPIHandler(t *testing.T) {
	handler := NewAPIHandler("supportdesk", staticCounter{count: 12}, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(12), decodeBody(t, rec)["documents"])

	rec = httptest.NewRecorder()
	handler.IndexHandler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody(t, rec), "endpoints")

	rec = httptest.NewRecorder()
	handler.IndexHandler(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPathSegments(t *testing.T) {
	assert.Equal(t, []string{"7", "respond"}, PathSegments("/api/tickets/7/respond", "/api/tickets/"))
	assert.Equal(t, []string{"7"}, PathSegments("/api/tickets/7/", "/api/tickets/"))
	assert.Nil(t, PathSegments("/api/tickets/", "/api/tickets/"))
}

var _ interfaces.SupportService = (*MockSupportService)(nil)
