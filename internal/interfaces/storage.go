package interfaces

import (
	"context"
	"errors"

	"github.com/ternarybob/supportdesk/internal/models"
)

// ErrNotFound is returned by storage lookups for a missing record
var ErrNotFound = errors.New("record not found")

// DocumentStorage is the corpus store
type DocumentStorage interface {
	// ListDocuments returns the full corpus in scan order (bulk read, no pagination)
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	SaveDocument(ctx context.Context, doc *models.Document) error
	SaveDocuments(ctx context.Context, docs []*models.Document) error
	DeleteDocument(ctx context.Context, id string) error
	CountDocuments(ctx context.Context) (int, error)

	// ListDocumentsWithoutEmbedding returns up to limit documents that have no embedding (0 = no limit)
	ListDocumentsWithoutEmbedding(ctx context.Context, limit int) ([]*models.Document, error)
}

// RequestLogStorage persists audit records of support requests
type RequestLogStorage interface {
	SaveRequestLog(ctx context.Context, log *models.RequestLog) error
	GetRequestLog(ctx context.Context, requestID string) (*models.RequestLog, error)
	// ListRequestLogs returns the newest records first
	ListRequestLogs(ctx context.Context, limit int) ([]*models.RequestLog, error)
}

// TicketStorage persists escalation tickets
type TicketStorage interface {
	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	GetTicket(ctx context.Context, id uint64) (*models.Ticket, error)
	UpdateTicket(ctx context.Context, ticket *models.Ticket) error
	// ListTickets returns tickets newest first, filtered by status when status is non-empty
	ListTickets(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error)
}

// FeedbackStorage persists answer feedback
type FeedbackStorage interface {
	SaveFeedback(ctx context.Context, feedback *models.Feedback) error
	ListFeedback(ctx context.Context, limit int) ([]*models.Feedback, error)
}

// StorageManager manages all storage backends
type StorageManager interface {
	DocumentStorage() DocumentStorage
	RequestLogStorage() RequestLogStorage
	TicketStorage() TicketStorage
	FeedbackStorage() FeedbackStorage
	// LoadDocumentsFromFiles upserts corpus seed files into the document store
	LoadDocumentsFromFiles(ctx context.Context, paths []string) (int, error)
	Close() error
}

// AuditSink persists one record per completed support request.
// Callers treat failures as non-fatal.
type AuditSink interface {
	Record(ctx context.Context, log *models.RequestLog) error
}
