package badger

import (
	"context"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db         *BadgerDB
	document   interfaces.DocumentStorage
	requestLog interfaces.RequestLogStorage
	ticket     interfaces.TicketStorage
	feedback   interfaces.FeedbackStorage
	logger     arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:         db,
		document:   NewDocumentStorage(db, logger),
		requestLog: NewRequestLogStorage(db, logger),
		ticket:     NewTicketStorage(db, logger),
		feedback:   NewFeedbackStorage(db, logger),
		logger:     logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// DocumentStorage returns the corpus store
func (m *Manager) DocumentStorage() interfaces.DocumentStorage {
	return m.document
}

// RequestLogStorage returns the request log storage interface
func (m *Manager) RequestLogStorage() interfaces.RequestLogStorage {
	return m.requestLog
}

// TicketStorage returns the Ticket storage interface
func (m *Manager) TicketStorage() interfaces.TicketStorage {
	return m.ticket
}

// FeedbackStorage returns the Feedback storage interface
func (m *Manager) FeedbackStorage() interfaces.FeedbackStorage {
	return m.feedback
}

// LoadDocumentsFromFiles upserts seed documents into the corpus
func (m *Manager) LoadDocumentsFromFiles(ctx context.Context, paths []string) (int, error) {
	return LoadDocumentsFromFiles(ctx, m.document, paths, m.logger)
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
