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

// RequestLogStorage stores support request audit records keyed by request id
type RequestLogStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewRequestLogStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RequestLogStorage {
	return &RequestLogStorage{
		db:     db,
		logger: logger,
	}
}

func (s *RequestLogStorage) SaveRequestLog(ctx context.Context, log *models.RequestLog) error {
	if log.RequestID == "" {
		return fmt.Errorf("request ID is required")
	}
	if err := s.db.Store().Insert(log.RequestID, log); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("request log %s already exists: %w", log.RequestID, err)
		}
		return fmt.Errorf("failed to save request log: %w", err)
	}
	return nil
}

func (s *RequestLogStorage) GetRequestLog(ctx context.Context, requestID string) (*models.RequestLog, error) {
	var log models.RequestLog
	if err := s.db.Store().Get(requestID, &log); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("request log %s: %w", requestID, interfaces.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get request log: %w", err)
	}
	return &log, nil
}

// ListRequestLogs returns the newest records first. limit <= 0 returns all.
func (s *RequestLogStorage) ListRequestLogs(ctx context.Context, limit int) ([]*models.RequestLog, error) {
	query := badgerhold.Where("RequestID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var logs []models.RequestLog
	if err := s.db.Store().Find(&logs, query); err != nil {
		return nil, fmt.Errorf("failed to list request logs: %w", err)
	}

	result := make([]*models.RequestLog, len(logs))
	for i := range logs {
		result[i] = &logs[i]
	}
	return result, nil
}
