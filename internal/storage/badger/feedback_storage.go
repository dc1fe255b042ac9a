package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// FeedbackStorage stores answer feedback keyed by feedback id
type FeedbackStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

func NewFeedbackStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FeedbackStorage {
	return &FeedbackStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FeedbackStorage) SaveFeedback(ctx context.Context, feedback *models.Feedback) error {
	if feedback.ID == "" {
		return fmt.Errorf("feedback ID is required")
	}
	if err := s.db.Store().Upsert(feedback.ID, feedback); err != nil {
		return fmt.Errorf("failed to save feedback: %w", err)
	}
	return nil
}

// ListFeedback returns the newest feedback first. limit <= 0 returns all.
func (s *FeedbackStorage) ListFeedback(ctx context.Context, limit int) ([]*models.Feedback, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var items []models.Feedback
	if err := s.db.Store().Find(&items, query); err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}

	result := make([]*models.Feedback, len(items))
	for i := range items {
		result[i] = &items[i]
	}
	return result, nil
}
