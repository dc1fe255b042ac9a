// Package feedback stores user ratings of assistant answers.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/common"
	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// ErrInvalidFeedback is returned for feedback failing validation
var ErrInvalidFeedback = errors.New("invalid feedback")

// Service implements FeedbackService
type Service struct {
	storage  interfaces.FeedbackStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewService(storage interfaces.FeedbackStorage, logger arbor.ILogger) *Service {
	return &Service{
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

// Submit validates and stores feedback, assigning its id and timestamp
func (s *Service) Submit(ctx context.Context, feedback *models.Feedback) (*models.Feedback, error) {
	if feedback == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidFeedback)
	}
	if err := s.validate.Struct(feedback); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return nil, fmt.Errorf("%w: %s failed on %s", ErrInvalidFeedback, fe.Field(), fe.Tag())
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFeedback, err)
	}

	feedback.ID = common.NewFeedbackID()
	feedback.CreatedAt = time.Now()

	if err := s.storage.SaveFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	s.logger.Info().
		Str("feedback_id", feedback.ID).
		Str("type", feedback.FeedbackType).
		Str("agent", feedback.Agent).
		Msg("Feedback saved")

	return feedback, nil
}
