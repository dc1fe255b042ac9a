package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
	"github.com/ternarybob/supportdesk/internal/services/feedback"
)

type FeedbackHandler struct {
	feedbackService interfaces.FeedbackService
	logger          arbor.ILogger
}

func NewFeedbackHandler(feedbackService interfaces.FeedbackService, logger arbor.ILogger) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackService: feedbackService,
		logger:          logger,
	}
}

// SubmitHandler handles POST /api/feedback
func (h *FeedbackHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.Feedback
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	saved, err := h.feedbackService.Submit(r.Context(), &req)
	if err != nil {
		if errors.Is(err, feedback.ErrInvalidFeedback) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Failed to save feedback")
		WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"message": "Feedback could not be saved",
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"id":      saved.ID,
		"message": "Feedback saved",
	})
}
