package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// ChatHandler handles support chat requests
type ChatHandler struct {
	supportService interfaces.SupportService
	validate       *validator.Validate
	logger         arbor.ILogger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	supportService interfaces.SupportService,
	logger arbor.ILogger,
) *ChatHandler {
	return &ChatHandler{
		supportService: supportService,
		validate:       validator.New(),
		logger:         logger,
	}
}

// ChatHandler handles POST /api/chat requests. Pipeline failures still
// answer 200 with the fallback response; only malformed input is rejected.
func (h *ChatHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ChatRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to decode chat request")
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "message is required and must be at most 5000 characters")
		return
	}

	h.logger.Debug().
		Int("message_length", len(req.Message)).
		Int("history_length", len(req.ChatHistory)).
		Bool("debug", req.Debug).
		Msg("Processing chat request")

	response := h.supportService.Respond(r.Context(), &req)
	WriteJSON(w, http.StatusOK, response)
}
