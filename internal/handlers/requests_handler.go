package handlers

import (
	"errors"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
)

// RequestsHandler exposes the support request audit log
type RequestsHandler struct {
	storage interfaces.RequestLogStorage
	logger  arbor.ILogger
}

func NewRequestsHandler(storage interfaces.RequestLogStorage, logger arbor.ILogger) *RequestsHandler {
	return &RequestsHandler{
		storage: storage,
		logger:  logger,
	}
}

// ListHandler handles GET /api/requests?limit=
func (h *RequestsHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	logs, err := h.storage.ListRequestLogs(r.Context(), GetLimitParam(r, 50))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list request logs")
		WriteError(w, http.StatusInternalServerError, "Request logs could not be loaded")
		return
	}
	if logs == nil {
		logs = []*models.RequestLog{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": logs,
		"count":    len(logs),
	})
}

// GetHandler handles GET /api/requests/{request_id}
func (h *RequestsHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	segments := PathSegments(r.URL.Path, "/api/requests/")
	if len(segments) != 1 {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	log, err := h.storage.GetRequestLog(r.Context(), segments[0])
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "Request log not found")
			return
		}
		h.logger.Error().Err(err).Msg("Failed to get request log")
		WriteError(w, http.StatusInternalServerError, "Request log could not be loaded")
		return
	}

	WriteJSON(w, http.StatusOK, log)
}
