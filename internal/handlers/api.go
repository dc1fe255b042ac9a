package handlers

import (
	"context"
	"net/http"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/common"
)

// DocumentCounter reports the corpus size
type DocumentCounter interface {
	CountDocuments(ctx context.Context) (int, error)
}

type APIHandler struct {
	serviceName string
	documents   DocumentCounter
	logger      arbor.ILogger
}

func NewAPIHandler(serviceName string, documents DocumentCounter, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		serviceName: serviceName,
		documents:   documents,
		logger:      logger,
	}
}

// IndexHandler describes the service and its endpoints
func (h *APIHandler) IndexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFoundHandler(w, r)
		return
	}
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"service": h.serviceName,
		"version": common.GetVersion(),
		"endpoints": map[string]string{
			"/api/chat":                 "POST - ask the support assistant",
			"/api/escalate":             "POST - open a support ticket",
			"/api/tickets":              "GET - list tickets (?status=)",
			"/api/tickets/{id}":         "GET, PATCH - get a ticket or set its status",
			"/api/tickets/{id}/respond": "POST - add a support reply",
			"/api/feedback":             "POST - rate an answer",
			"/api/requests":             "GET - recent request logs",
			"/api/corpus/backfill":      "POST - embed documents without embedding",
			"/api/health":               "GET - health check",
			"/api/version":              "GET - version information",
		},
	})
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.Version,
		"build":      common.Build,
		"git_commit": common.GitCommit,
	})
}

// HealthHandler returns health check status including the corpus size
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	count, err := h.documents.CountDocuments(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Health check failed to count documents")
		WriteJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status": "degraded",
			"error":  err.Error(),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"documents": count,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
