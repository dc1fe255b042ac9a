package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Service info
	mux.HandleFunc("/", s.app.APIHandler.IndexHandler)

	// API routes - Support chat
	mux.HandleFunc("/api/chat", s.app.ChatHandler.ChatHandler)

	// API routes - Tickets
	mux.HandleFunc("/api/escalate", s.app.TicketHandler.EscalateHandler) // POST - open a ticket
	mux.HandleFunc("/api/tickets", s.app.TicketHandler.ListHandler)      // GET ?status=
	mux.HandleFunc("/api/tickets/", s.app.TicketHandler.ItemHandler)     // GET/PATCH /{id}, POST /{id}/respond

	// API routes - Feedback
	mux.HandleFunc("/api/feedback", s.app.FeedbackHandler.SubmitHandler)

	// API routes - Request logs
	mux.HandleFunc("/api/requests", s.app.RequestsHandler.ListHandler)
	mux.HandleFunc("/api/requests/", s.app.RequestsHandler.GetHandler)

	// API routes - Corpus
	mux.HandleFunc("/api/corpus/backfill", s.app.CorpusHandler.BackfillHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	return mux
}
