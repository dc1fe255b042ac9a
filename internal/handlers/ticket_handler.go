package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/supportdesk/internal/interfaces"
	"github.com/ternarybob/supportdesk/internal/models"
	"github.com/ternarybob/supportdesk/internal/services/tickets"
)

// TicketHandler handles escalation and ticket management requests
type TicketHandler struct {
	ticketService interfaces.TicketService
	logger        arbor.ILogger
}

func NewTicketHandler(ticketService interfaces.TicketService, logger arbor.ILogger) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		logger:        logger,
	}
}

type statusUpdateRequest struct {
	Status models.TicketStatus `json:"status"`
}

type supportReplyRequest struct {
	Message     string `json:"message"`
	SupportName string `json:"support_name"`
}

// EscalateHandler handles POST /api/escalate
func (h *TicketHandler) EscalateHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.EscalationRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.ticketService.Escalate(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err, "Ticket could not be created")
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"ticket_id": ticket.ID,
		"message":   fmt.Sprintf("Ticket #%d was created. Our support team will get back to you!", ticket.ID),
	})
}

// ListHandler handles GET /api/tickets?status=
func (h *TicketHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	status := models.TicketStatus(r.URL.Query().Get("status"))
	list, err := h.ticketService.List(r.Context(), status)
	if err != nil {
		h.writeServiceError(w, err, "Tickets could not be loaded")
		return
	}
	if list == nil {
		list = []*models.Ticket{}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tickets": list,
		"count":   len(list),
	})
}

// ItemHandler routes /api/tickets/{id} and /api/tickets/{id}/respond
func (h *TicketHandler) ItemHandler(w http.ResponseWriter, r *http.Request) {
	segments := PathSegments(r.URL.Path, "/api/tickets/")
	if len(segments) == 0 || len(segments) > 2 {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}

	id, err := strconv.ParseUint(segments[0], 10, 64)
	if err != nil || id == 0 {
		WriteError(w, http.StatusBadRequest, "Invalid ticket id")
		return
	}

	if len(segments) == 2 {
		if segments[1] != "respond" {
			WriteError(w, http.StatusNotFound, "Not found")
			return
		}
		h.respond(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPatch:
		h.updateStatus(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *TicketHandler) get(w http.ResponseWriter, r *http.Request, id uint64) {
	ticket, err := h.ticketService.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, err, "Ticket could not be loaded")
		return
	}
	WriteJSON(w, http.StatusOK, ticket)
}

// updateStatus accepts the status as a JSON body or as ?status=
func (h *TicketHandler) updateStatus(w http.ResponseWriter, r *http.Request, id uint64) {
	req := statusUpdateRequest{Status: models.TicketStatus(r.URL.Query().Get("status"))}
	if req.Status == "" {
		if err := DecodeJSON(w, r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	ticket, err := h.ticketService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.writeServiceError(w, err, "Ticket could not be updated")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Ticket #%d was set to '%s'", id, ticket.Status),
		"ticket":  ticket,
	})
}

func (h *TicketHandler) respond(w http.ResponseWriter, r *http.Request, id uint64) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req supportReplyRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	ticket, err := h.ticketService.Respond(r.Context(), id, req.SupportName, req.Message)
	if err != nil {
		h.writeServiceError(w, err, "Reply could not be sent")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Reply sent",
		"chat_history": ticket.ChatHistory,
	})
}

func (h *TicketHandler) writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, tickets.ErrTicketNotFound):
		WriteError(w, http.StatusNotFound, "Ticket not found")
	case errors.Is(err, tickets.ErrInvalidStatus), errors.Is(err, tickets.ErrInvalidRequest):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(message)
		WriteError(w, http.StatusInternalServerError, message)
	}
}
