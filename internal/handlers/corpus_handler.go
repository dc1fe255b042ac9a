package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
)

// BackfillTrigger starts an embedding backfill in the background
type BackfillTrigger interface {
	RunNow()
}

type CorpusHandler struct {
	backfill BackfillTrigger
	logger   arbor.ILogger
}

func NewCorpusHandler(backfill BackfillTrigger, logger arbor.ILogger) *CorpusHandler {
	return &CorpusHandler{
		backfill: backfill,
		logger:   logger,
	}
}

// BackfillHandler handles POST /api/corpus/backfill
func (h *CorpusHandler) BackfillHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	h.backfill.RunNow()
	WriteStarted(w, "Embedding backfill started")
}
