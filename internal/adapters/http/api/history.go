package api

import (
	"context"
	"net/http"

	"github.com/okian/roundelo/internal/domain/types"
)

// HistoryDependencies defines the interface for rating history lookups.
type HistoryDependencies interface {
	History(ctx context.Context, playerID string) (types.PlayerHistory, error)
}

// HistoryHandler handles rating history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

// HandleGetHistory handles GET /history/{player_id} requests.
func (h *HistoryHandler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id, ok := pathID(r.URL.Path, "/history/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", badRequest("api.get_history", "missing player id"))
		return
	}
	hist, err := h.deps.History(r.Context(), id)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}
