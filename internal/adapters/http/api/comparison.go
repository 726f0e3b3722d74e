// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"

	"github.com/okian/faceoff/internal/domain/model"
	"github.com/okian/faceoff/internal/domain/selection"
)

// ComparisonHandler serves the next pair to compare.
type ComparisonHandler struct {
	deps Dependencies
}

// NewComparisonHandler creates a new comparison handler.
func NewComparisonHandler(deps Dependencies) *ComparisonHandler {
	return &ComparisonHandler{deps: deps}
}

type comparisonResponse struct {
	Item1 model.Item `json:"item1"`
	Item2 model.Item `json:"item2"`
}

// HandleGetComparison handles GET /comparison requests. Serving a pair is
// read-only and safely retryable; no comparison row is persisted here.
func (h *ComparisonHandler) HandleGetComparison(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	item1, item2, err := h.deps.ServeComparison(r.Context())
	if err != nil {
		if errors.Is(err, selection.ErrInsufficientItems) {
			writeError(w, http.StatusNotFound, "insufficient_items", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, comparisonResponse{Item1: item1, Item2: item2})
}
