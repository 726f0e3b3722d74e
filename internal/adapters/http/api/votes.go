// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	service "github.com/okian/faceoff/internal/app"
)

// VotesHandler resolves presented pairs.
type VotesHandler struct {
	deps Dependencies
}

// NewVotesHandler creates a new votes handler.
func NewVotesHandler(deps Dependencies) *VotesHandler {
	return &VotesHandler{deps: deps}
}

// voteRequest carries one vote or skip. An absent or empty winner_id
// denotes a skip.
type voteRequest struct {
	Item1ID  string `json:"item1_id"`
	Item2ID  string `json:"item2_id"`
	WinnerID string `json:"winner_id"`
}

func (v voteRequest) validate() error {
	switch {
	case strings.TrimSpace(v.Item1ID) == "":
		return errors.New("missing item1_id")
	case strings.TrimSpace(v.Item2ID) == "":
		return errors.New("missing item2_id")
	}
	return nil
}

// HandlePostVote handles POST /votes requests.
func (h *VotesHandler) HandlePostVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	res, err := h.deps.SubmitVote(r.Context(), req.Item1ID, req.Item2ID, req.WinnerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidWinner):
			writeError(w, http.StatusBadRequest, "invalid_winner", err)
		case errors.Is(err, service.ErrStaleComparison):
			// The client should request a fresh comparison.
			writeError(w, http.StatusConflict, "stale_comparison", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}
