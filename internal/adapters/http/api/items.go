// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/okian/faceoff/internal/domain/model"
)

// ItemsHandler handles admin catalog additions.
type ItemsHandler struct {
	deps Dependencies
}

// NewItemsHandler creates a new items handler.
func NewItemsHandler(deps Dependencies) *ItemsHandler {
	return &ItemsHandler{deps: deps}
}

type itemRequest struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

func (i itemRequest) validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return errors.New("missing title")
	}
	return nil
}

// HandlePostItem handles POST /items requests.
func (h *ItemsHandler) HandlePostItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	it, err := h.deps.AddItem(r.Context(), model.Item{
		ID:       uuid.NewString(),
		Title:    req.Title,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}
