// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	json "github.com/goccy/go-json"

	service "github.com/okian/faceoff/internal/app"
	"github.com/okian/faceoff/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the orchestrator implementation.
type Dependencies interface {
	ServeComparison(ctx context.Context) (model.Item, model.Item, error)
	SubmitVote(ctx context.Context, item1ID, item2ID, winnerID string) (service.VoteResult, error)
	Rankings(ctx context.Context, limit int) ([]model.Item, error)
	AddItem(ctx context.Context, it model.Item) (model.Item, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	comparisonHandler *ComparisonHandler
	votesHandler      *VotesHandler
	rankingsHandler   *RankingsHandler
	itemsHandler      *ItemsHandler
	statsHandler      *StatsHandler
	healthHandler     *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxRankingsLimit int) *Server {
	return &Server{
		comparisonHandler: NewComparisonHandler(deps),
		votesHandler:      NewVotesHandler(deps),
		rankingsHandler:   NewRankingsHandler(deps, maxRankingsLimit),
		itemsHandler:      NewItemsHandler(deps),
		statsHandler:      NewStatsHandler(statsProvider),
		healthHandler:     NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/comparison", MetricsMiddleware(s.comparisonHandler.HandleGetComparison, "comparison"))
	mux.HandleFunc("/votes", MetricsMiddleware(s.votesHandler.HandlePostVote, "votes"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/items", MetricsMiddleware(s.itemsHandler.HandlePostItem, "items"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
