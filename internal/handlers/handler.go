// Package handlers implements the HTTP API on top of the feature pipelines.
package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jgoulah/envirolink/internal/chat"
	"github.com/jgoulah/envirolink/internal/energy"
	"github.com/jgoulah/envirolink/internal/food"
	"github.com/jgoulah/envirolink/internal/insights"
	"github.com/jgoulah/envirolink/internal/vision"
)

const (
	defaultDays        = 7
	defaultSuggestions = 3
	dateLayout         = "2006-01-02"

	// chat sessions live in memory; idle ones expire and the least recently
	// used is evicted once the table is full
	maxSessions = 256
	sessionIdle = time.Hour
)

// Handler serves every API route
type Handler struct {
	energy    energy.Provider
	insights  *insights.Energy
	inventory *food.Inventory
	recipes   *food.RecipeGenerator
	vision    *vision.Analyzer
	now       func() time.Time

	newSession  func() *chat.Session
	maxSessions int
	mu          sync.Mutex
	sessions    map[string]*sessionEntry
}

type sessionEntry struct {
	session  *chat.Session
	lastUsed time.Time
}

// Dependencies are the services the handlers call into
type Dependencies struct {
	Energy     energy.Provider
	Insights   *insights.Energy
	Inventory  *food.Inventory
	Recipes    *food.RecipeGenerator
	Vision     *vision.Analyzer
	NewSession func() *chat.Session
}

// NewHandler creates a handler
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		energy:      deps.Energy,
		insights:    deps.Insights,
		inventory:   deps.Inventory,
		recipes:     deps.Recipes,
		vision:      deps.Vision,
		now:         time.Now,
		newSession:  deps.NewSession,
		maxSessions: maxSessions,
		sessions:    map[string]*sessionEntry{},
	}
}

// Health reports that the server is up
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// TextResponse wraps generated display text
type TextResponse struct {
	Text string `json:"text"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v)
}
