package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/chat"
)

// ChatRequest is the body of a chat message
type ChatRequest struct {
	Text string `json:"text"`
}

// session returns the named session, creating it on first use
func (h *Handler) session(name string) *chat.Session {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	if e, ok := h.sessions[name]; ok && now.Sub(e.lastUsed) < sessionIdle {
		e.lastUsed = now
		return e.session
	}

	h.expireSessions(now)
	e := &sessionEntry{session: h.newSession(), lastUsed: now}
	h.sessions[name] = e
	return e.session
}

// expireSessions drops idle sessions, then the least recently used ones
// until there is room for one more. Callers hold h.mu.
func (h *Handler) expireSessions(now time.Time) {
	for name, e := range h.sessions {
		if now.Sub(e.lastUsed) >= sessionIdle {
			delete(h.sessions, name)
		}
	}

	for len(h.sessions) > 0 && len(h.sessions) >= h.maxSessions {
		var oldest string
		var oldestAt time.Time
		for name, e := range h.sessions {
			if oldestAt.IsZero() || e.lastUsed.Before(oldestAt) {
				oldest, oldestAt = name, e.lastUsed
			}
		}
		delete(h.sessions, oldest)
	}
}

// PostMessage sends a message and returns the bot's reply
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s := h.session(chi.URLParam(r, "session"))
	reply, err := s.Send(r.Context(), req.Text)
	if errors.Is(err, ai.ErrEmptyInput) {
		http.Error(w, "message text is required", http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, reply)
}

// PostRetry answers the session's last message again
func (h *Handler) PostRetry(w http.ResponseWriter, r *http.Request) {
	s := h.session(chi.URLParam(r, "session"))

	reply, err := s.Retry(r.Context())
	if errors.Is(err, chat.ErrNothingToRetry) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	writeJSON(w, r, http.StatusOK, reply)
}

// ListMessages returns the session transcript
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	s := h.session(chi.URLParam(r, "session"))
	writeJSON(w, r, http.StatusOK, s.Messages())
}

// ListSuggestions returns ?n= suggested questions for the session
func (h *Handler) ListSuggestions(w http.ResponseWriter, r *http.Request) {
	n := defaultSuggestions
	if v, err := strconv.Atoi(r.URL.Query().Get("n")); err == nil && v > 0 {
		n = v
	}

	s := h.session(chi.URLParam(r, "session"))
	writeJSON(w, r, http.StatusOK, s.Suggestions(n))
}
