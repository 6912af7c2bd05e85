package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/jgoulah/envirolink/internal/vision"
)

// PostVision analyzes the raw image in the request body
func (h *Handler) PostVision(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, vision.MaxImageBytes)

	text, err := h.vision.Analyze(r.Context(), body)
	if err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("failed to read image")
		http.Error(w, "could not read image", http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, TextResponse{Text: text})
}
