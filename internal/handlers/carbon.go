package handlers

import (
	"net/http"

	"github.com/jgoulah/envirolink/internal/carbon"
)

// PostCarbon calculates a carbon footprint
func (h *Handler) PostCarbon(w http.ResponseWriter, r *http.Request) {
	var in carbon.Input
	if err := decodeJSON(w, r, &in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	writeJSON(w, r, http.StatusOK, carbon.Calculate(in))
}
