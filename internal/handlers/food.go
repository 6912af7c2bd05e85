package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/jgoulah/envirolink/internal/food"
	"github.com/jgoulah/envirolink/pkg/models"
)

// AddItemRequest is the body for adding an inventory item. ExpiryDate is
// YYYY-MM-DD and optional.
type AddItemRequest struct {
	Name       string `json:"name"`
	Quantity   string `json:"quantity"`
	Category   string `json:"category"`
	ExpiryDate string `json:"expiry_date"`
	Notes      string `json:"notes"`
}

// ListItems returns inventory items, optionally filtered by ?search=
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.inventory.List(r.URL.Query().Get("search"))
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to list inventory")
		http.Error(w, "failed to list inventory", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	writeJSON(w, r, http.StatusOK, items)
}

// AddItem stores a new item
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	item := models.InventoryItem{
		Name:     req.Name,
		Quantity: req.Quantity,
		Category: models.Category(req.Category),
		Notes:    req.Notes,
	}
	if req.ExpiryDate != "" {
		expiry, err := time.ParseInLocation(dateLayout, req.ExpiryDate, time.Local)
		if err != nil {
			http.Error(w, "invalid 'expiry_date' format. Expected format: YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		item.ExpiryDate = expiry
	}

	added, err := h.inventory.Add(item)
	switch {
	case errors.Is(err, food.ErrNameRequired), errors.Is(err, food.ErrQuantityRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to add item")
		http.Error(w, "failed to add item", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusCreated, added)
}

// MarkUsed removes an item that was eaten
func (h *Handler) MarkUsed(w http.ResponseWriter, r *http.Request) {
	h.removeItem(w, r, h.inventory.MarkUsed)
}

// MarkWasted removes an item that was thrown away
func (h *Handler) MarkWasted(w http.ResponseWriter, r *http.Request) {
	h.removeItem(w, r, h.inventory.MarkWasted)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request, remove func(string) (models.InventoryItem, error)) {
	id := chi.URLParam(r, "id")

	item, err := remove(id)
	switch {
	case errors.Is(err, food.ErrItemNotFound):
		http.Error(w, "item not found", http.StatusNotFound)
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("id", id).Msg("failed to remove item")
		http.Error(w, "failed to remove item", http.StatusInternalServerError)
		return
	}

	writeJSON(w, r, http.StatusOK, item)
}

// GetStats returns inventory statistics
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.inventory.Stats(h.now())
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to compute stats")
		http.Error(w, "failed to compute stats", http.StatusInternalServerError)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

// RecipeRequest lists the ingredients to cook with. When empty, items
// expiring within five days are used.
type RecipeRequest struct {
	Ingredients []string `json:"ingredients"`
}

// PostRecipes suggests recipes
func (h *Handler) PostRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req RecipeRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	ingredients := req.Ingredients
	if len(ingredients) == 0 {
		names, err := h.inventory.ExpiringNames(h.now(), food.RecipeWindowDays)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("failed to list expiring items")
			http.Error(w, "failed to list inventory", http.StatusInternalServerError)
			return
		}
		ingredients = names
	}
	if len(ingredients) == 0 {
		http.Error(w, "there are no items expiring soon to generate recipes for", http.StatusUnprocessableEntity)
		return
	}

	writeJSON(w, r, http.StatusOK, h.recipes.Generate(ctx, ingredients))
}
