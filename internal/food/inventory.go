// Package food tracks perishable items and suggests recipes for the ones
// about to expire.
package food

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jgoulah/envirolink/pkg/models"
)

const (
	// DefaultShelfLife is used when an item is added without an expiry date
	DefaultShelfLife = 7 * 24 * time.Hour

	// ExpiringSoonDays is the window counted by Stats
	ExpiringSoonDays = 3

	// RecipeWindowDays selects the items offered to recipe generation
	RecipeWindowDays = 5

	savedFoodKg = 0.3
	savedCO2Kg  = 0.8
)

var (
	ErrNameRequired     = errors.New("name is required")
	ErrQuantityRequired = errors.New("quantity is required")
	ErrItemNotFound     = errors.New("item not found")
)

// Store persists inventory items
type Store interface {
	InsertItem(item models.InventoryItem) error
	GetItem(id string) (*models.InventoryItem, error)
	ListItems() ([]models.InventoryItem, error)
	DeleteItem(id string) (bool, error)
}

// Stats summarizes the inventory and what has been saved so far
type Stats struct {
	Items        int     `json:"items"`
	ExpiringSoon int     `json:"expiring_soon"`
	Used         int     `json:"used"`
	Wasted       int     `json:"wasted"`
	SavedKg      float64 `json:"saved_kg"`
	CO2SavedKg   float64 `json:"co2_saved_kg"`
}

// Inventory manages food items on top of a Store. The used and wasted
// counters live in the process only.
type Inventory struct {
	store Store
	now   func() time.Time

	mu     sync.Mutex
	used   int
	wasted int
}

// NewInventory creates an inventory backed by store
func NewInventory(store Store) *Inventory {
	return &Inventory{store: store, now: time.Now}
}

// Add validates and stores a new item. Category defaults to "other" and the
// expiry date to a week from now.
func (inv *Inventory) Add(item models.InventoryItem) (models.InventoryItem, error) {
	item.Name = strings.TrimSpace(item.Name)
	item.Quantity = strings.TrimSpace(item.Quantity)
	if item.Name == "" {
		return models.InventoryItem{}, ErrNameRequired
	}
	if item.Quantity == "" {
		return models.InventoryItem{}, ErrQuantityRequired
	}

	item.Category = models.ParseCategory(string(item.Category))
	if item.ExpiryDate.IsZero() {
		item.ExpiryDate = inv.now().Add(DefaultShelfLife)
	}
	y, m, d := item.ExpiryDate.Date()
	item.ExpiryDate = time.Date(y, m, d, 0, 0, 0, 0, item.ExpiryDate.Location())
	item.ID = uuid.NewString()

	if err := inv.store.InsertItem(item); err != nil {
		return models.InventoryItem{}, fmt.Errorf("adding %s: %w", item.Name, err)
	}
	return item, nil
}

// List returns items whose name contains search (case-insensitive), soonest
// expiry first. An empty search returns everything.
func (inv *Inventory) List(search string) ([]models.InventoryItem, error) {
	items, err := inv.store.ListItems()
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}

	search = strings.ToLower(strings.TrimSpace(search))
	filtered := items[:0]
	for _, item := range items {
		if search == "" || strings.Contains(strings.ToLower(item.Name), search) {
			filtered = append(filtered, item)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].ExpiryDate.Before(filtered[j].ExpiryDate)
	})
	return filtered, nil
}

// MarkUsed removes an item that was eaten and credits the savings counters
func (inv *Inventory) MarkUsed(id string) (models.InventoryItem, error) {
	item, err := inv.remove(id)
	if err != nil {
		return models.InventoryItem{}, err
	}

	inv.mu.Lock()
	inv.used++
	inv.mu.Unlock()
	return item, nil
}

// MarkWasted removes an item that was thrown away
func (inv *Inventory) MarkWasted(id string) (models.InventoryItem, error) {
	item, err := inv.remove(id)
	if err != nil {
		return models.InventoryItem{}, err
	}

	inv.mu.Lock()
	inv.wasted++
	inv.mu.Unlock()
	return item, nil
}

func (inv *Inventory) remove(id string) (models.InventoryItem, error) {
	item, err := inv.store.GetItem(id)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("looking up item %s: %w", id, err)
	}
	if item == nil {
		return models.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	ok, err := inv.store.DeleteItem(id)
	if err != nil {
		return models.InventoryItem{}, fmt.Errorf("removing item %s: %w", id, err)
	}
	if !ok {
		return models.InventoryItem{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	return *item, nil
}

// Stats counts the stored items as of now
func (inv *Inventory) Stats(now time.Time) (Stats, error) {
	items, err := inv.store.ListItems()
	if err != nil {
		return Stats{}, fmt.Errorf("listing inventory: %w", err)
	}

	cutoff := now.Add(ExpiringSoonDays * 24 * time.Hour)
	stats := Stats{Items: len(items)}
	for _, item := range items {
		if !item.ExpiryDate.After(cutoff) {
			stats.ExpiringSoon++
		}
	}

	inv.mu.Lock()
	stats.Used = inv.used
	stats.Wasted = inv.wasted
	inv.mu.Unlock()

	stats.SavedKg = round1(float64(stats.Used) * savedFoodKg)
	stats.CO2SavedKg = round1(float64(stats.Used) * savedCO2Kg)
	return stats, nil
}

// ExpiringNames returns the names of items that expire within the given
// number of days, soonest first
func (inv *Inventory) ExpiringNames(now time.Time, withinDays int) ([]string, error) {
	items, err := inv.List("")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, item := range items {
		if DaysUntilExpiry(now, item.ExpiryDate) <= withinDays {
			names = append(names, item.Name)
		}
	}
	return names, nil
}

// DaysUntilExpiry returns the whole days left before expiry, rounded up.
// Expired items give zero or a negative number.
func DaysUntilExpiry(now, expiry time.Time) int {
	return int(math.Ceil(expiry.Sub(now).Hours() / 24))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
