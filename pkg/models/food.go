package models

import (
	"strings"
	"time"
)

// Category is the food group of an inventory item
type Category string

const (
	CategoryFruits     Category = "fruits"
	CategoryVegetables Category = "vegetables"
	CategoryDairy      Category = "dairy"
	CategoryMeat       Category = "meat"
	CategoryGrains     Category = "grains"
	CategoryOther      Category = "other"
)

// Categories lists every known category in display order
var Categories = []Category{
	CategoryFruits,
	CategoryVegetables,
	CategoryDairy,
	CategoryMeat,
	CategoryGrains,
	CategoryOther,
}

// ParseCategory maps user input to a Category, defaulting to "other"
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c
		}
	}
	return CategoryOther
}

// InventoryItem is a food item the user is tracking until it is used or wasted
type InventoryItem struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Quantity   string    `json:"quantity"` // free text, e.g. "1 bag"
	Category   Category  `json:"category"`
	ExpiryDate time.Time `json:"expiry_date"`
	Notes      string    `json:"notes,omitempty"`
}

// RecipeSuggestion is a recipe built around ingredients from the inventory
type RecipeSuggestion struct {
	Title            string   `json:"title"`
	IngredientsUsed  []string `json:"ingredients_used"`
	OtherIngredients []string `json:"other_ingredients"`
	Instructions     string   `json:"instructions"`
}
