package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/envirolink/internal/database"
	"github.com/jgoulah/envirolink/internal/food"
	"github.com/jgoulah/envirolink/pkg/models"
)

var (
	addQuantity string
	addCategory string
	addExpires  string
	addNotes    string
	listSearch  string
	recipeItems []string
)

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	Aliases: []string{"inv"},
	Short:   "Track food items before they expire",
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a food item",
	Args:  cobra.ExactArgs(1),
	RunE:  runInventoryAdd,
}

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List food items, soonest expiry first",
	RunE:  runInventoryList,
}

var inventoryUseCmd = &cobra.Command{
	Use:   "use [id]",
	Short: "Mark an item as used",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInventoryRemove(args[0], true)
	},
}

var inventoryWasteCmd = &cobra.Command{
	Use:   "waste [id]",
	Short: "Mark an item as wasted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInventoryRemove(args[0], false)
	},
}

var inventoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show inventory statistics",
	RunE:  runInventoryStats,
}

var inventoryRecipesCmd = &cobra.Command{
	Use:   "recipes",
	Short: "Suggest recipes for items that expire soon",
	Long: `Generates recipe suggestions built around the given ingredients, or around the
items expiring within the next few days when none are given.`,
	RunE: runInventoryRecipes,
}

func init() {
	inventoryAddCmd.Flags().StringVarP(&addQuantity, "quantity", "q", "", "quantity, e.g. \"1 bag\" (required)")
	inventoryAddCmd.Flags().StringVarP(&addCategory, "category", "c", "other", "fruits, vegetables, dairy, meat, grains or other")
	inventoryAddCmd.Flags().StringVarP(&addExpires, "expires", "e", "", "expiry date (YYYY-MM-DD or relative like 3d, default 7d)")
	inventoryAddCmd.Flags().StringVar(&addNotes, "notes", "", "free-form notes")
	inventoryListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by name")
	inventoryRecipesCmd.Flags().StringSliceVarP(&recipeItems, "ingredient", "i", nil, "ingredient to use (repeatable)")

	inventoryCmd.AddCommand(inventoryAddCmd, inventoryListCmd, inventoryUseCmd, inventoryWasteCmd, inventoryStatsCmd, inventoryRecipesCmd)
	rootCmd.AddCommand(inventoryCmd)
}

func openInventory() (*food.Inventory, *database.DB, error) {
	db, err := openDB()
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return food.NewInventory(db), db, nil
}

func runInventoryAdd(cmd *cobra.Command, args []string) error {
	item := models.InventoryItem{
		Name:     args[0],
		Quantity: addQuantity,
		Category: models.Category(addCategory),
		Notes:    addNotes,
	}
	if addExpires != "" {
		expiry, err := parseExpiry(addExpires, time.Now())
		if err != nil {
			return fmt.Errorf("parsing --expires: %w", err)
		}
		item.ExpiryDate = expiry
	}

	inv, db, err := openInventory()
	if err != nil {
		return err
	}
	defer db.Close()

	added, err := inv.Add(item)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Added %s (%s), expires %s [%s]\n",
		added.Name, added.Quantity, added.ExpiryDate.Format("2006-01-02"), shortID(added.ID))
	return nil
}

func runInventoryList(cmd *cobra.Command, args []string) error {
	inv, db, err := openInventory()
	if err != nil {
		return err
	}
	defer db.Close()

	items, err := inv.List(listSearch)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No items found")
		return nil
	}

	now := time.Now()
	fmt.Println("--------------------------------------------------------------------------")
	fmt.Printf("%-8s  %-20s  %-10s  %-11s  %s\n", "ID", "Name", "Quantity", "Category", "Expires")
	fmt.Println("--------------------------------------------------------------------------")
	for _, item := range items {
		marker := ""
		if food.DaysUntilExpiry(now, item.ExpiryDate) <= food.ExpiringSoonDays {
			marker = " ⚠"
		}
		fmt.Printf("%-8s  %-20s  %-10s  %-11s  %s (%s)%s\n",
			shortID(item.ID), item.Name, item.Quantity, item.Category,
			item.ExpiryDate.Format("2006-01-02"), humanize.Time(item.ExpiryDate), marker)
	}
	fmt.Println("--------------------------------------------------------------------------")
	fmt.Printf("Total: %d items\n", len(items))
	return nil
}

func runInventoryRemove(idOrPrefix string, used bool) error {
	inv, db, err := openInventory()
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := resolveItemID(inv, idOrPrefix)
	if err != nil {
		return err
	}

	var item models.InventoryItem
	if used {
		item, err = inv.MarkUsed(id)
	} else {
		item, err = inv.MarkWasted(id)
	}
	if err != nil {
		return err
	}

	if used {
		fmt.Printf("✓ Marked %s as used\n", item.Name)
	} else {
		fmt.Printf("✓ Marked %s as wasted\n", item.Name)
	}
	return nil
}

func runInventoryStats(cmd *cobra.Command, args []string) error {
	inv, db, err := openInventory()
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := inv.Stats(time.Now())
	if err != nil {
		return err
	}

	fmt.Printf("Items:          %d\n", stats.Items)
	fmt.Printf("Expiring soon:  %d (within %d days)\n", stats.ExpiringSoon, food.ExpiringSoonDays)
	fmt.Printf("Used:           %d\n", stats.Used)
	fmt.Printf("Wasted:         %d\n", stats.Wasted)
	fmt.Printf("Food saved:     %.1f kg\n", stats.SavedKg)
	fmt.Printf("CO2 avoided:    %.1f kg\n", stats.CO2SavedKg)
	return nil
}

func runInventoryRecipes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	inv, db, err := openInventory()
	if err != nil {
		return err
	}
	defer db.Close()

	ingredients := recipeItems
	if len(ingredients) == 0 {
		ingredients, err = inv.ExpiringNames(time.Now(), food.RecipeWindowDays)
		if err != nil {
			return err
		}
		if len(ingredients) == 0 {
			fmt.Printf("Nothing expires in the next %d days. Pass --ingredient to pick some.\n", food.RecipeWindowDays)
			return nil
		}
	}

	p, cleanup, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := commandContext(cmd)
	defer cancel()

	fmt.Printf("Finding recipes for %s...\n", strings.Join(ingredients, ", "))
	recipes := food.NewRecipeGenerator(p, logger).Generate(ctx, ingredients)

	for i, r := range recipes {
		fmt.Printf("\n%d. %s\n", i+1, r.Title)
		fmt.Printf("   Uses: %s\n", strings.Join(r.IngredientsUsed, ", "))
		if len(r.OtherIngredients) > 0 {
			fmt.Printf("   Also: %s\n", strings.Join(r.OtherIngredients, ", "))
		}
		fmt.Printf("   %s\n", strings.ReplaceAll(r.Instructions, "\n", "\n   "))
	}
	return nil
}

// resolveItemID accepts a full id or a unique prefix of one
func resolveItemID(inv *food.Inventory, prefix string) (string, error) {
	items, err := inv.List("")
	if err != nil {
		return "", err
	}

	var matches []string
	for _, item := range items {
		if item.ID == prefix {
			return item.ID, nil
		}
		if strings.HasPrefix(item.ID, prefix) {
			matches = append(matches, item.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%s: %w", prefix, food.ErrItemNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %s matches %d items", prefix, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// parseExpiry parses a date in YYYY-MM-DD format or a relative format (e.g., "3d" for 3 days from now)
func parseExpiry(s string, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}

	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s[:len(s)-1], "%d", &days); err == nil {
			return now.AddDate(0, 0, days), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days from now)", s)
}
