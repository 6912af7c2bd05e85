package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jgoulah/envirolink/pkg/models"
)

const dateLayout = "2006-01-02"

// InsertItem stores a new inventory item
func (db *DB) InsertItem(item models.InventoryItem) error {
	query := `
	INSERT INTO inventory_items (id, name, quantity, category, expiry_date, notes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	createdAt := time.Now().UTC().Format(time.RFC3339)
	_, err := db.conn.Exec(query,
		item.ID, item.Name, item.Quantity, string(item.Category),
		item.ExpiryDate.Format(dateLayout), item.Notes, createdAt)
	if err != nil {
		return fmt.Errorf("inserting inventory item: %w", err)
	}
	return nil
}

// GetItem retrieves one item, or nil if it does not exist
func (db *DB) GetItem(id string) (*models.InventoryItem, error) {
	query := `
	SELECT id, name, quantity, category, expiry_date, notes
	FROM inventory_items
	WHERE id = ?
	`

	rows, err := db.conn.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("querying inventory item: %w", err)
	}
	items, err := scanItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListItems retrieves all items, soonest expiry first
func (db *DB) ListItems() ([]models.InventoryItem, error) {
	query := `
	SELECT id, name, quantity, category, expiry_date, notes
	FROM inventory_items
	ORDER BY expiry_date ASC, name ASC
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying inventory items: %w", err)
	}
	return scanItems(rows)
}

// DeleteItem removes an item and reports whether it existed
func (db *DB) DeleteItem(id string) (bool, error) {
	res, err := db.conn.Exec(`DELETE FROM inventory_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting inventory item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted rows: %w", err)
	}
	return n > 0, nil
}

func scanItems(rows *sql.Rows) ([]models.InventoryItem, error) {
	defer rows.Close()

	var results []models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		var category, expiry string
		var notes sql.NullString

		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &category, &expiry, &notes); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		var err error
		item.ExpiryDate, err = time.ParseInLocation(dateLayout, expiry, time.Local)
		if err != nil {
			return nil, fmt.Errorf("parsing expiry_date: %w", err)
		}
		item.Category = models.ParseCategory(category)
		item.Notes = notes.String

		results = append(results, item)
	}

	return results, rows.Err()
}
