package database

import (
	"fmt"
	"time"

	"github.com/jgoulah/envirolink/pkg/models"
)

// InsertAlert stores an alert and returns its id
func (db *DB) InsertAlert(a models.Alert) (int, error) {
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	res, err := db.conn.Exec(
		`INSERT INTO alerts (created_at, title, description, severity, is_read) VALUES (?, ?, ?, ?, ?)`,
		formatTime(createdAt), a.Title, a.Description, string(a.Severity), a.IsRead,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting alert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading alert id: %w", err)
	}
	return int(id), nil
}

// ListAlerts retrieves alerts, newest first
func (db *DB) ListAlerts(unreadOnly bool) ([]models.Alert, error) {
	query := `SELECT id, created_at, title, description, severity, is_read FROM alerts`
	if unreadOnly {
		query += ` WHERE is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var results []models.Alert
	for rows.Next() {
		var a models.Alert
		var createdAt, severity string

		if err := rows.Scan(&a.ID, &createdAt, &a.Title, &a.Description, &severity, &a.IsRead); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		a.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		a.Severity = models.Priority(severity)

		results = append(results, a)
	}

	return results, rows.Err()
}

// MarkAlertsRead marks the given alerts read; with no ids it marks all of them
func (db *DB) MarkAlertsRead(ids ...int) error {
	if len(ids) == 0 {
		if _, err := db.conn.Exec(`UPDATE alerts SET is_read = 1`); err != nil {
			return fmt.Errorf("marking alerts read: %w", err)
		}
		return nil
	}

	for _, id := range ids {
		if _, err := db.conn.Exec(`UPDATE alerts SET is_read = 1 WHERE id = ?`, id); err != nil {
			return fmt.Errorf("marking alert %d read: %w", id, err)
		}
	}
	return nil
}
