package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jgoulah/envirolink/pkg/models"
)

// StoredReading is an energy reading with its row metadata
type StoredReading struct {
	ID     int
	Source string
	models.EnergyReading
}

// InsertReading inserts a reading, ignoring duplicates.
// It reports whether a new row was written.
func (db *DB) InsertReading(r models.EnergyReading, source string) (bool, error) {
	query := `
	INSERT OR IGNORE INTO energy_readings (timestamp, value, unit, source, created_at)
	VALUES (?, ?, ?, ?, ?)
	`

	unit := r.Unit
	if unit == "" {
		unit = "kWh"
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)

	res, err := db.conn.Exec(query, formatTime(r.Timestamp), r.Value, unit, source, createdAt)
	if err != nil {
		return false, fmt.Errorf("inserting energy reading: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking inserted rows: %w", err)
	}
	return n > 0, nil
}

// ListReadings returns readings from source in [start, end), oldest first.
// An empty source matches every source.
func (db *DB) ListReadings(start, end time.Time, source string) ([]models.EnergyReading, error) {
	query := `
	SELECT id, timestamp, value, unit, source
	FROM energy_readings
	WHERE timestamp >= ? AND timestamp < ? AND (? = '' OR source = ?)
	ORDER BY timestamp ASC
	`

	rows, err := db.conn.Query(query, formatTime(start), formatTime(end), source, source)
	if err != nil {
		return nil, fmt.Errorf("querying energy readings: %w", err)
	}
	stored, err := scanReadings(rows)
	if err != nil {
		return nil, err
	}

	results := make([]models.EnergyReading, 0, len(stored))
	for _, s := range stored {
		results = append(results, s.EnergyReading)
	}
	return results, nil
}

// LatestReading returns the newest reading, or nil when the table is empty
func (db *DB) LatestReading() (*models.EnergyReading, error) {
	query := `
	SELECT id, timestamp, value, unit, source
	FROM energy_readings
	ORDER BY timestamp DESC
	LIMIT 1
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying latest reading: %w", err)
	}
	stored, err := scanReadings(rows)
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}
	return &stored[0].EnergyReading, nil
}

// ListStoredReadings retrieves every reading with its row metadata, oldest first
func (db *DB) ListStoredReadings() ([]StoredReading, error) {
	query := `
	SELECT id, timestamp, value, unit, source
	FROM energy_readings
	ORDER BY timestamp ASC
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	return scanReadings(rows)
}

// ListUnpublishedReadings retrieves all unpublished readings, oldest first
func (db *DB) ListUnpublishedReadings() ([]StoredReading, error) {
	query := `
	SELECT id, timestamp, value, unit, source
	FROM energy_readings
	WHERE published = 0
	ORDER BY timestamp ASC
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying unpublished readings: %w", err)
	}
	return scanReadings(rows)
}

// MarkPublished marks readings as published
func (db *DB) MarkPublished(ids ...int) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	query := `UPDATE energy_readings SET published = 1 WHERE id IN (` + placeholders + `)`
	if _, err := db.conn.Exec(query, args...); err != nil {
		return fmt.Errorf("marking readings as published: %w", err)
	}
	return nil
}

// HasReadings checks if any readings exist for the calendar day containing date
func (db *DB) HasReadings(date time.Time) (bool, error) {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, date.Location())

	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM energy_readings WHERE timestamp >= ? AND timestamp < ?`,
		formatTime(start), formatTime(start.AddDate(0, 0, 1)),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("counting readings: %w", err)
	}
	return count > 0, nil
}

func scanReadings(rows *sql.Rows) ([]StoredReading, error) {
	defer rows.Close()

	var results []StoredReading
	for rows.Next() {
		var r StoredReading
		var ts string
		if err := rows.Scan(&r.ID, &ts, &r.Value, &r.Unit, &r.Source); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		t, err := parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("parsing timestamp: %w", err)
		}
		r.Timestamp = t

		results = append(results, r)
	}

	return results, rows.Err()
}
