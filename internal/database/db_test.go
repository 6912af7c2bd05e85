package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/envirolink/pkg/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := New(path)
	require.NoError(t, err)
	_, err = db.InsertReading(models.EnergyReading{Timestamp: time.Now(), Value: 1}, "mock")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(path)
	require.NoError(t, err)
	defer db.Close()

	latest, err := db.LatestReading()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 1.0, latest.Value)
}

func TestReadings_InsertIgnoresDuplicates(t *testing.T) {
	db := newTestDB(t)
	ts := time.Date(2024, 3, 4, 10, 0, 0, 0, time.Local)
	r := models.EnergyReading{Timestamp: ts, Value: 2.5}

	inserted, err := db.InsertReading(r, "mock")
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = db.InsertReading(r, "mock")
	require.NoError(t, err)
	assert.False(t, inserted)

	inserted, err = db.InsertReading(r, "csv")
	require.NoError(t, err)
	assert.True(t, inserted, "same timestamp from another source is a separate row")
}

func TestReadings_ListRange(t *testing.T) {
	db := newTestDB(t)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)

	for h := 0; h < 24; h++ {
		_, err := db.InsertReading(models.EnergyReading{
			Timestamp: day.Add(time.Duration(h) * time.Hour),
			Value:     float64(h),
		}, "mock")
		require.NoError(t, err)
	}
	// next day, outside the range
	_, err := db.InsertReading(models.EnergyReading{Timestamp: day.AddDate(0, 0, 1), Value: 99}, "mock")
	require.NoError(t, err)

	_, err = db.InsertReading(models.EnergyReading{Timestamp: day.Add(30 * time.Minute), Value: 7}, "realtime")
	require.NoError(t, err)

	readings, err := db.ListReadings(day, day.AddDate(0, 0, 1), "mock")
	require.NoError(t, err)
	require.Len(t, readings, 24)

	assert.True(t, readings[0].Timestamp.Equal(day))
	assert.Equal(t, 23.0, readings[23].Value)
	assert.Equal(t, "kWh", readings[5].Unit)

	all, err := db.ListReadings(day, day.AddDate(0, 0, 1), "")
	require.NoError(t, err)
	assert.Len(t, all, 25)

	has, err := db.HasReadings(day.Add(13 * time.Hour))
	require.NoError(t, err)
	assert.True(t, has)

	has, err = db.HasReadings(day.AddDate(0, 0, -1))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestReadings_Latest(t *testing.T) {
	db := newTestDB(t)

	latest, err := db.LatestReading()
	require.NoError(t, err)
	assert.Nil(t, latest)

	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.Local)
	for i, v := range []float64{1, 3, 2} {
		_, err := db.InsertReading(models.EnergyReading{Timestamp: base.Add(time.Duration(i) * time.Minute), Value: v}, "realtime")
		require.NoError(t, err)
	}

	latest, err = db.LatestReading()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2.0, latest.Value)
}

func TestReadings_PublishFlow(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)

	for h := 0; h < 3; h++ {
		_, err := db.InsertReading(models.EnergyReading{Timestamp: base.Add(time.Duration(h) * time.Hour), Value: 1}, "mock")
		require.NoError(t, err)
	}

	pending, err := db.ListUnpublishedReadings()
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "mock", pending[0].Source)

	require.NoError(t, db.MarkPublished(pending[0].ID, pending[1].ID))
	require.NoError(t, db.MarkPublished())

	pending, err = db.ListUnpublishedReadings()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Timestamp.Equal(base.Add(2*time.Hour)))

	all, err := db.ListStoredReadings()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInventory_CRUD(t *testing.T) {
	db := newTestDB(t)
	soon := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	later := time.Date(2024, 3, 9, 0, 0, 0, 0, time.Local)

	require.NoError(t, db.InsertItem(models.InventoryItem{
		ID: "b", Name: "Milk", Quantity: "1 l", Category: models.CategoryDairy, ExpiryDate: later,
	}))
	require.NoError(t, db.InsertItem(models.InventoryItem{
		ID: "a", Name: "Spinach", Quantity: "1 bag", Category: models.CategoryVegetables, ExpiryDate: soon, Notes: "fridge",
	}))

	items, err := db.ListItems()
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Spinach", items[0].Name)
	assert.Equal(t, "fridge", items[0].Notes)
	assert.True(t, items[0].ExpiryDate.Equal(soon))
	assert.Equal(t, models.CategoryDairy, items[1].Category)

	item, err := db.GetItem("b")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Milk", item.Name)

	missing, err := db.GetItem("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	deleted, err := db.DeleteItem("a")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = db.DeleteItem("a")
	require.NoError(t, err)
	assert.False(t, deleted)

	require.Error(t, db.InsertItem(models.InventoryItem{ID: "b", Name: "dup", Quantity: "1", Category: models.CategoryOther, ExpiryDate: later}))
}

func TestAlerts(t *testing.T) {
	db := newTestDB(t)
	base := time.Date(2024, 3, 4, 18, 0, 0, 0, time.Local)

	first, err := db.InsertAlert(models.Alert{CreatedAt: base, Title: "High usage", Description: "9.5 kWh", Severity: models.PriorityHigh})
	require.NoError(t, err)
	second, err := db.InsertAlert(models.Alert{CreatedAt: base.Add(time.Hour), Title: "High usage", Description: "10.1 kWh", Severity: models.PriorityMedium})
	require.NoError(t, err)

	alerts, err := db.ListAlerts(false)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, second, alerts[0].ID, "newest first")
	assert.Equal(t, models.PriorityMedium, alerts[0].Severity)
	assert.True(t, alerts[1].CreatedAt.Equal(base))

	require.NoError(t, db.MarkAlertsRead(first))

	unread, err := db.ListAlerts(true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, second, unread[0].ID)

	require.NoError(t, db.MarkAlertsRead())
	unread, err = db.ListAlerts(true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
