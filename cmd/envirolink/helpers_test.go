package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/envirolink/internal/carbon"
	"github.com/jgoulah/envirolink/internal/config"
	"github.com/jgoulah/envirolink/internal/database"
	"github.com/jgoulah/envirolink/internal/food"
	"github.com/jgoulah/envirolink/internal/publisher"
	"github.com/jgoulah/envirolink/pkg/models"
)

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-03-04")
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)))

	d, err = parseDate("7d")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), d, time.Minute)

	for _, bad := range []string{"", "d", "yesterday", "03/04/2024"} {
		_, err := parseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseExpiry(t *testing.T) {
	now := time.Date(2024, 3, 4, 12, 0, 0, 0, time.Local)

	d, err := parseExpiry("3d", now)
	require.NoError(t, err)
	assert.True(t, d.Equal(now.AddDate(0, 0, 3)))

	d, err = parseExpiry("2024-03-10", now)
	require.NoError(t, err)
	assert.True(t, d.Equal(time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)))

	_, err = parseExpiry("soon", now)
	assert.Error(t, err)
}

func TestHighUsageAlert(t *testing.T) {
	ts := time.Date(2024, 3, 4, 18, 30, 0, 0, time.Local)

	a := highUsageAlert(models.EnergyReading{Timestamp: ts, Value: 10}, 9)
	assert.Equal(t, models.PriorityMedium, a.Severity)
	assert.Equal(t, "Usage of 10.00 kWh at 18:30 is above your 9.00 kWh threshold", a.Description)
	assert.True(t, a.CreatedAt.Equal(ts))

	a = highUsageAlert(models.EnergyReading{Timestamp: ts, Value: 13.5, Unit: "kWh"}, 9)
	assert.Equal(t, models.PriorityHigh, a.Severity)
}

func TestWatcherPoll(t *testing.T) {
	logger = zerolog.New(zerolog.NewTestWriter(t))
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	pub, err := publisher.New(&config.Config{})
	require.NoError(t, err)

	ts := time.Date(2024, 3, 4, 18, 0, 0, 0, time.Local)
	src := &fixedSource{readings: []models.EnergyReading{
		{Timestamp: ts, Value: 2, Unit: "kWh"},
		{Timestamp: ts.Add(time.Minute), Value: 12, Unit: "kWh"},
	}}
	w := &watcher{provider: src, db: db, pub: pub, threshold: 9}

	w.poll(context.Background())
	w.poll(context.Background())

	latest, err := db.LatestReading()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 12.0, latest.Value)

	alerts, err := db.ListAlerts(true)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "High energy usage", alerts[0].Title)
}

type fixedSource struct {
	readings []models.EnergyReading
	next     int
}

func (s *fixedSource) Daily(context.Context, time.Time) (models.DailyAggregate, error) {
	return models.DailyAggregate{}, nil
}

func (s *fixedSource) RealTime(context.Context) (models.EnergyReading, error) {
	r := s.readings[s.next]
	s.next++
	return r, nil
}

func TestMergeCarbonInput(t *testing.T) {
	var flags carbon.Input
	cmd := &cobra.Command{}
	cmd.Flags().Float64Var(&flags.CarMiles, "car-miles", 0, "")
	cmd.Flags().Float64Var(&flags.Flights, "flights", 0, "")
	cmd.Flags().Float64Var(&flags.ElectricityKWh, "electricity", 0, "")
	cmd.Flags().Float64Var(&flags.NaturalGasTherms, "gas", 0, "")
	cmd.Flags().IntVar(&flags.MeatConsumption, "meat", carbon.DefaultScale, "")
	cmd.Flags().IntVar(&flags.Recycling, "recycling", carbon.DefaultScale, "")
	require.NoError(t, cmd.ParseFlags([]string{"--flights", "4"}))

	file := carbon.Input{CarMiles: 5000, Flights: 1, MeatConsumption: 5}
	merged := mergeCarbonInput(file, flags, cmd)

	assert.Equal(t, carbon.Input{CarMiles: 5000, Flights: 4, MeatConsumption: 5}, merged)
}

func TestResolveItemID(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()
	inv := food.NewInventory(db)

	apple, err := inv.Add(models.InventoryItem{Name: "Apple", Quantity: "3"})
	require.NoError(t, err)

	id, err := resolveItemID(inv, apple.ID)
	require.NoError(t, err)
	assert.Equal(t, apple.ID, id)

	id, err = resolveItemID(inv, shortID(apple.ID))
	require.NoError(t, err)
	assert.Equal(t, apple.ID, id)

	_, err = resolveItemID(inv, "zzzz-not-an-id")
	assert.ErrorIs(t, err, food.ErrItemNotFound)
}
