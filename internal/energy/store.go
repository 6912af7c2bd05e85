package energy

import (
	"context"
	"fmt"
	"time"

	"github.com/jgoulah/envirolink/pkg/models"
)

// Sources recorded with stored readings
const (
	SourceAPI      = "api"
	SourceCSV      = "csv"
	SourceMock     = "mock"
	SourceRealtime = "realtime"
)

// DailySources lists the hourly sources StoreSource aggregates, most
// trusted first. Real-time samples are never part of a day.
var DailySources = []string{SourceAPI, SourceCSV, SourceMock}

// ReadingStore is the subset of the local database StoreSource needs
type ReadingStore interface {
	ListReadings(start, end time.Time, source string) ([]models.EnergyReading, error)
	LatestReading() (*models.EnergyReading, error)
}

// StoreSource serves readings previously saved by fetch, import or watch
type StoreSource struct {
	store ReadingStore
}

// NewStoreSource wraps a reading store
func NewStoreSource(store ReadingStore) *StoreSource {
	return &StoreSource{store: store}
}

// Daily aggregates the stored hourly readings for date from the first of
// DailySources that has any for that day
func (s *StoreSource) Daily(_ context.Context, date time.Time) (models.DailyAggregate, error) {
	start := startOfDay(date)
	for _, source := range DailySources {
		readings, err := s.store.ListReadings(start, start.AddDate(0, 0, 1), source)
		if err != nil {
			return models.DailyAggregate{}, fmt.Errorf("listing %s readings: %w", source, err)
		}
		if len(readings) > 0 {
			return NewDailyAggregate(start, readings), nil
		}
	}
	return models.DailyAggregate{}, ErrNoData
}

// RealTime returns the most recent stored reading
func (s *StoreSource) RealTime(_ context.Context) (models.EnergyReading, error) {
	r, err := s.store.LatestReading()
	if err != nil {
		return models.EnergyReading{}, fmt.Errorf("getting latest reading: %w", err)
	}
	if r == nil {
		return models.EnergyReading{}, ErrNoData
	}
	return *r, nil
}
