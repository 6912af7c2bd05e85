package energy

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/envirolink/pkg/models"
)

// ParseCSV reads hourly readings from a utility usage export. The header must
// have a date column and a usage column; a "start time" column, when present,
// gives each reading its hour. Rows that cannot be parsed are skipped.
func ParseCSV(r io.Reader) ([]models.EnergyReading, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Read header to find column indices
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	dateCol := -1
	startTimeCol := -1
	usageCol := -1

	for i, col := range header {
		colLower := strings.ToLower(strings.TrimSpace(col))
		switch {
		case strings.Contains(colLower, "start time"):
			startTimeCol = i
		case strings.Contains(colLower, "date") && !strings.Contains(colLower, "time"):
			dateCol = i
		case strings.Contains(colLower, "usage") || strings.Contains(colLower, "kwh"):
			usageCol = i
		}
	}

	if dateCol == -1 || usageCol == -1 {
		return nil, fmt.Errorf("could not find required columns (date and usage) in CSV. Header: %v", header)
	}

	var results []models.EnergyReading
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		if len(record) <= usageCol || len(record) <= dateCol {
			continue
		}

		ts, err := parseDate(record[dateCol])
		if err != nil {
			continue
		}
		if startTimeCol != -1 && len(record) > startTimeCol {
			if start, err := parseDate(record[startTimeCol]); err == nil {
				ts = start
			}
		}

		usage, err := parseKWh(record[usageCol])
		if err != nil {
			continue
		}

		results = append(results, models.EnergyReading{Timestamp: ts, Value: usage, Unit: Unit})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Timestamp.Before(results[j].Timestamp)
	})
	return results, nil
}

// GroupByDay buckets readings by calendar day and builds one aggregate per day
func GroupByDay(readings []models.EnergyReading) []models.DailyAggregate {
	var days []models.DailyAggregate
	var current []models.EnergyReading
	var currentDay time.Time

	flush := func() {
		if len(current) > 0 {
			days = append(days, NewDailyAggregate(currentDay, current))
		}
	}

	for _, r := range readings {
		day := startOfDay(r.Timestamp)
		if !day.Equal(currentDay) {
			flush()
			currentDay = day
			current = nil
		}
		current = append(current, r)
	}
	flush()

	return days
}

// parseDate attempts the date/time formats seen in utility exports
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	formats := []string{
		"2006-01-02 15:04:05-07:00",
		"2006-01-02T15:04:05-07:00",
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"1/2/2006 15:04",
		"1/2/2006",
		"01/02/2006",
		"2006-01-02",
		"Jan 2, 2006",
	}

	for _, format := range formats {
		if t, err := time.ParseInLocation(format, s, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// parseKWh parses a kWh value, tolerating thousands separators and a unit suffix
func parseKWh(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ToLower(s)
	s = strings.TrimSuffix(s, "kwh")

	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	return strconv.ParseFloat(s, 64)
}
