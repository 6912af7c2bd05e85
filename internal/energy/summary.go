package energy

import (
	"fmt"
	"strings"
	"time"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/pkg/models"
)

// DayValue is a day's total consumption
type DayValue struct {
	Date  time.Time
	Value float64
}

// Summary is the statistical reduction of a period of daily aggregates
type Summary struct {
	Days       int
	Total      float64
	Average    float64 // mean daily total, rounded to 2 decimals
	Highest    DayValue
	Lowest     DayValue
	Morning    float64 // 6am-12pm, averaged per day
	Afternoon  float64 // 12pm-6pm
	Evening    float64 // 6pm-12am
	Night      float64 // 12am-6am
	DailyLines []string
}

// Summarize reduces days to a Summary. Highest and lowest keep the first
// occurrence on ties. Readings are bucketed by position, so days with fewer
// than 24 readings contribute whatever they have.
func Summarize(days []models.DailyAggregate) (Summary, error) {
	if len(days) == 0 {
		return Summary{}, fmt.Errorf("summarizing energy data: %w", ai.ErrEmptyInput)
	}

	s := Summary{
		Days:       len(days),
		Highest:    DayValue{Date: days[0].Date, Value: days[0].TotalConsumption},
		Lowest:     DayValue{Date: days[0].Date, Value: days[0].TotalConsumption},
		DailyLines: make([]string, 0, len(days)),
	}

	var morning, afternoon, evening, night float64
	for _, d := range days {
		s.Total += d.TotalConsumption
		if d.TotalConsumption > s.Highest.Value {
			s.Highest = DayValue{Date: d.Date, Value: d.TotalConsumption}
		}
		if d.TotalConsumption < s.Lowest.Value {
			s.Lowest = DayValue{Date: d.Date, Value: d.TotalConsumption}
		}

		night += SumHours(d.Readings, 0, 6)
		morning += SumHours(d.Readings, 6, 12)
		afternoon += SumHours(d.Readings, 12, 18)
		evening += SumHours(d.Readings, 18, 24)

		s.DailyLines = append(s.DailyLines, fmt.Sprintf("%s: %.2f kWh (peak: %s)",
			ShortWeekday(d.Date), d.TotalConsumption, d.PeakTime))
	}

	n := float64(len(days))
	s.Average = round2(s.Total / n)
	s.Morning = round2(morning / n)
	s.Afternoon = round2(afternoon / n)
	s.Evening = round2(evening / n)
	s.Night = round2(night / n)

	return s, nil
}

// String renders the summary as bounded prompt text
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Period: %d days\n", s.Days)
	fmt.Fprintf(&b, "Average daily usage: %.2f kWh\n", s.Average)
	fmt.Fprintf(&b, "Highest day: %s (%.2f kWh)\n", s.Highest.Date.Weekday(), s.Highest.Value)
	fmt.Fprintf(&b, "Lowest day: %s (%.2f kWh)\n", s.Lowest.Date.Weekday(), s.Lowest.Value)
	fmt.Fprintf(&b, "Morning usage (6am-12pm): %.2f kWh\n", s.Morning)
	fmt.Fprintf(&b, "Afternoon usage (12pm-6pm): %.2f kWh\n", s.Afternoon)
	fmt.Fprintf(&b, "Evening usage (6pm-12am): %.2f kWh\n", s.Evening)
	fmt.Fprintf(&b, "Night usage (12am-6am): %.2f kWh\n", s.Night)
	fmt.Fprintf(&b, "Daily summary: %s", strings.Join(s.DailyLines, "; "))
	return b.String()
}

// SumHours adds the values of readings[from:to], clamped to what exists
func SumHours(readings []models.EnergyReading, from, to int) float64 {
	if to > len(readings) {
		to = len(readings)
	}
	var sum float64
	for i := from; i < to; i++ {
		sum += readings[i].Value
	}
	return sum
}

// ShortWeekday returns "Mon", "Tue", ...
func ShortWeekday(t time.Time) string {
	return t.Weekday().String()[:3]
}
