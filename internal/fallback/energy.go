package fallback

import (
	"fmt"
	"strings"

	"github.com/jgoulah/envirolink/internal/energy"
	"github.com/jgoulah/envirolink/pkg/models"
)

const noEnergyData = "There isn't enough energy data yet to analyze your usage. " +
	"Keep tracking your consumption for a few days and check back for personalized insights."

// EnergyInsights describes usage in prose using the same statistics the
// generated insights are based on
func EnergyInsights(days []models.DailyAggregate) string {
	s, err := energy.Summarize(days)
	if err != nil {
		return noEnergyData
	}

	var morningHeavy, eveningHeavy bool
	for _, d := range days {
		morning := energy.SumHours(d.Readings, 6, 12)
		evening := energy.SumHours(d.Readings, 17, 23)
		if morning > evening*1.25 {
			morningHeavy = true
		}
		if evening > morning*1.25 {
			eveningHeavy = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your average daily energy consumption is %.2f kWh. ", s.Average)
	fmt.Fprintf(&b, "Your highest usage was on %s at %.2f kWh, while your lowest was on %s at %.2f kWh. ",
		s.Highest.Date.Weekday(), s.Highest.Value, s.Lowest.Date.Weekday(), s.Lowest.Value)

	if morningHeavy {
		b.WriteString("You tend to use more energy in the mornings. Consider using energy-intensive appliances during off-peak hours to reduce costs. ")
	}
	if eveningHeavy {
		b.WriteString("Your evening energy usage is substantially higher than other times. Try to distribute your energy usage throughout the day to avoid peak rates. ")
	}

	fmt.Fprintf(&b, "Based on your patterns, you could save approximately %.2f kWh per week by optimizing your usage times and unplugging devices when not in use.",
		s.Total*0.15)

	return b.String()
}
