// Package carbon estimates a household's annual carbon footprint in
// kilograms of CO2 equivalent.
package carbon

import "math"

// Emission factors, kg CO2e per unit
const (
	perKWh        = 0.85
	perTherm      = 0.5
	perCarMile    = 0.4
	perFlight     = 1100
	perMeatLevel  = 500
	perRecycleGap = 300
)

// DefaultScale is used for a scale answer that was left at zero
const DefaultScale = 3

// Rating buckets the total footprint
type Rating string

const (
	RatingLow     Rating = "low"
	RatingAverage Rating = "average"
	RatingHigh    Rating = "high"
)

// Input holds the yearly answers. MeatConsumption and Recycling are 1-5
// scales where 5 means the most.
type Input struct {
	ElectricityKWh   float64 `json:"electricity_kwh" yaml:"electricity_kwh"`
	NaturalGasTherms float64 `json:"natural_gas_therms" yaml:"natural_gas_therms"`
	CarMiles         float64 `json:"car_miles" yaml:"car_miles"`
	Flights          float64 `json:"flights" yaml:"flights"`
	MeatConsumption  int     `json:"meat_consumption" yaml:"meat_consumption"`
	Recycling        int     `json:"recycling" yaml:"recycling"`
}

// Result is the footprint by category, rounded to whole kilograms
type Result struct {
	Total       int      `json:"total"`
	Energy      int      `json:"energy"`
	Transport   int      `json:"transport"`
	Food        int      `json:"food"`
	Waste       int      `json:"waste"`
	Rating      Rating   `json:"rating"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// Calculate estimates the footprint. Negative quantities count as zero and
// scales are clamped to 1-5.
func Calculate(in Input) Result {
	energy := nonNegative(in.ElectricityKWh)*perKWh + nonNegative(in.NaturalGasTherms)*perTherm
	transport := nonNegative(in.CarMiles)*perCarMile + nonNegative(in.Flights)*perFlight
	food := float64(scale(in.MeatConsumption)) * perMeatLevel
	waste := float64(6-scale(in.Recycling)) * perRecycleGap

	r := Result{
		Total:     int(math.Round(energy + transport + food + waste)),
		Energy:    int(math.Round(energy)),
		Transport: int(math.Round(transport)),
		Food:      int(math.Round(food)),
		Waste:     int(math.Round(waste)),
	}

	switch {
	case r.Total < 6000:
		r.Rating = RatingLow
		r.Message = "Great job! Your footprint is lower than 80% of people."
	case r.Total < 10000:
		r.Rating = RatingAverage
		r.Message = "Your footprint is around average. There are still ways to improve!"
	default:
		r.Rating = RatingHigh
		r.Message = "Your footprint is higher than average. Consider the suggestions below to reduce it."
	}

	r.Suggestions = []string{}
	if r.Energy > 2000 {
		r.Suggestions = append(r.Suggestions, "Switch to LED bulbs and energy-efficient appliances")
	}
	if r.Transport > 3000 {
		r.Suggestions = append(r.Suggestions, "Consider carpooling, public transit, or a more fuel-efficient vehicle")
	}
	if r.Food > 1500 {
		r.Suggestions = append(r.Suggestions, "Try meat-free days and buy local, seasonal food")
	}
	if r.Waste > 1000 {
		r.Suggestions = append(r.Suggestions, "Improve recycling habits and reduce single-use plastics")
	}

	return r
}

func scale(v int) int {
	switch {
	case v == 0:
		return DefaultScale
	case v < 1:
		return 1
	case v > 5:
		return 5
	}
	return v
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}
