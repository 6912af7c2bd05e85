package carbon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name string
		in   Input
		want Result
	}{
		{
			name: "defaults only",
			in:   Input{},
			want: Result{
				Total: 2400, Food: 1500, Waste: 900,
				Rating: RatingLow, Message: "Great job! Your footprint is lower than 80% of people.",
				Suggestions: []string{},
			},
		},
		{
			name: "average household",
			in:   Input{ElectricityKWh: 4000, NaturalGasTherms: 500, CarMiles: 5000, Flights: 1, MeatConsumption: 3, Recycling: 4},
			want: Result{
				Total: 8850, Energy: 3650, Transport: 3100, Food: 1500, Waste: 600,
				Rating: RatingAverage, Message: "Your footprint is around average. There are still ways to improve!",
				Suggestions: []string{
					"Switch to LED bulbs and energy-efficient appliances",
					"Consider carpooling, public transit, or a more fuel-efficient vehicle",
				},
			},
		},
		{
			name: "heavy",
			in:   Input{ElectricityKWh: 10000, CarMiles: 12000, Flights: 2, MeatConsumption: 5, Recycling: 1},
			want: Result{
				Total: 19500, Energy: 8500, Transport: 7000, Food: 2500, Waste: 1500,
				Rating: RatingHigh, Message: "Your footprint is higher than average. Consider the suggestions below to reduce it.",
				Suggestions: []string{
					"Switch to LED bulbs and energy-efficient appliances",
					"Consider carpooling, public transit, or a more fuel-efficient vehicle",
					"Try meat-free days and buy local, seasonal food",
					"Improve recycling habits and reduce single-use plastics",
				},
			},
		},
		{
			name: "scales clamped and negatives ignored",
			in:   Input{ElectricityKWh: -50, CarMiles: -1, MeatConsumption: 9, Recycling: -3},
			want: Result{
				Total: 4000, Food: 2500, Waste: 1500,
				Rating: RatingLow, Message: "Great job! Your footprint is lower than 80% of people.",
				Suggestions: []string{
					"Try meat-free days and buy local, seasonal food",
					"Improve recycling habits and reduce single-use plastics",
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Calculate(tt.in))
		})
	}
}

func TestCalculate_RatingBoundaries(t *testing.T) {
	// meat 1 and recycling 5 leave 800 kg; top up with electricity
	base := Input{MeatConsumption: 1, Recycling: 5}

	at := func(total float64) Input {
		in := base
		in.ElectricityKWh = (total - 800) / perKWh
		return in
	}

	assert.Equal(t, RatingLow, Calculate(at(5999)).Rating)
	assert.Equal(t, RatingAverage, Calculate(at(6000)).Rating)
	assert.Equal(t, RatingAverage, Calculate(at(9999)).Rating)
	assert.Equal(t, RatingHigh, Calculate(at(10000)).Rating)
}
