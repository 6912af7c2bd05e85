// Package insights generates energy usage commentary.
package insights

import (
	"context"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/energy"
	"github.com/jgoulah/envirolink/internal/fallback"
	"github.com/jgoulah/envirolink/internal/pipeline"
	"github.com/jgoulah/envirolink/pkg/models"
)

// Energy turns daily aggregates into short recommendations
type Energy struct {
	pipeline *pipeline.Pipeline
}

// NewEnergy creates an energy insight generator
func NewEnergy(p *pipeline.Pipeline) *Energy {
	return &Energy{pipeline: p}
}

// Insights returns plain-text insights for days. Without data the computed
// fallback is returned and no request is made.
func (e *Energy) Insights(ctx context.Context, days []models.DailyAggregate) string {
	summary, err := energy.Summarize(days)
	if err != nil {
		return fallback.EnergyInsights(days)
	}

	return e.pipeline.Run(ctx, pipeline.Job{
		Name:      "energy",
		System:    ai.EnergySystemPrompt,
		Summary:   "Here is my energy consumption data for analysis:\n" + summary.String(),
		Query:     ai.EnergyRequest(),
		Options:   ai.EnergyOptions,
		Cacheable: true,
		Fallback: func(error) string {
			return fallback.EnergyInsights(days)
		},
	})
}
