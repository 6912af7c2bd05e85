package models

import "time"

// EnergyReading represents a single metered value (one hour for daily data)
type EnergyReading struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Unit      string    `json:"unit"`
}

// DailyAggregate represents a day of hourly readings plus the values derived from them
type DailyAggregate struct {
	Date               time.Time       `json:"date"` // Just the date (midnight, local)
	Readings           []EnergyReading `json:"hourly_readings"`
	TotalConsumption   float64         `json:"total_consumption"`
	AverageConsumption float64         `json:"average_consumption"`
	PeakTime           string          `json:"peak_time"` // e.g. "18:00-19:00"
	PeakValue          float64         `json:"peak_value"`
}

// UsageBreakdown is the share of consumption attributed to one category
type UsageBreakdown struct {
	Category   string  `json:"category"`
	Percentage int     `json:"percentage"`
	Value      float64 `json:"value"`
}

// InsightType classifies a dashboard insight
type InsightType string

const (
	InsightTip         InsightType = "tip"
	InsightAlert       InsightType = "alert"
	InsightAchievement InsightType = "achievement"
)

// Priority is shared by insights and alerts
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// EnergyInsight is a short, pre-written recommendation shown next to usage data
type EnergyInsight struct {
	ID          string      `json:"id"`
	Type        InsightType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Impact      float64     `json:"impact"` // kWh
	Priority    Priority    `json:"priority"`
}

// Alert is a stored notification about energy usage
type Alert struct {
	ID          int       `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Priority  `json:"severity"`
	IsRead      bool      `json:"is_read"`
}
