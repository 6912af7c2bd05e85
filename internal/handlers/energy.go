package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/jgoulah/envirolink/internal/energy"
	"github.com/jgoulah/envirolink/pkg/models"
)

// GetDaily returns one day of readings; ?date=YYYY-MM-DD defaults to today
func (h *Handler) GetDaily(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	date := h.now()
	if s := r.URL.Query().Get("date"); s != "" {
		var err error
		date, err = time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			http.Error(w, "invalid 'date' format. Expected format: YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	day, err := h.energy.Daily(ctx, date)
	if errors.Is(err, energy.ErrNoData) {
		http.Error(w, "no energy data for "+date.Format(dateLayout), http.StatusNotFound)
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch daily usage")
		http.Error(w, "failed to fetch energy data", http.StatusBadGateway)
		return
	}

	writeJSON(w, r, http.StatusOK, day)
}

// GetWeek returns consecutive days; ?start=YYYY-MM-DD&days=N, by default the
// last seven days
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	n, err := daysParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := h.now().AddDate(0, 0, -(n - 1))
	if s := r.URL.Query().Get("start"); s != "" {
		start, err = time.ParseInLocation(dateLayout, s, time.Local)
		if err != nil {
			http.Error(w, "invalid 'start' date format. Expected format: YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	days, err := energy.Week(ctx, h.energy, start, n)
	if err != nil {
		logger.Error().Err(err).Int("days", n).Msg("failed to fetch usage")
		http.Error(w, "failed to fetch energy data", http.StatusBadGateway)
		return
	}

	writeJSON(w, r, http.StatusOK, days)
}

// GetRealTime returns the current reading
func (h *Handler) GetRealTime(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reading, err := h.energy.RealTime(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to fetch real-time usage")
		http.Error(w, "failed to fetch energy data", http.StatusBadGateway)
		return
	}

	writeJSON(w, r, http.StatusOK, reading)
}

// BreakdownResponse is the usage split plus dashboard tips
type BreakdownResponse struct {
	Breakdown []models.UsageBreakdown `json:"breakdown"`
	Tips      []models.EnergyInsight  `json:"tips"`
}

// GetBreakdown returns the usage split by category and a few tips
func (h *Handler) GetBreakdown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	breakdown, err := h.energy.Breakdown(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch usage breakdown")
		http.Error(w, "failed to fetch energy data", http.StatusBadGateway)
		return
	}

	tips, err := h.energy.Tips(ctx)
	if err != nil {
		// tips are decoration; the breakdown is still useful on its own
		logger.Warn().Err(err).Msg("failed to fetch tips")
		tips = []models.EnergyInsight{}
	}

	writeJSON(w, r, http.StatusOK, BreakdownResponse{Breakdown: breakdown, Tips: tips})
}

// GetInsights returns generated commentary on the last ?days=N days. It
// answers 200 with fallback text when data or generation is unavailable.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	n, err := daysParam(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	days, err := energy.Available(ctx, h.energy, h.now(), n)
	if err != nil {
		logger.Warn().Err(err).Msg("no usage data for insights")
		days = nil
	}

	writeJSON(w, r, http.StatusOK, TextResponse{Text: h.insights.Insights(ctx, days)})
}

func daysParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("days")
	if s == "" {
		return defaultDays, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > energy.MaxDays {
		return 0, fmt.Errorf("'days' must be a number between 1 and %d", energy.MaxDays)
	}
	return n, nil
}
