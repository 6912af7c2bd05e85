package energy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jgoulah/envirolink/pkg/models"
)

// AuthError represents an authentication failure against the energy API
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

// HTTPSource reads energy data from a remote energy data API
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type dailyResponse struct {
	Date     string                 `json:"date"`
	Readings []models.EnergyReading `json:"hourly_readings"`
}

// NewHTTPSource creates an API client. Every request is bounded by timeout.
func NewHTTPSource(baseURL, apiKey string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Daily fetches one day of hourly readings and recomputes the aggregate locally
func (s *HTTPSource) Daily(ctx context.Context, date time.Time) (models.DailyAggregate, error) {
	params := url.Values{}
	params.Set("date", date.Format("2006-01-02"))

	var resp dailyResponse
	if err := s.get(ctx, "/energy/daily?"+params.Encode(), &resp); err != nil {
		return models.DailyAggregate{}, err
	}
	if len(resp.Readings) == 0 {
		return models.DailyAggregate{}, ErrNoData
	}

	return NewDailyAggregate(date, resp.Readings), nil
}

// RealTime fetches the current reading
func (s *HTTPSource) RealTime(ctx context.Context) (models.EnergyReading, error) {
	var reading models.EnergyReading
	if err := s.get(ctx, "/energy/realtime", &reading); err != nil {
		return models.EnergyReading{}, err
	}
	if reading.Unit == "" {
		reading.Unit = Unit
	}
	return reading, nil
}

// Breakdown fetches usage by category
func (s *HTTPSource) Breakdown(ctx context.Context) ([]models.UsageBreakdown, error) {
	var breakdown []models.UsageBreakdown
	if err := s.get(ctx, "/energy/breakdown", &breakdown); err != nil {
		return nil, err
	}
	return breakdown, nil
}

// Tips fetches personalized recommendations
func (s *HTTPSource) Tips(ctx context.Context) ([]models.EnergyInsight, error) {
	var tips []models.EnergyInsight
	if err := s.get(ctx, "/energy/insights", &tips); err != nil {
		return nil, err
	}
	return tips, nil
}

func (s *HTTPSource) get(ctx context.Context, path string, out any) error {
	reqURL := s.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	// Check for authentication errors
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &AuthError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("authentication failed (status %d): %s", resp.StatusCode, string(body)),
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
