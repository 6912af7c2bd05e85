package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/envirolink/internal/ai"
	"github.com/jgoulah/envirolink/internal/carbon"
	"github.com/jgoulah/envirolink/internal/chat"
	"github.com/jgoulah/envirolink/internal/database"
	"github.com/jgoulah/envirolink/internal/energy"
	"github.com/jgoulah/envirolink/internal/fallback"
	"github.com/jgoulah/envirolink/internal/food"
	"github.com/jgoulah/envirolink/internal/handlers"
	"github.com/jgoulah/envirolink/internal/insights"
	"github.com/jgoulah/envirolink/internal/pipeline"
	"github.com/jgoulah/envirolink/internal/vision"
	"github.com/jgoulah/envirolink/pkg/models"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, req ai.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Daily(ctx context.Context, date time.Time) (models.DailyAggregate, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(models.DailyAggregate), args.Error(1)
}

func (m *mockProvider) RealTime(ctx context.Context) (models.EnergyReading, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.EnergyReading), args.Error(1)
}

func (m *mockProvider) Breakdown(ctx context.Context) ([]models.UsageBreakdown, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UsageBreakdown), args.Error(1)
}

func (m *mockProvider) Tips(ctx context.Context) ([]models.EnergyInsight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EnergyInsight), args.Error(1)
}

type testEnv struct {
	server    *httptest.Server
	gen       *mockGenerator
	inventory *food.Inventory
}

func newTestEnv(t *testing.T, provider energy.Provider) *testEnv {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gen := new(mockGenerator)
	p := pipeline.New(gen, logger, pipeline.WithPicker(fallback.NewPicker(1)))
	inventory := food.NewInventory(db)

	config := Config{
		Addr: ":0",
		Dependencies: handlers.Dependencies{
			Energy:     provider,
			Insights:   insights.NewEnergy(p),
			Inventory:  inventory,
			Recipes:    food.NewRecipeGenerator(p, logger),
			Vision:     vision.NewAnalyzer(p),
			NewSession: func() *chat.Session { return chat.NewSession(p, chat.WithSeed(1)) },
		},
	}

	srv := httptest.NewServer(ConfigureRouter(logger, config))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, gen: gen, inventory: inventory}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestWebAPI_Health(t *testing.T) {
	env := newTestEnv(t, energy.NewMockSource(1))

	status, body := env.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, body))
}

func TestWebAPI_Energy(t *testing.T) {
	env := newTestEnv(t, energy.NewMockSource(1))

	tests := []struct {
		name           string
		path           string
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "Daily",
			path:           "/api/v1/energy/daily?date=2024-03-04",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				day := decode[models.DailyAggregate](t, body)
				assert.Len(t, day.Readings, 24)
				assert.Equal(t, "2024-03-04", day.Date.Format("2006-01-02"))
			},
		},
		{
			name:           "Daily_InvalidDate",
			path:           "/api/v1/energy/daily?date=yesterday",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Week",
			path:           "/api/v1/energy/week?start=2024-03-01&days=3",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				days := decode[[]models.DailyAggregate](t, body)
				require.Len(t, days, 3)
				assert.Equal(t, "2024-03-03", days[2].Date.Format("2006-01-02"))
			},
		},
		{
			name:           "Week_DefaultsToSevenDays",
			path:           "/api/v1/energy/week",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				assert.Len(t, decode[[]models.DailyAggregate](t, body), 7)
			},
		},
		{
			name:           "Week_TooManyDays",
			path:           "/api/v1/energy/week?days=31",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "RealTime",
			path:           "/api/v1/energy/realtime",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				reading := decode[models.EnergyReading](t, body)
				assert.GreaterOrEqual(t, reading.Value, 0.1)
				assert.Equal(t, "kWh", reading.Unit)
			},
		},
		{
			name:           "Breakdown",
			path:           "/api/v1/energy/breakdown",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				resp := decode[handlers.BreakdownResponse](t, body)
				total := 0
				for _, b := range resp.Breakdown {
					total += b.Percentage
				}
				assert.Equal(t, 100, total)
				assert.NotEmpty(t, resp.Tips)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, status, string(body))
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestWebAPI_EnergyErrors(t *testing.T) {
	provider := new(mockProvider)
	provider.On("Daily", mock.Anything, mock.Anything).Return(models.DailyAggregate{}, energy.ErrNoData)
	provider.On("RealTime", mock.Anything).Return(models.EnergyReading{}, &energy.AuthError{StatusCode: 401})
	provider.On("Breakdown", mock.Anything).Return([]models.UsageBreakdown{{Category: "Other", Percentage: 100}}, nil)
	provider.On("Tips", mock.Anything).Return(nil, assert.AnError)

	env := newTestEnv(t, provider)

	status, _ := env.do(t, http.MethodGet, "/api/v1/energy/daily", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = env.do(t, http.MethodGet, "/api/v1/energy/realtime", nil)
	assert.Equal(t, http.StatusBadGateway, status)

	status, body := env.do(t, http.MethodGet, "/api/v1/energy/breakdown", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[handlers.BreakdownResponse](t, body).Tips)

	// insights still answer when there is no data, without calling the generator
	status, body = env.do(t, http.MethodGet, "/api/v1/energy/insights", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, decode[handlers.TextResponse](t, body).Text)
	env.gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestWebAPI_Insights(t *testing.T) {
	env := newTestEnv(t, energy.NewMockSource(1))
	env.gen.On("Generate", mock.Anything, mock.Anything).Return("## Tip\nRun laundry **off-peak**.", nil).Once()
	env.gen.On("Generate", mock.Anything, mock.Anything).Return("", &ai.Error{Kind: ai.ErrTransport, StatusCode: 503})

	status, body := env.do(t, http.MethodGet, "/api/v1/energy/insights?days=3", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Tip\nRun laundry off-peak.", decode[handlers.TextResponse](t, body).Text)

	status, body = env.do(t, http.MethodGet, "/api/v1/energy/insights?days=3", nil)
	assert.Equal(t, http.StatusOK, status, "generation failures still answer 200")
	assert.Contains(t, decode[handlers.TextResponse](t, body).Text, "kWh")
}

func TestWebAPI_InsightsSkipMissingDays(t *testing.T) {
	today := time.Now()
	isToday := func(d time.Time) bool {
		y, m, day := d.Date()
		ty, tm, tday := today.Date()
		return y == ty && m == tm && day == tday
	}

	provider := new(mockProvider)
	provider.On("Daily", mock.Anything, mock.MatchedBy(isToday)).Return(models.DailyAggregate{}, energy.ErrNoData)
	provider.On("Daily", mock.Anything, mock.Anything).Return(models.DailyAggregate{
		TotalConsumption: 24,
		PeakTime:         "18:00-19:00",
		Readings:         []models.EnergyReading{{Value: 24, Unit: "kWh"}},
	}, nil)

	env := newTestEnv(t, provider)
	env.gen.On("Generate", mock.Anything, mock.Anything).Return("Use less at peak.", nil)

	status, body := env.do(t, http.MethodGet, "/api/v1/energy/insights?days=7", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Use less at peak.", decode[handlers.TextResponse](t, body).Text)
	env.gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestWebAPI_Chat(t *testing.T) {
	env := newTestEnv(t, energy.NewMockSource(1))
	env.gen.On("Generate", mock.Anything, mock.Anything).Return("Compost your scraps.", nil)

	status, body := env.do(t, http.MethodPost, "/api/v1/chat/abc/messages", jsonBody(t, handlers.ChatRequest{Text: "food waste?"}))
	require.Equal(t, http.StatusOK, status, string(body))
	reply := decode[models.ChatMessage](t, body)
	assert.Equal(t, "Compost your scraps.", reply.Text)
	assert.Equal(t, models.SenderBot, reply.Sender)

	status, _ = env.do(t, http.MethodPost, "/api/v1/chat/abc/messages", jsonBody(t, handlers.ChatRequest{Text: "  "}))
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/api/v1/chat/abc/messages", nil)
	assert.Equal(t, http.StatusOK, status)
	msgs := decode[[]models.ChatMessage](t, body)
	require.Len(t, msgs, 3)
	assert.Equal(t, chat.Greeting, msgs[0].Text)

	status, body = env.do(t, http.MethodPost, "/api/v1/chat/abc/retry", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Compost your scraps.", decode[models.ChatMessage](t, body).Text)

	// sessions are independent
	status, _ = env.do(t, http.MethodPost, "/api/v1/chat/other/retry", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, body = env.do(t, http.MethodGet, "/api/v1/chat/abc/suggestions?n=2", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]string](t, body), 2)
}

func TestWebAPI_Inventory(t *testing.T) {
	env := newTestEnv(t, energy.NewMockSource(1))
	soon := time.Now().AddDate(0, 0, 1).Format("2006-01-02")

	status, body := env.do(t, http.MethodPost, "/api/v1/inventory", jsonBody(t, handlers.AddItemRequest{
		Name: "Spinach", Quantity: "1 bag", Category: "vegetables", ExpiryDate: soon,
	}))
	require.Equal(t, http.StatusCreated, status, string(body))
	spinach := decode[models.InventoryItem](t, body)
	assert.NotEmpty(t, spinach.ID)

	status, body = env.do(t, http.MethodPost, "/api/v1/inventory", jsonBody(t, handlers.AddItemRequest{Name: "Milk", Quantity: "1 l"}))
	require.Equal(t, http.StatusCreated, status, string(body))
	milk := decode[models.InventoryItem](t, body)
	assert.Equal(t, models.CategoryOther, milk.Category)

	status, _ = env.do(t, http.MethodPost, "/api/v1/inventory", jsonBody(t, handlers.AddItemRequest{Name: "Eggs"}))
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.do(t, http.MethodPost, "/api/v1/inventory", jsonBody(t, handlers.AddItemRequest{Name: "Eggs", Quantity: "6", ExpiryDate: "soon"}))
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.do(t, http.MethodGet, "/api/v1/inventory?search=SPIN", nil)
	assert.Equal(t, http.StatusOK, status)
	items := decode[[]models.InventoryItem](t, body)
	require.Len(t, items, 1)
	assert.Equal(t, "Spinach", items[0].Name)

	status, body = env.do(t, http.MethodGet, "/api/v1/inventory/stats", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, food.Stats{Items: 2, ExpiringSoon: 1}, decode[food.Stats](t, body))

	status, _ = env.do(t, http.MethodPost, "/api/v1/inventory/"+spinach.ID+"/used", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodPost, "/api/v1/inventory/"+milk.ID+"/wasted", nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = env.do(t, http.MethodPost, "/api/v1/inventory/"+milk.ID+"/wasted", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(t, http.MethodGet, "/api/v1/inventory/stats", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, food.Stats{Used: 1, Wasted: 1, SavedKg: 0.3, CO2SavedKg: 0.8}, decode[food.Stats](t, body))
}

func TestWebAPI_Recipes(t *testing.T) {
	env := newTestEnv(t, energy.NewMockSource(1))
	env.gen.On("Generate", mock.Anything, mock.Anything).Return("", &ai.Error{Kind: ai.ErrCredentialMissing})

	status, _ := env.do(t, http.MethodPost, "/api/v1/recipes", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status, "nothing expiring and no ingredients given")

	_, err := env.inventory.Add(models.InventoryItem{Name: "pasta", Quantity: "1 box", ExpiryDate: time.Now().AddDate(0, 0, 2)})
	require.NoError(t, err)
	_, err = env.inventory.Add(models.InventoryItem{Name: "tomato", Quantity: "3", ExpiryDate: time.Now().AddDate(0, 0, 1)})
	require.NoError(t, err)

	status, body := env.do(t, http.MethodPost, "/api/v1/recipes", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	recipes := decode[[]models.RecipeSuggestion](t, body)
	require.NotEmpty(t, recipes)
	assert.Equal(t, "Simple Pasta", recipes[0].Title)

	status, body = env.do(t, http.MethodPost, "/api/v1/recipes", jsonBody(t, handlers.RecipeRequest{Ingredients: []string{"durian"}}))
	require.Equal(t, http.StatusOK, status)
	recipes = decode[[]models.RecipeSuggestion](t, body)
	require.Len(t, recipes, 1)
	assert.Equal(t, []string{"durian"}, recipes[0].IngredientsUsed)
}

func TestWebAPI_Vision(t *testing.T) {
	env := newTestEnv(t, energy.NewMockSource(1))
	env.gen.On("Generate", mock.Anything, mock.MatchedBy(func(req ai.Request) bool {
		return req.HasImage()
	})).Return("Nice **garden**.", nil)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	status, body := env.do(t, http.MethodPost, "/api/v1/vision", bytes.NewReader(png))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Nice garden.", decode[handlers.TextResponse](t, body).Text)

	status, body = env.do(t, http.MethodPost, "/api/v1/vision", strings.NewReader("not an image"))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, fallback.VisionNotAnImage, decode[handlers.TextResponse](t, body).Text)
}

func TestWebAPI_Carbon(t *testing.T) {
	env := newTestEnv(t, energy.NewMockSource(1))

	in := carbon.Input{ElectricityKWh: 4000, NaturalGasTherms: 500, CarMiles: 5000, Flights: 1, MeatConsumption: 3, Recycling: 4}
	status, body := env.do(t, http.MethodPost, "/api/v1/carbon", jsonBody(t, in))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, carbon.Calculate(in), decode[carbon.Result](t, body))

	status, _ = env.do(t, http.MethodPost, "/api/v1/carbon", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestWebAPI_StartStops(t *testing.T) {
	api := NewWebAPI(zerolog.New(zerolog.NewTestWriter(t)), Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- api.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
