package energy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/envirolink/pkg/models"
)

func TestMockSource_Daily(t *testing.T) {
	src := NewMockSource(1)

	day, err := src.Daily(context.Background(), monday.Add(13*time.Hour))
	require.NoError(t, err)

	require.Len(t, day.Readings, 24)
	assert.Equal(t, monday, day.Date)
	for h, r := range day.Readings {
		assert.Equal(t, h, r.Timestamp.Hour())
		assert.Equal(t, Unit, r.Unit)
		assert.Greater(t, r.Value, 0.0)
		assert.LessOrEqual(t, r.Value, 11.0)
	}
	assert.NotEmpty(t, day.PeakTime)
	assert.InDelta(t, SumHours(day.Readings, 0, 24), day.TotalConsumption, 0.01)
}

func TestMockSource_SameSeedSameData(t *testing.T) {
	a, _ := NewMockSource(7).Daily(context.Background(), monday)
	b, _ := NewMockSource(7).Daily(context.Background(), monday)
	assert.Equal(t, a, b)
}

func TestMockSource_RealTime(t *testing.T) {
	src := NewMockSource(3)
	for _, hour := range []int{2, 8, 13, 19, 23} {
		src.now = func() time.Time { return monday.Add(time.Duration(hour) * time.Hour) }

		r, err := src.RealTime(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.Value, 0.1)
		assert.LessOrEqual(t, r.Value, 9.5)
		assert.Equal(t, Unit, r.Unit)
	}
}

func TestMockSource_Breakdown(t *testing.T) {
	src := NewMockSource(5)
	for i := 0; i < 20; i++ {
		parts, err := src.Breakdown(context.Background())
		require.NoError(t, err)
		require.Len(t, parts, 5)

		sum := 0
		for _, p := range parts {
			sum += p.Percentage
		}
		assert.Equal(t, 100, sum)
	}
}

func TestMockSource_Tips(t *testing.T) {
	src := NewMockSource(9)
	for i := 0; i < 20; i++ {
		tips, err := src.Tips(context.Background())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(tips), 2)
		assert.LessOrEqual(t, len(tips), 3)
	}
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Daily(ctx context.Context, date time.Time) (models.DailyAggregate, error) {
	args := m.Called(ctx, date)
	return args.Get(0).(models.DailyAggregate), args.Error(1)
}

func (m *mockSource) RealTime(ctx context.Context) (models.EnergyReading, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.EnergyReading), args.Error(1)
}

func TestWeek(t *testing.T) {
	src := new(mockSource)
	for i := 0; i < 3; i++ {
		date := monday.AddDate(0, 0, i)
		src.On("Daily", mock.Anything, date).Return(models.DailyAggregate{Date: date}, nil).Once()
	}

	days, err := Week(context.Background(), src, monday.Add(9*time.Hour), 3)
	require.NoError(t, err)
	assert.Len(t, days, 3)
	src.AssertExpectations(t)
}

func TestWeek_PropagatesErrors(t *testing.T) {
	src := new(mockSource)
	src.On("Daily", mock.Anything, monday).Return(models.DailyAggregate{}, ErrNoData)

	_, err := Week(context.Background(), src, monday, 2)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestWeek_RejectsBadLength(t *testing.T) {
	for _, n := range []int{0, -1, 31} {
		_, err := Week(context.Background(), NewMockSource(1), monday, n)
		assert.Error(t, err)
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/energy/daily":
			assert.Equal(t, "2024-01-01", r.URL.Query().Get("date"))
			w.Write([]byte(`{"date":"2024-01-01","hourly_readings":[
				{"timestamp":"2024-01-01T00:00:00Z","value":1.5,"unit":"kWh"},
				{"timestamp":"2024-01-01T01:00:00Z","value":2.5,"unit":"kWh"}]}`))
		case "/energy/realtime":
			w.Write([]byte(`{"timestamp":"2024-01-01T10:00:00Z","value":3.2}`))
		case "/energy/breakdown":
			w.Write([]byte(`[{"category":"Lighting","percentage":100,"value":10}]`))
		case "/energy/insights":
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte("nope"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", "secret", time.Second)
	ctx := context.Background()

	day, err := src.Daily(ctx, monday)
	require.NoError(t, err)
	assert.Equal(t, 4.0, day.TotalConsumption)
	assert.Equal(t, "1:00-2:00", day.PeakTime)

	r, err := src.RealTime(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.2, r.Value)
	assert.Equal(t, Unit, r.Unit)

	parts, err := src.Breakdown(ctx)
	require.NoError(t, err)
	assert.Len(t, parts, 1)

	_, err = src.Tips(ctx)
	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusForbidden, authErr.StatusCode)
}

func TestHTTPSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewHTTPSource(srv.URL, "", 20*time.Millisecond).RealTime(context.Background())
	assert.Error(t, err)
}

type storedRow struct {
	source string
	models.EnergyReading
}

type fakeStore struct {
	rows []storedRow
}

func (f *fakeStore) add(source string, readings ...models.EnergyReading) {
	for _, r := range readings {
		f.rows = append(f.rows, storedRow{source: source, EnergyReading: r})
	}
}

func (f *fakeStore) ListReadings(start, end time.Time, source string) ([]models.EnergyReading, error) {
	var out []models.EnergyReading
	for _, r := range f.rows {
		if source != "" && r.source != source {
			continue
		}
		if !r.Timestamp.Before(start) && r.Timestamp.Before(end) {
			out = append(out, r.EnergyReading)
		}
	}
	return out, nil
}

func (f *fakeStore) LatestReading() (*models.EnergyReading, error) {
	if len(f.rows) == 0 {
		return nil, nil
	}
	r := f.rows[len(f.rows)-1].EnergyReading
	return &r, nil
}

func TestStoreSource(t *testing.T) {
	store := &fakeStore{}
	store.add(SourceMock, flatDay(monday, 2).Readings...)
	src := NewStoreSource(store)

	day, err := src.Daily(context.Background(), monday)
	require.NoError(t, err)
	assert.Equal(t, 48.0, day.TotalConsumption)

	_, err = src.Daily(context.Background(), monday.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrNoData)

	latest, err := src.RealTime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 23, latest.Timestamp.Hour())

	_, err = NewStoreSource(&fakeStore{}).RealTime(context.Background())
	assert.ErrorIs(t, err, ErrNoData)
}

func TestStoreSource_MixedSourcesUseOneHourlySource(t *testing.T) {
	store := &fakeStore{}
	store.add(SourceMock, flatDay(monday, 1).Readings...)
	store.add(SourceCSV, flatDay(monday, 2).Readings...)
	for i := 0; i < 30; i++ {
		store.add(SourceRealtime, models.EnergyReading{
			Timestamp: monday.Add(time.Duration(i) * 10 * time.Second),
			Value:     5,
			Unit:      Unit,
		})
	}
	src := NewStoreSource(store)

	day, err := src.Daily(context.Background(), monday)
	require.NoError(t, err)
	assert.Len(t, day.Readings, 24)
	assert.Equal(t, 48.0, day.TotalConsumption, "csv wins over mock")

	s, err := Summarize([]models.DailyAggregate{day})
	require.NoError(t, err)
	assert.Equal(t, 12.0, s.Night)

	// real-time samples alone never make a day
	rtOnly := &fakeStore{}
	rtOnly.add(SourceRealtime, models.EnergyReading{Timestamp: monday.Add(time.Hour), Value: 5})
	_, err = NewStoreSource(rtOnly).Daily(context.Background(), monday)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAvailable_SkipsMissingDays(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 7; i++ {
		if i == 3 {
			continue
		}
		store.add(SourceMock, flatDay(monday.AddDate(0, 0, i), float64(i+1)).Readings...)
	}
	src := NewStoreSource(store)
	sunday := monday.AddDate(0, 0, 6).Add(15 * time.Hour)

	_, err := LastDays(context.Background(), src, sunday, 7)
	assert.ErrorIs(t, err, ErrNoData)

	days, err := Available(context.Background(), src, sunday, 7)
	require.NoError(t, err)
	require.Len(t, days, 6)
	assert.True(t, days[0].Date.Equal(monday))
	assert.True(t, days[3].Date.Equal(monday.AddDate(0, 0, 4)))

	_, err = Available(context.Background(), NewStoreSource(&fakeStore{}), sunday, 7)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = Available(context.Background(), src, sunday, 0)
	assert.Error(t, err)
}

func TestParseCSV(t *testing.T) {
	input := strings.Join([]string{
		"Date,Start Time,End Time,Usage (kWh)",
		"2024-01-01,2024-01-01 01:00,2024-01-01 02:00,1.25",
		"2024-01-01,2024-01-01 00:00,2024-01-01 01:00,0.75 kWh",
		"garbage,,,x",
		"2024-01-02,2024-01-02 00:00,2024-01-02 01:00,\"1,000\"",
	}, "\n")

	readings, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, readings, 3)
	assert.Equal(t, 0, readings[0].Timestamp.Hour())
	assert.Equal(t, 0.75, readings[0].Value)
	assert.Equal(t, 1.25, readings[1].Value)
	assert.Equal(t, 1000.0, readings[2].Value)

	days := GroupByDay(readings)
	require.Len(t, days, 2)
	assert.Equal(t, 2.0, days[0].TotalConsumption)
	assert.Equal(t, 1000.0, days[1].TotalConsumption)
}

func TestParseCSV_MissingColumns(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorContains(t, err, "could not find required columns")
}
