package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap/zaptest"

	"github.com/i474232898/city-weather/internal/weather"
)

const moscowBody = `{
	"name": "Moscow",
	"main": {"temp": 290.0, "feels_like": 289.4, "humidity": 65, "pressure": 1012},
	"weather": [{"description": "clear sky", "icon": "01d"}, {"description": "mist", "icon": "50d"}],
	"wind": {"speed": 3.4, "deg": 10},
	"clouds": {"all": 40}
}`

func newTestProvider(t *testing.T, h http.HandlerFunc, opts ...Option) *OpenWeatherProvider {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	opts = append([]Option{
		WithBaseURL(srv.URL),
		WithLogger(zaptest.NewLogger(t)),
		WithClock(func() time.Time { return fixed }),
	}, opts...)

	return NewOpenWeatherProvider(srv.Client(), "test-key", opts...)
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestOpenWeatherFetchSuccess(t *testing.T) {
	var gotQuery, gotKey string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("appid")
		jsonHandler(http.StatusOK, moscowBody)(w, r)
	})

	rec, err := p.Fetch(context.Background(), "New York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotQuery != "New York" || gotKey != "test-key" {
		t.Fatalf("unexpected query q=%q appid=%q", gotQuery, gotKey)
	}

	want := weather.Record{
		City:              "Moscow",
		TemperatureKelvin: 290.0,
		FeelsLikeKelvin:   289.4,
		Description:       "clear sky",
		HumidityPercent:   65,
		PressureHpa:       1012,
		WindSpeedMs:       3.4,
		WindDegree:        10,
		Icon:              "01d",
		CloudsPercent:     40,
		FetchedAt:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if rec != want {
		t.Fatalf("expected %+v, got %+v", want, rec)
	}
}

func TestOpenWeatherOptionalFieldsDefault(t *testing.T) {
	body := `{
		"name": "London",
		"main": {"temp": 280.0, "feels_like": 278.0, "humidity": 80, "pressure": 1000},
		"weather": [],
		"wind": {"speed": 1.0}
	}`
	p := newTestProvider(t, jsonHandler(http.StatusOK, body))

	rec, err := p.Fetch(context.Background(), "London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.WindDegree != 0 || rec.CloudsPercent != 0 {
		t.Fatalf("expected defaults of 0, got deg=%d clouds=%d", rec.WindDegree, rec.CloudsPercent)
	}
	if rec.Description != "N/A" || rec.Icon != "" {
		t.Fatalf("expected N/A and empty icon, got %q %q", rec.Description, rec.Icon)
	}
}

func TestOpenWeatherParseErrors(t *testing.T) {
	bodies := map[string]string{
		"not json":          `<html>oops</html>`,
		"empty":             ``,
		"missing name":      `{"main": {"temp": 1, "feels_like": 1, "humidity": 1, "pressure": 1}, "weather": [], "wind": {"speed": 1}}`,
		"missing main":      `{"name": "X", "weather": [], "wind": {"speed": 1}}`,
		"missing temp":      `{"name": "X", "main": {"feels_like": 1, "humidity": 1, "pressure": 1}, "weather": [], "wind": {"speed": 1}}`,
		"null feels_like":   `{"name": "X", "main": {"temp": 1, "feels_like": null, "humidity": 1, "pressure": 1}, "weather": [], "wind": {"speed": 1}}`,
		"missing weather":   `{"name": "X", "main": {"temp": 1, "feels_like": 1, "humidity": 1, "pressure": 1}, "wind": {"speed": 1}}`,
		"weather no icon":   `{"name": "X", "main": {"temp": 1, "feels_like": 1, "humidity": 1, "pressure": 1}, "weather": [{"description": "d"}], "wind": {"speed": 1}}`,
		"missing wind":      `{"name": "X", "main": {"temp": 1, "feels_like": 1, "humidity": 1, "pressure": 1}, "weather": []}`,
		"missing speed":     `{"name": "X", "main": {"temp": 1, "feels_like": 1, "humidity": 1, "pressure": 1}, "weather": [], "wind": {"deg": 1}}`,
		"wrong typed temp":  `{"name": "X", "main": {"temp": "hot", "feels_like": 1, "humidity": 1, "pressure": 1}, "weather": [], "wind": {"speed": 1}}`,
		"wrong typed name":  `{"name": 7, "main": {"temp": 1, "feels_like": 1, "humidity": 1, "pressure": 1}, "weather": [], "wind": {"speed": 1}}`,
		"array at the root": `[]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			p := newTestProvider(t, jsonHandler(http.StatusOK, body))

			_, err := p.Fetch(context.Background(), "X")
			if !errors.Is(err, weather.ErrParse) {
				t.Fatalf("expected ErrParse, got %v", err)
			}
		})
	}
}

func TestOpenWeatherStatusErrors(t *testing.T) {
	p := newTestProvider(t, jsonHandler(http.StatusNotFound, `{"cod":"404","message":"city not found"}`))

	_, err := p.Fetch(context.Background(), "Atlantis")
	if !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !errors.Is(err, errUnexpected) {
		t.Fatalf("expected errUnexpected, got %v", err)
	}
}

func TestOpenWeatherDoesNotRetry(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := p.Fetch(context.Background(), "X")
	if !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request, got %d", calls)
	}
}

func TestOpenWeatherCircuitOpens(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithBreaker(BreakerConfig{MaxFailures: 2, Timeout: time.Hour}))

	for i := 0; i < 2; i++ {
		if _, err := p.Fetch(context.Background(), "X"); err == nil {
			t.Fatal("expected error")
		}
	}

	_, err := p.Fetch(context.Background(), "X")
	if !errors.Is(err, errCircuitOpen) || !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected open circuit network error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected open circuit to short-circuit, got %d calls", calls)
	}
	if p.circuit.Name() != openWeatherName || p.circuit.State() != gobreaker.StateOpen {
		t.Fatalf("expected open %q breaker, got %q in state %v", openWeatherName, p.circuit.Name(), p.circuit.State())
	}
}

func TestOpenWeatherTransportError(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(http.StatusOK, moscowBody))
	url := srv.URL
	srv.Close()

	p := NewOpenWeatherProvider(&http.Client{Timeout: time.Second}, "k", WithBaseURL(url))

	_, err := p.Fetch(context.Background(), "Moscow")
	if !errors.Is(err, weather.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}

func TestOpenWeatherMissingAPIKey(t *testing.T) {
	p := NewOpenWeatherProvider(nil, "")

	_, err := p.Fetch(context.Background(), "Moscow")
	if !errors.Is(err, weather.ErrNetwork) || !errors.Is(err, errNoAPIKey) {
		t.Fatalf("expected missing key error, got %v", err)
	}
}
