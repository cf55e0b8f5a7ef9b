package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/weather"
)

// DefaultOpenWeatherURL is the "current weather by city name" endpoint.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// openWeatherName labels the provider's logger and circuit breaker.
const openWeatherName = "openweather"

var validate = validator.New()

// OpenWeatherProvider implements weather.Fetcher for OpenWeatherMap.
type OpenWeatherProvider struct {
	apiKey  string
	baseURL string
	client  *resty.Client
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
	nowFn   func() time.Time
}

// Option configures an OpenWeatherProvider.
type Option func(*options)

type options struct {
	baseURL string
	breaker BreakerConfig
	logger  *zap.Logger
	nowFn   func() time.Time
}

// WithBaseURL points the provider at another endpoint (tests, proxies).
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithBreaker overrides the circuit breaker settings.
func WithBreaker(cfg BreakerConfig) Option {
	return func(o *options) { o.breaker = cfg }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides the clock used to stamp records.
func WithClock(nowFn func() time.Time) Option {
	return func(o *options) {
		if nowFn != nil {
			o.nowFn = nowFn
		}
	}
}

// NewOpenWeatherProvider builds a provider on top of the shared HTTP client.
func NewOpenWeatherProvider(client *http.Client, apiKey string, opts ...Option) *OpenWeatherProvider {
	o := options{
		baseURL: DefaultOpenWeatherURL,
		breaker: DefaultBreakerConfig,
		logger:  zap.NewNop(),
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if client == nil {
		client = http.DefaultClient
	}

	logger := o.logger.Named(openWeatherName)

	return &OpenWeatherProvider{
		apiKey:  apiKey,
		baseURL: o.baseURL,
		client:  resty.NewWithClient(client),
		circuit: newCircuitBreaker(openWeatherName, o.breaker, logger),
		logger:  logger,
		nowFn:   o.nowFn,
	}
}

// Fetch requests the current weather for city and normalizes it into a weather.Record.
func (p *OpenWeatherProvider) Fetch(ctx context.Context, city string) (weather.Record, error) {
	if p.apiKey == "" {
		return weather.Record{}, fmt.Errorf("%w: %s %w", weather.ErrNetwork, openWeatherName, errNoAPIKey)
	}

	start := p.nowFn()
	req := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"appid": p.apiKey,
		})

	resp, err := doRequest(p.circuit, req, p.baseURL)
	if err != nil {
		return weather.Record{}, err
	}

	rec, err := parseOpenWeather(resp.Body())
	if err != nil {
		return weather.Record{}, err
	}
	rec.FetchedAt = p.nowFn().UTC()

	p.logger.Debug("fetched current weather",
		zap.String("city", city),
		zap.String("resolved", rec.City),
		zap.Duration("took", rec.FetchedAt.Sub(start)),
	)
	return rec, nil
}

type owPayload struct {
	Name    *string       `json:"name" validate:"required"`
	Main    *owMain       `json:"main" validate:"required"`
	Weather []owCondition `json:"weather" validate:"required,dive"`
	Wind    *owWind       `json:"wind" validate:"required"`
	Clouds  *owClouds     `json:"clouds"`
}

type owMain struct {
	Temp      *float64 `json:"temp" validate:"required"`
	FeelsLike *float64 `json:"feels_like" validate:"required"`
	Humidity  *float64 `json:"humidity" validate:"required"`
	Pressure  *float64 `json:"pressure" validate:"required"`
}

type owCondition struct {
	Description *string `json:"description" validate:"required"`
	Icon        *string `json:"icon" validate:"required"`
}

type owWind struct {
	Speed *float64 `json:"speed" validate:"required"`
	Deg   *float64 `json:"deg"`
}

type owClouds struct {
	All *float64 `json:"all"`
}

// parseOpenWeather decodes and validates a current-weather payload.
// wind.deg and clouds.all default to 0; an empty weather array yields "N/A" and no icon.
func parseOpenWeather(body []byte) (weather.Record, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return weather.Record{}, fmt.Errorf("%w: empty response body", weather.ErrParse)
	}

	var payload owPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return weather.Record{}, fmt.Errorf("%w: %w", weather.ErrParse, err)
	}
	if err := validate.Struct(payload); err != nil {
		return weather.Record{}, fmt.Errorf("%w: %w", weather.ErrParse, err)
	}

	rec := weather.Record{
		City:              *payload.Name,
		TemperatureKelvin: *payload.Main.Temp,
		FeelsLikeKelvin:   *payload.Main.FeelsLike,
		HumidityPercent:   roundInt(payload.Main.Humidity),
		PressureHpa:       roundInt(payload.Main.Pressure),
		WindSpeedMs:       *payload.Wind.Speed,
		WindDegree:        roundInt(payload.Wind.Deg),
		Description:       "N/A",
	}

	if len(payload.Weather) > 0 {
		rec.Description = *payload.Weather[0].Description
		rec.Icon = *payload.Weather[0].Icon
	}
	if payload.Clouds != nil {
		rec.CloudsPercent = roundInt(payload.Clouds.All)
	}

	return rec, nil
}

func roundInt(v *float64) int {
	if v == nil {
		return 0
	}
	return int(math.Round(*v))
}
