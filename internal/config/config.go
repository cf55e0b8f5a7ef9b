package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenWeatherAPIKey  string `env:"OPENWEATHER_API_KEY"`
	OpenWeatherBaseURL string `env:"OPENWEATHER_BASE_URL" envDefault:"https://api.openweathermap.org/data/2.5/weather" validate:"required,url"`

	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s" validate:"gt=0"`

	// Cities the list starts with.
	DefaultCities []string `env:"DEFAULT_CITIES" envDefault:"Moscow,London,Paris,New York,Tokyo" validate:"min=1,dive,required"`

	// Initial display preferences.
	TemperatureCelsius bool `env:"TEMPERATURE_CELSIUS" envDefault:"true"`
	ShowWindDirection  bool `env:"SHOW_WIND_DIRECTION" envDefault:"true"`

	// Circuit breaker around the provider. It never retries.
	BreakerMaxFailures uint32        `env:"BREAKER_MAX_FAILURES" envDefault:"5" validate:"gt=0"`
	BreakerTimeout     time.Duration `env:"BREAKER_TIMEOUT" envDefault:"2m" validate:"gt=0"`

	Port      string `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
}

var validate = validator.New()

// Load reads configuration from the environment (and an optional .env file) with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return parse(env.Options{})
}

func parse(opts env.Options) (*AppConfig, error) {
	cfg, err := env.ParseAsWithOptions[AppConfig](opts)
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cities := cfg.DefaultCities[:0]
	for _, c := range cfg.DefaultCities {
		if c = strings.TrimSpace(c); c != "" {
			cities = append(cities, c)
		}
	}
	cfg.DefaultCities = cities

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
