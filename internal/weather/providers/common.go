package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/city-weather/internal/weather"
)

// BreakerConfig controls the circuit breaker guarding a provider.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before a probe request is allowed.
	Timeout time.Duration
}

// DefaultBreakerConfig mirrors the settings used for every provider unless overridden.
var DefaultBreakerConfig = BreakerConfig{
	MaxFailures: 5,
	Timeout:     2 * time.Minute,
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errUnexpected  = errors.New("unexpected status code")
	errCircuitOpen = errors.New("circuit breaker open")
	errNoAPIKey    = errors.New("api key is not configured")
)

func newCircuitBreaker(name string, cfg BreakerConfig, logger *zap.Logger) *gobreaker.CircuitBreaker {
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = DefaultBreakerConfig.MaxFailures
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultBreakerConfig.Timeout
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
	})
}

// doRequest executes a single GET through the circuit breaker. It never retries:
// a failed attempt is reported to the caller, who decides whether to ask again.
//
// Transport errors, 429 and 5xx count as breaker failures. Other non-2xx
// responses are returned as errors without tripping the breaker.
func doRequest(cb *gobreaker.CircuitBreaker, req *resty.Request, url string) (*resty.Response, error) {
	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := req.Get(url)
		if execErr != nil {
			return nil, execErr
		}

		if resp.StatusCode() == http.StatusTooManyRequests {
			return nil, errRateLimited
		}
		if resp.StatusCode() >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %v", weather.ErrNetwork, errCircuitOpen, err)
		}
		return nil, fmt.Errorf("%w: %w", weather.ErrNetwork, err)
	}

	resp, ok := result.(*resty.Response)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", weather.ErrNetwork)
	}

	if !resp.IsSuccess() {
		if msg := providerMessage(resp.Body()); msg != "" {
			return nil, fmt.Errorf("%w: %w: %d: %s", weather.ErrNetwork, errUnexpected, resp.StatusCode(), msg)
		}
		return nil, fmt.Errorf("%w: %w: %d", weather.ErrNetwork, errUnexpected, resp.StatusCode())
	}

	return resp, nil
}

// providerMessage extracts the "message" field most weather APIs put in error bodies.
func providerMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
