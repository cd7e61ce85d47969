package httpclient

import (
	"context"
	"errors"
	"time"

	"surfapp/internal/metrics"

	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
)

const breakerName = "surfapp-api"

// BreakerConfig tunes the circuit breaker. Zero fields take defaults.
type BreakerConfig struct {
	// MaxRequests is the number of trial requests allowed while half-open.
	MaxRequests uint32
	// Interval resets failure counts while closed.
	Interval time.Duration
	// Timeout is how long the circuit stays open.
	Timeout time.Duration
	// ConsecutiveFailures opens the circuit.
	ConsecutiveFailures uint32
}

func (b BreakerConfig) withDefaults() BreakerConfig {
	if b.MaxRequests == 0 {
		b.MaxRequests = 1
	}
	if b.Interval == 0 {
		b.Interval = time.Minute
	}
	if b.Timeout == 0 {
		b.Timeout = 30 * time.Second
	}
	if b.ConsecutiveFailures == 0 {
		b.ConsecutiveFailures = 5
	}
	return b
}

func newBreaker(cfg BreakerConfig, m *metrics.Metrics) *gobreaker.CircuitBreaker[*response] {
	cfg = cfg.withDefaults()
	m.SetBreakerState(breakerName, stateValue(gobreaker.StateClosed))

	return gobreaker.NewCircuitBreaker[*response](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		// Only transport failures and 5xx count. A caller cancelling its
		// own request says nothing about the backend.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			m.SetBreakerState(name, stateValue(to))
		},
	})
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
