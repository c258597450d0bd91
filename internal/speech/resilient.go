package speech

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"github.com/felixgeelhaar/fortify/retry"
	"go.uber.org/zap"
)

// ResilientConfig tunes retries and the circuit breaker around a synthesizer.
type ResilientConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// TripAfter consecutive failures opens the breaker for OpenTimeout.
	TripAfter   int
	OpenTimeout time.Duration
}

// DefaultResilientConfig returns defaults suited to an interactive bot: few
// quick retries, then stop calling the backend for a while.
func DefaultResilientConfig() ResilientConfig {
	return ResilientConfig{
		MaxAttempts:  2,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		TripAfter:    3,
		OpenTimeout:  time.Minute,
	}
}

// ResilientSynthesizer wraps a synthesizer with retry and a circuit breaker.
type ResilientSynthesizer struct {
	inner          Synthesizer
	circuitBreaker circuitbreaker.CircuitBreaker[*Audio]
	retrier        retry.Retry[*Audio]
}

// NewResilientSynthesizer wraps inner.
func NewResilientSynthesizer(inner Synthesizer, cfg ResilientConfig, log *zap.Logger) *ResilientSynthesizer {
	return &ResilientSynthesizer{
		inner: inner,
		circuitBreaker: circuitbreaker.New[*Audio](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    30 * time.Second,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= cfg.TripAfter
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				log.Warn("speech circuit breaker state change",
					zap.String("synthesizer", inner.Name()),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
		retrier: retry.New[*Audio](retry.Config{
			MaxAttempts:   cfg.MaxAttempts,
			InitialDelay:  cfg.InitialDelay,
			MaxDelay:      cfg.MaxDelay,
			Multiplier:    2.0,
			BackoffPolicy: retry.BackoffExponential,
			Jitter:        true,
			IsRetryable:   isRetryable,
		}),
	}
}

func (r *ResilientSynthesizer) Name() string {
	return r.inner.Name()
}

func (r *ResilientSynthesizer) Synthesize(ctx context.Context, text string) (*Audio, error) {
	return r.circuitBreaker.Execute(ctx, func(ctx context.Context) (*Audio, error) {
		return r.retrier.Do(ctx, func(ctx context.Context) (*Audio, error) {
			return r.inner.Synthesize(ctx, text)
		})
	})
}

// isRetryable retries rate limits and server errors only.
func isRetryable(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}

	switch statusErr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
