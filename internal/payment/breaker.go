package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
)

// BreakerGateway fails fast while the wrapped gateway keeps failing.
type BreakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[string]
}

type BreakerSettings struct {
	// ConsecutiveFailures opens the circuit.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the circuit stays open before probing.
	OpenTimeout time.Duration
	// Probes is the number of requests let through while half-open.
	Probes uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{ConsecutiveFailures: 5, OpenTimeout: 30 * time.Second, Probes: 3}
}

func NewBreakerGateway(next Gateway, s BreakerSettings) *BreakerGateway {
	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "payment-gateway",
		MaxRequests: s.Probes,
		Interval:    time.Minute,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
		IsSuccessful: isProviderHealthy,
	})
	return &BreakerGateway{next: next, cb: cb}
}

func (g *BreakerGateway) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	secret, err := g.cb.Execute(func() (string, error) {
		return g.next.CreatePaymentIntent(ctx, amount, currency)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrUnavailable
	}
	return secret, err
}

// isProviderHealthy treats request errors (4xx, card declines) as healthy
// responses; only server errors and transport failures count against the
// provider.
func isProviderHealthy(err error) bool {
	if err == nil {
		return true
	}
	var se *stripe.Error
	if errors.As(err, &se) {
		return se.HTTPStatusCode > 0 && se.HTTPStatusCode < 500
	}
	return errors.Is(err, context.Canceled)
}
