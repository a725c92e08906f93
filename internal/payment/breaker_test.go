package payment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/wichananm65/marketplace-backend/internal/apperror"
)

// fakeStripe serves /v1/payment_intents with the given status and counts
// requests.
func fakeStripe(t *testing.T, status int) (*StripeGateway, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch {
		case status == http.StatusOK:
			fmt.Fprintf(w, `{"id":"pi_1","object":"payment_intent","amount":%s,"currency":%q,"client_secret":"pi_1_secret_xyz"}`,
				r.Form.Get("amount"), r.Form.Get("currency"))
		case status < 500:
			fmt.Fprint(w, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)
		default:
			fmt.Fprint(w, `{"error":{"type":"api_error","message":"upstream down"}}`)
		}
	}))
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeGateway("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend}), &hits
}

func TestStripeGateway_CreatePaymentIntent(t *testing.T) {
	gw, hits := fakeStripe(t, http.StatusOK)

	secret, err := gw.CreatePaymentIntent(context.Background(), 5000, "inr")
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_xyz", secret)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestBreakerGateway_OpensOnServerErrors(t *testing.T) {
	gw, hits := fakeStripe(t, http.StatusInternalServerError)
	breaker := NewBreakerGateway(gw, BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute, Probes: 1})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := breaker.CreatePaymentIntent(ctx, 100, "inr")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := breaker.CreatePaymentIntent(ctx, 100, "inr")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, apperror.ErrUnavailable)
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestBreakerGateway_DeclinesDoNotTrip(t *testing.T) {
	gw, hits := fakeStripe(t, http.StatusPaymentRequired)
	breaker := NewBreakerGateway(gw, BreakerSettings{ConsecutiveFailures: 2, OpenTimeout: time.Minute, Probes: 1})

	for i := 0; i < 4; i++ {
		_, err := breaker.CreatePaymentIntent(context.Background(), 100, "inr")
		var se *stripe.Error
		require.ErrorAs(t, err, &se)
		assert.Equal(t, stripe.ErrorCodeCardDeclined, se.Code)
	}
	assert.Equal(t, int32(4), atomic.LoadInt32(hits))
}

func TestIsProviderHealthy(t *testing.T) {
	assert.True(t, isProviderHealthy(nil))
	assert.True(t, isProviderHealthy(&stripe.Error{HTTPStatusCode: 400}))
	assert.False(t, isProviderHealthy(&stripe.Error{HTTPStatusCode: 503}))
	assert.False(t, isProviderHealthy(fmt.Errorf("dial: %w", context.DeadlineExceeded)))
	assert.True(t, isProviderHealthy(context.Canceled))
}
