package stripe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntentRequestShape(t *testing.T) {
	var gotAuth, gotIdempotencyKey string
	var gotForm map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payment_intents", r.URL.Path)

		gotAuth = r.Header.Get("Authorization")
		gotIdempotencyKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "pi_123",
			"client_secret": "pi_123_secret_456",
			"status": "requires_payment_method",
			"amount": 3998,
			"currency": "usd",
			"metadata": {"orderId": "7"}
		}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_key", WithBaseURL(server.URL))
	intent, err := client.CreateIntent(context.Background(), 3998, "usd",
		map[string]string{"orderId": "7", "userId": "1"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer sk_test_key", gotAuth)
	assert.NotEmpty(t, gotIdempotencyKey)
	assert.Equal(t, "3998", gotForm["amount"][0])
	assert.Equal(t, "usd", gotForm["currency"][0])
	assert.Equal(t, "7", gotForm["metadata[orderId]"][0])
	assert.Equal(t, "1", gotForm["metadata[userId]"][0])
	assert.Equal(t, "true", gotForm["automatic_payment_methods[enabled]"][0])

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_456", intent.ClientSecret)
	assert.Equal(t, "requires_payment_method", intent.Status)
}

func TestCreateIntentAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error": {"type": "card_error", "message": "Your card was declined."}}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_key", WithBaseURL(server.URL))
	_, err := client.CreateIntent(context.Background(), 100, "usd", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusPaymentRequired, apiErr.StatusCode)
	assert.Equal(t, "card_error", apiErr.Type)
	assert.Equal(t, "Your card was declined.", apiErr.Message)
}

func TestCreateIntentBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"type": "api_error", "message": "boom"}}`))
	}))
	defer server.Close()

	client := NewClient("sk_test_key", WithBaseURL(server.URL))
	for i := 0; i < 5; i++ {
		_, err := client.CreateIntent(context.Background(), 100, "usd", nil)
		require.Error(t, err)
	}
	require.Equal(t, 5, hits)

	// The sixth call fails fast without reaching the server.
	_, err := client.CreateIntent(context.Background(), 100, "usd", nil)
	require.Error(t, err)
	assert.Equal(t, 5, hits)
}
