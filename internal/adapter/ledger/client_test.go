package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/config"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

func exportFixture() interfaces.LedgerExport {
	return interfaces.LedgerExport{
		OrderID:      "order-1",
		Date:         "Dec 24, 2025 8:00 AM",
		CustomerName: "Maria Santos",
		ServiceType:  "pickup",
		Total:        5400,
		Items: []interfaces.LedgerExportItem{
			{Name: "Lechon Belly", Quantity: 2, UnitPrice: 2700, Subtotal: 5400},
		},
	}
}

func newTestClient(url string) *Client {
	return NewClient(config.LedgerConfig{WebhookURL: url, TimeoutSeconds: 2}, logger.NewNop())
}

func TestPushDispatchesPayload(t *testing.T) {
	var received interfaces.LedgerExport
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Push(context.Background(), exportFixture())
	require.NoError(t, err)
	assert.Equal(t, "order-1", received.OrderID)
	assert.Equal(t, "Maria Santos", received.CustomerName)
	require.Len(t, received.Items, 1)
}

func TestPushIgnoresErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Push(context.Background(), exportFixture())
	assert.NoError(t, err, "a completed dispatch counts as success regardless of status")
}

func TestPushTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	err := newTestClient(srv.URL).Push(context.Background(), exportFixture())
	assert.Error(t, err)
}

func TestPushBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(srv.URL)
	for i := 0; i < 5; i++ {
		require.Error(t, client.Push(context.Background(), exportFixture()))
	}

	// The breaker is open now; the next push fails fast without dialing.
	err := client.Push(context.Background(), exportFixture())
	assert.Error(t, err)
}
