package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// PayoutDispatcher hands an approved withdrawal to the external payout rail.
// The core only records the outcome; it never moves real money itself. A
// timeout counts as failure and is handled by manual remediation, never by
// an automatic retry.
type PayoutDispatcher interface {
	Dispatch(ctx context.Context, destination string, amount float64, reference string) error
}

type httpPayoutDispatcher struct {
	url     string
	timeout time.Duration
	client  *http.Client
	log     *zap.Logger
}

// NewHTTPPayoutDispatcher posts payout orders to the configured dispatcher
// endpoint. An empty URL yields a dispatcher that fails every call, which
// keeps failed payouts visible on the remediation queue instead of silently
// pretending money moved.
func NewHTTPPayoutDispatcher(url string, timeoutSeconds int, log *zap.Logger) PayoutDispatcher {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 15
	}
	return &httpPayoutDispatcher{
		url:     url,
		timeout: time.Duration(timeoutSeconds) * time.Second,
		client:  &http.Client{},
		log:     log.With(zap.String("gateway", "payout")),
	}
}

type payoutOrder struct {
	Destination string  `json:"destination"`
	Amount      float64 `json:"amount"`
	Reference   string  `json:"reference"`
}

func (d *httpPayoutDispatcher) Dispatch(ctx context.Context, destination string, amount float64, reference string) error {
	if d.url == "" {
		return fmt.Errorf("payout dispatcher not configured")
	}

	body, err := json.Marshal(payoutOrder{
		Destination: destination,
		Amount:      amount,
		Reference:   reference,
	})
	if err != nil {
		return fmt.Errorf("marshal payout order %s: %w", reference, err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build payout request %s: %w", reference, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Error("Payout dispatch failed",
			zap.Error(err),
			zap.String("reference", reference),
			zap.Float64("amount", amount),
		)
		return fmt.Errorf("dispatch payout %s: %w", reference, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		d.log.Error("Payout dispatch rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("reference", reference),
		)
		return fmt.Errorf("dispatch payout %s: status %d", reference, resp.StatusCode)
	}

	return nil
}
