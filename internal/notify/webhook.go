package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wallet-ledger-go/internal/models"
	"wallet-ledger-go/internal/wallet"

	"go.uber.org/zap"
)

// Compile-time check: *WebhookNotifier must satisfy wallet.Notifier.
var _ wallet.Notifier = (*WebhookNotifier)(nil)

// WebhookNotifier POSTs appended transaction records to a configured URL.
// Delivery is best effort; a slow or failing endpoint must never block the
// transfer path, so the client carries a short timeout.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

type webhookPayload struct {
	Event        string               `json:"event"`
	Transactions []models.Transaction `json:"transactions"`
}

func (n *WebhookNotifier) TransactionsRecorded(ctx context.Context, records []models.Transaction) error {
	payload := webhookPayload{
		Event:        "transactions.recorded",
		Transactions: records,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("unable to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("unable to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "wallet-ledger-webhook/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			zap.L().Warn("Failed to close webhook response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	zap.L().Debug("Webhook delivered",
		zap.String("url", n.url),
		zap.Int("records", len(records)))
	return nil
}
