package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"dealdesk/internal/config"
)

// Event types pushed to the external notification sender.
const (
	EventDocumentSent     = "document.sent"
	EventDocumentAccepted = "document.accepted"
	EventDocumentRejected = "document.rejected"
	EventContractSigned   = "contract.signed"
)

type Event struct {
	Type       string    `json:"type"`
	DocumentID string    `json:"document_id,omitempty"`
	ContractID string    `json:"contract_id,omitempty"`
	Recipient  string    `json:"recipient"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier delivers lifecycle events to the outbound notification webhook
// consumed by the external email sender. Delivery is best-effort: callers
// log failures and move on.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type httpNotifier struct {
	client *http.Client
	url    string
	hmac   *HMACSignature
	logger *zap.Logger
}

// nopNotifier is wired when the webhook is disabled in config.
type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) error { return nil }

func NewNotifier(cfg *config.Config, logger *zap.Logger) Notifier {
	if !cfg.Notifier.Enabled {
		logger.Info("Outbound notifications disabled")
		return nopNotifier{}
	}

	timeout := time.Duration(cfg.Notifier.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	logger.Info("Notifier initialized with HMAC authentication",
		zap.String("webhook_url", cfg.Notifier.WebhookURL),
		zap.String("client_id", cfg.Notifier.ClientID),
	)

	return &httpNotifier{
		client: &http.Client{Timeout: timeout},
		url:    cfg.Notifier.WebhookURL,
		hmac:   NewHMACSignature(cfg.Notifier.ClientID, cfg.Notifier.ClientSecret),
		logger: logger,
	}
}

func (n *httpNotifier) Notify(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if err := n.hmac.SignRequest(req); err != nil {
		return fmt.Errorf("failed to sign notification request: %w", err)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	n.logger.Debug("Notification delivered",
		zap.String("type", ev.Type),
		zap.String("recipient", ev.Recipient),
	)
	return nil
}
