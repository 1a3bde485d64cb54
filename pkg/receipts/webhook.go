package receipts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Adda-Baaj/maytapi-sender/pkg/httpclient"
)

type webhookSink struct {
	id      string
	url     string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

func newWebhookSink(_ context.Context, cfg SinkConfig, log Logger) (Publisher, error) {
	if cfg.Webhook == nil {
		return nil, fmt.Errorf("missing webhook configuration")
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for k, v := range cfg.Webhook.Headers {
		headers[k] = v
	}

	return &webhookSink{
		id:      cfg.ID,
		url:     cfg.Webhook.URL,
		headers: headers,
		client:  httpclient.NewRestyClient(cfg.Webhook.Timeout()),
		log:     ensureLogger(log),
	}, nil
}

func (w *webhookSink) ID() string { return w.id }

func (w *webhookSink) Publish(ctx context.Context, r Receipt) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}

	resp, err := w.client.Post(ctx, w.url, w.headers, body)
	if err != nil {
		return fmt.Errorf("post receipt: %w", err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return fmt.Errorf("webhook answered %d", code)
	}

	w.log.DebugObj("receipt posted to webhook", "receipt_webhook", map[string]any{
		"sink_id": w.id,
		"outcome": r.Outcome(),
	})
	return nil
}
