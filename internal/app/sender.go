package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Adda-Baaj/maytapi-sender/internal/config"
	"github.com/Adda-Baaj/maytapi-sender/internal/logger"
	"github.com/Adda-Baaj/maytapi-sender/pkg/httpclient"
	"github.com/Adda-Baaj/maytapi-sender/pkg/maytapi"
	"github.com/Adda-Baaj/maytapi-sender/pkg/receipts"
)

// ErrInvalidRequest marks a Request that names zero or both payload sources.
var ErrInvalidRequest = errors.New("exactly one of text url or encoded data must be set")

// Request is one message to send. TextURL and EncodedData pick the operation by
// presence, so an empty value is still forwarded as given. Caption is nil when
// the caller gave none.
type Request struct {
	To          string
	TextURL     *string
	EncodedData *string
	Caption     *string
}

// Sender wires the Maytapi client with optional receipt publishing.
type Sender struct {
	client   *maytapi.Client
	receipts *receipts.Dispatcher
	log      logger.Logger
}

// Option customizes NewSender.
type Option func(*senderOptions)

type senderOptions struct {
	transport httpclient.Client
	builders  receipts.Builders
}

// WithTransport overrides the resty transport built from config.
func WithTransport(c httpclient.Client) Option {
	return func(o *senderOptions) { o.transport = c }
}

// WithReceiptBuilders overrides the builders used for receipt sinks.
func WithReceiptBuilders(b receipts.Builders) Option {
	return func(o *senderOptions) { o.builders = b }
}

// NewSender builds a sender runtime from config.
func NewSender(ctx context.Context, cfg *config.Config, log logger.Logger, opts ...Option) (*Sender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	o := senderOptions{builders: receipts.DefaultBuilders()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		o.transport = httpclient.NewRestyClient(cfg.HTTPTimeout)
	}

	client := maytapi.New(cfg.ProductID, cfg.PhoneID, cfg.APIToken,
		maytapi.WithAPIRoot(cfg.APIRoot),
		maytapi.WithHTTPClient(o.transport),
		maytapi.WithLogger(log),
	)
	log.DebugObj("maytapi client initialized", "maytapi_client", map[string]any{
		"base_url": client.BaseURL(),
	})

	dispatcher, err := buildReceipts(ctx, cfg.ReceiptsFile, o.builders, log)
	if err != nil {
		return nil, err
	}

	return &Sender{client: client, receipts: dispatcher, log: log}, nil
}

// buildReceipts returns a nil Dispatcher when no receipts file is configured.
func buildReceipts(ctx context.Context, path string, builders receipts.Builders, log logger.Logger) (*receipts.Dispatcher, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}

	sinks, err := receipts.LoadSinks(path)
	if err != nil {
		return nil, fmt.Errorf("load receipt sinks: %w", err)
	}

	d, err := builders.Build(ctx, sinks, log)
	if err != nil {
		return nil, fmt.Errorf("build receipt sinks: %w", err)
	}

	summaries := make([]map[string]any, 0, len(sinks))
	for _, s := range sinks {
		summaries = append(summaries, map[string]any{"id": s.ID, "type": s.Type, "outcomes": s.Outcomes})
	}
	log.InfoObj("receipt sinks loaded", "receipts_meta", map[string]any{
		"count": d.Len(),
		"sinks": summaries,
	})
	return d, nil
}

// Client exposes the underlying Maytapi client.
func (s *Sender) Client() *maytapi.Client { return s.client }

// Send dispatches req to the matching client operation and publishes a receipt.
// Receipt failures are logged and never change the returned result.
func (s *Sender) Send(ctx context.Context, req Request) (maytapi.APIResponse, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("sender is not initialized")
	}
	hasURL := req.TextURL != nil
	hasData := req.EncodedData != nil
	if hasURL == hasData {
		return nil, ErrInvalidRequest
	}

	var msgOpts []maytapi.MessageOption
	if req.Caption != nil {
		msgOpts = append(msgOpts, maytapi.WithCaption(*req.Caption))
	}

	var (
		op   string
		resp maytapi.APIResponse
		err  error
	)
	if hasURL {
		op = receipts.OperationTextByURL
		resp, err = s.client.SendTextByURL(ctx, req.To, *req.TextURL, msgOpts...)
	} else {
		op = receipts.OperationTextByEncoded
		resp, err = s.client.SendTextByEncodedPayload(ctx, req.To, *req.EncodedData, msgOpts...)
	}

	s.publishReceipt(ctx, receipts.NewReceipt(op, req.To, resp, err))
	return resp, err
}

func (s *Sender) publishReceipt(ctx context.Context, r receipts.Receipt) {
	if s.receipts.Len() == 0 {
		return
	}
	delivered, err := s.receipts.Publish(context.WithoutCancel(ctx), r)
	if err != nil {
		s.log.WarnObj("receipt publish failed", "receipt_error", map[string]any{
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	s.log.DebugObj("receipt published", "receipt_meta", map[string]any{
		"operation": r.Operation,
		"delivered": delivered,
	})
}

// Close releases receipt sinks.
func (s *Sender) Close() error {
	if s == nil {
		return nil
	}
	return s.receipts.Close()
}
