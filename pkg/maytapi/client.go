// Package maytapi sends text messages through the Maytapi WhatsApp gateway.
package maytapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Adda-Baaj/maytapi-sender/pkg/httpclient"
)

const (
	// DefaultAPIRoot is the scheme and host of the public Maytapi API.
	DefaultAPIRoot = "https://api.maytapi.com"

	// HeaderAPIKey carries the API token on every request.
	HeaderAPIKey = "x-maytapi-key"

	sendMessagePath       = "/sendMessage"
	defaultRequestTimeout = 30 * time.Second
)

// Client posts messages to a single Maytapi product/phone pair.
// All fields are fixed at construction so a Client may be shared across goroutines.
type Client struct {
	productID string
	phoneID   string
	apiToken  string
	apiRoot   string
	baseURL   string
	headers   map[string]string
	http      httpclient.Client
	log       Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default resty transport.
func WithHTTPClient(c httpclient.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithAPIRoot points the client at a different scheme+host, e.g. a proxy.
func WithAPIRoot(root string) Option {
	return func(cl *Client) {
		if root = strings.TrimRight(strings.TrimSpace(root), "/"); root != "" {
			cl.apiRoot = root
		}
	}
}

// WithLogger sets the logger used for delivery diagnostics.
func WithLogger(log Logger) Option {
	return func(cl *Client) {
		cl.log = ensureLogger(log)
	}
}

// New builds a client. IDs are not validated; bad values surface on the first call.
func New(productID, phoneID, apiToken string, opts ...Option) *Client {
	c := &Client{
		productID: productID,
		phoneID:   phoneID,
		apiToken:  apiToken,
		apiRoot:   DefaultAPIRoot,
		log:       noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(defaultRequestTimeout)
	}

	c.baseURL = fmt.Sprintf("%s/api/%s/%s", c.apiRoot, productID, phoneID)
	c.headers = map[string]string{
		"Content-Type": "application/json",
		HeaderAPIKey:   apiToken,
	}
	return c
}

// BaseURL returns the product/phone scoped endpoint root.
func (c *Client) BaseURL() string { return c.baseURL }

// Headers returns a copy of the headers sent with every request.
func (c *Client) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// SendTextByURL sends a text message whose content is the remote resource at textURL.
func (c *Client) SendTextByURL(ctx context.Context, to, textURL string, opts ...MessageOption) (APIResponse, error) {
	return c.Send(ctx, newOutboundMessage(to, textURL, opts))
}

// SendTextByEncodedPayload sends a text message whose content is inline encoded data,
// typically a data URI. The encoding and media type are not checked locally.
func (c *Client) SendTextByEncodedPayload(ctx context.Context, to, encodedData string, opts ...MessageOption) (APIResponse, error) {
	return c.Send(ctx, newOutboundMessage(to, encodedData, opts))
}

// Send performs exactly one POST to the sendMessage endpoint.
func (c *Client) Send(ctx context.Context, msg OutboundMessage) (APIResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	body, err := json.Marshal(msg.payload())
	if err != nil {
		return nil, fmt.Errorf("marshal send payload: %w", err)
	}

	endpoint := c.baseURL + sendMessagePath
	resp, err := c.http.Post(ctx, endpoint, c.headers, body)
	if err != nil {
		c.log.ErrorObj("maytapi request failed", "maytapi_error", map[string]any{
			"to":    msg.To,
			"error": err.Error(),
		})
		return nil, &RequestError{URL: endpoint, Err: err}
	}

	status := resp.StatusCode()
	raw := resp.Body()
	if status < 200 || status > 299 {
		c.log.ErrorObj("maytapi returned error status", "maytapi_error", map[string]any{
			"to":          msg.To,
			"status_code": status,
			"body":        bodySnippet(raw),
		})
		return nil, &StatusError{StatusCode: status, Body: raw}
	}

	out, err := decodeResponse(raw)
	if err != nil {
		return nil, &ParseError{StatusCode: status, Body: raw, Err: err}
	}

	c.log.DebugObj("maytapi message sent", "maytapi_delivery", map[string]any{
		"to":          msg.To,
		"status_code": status,
	})
	return out, nil
}

var errNotObject = errors.New("response body is not a JSON object")

// decodeResponse keeps numbers as json.Number so ids above 2^53 survive a round trip.
func decodeResponse(raw []byte) (APIResponse, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errors.New("empty response body")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var out APIResponse
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errNotObject
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after JSON object")
	}
	return out, nil
}
