package receipts

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/maytapi-sender/pkg/maytapi"
)

// Outcomes a sink can subscribe to.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Operations recorded on a receipt.
const (
	OperationTextByURL     = "send_text_by_url"
	OperationTextByEncoded = "send_text_by_encoded_payload"
)

// Receipt describes the outcome of a single send call.
type Receipt struct {
	Operation  string              `json:"operation"`
	To         string              `json:"to"`
	Success    bool                `json:"success"`
	StatusCode int                 `json:"status_code,omitempty"`
	Response   maytapi.APIResponse `json:"response,omitempty"`
	Error      string              `json:"error,omitempty"`
	SentAt     time.Time           `json:"sent_at"`
}

// NewReceipt builds a Receipt from a send result.
func NewReceipt(operation, to string, resp maytapi.APIResponse, err error) Receipt {
	r := Receipt{
		Operation: operation,
		To:        to,
		Success:   err == nil,
		Response:  resp,
		SentAt:    time.Now().UTC(),
	}
	if err == nil {
		return r
	}

	r.Error = err.Error()
	var statusErr *maytapi.StatusError
	var parseErr *maytapi.ParseError
	switch {
	case errors.As(err, &statusErr):
		r.StatusCode = statusErr.StatusCode
	case errors.As(err, &parseErr):
		r.StatusCode = parseErr.StatusCode
	}
	return r
}

// Outcome reports OutcomeSent or OutcomeFailed.
func (r Receipt) Outcome() string {
	if r.Success {
		return OutcomeSent
	}
	return OutcomeFailed
}

// encode renders the receipt as a message body plus the attributes queue sinks
// use for server-side filtering.
func (r Receipt) encode() (string, map[string]string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", nil, fmt.Errorf("marshal receipt: %w", err)
	}
	return string(payload), map[string]string{
		"operation": r.Operation,
		"status":    r.Outcome(),
	}, nil
}
