package hints

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abdidvp/dataval/internal/domain"
)

// DefaultTimeout bounds a single hint request.
const DefaultTimeout = 10 * time.Second

// maxResponse caps how much of a hint response body is read.
const maxResponse = 64 << 10

// HTTP posts each issue as JSON to an endpoint and reads back a suggestion
// of the form {"message": "...", "example": "..."}.
type HTTP struct {
	endpoint string
	client   *http.Client
}

// HTTPOption configures an HTTP generator.
type HTTPOption func(*HTTP)

// WithClient replaces the HTTP client.
func WithClient(c *http.Client) HTTPOption {
	return func(h *HTTP) { h.client = c }
}

// NewHTTP returns a generator for endpoint. A zero timeout uses DefaultTimeout.
func NewHTTP(endpoint string, timeout time.Duration, opts ...HTTPOption) *HTTP {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	h := &HTTP{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Hint returns nil without error when the endpoint answers with an empty
// message.
func (h *HTTP) Hint(ctx context.Context, issue domain.Issue) (*domain.Suggestion, error) {
	payload, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("marshaling issue: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating hint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting hint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("hint endpoint returned status %d", resp.StatusCode)
	}

	var s domain.Suggestion
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponse)).Decode(&s); err != nil {
		return nil, fmt.Errorf("decoding hint: %w", err)
	}
	if s.Message == "" {
		return nil, nil
	}
	return &s, nil
}
