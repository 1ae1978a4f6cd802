// Package smsgw posts composed client messages to an optional external SMS
// gateway. Delivery is best-effort: it never blocks a request and a failure
// is only logged.
package smsgw

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Client sends messages to the gateway. If baseURL is empty, Send is a
// no-op.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

func NewClient(baseURL string, log *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log.With("component", "smsgw"),
	}
}

// Enabled reports whether a gateway is configured.
func (c *Client) Enabled() bool { return c.baseURL != "" }

// Payload is the body of POST /sms/send.
type Payload struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Send posts one message to the gateway.
func (c *Client) Send(ctx context.Context, phone, message string) {
	if c.baseURL == "" {
		return
	}
	body, err := json.Marshal(Payload{Phone: phone, Message: message})
	if err != nil {
		c.log.Error("marshal", "error", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sms/send", bytes.NewReader(body))
	if err != nil {
		c.log.Error("new request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("request failed", "error", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("gateway rejected message", "status", resp.StatusCode)
	}
}

// SendAsync sends in a separate goroutine so callers never wait on the
// gateway.
func (c *Client) SendAsync(phone, message string) {
	if c.baseURL == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Send(ctx, phone, message)
	}()
}
