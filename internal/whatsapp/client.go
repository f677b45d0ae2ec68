// Package whatsapp is a thin client for the hosted WhatsApp gateway.
// The gateway authenticates with an instance id and a token carried in
// the request path and addresses recipients as <digits>@c.us.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
)

const DefaultBaseURL = "https://api.green-api.com"

type Client struct {
	baseURL    string
	instanceID string
	token      string
	httpClient *http.Client
	log        lgr.L
	enabled    bool
}

func New(instanceID, token string, log lgr.L) *Client {
	return &Client{
		baseURL:    DefaultBaseURL,
		instanceID: instanceID,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
		enabled:    true,
	}
}

// Disabled returns a client whose Send is a soft no-op. Used when the
// gateway credentials are absent or notifications are switched off.
func Disabled(log lgr.L) *Client {
	return &Client{log: log}
}

// SetBaseURL overrides the gateway endpoint. Test hook.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type sendRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// Send posts one message to one recipient address. A disabled client
// logs and reports success.
func (c *Client) Send(ctx context.Context, recipient, message string) error {
	if !c.enabled {
		c.log.Logf("[DEBUG] sending disabled, dropping message to %s", recipient)
		return nil
	}

	body, err := json.Marshal(sendRequest{ChatID: recipient, Message: message})
	if err != nil {
		return fmt.Errorf("could not encode message: %w", err)
	}

	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", c.baseURL, c.instanceID, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("could not build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode, payload)
	}
	return nil
}
