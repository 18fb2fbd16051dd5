package sendgrid

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Options configures the mail client.
type Options struct {
	BaseURL    string
	APIKey     string
	FromEmail  string
	FromName   string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client sends transactional mail through a SendGrid-compatible API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	fromEmail  string
	fromName   string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.sendgrid.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
		fromEmail:  strings.TrimSpace(opts.FromEmail),
		fromName:   strings.TrimSpace(opts.FromName),
	}
}

type address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sendRequest struct {
	Personalizations []struct {
		To []address `json:"to"`
	} `json:"personalizations"`
	From    address `json:"from"`
	Subject string  `json:"subject"`
	Content []struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	} `json:"content"`
}

// Send delivers one HTML email to the given recipient.
func (c *Client) Send(ctx context.Context, toEmail, subject, htmlBody string) error {
	if c == nil {
		return errors.New("sendgrid client not configured")
	}
	if c.apiKey == "" {
		return errors.New("sendgrid: API key is missing")
	}
	if strings.TrimSpace(toEmail) == "" {
		return errors.New("sendgrid: recipient required")
	}

	payload := sendRequest{
		From:    address{Email: c.fromEmail, Name: c.fromName},
		Subject: subject,
	}
	payload.Personalizations = append(payload.Personalizations, struct {
		To []address `json:"to"`
	}{To: []address{{Email: toEmail}}})
	payload.Content = append(payload.Content, struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}{Type: "text/html", Value: htmlBody})

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/mail/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sendgrid: http %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
