package pixelcut

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Options configures the upscaling client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client calls a Pixelcut-compatible image upscaling API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.developer.pixelcut.ai"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 90 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		apiKey:     strings.TrimSpace(opts.APIKey),
	}
}

type upscaleRequest struct {
	ImageURL string `json:"image_url"`
	Scale    int    `json:"scale"`
}

type upscaleResponse struct {
	ResultURL string `json:"result_url"`
	Error     string `json:"error"`
}

// Upscale enlarges the image by the given integer factor and returns
// the URL of the enlarged result.
func (c *Client) Upscale(ctx context.Context, imageURL string, scale int) (string, error) {
	if c == nil {
		return "", errors.New("pixelcut client not configured")
	}
	if c.apiKey == "" {
		return "", errors.New("pixelcut: API key is missing")
	}
	if scale < 2 {
		scale = 2
	}

	body, err := json.Marshal(upscaleRequest{ImageURL: imageURL, Scale: scale})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/upscale", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out upscaleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return "", fmt.Errorf("pixelcut: http %d", resp.StatusCode)
		}
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if out.Error != "" {
			return "", fmt.Errorf("pixelcut error: %s", out.Error)
		}
		return "", fmt.Errorf("pixelcut: http %d", resp.StatusCode)
	}
	if strings.TrimSpace(out.ResultURL) == "" {
		return "", errors.New("pixelcut: empty response")
	}
	return out.ResultURL, nil
}

// ContentLength issues a HEAD request for the URL and reports its
// Content-Length, or -1 when the server does not declare one.
func (c *Client) ContentLength(ctx context.Context, rawURL string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return 0, fmt.Errorf("head %s: http %d", rawURL, resp.StatusCode)
	}
	return resp.ContentLength, nil
}
