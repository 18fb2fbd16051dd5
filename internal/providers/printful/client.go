package printful

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options configures the print provider client.
type Options struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to a Printful-compatible API. All responses share the
// {code, result} envelope; typed helpers unwrap it and the Raw methods
// hand the envelope through untouched for the proxy surface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.printful.com"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: client,
		baseURL:    base,
		token:      strings.TrimSpace(opts.Token),
	}
}

// APIError carries the upstream HTTP status so handlers can pass it
// through per the proxy contract.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("printful: %s (http %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("printful: http %d", e.StatusCode)
}

type envelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
}

// RawGet performs a GET and returns the raw body and status code.
func (c *Client) RawGet(ctx context.Context, path string) ([]byte, int, error) {
	return c.raw(ctx, http.MethodGet, path, nil)
}

// RawPost performs a POST with a JSON body and returns the raw body and
// status code.
func (c *Client) RawPost(ctx context.Context, path string, body any) ([]byte, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}
	return c.raw(ctx, http.MethodPost, path, payload)
}

func (c *Client) raw(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	if c == nil {
		return nil, 0, errors.New("printful client not configured")
	}
	if c.token == "" {
		return nil, 0, errors.New("printful: access token is missing")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return payload, resp.StatusCode, nil
}

func (c *Client) getResult(ctx context.Context, path string, out any) error {
	payload, status, err := c.raw(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeEnvelope(payload, status, out)
}

func (c *Client) postResult(ctx context.Context, path string, body, out any) error {
	payload, status, err := c.RawPost(ctx, path, body)
	if err != nil {
		return err
	}
	return decodeEnvelope(payload, status, out)
}

func decodeEnvelope(payload []byte, status int, out any) error {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		if status >= http.StatusBadRequest {
			return &APIError{StatusCode: status}
		}
		return err
	}
	if status >= http.StatusBadRequest {
		return &APIError{StatusCode: status, Message: env.Error.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// Products lists the full catalog.
func (c *Client) Products(ctx context.Context) ([]ProductSummary, error) {
	var out []ProductSummary
	if err := c.getResult(ctx, "/products", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Product returns one product with its variants.
func (c *Client) Product(ctx context.Context, productID int64) (*ProductDetail, error) {
	var out ProductDetail
	if err := c.getResult(ctx, fmt.Sprintf("/products/%d", productID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Printfiles fetches the printable-area descriptor for a product.
func (c *Client) Printfiles(ctx context.Context, productID int64) (*PrintfilesDescriptor, error) {
	var out PrintfilesDescriptor
	if err := c.getResult(ctx, fmt.Sprintf("/mockup-generator/printfiles/%d", productID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateMockupTask submits a mockup render task.
func (c *Client) CreateMockupTask(ctx context.Context, productID int64, req MockupTaskRequest) (*MockupTask, error) {
	var out MockupTask
	if err := c.postResult(ctx, fmt.Sprintf("/mockup-generator/create-task/%d", productID), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MockupTaskStatus polls a render task by its key.
func (c *Client) MockupTaskStatus(ctx context.Context, taskKey string) (*MockupTask, error) {
	var out MockupTask
	path := "/mockup-generator/task?task_key=" + url.QueryEscape(taskKey)
	if err := c.getResult(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateOrder submits a fulfillment order.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var out Order
	if err := c.postResult(ctx, "/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
