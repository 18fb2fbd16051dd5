package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Options configures the payments client.
type Options struct {
	BaseURL    string
	SecretKey  string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to a Stripe-compatible payments API. The API is
// form-encoded on the way in and JSON on the way out.
type Client struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

func NewClient(opts Options) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.stripe.com"
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
		secretKey:  strings.TrimSpace(opts.SecretKey),
	}
}

// LineItem is one priced entry of a checkout session.
type LineItem struct {
	Name        string
	Description string
	ImageURL    string
	AmountCents int64
	Quantity    int
}

// SessionParams describes a hosted checkout session to create.
type SessionParams struct {
	SuccessURL       string
	CancelURL        string
	LineItems        []LineItem
	Metadata         map[string]string
	AllowedCountries []string
}

// Address is a structured postal address on a finished session.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Session is a hosted checkout session.
type Session struct {
	ID             string            `json:"id"`
	URL            string            `json:"url"`
	PaymentStatus  string            `json:"payment_status"`
	AmountSubtotal int64             `json:"amount_subtotal"`
	AmountTotal    int64             `json:"amount_total"`
	Metadata       map[string]string `json:"metadata"`
	CustomerEmail  string            `json:"customer_email"`
	TotalDetails   struct {
		AmountTax      int64 `json:"amount_tax"`
		AmountShipping int64 `json:"amount_shipping"`
	} `json:"total_details"`
	CustomerDetails struct {
		Email   string  `json:"email"`
		Name    string  `json:"name"`
		Address Address `json:"address"`
	} `json:"customer_details"`
	ShippingDetails struct {
		Name    string  `json:"name"`
		Address Address `json:"address"`
	} `json:"shipping_details"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// CreateSession opens a hosted checkout session and returns it with the
// redirect URL populated.
func (c *Client) CreateSession(ctx context.Context, params SessionParams) (*Session, error) {
	if len(params.LineItems) == 0 {
		return nil, errors.New("stripe: at least one line item required")
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	for i, item := range params.LineItems {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.AmountCents, 10))
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
		if item.ImageURL != "" {
			form.Set(prefix+"[price_data][product_data][images][0]", item.ImageURL)
		}
	}
	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}
	for i, cc := range params.AllowedCountries {
		form.Set(fmt.Sprintf("shipping_address_collection[allowed_countries][%d]", i), cc)
	}

	var out Session
	if err := c.postForm(ctx, "/v1/checkout/sessions", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Session retrieves a checkout session by id.
func (c *Client) Session(ctx context.Context, sessionID string) (*Session, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("stripe: session id required")
	}
	var out Session
	q := url.Values{}
	q.Add("expand[]", "total_details")
	q.Add("expand[]", "shipping_details")
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID) + "?" + q.Encode()
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c == nil {
		return errors.New("stripe client not configured")
	}
	if c.secretKey == "" {
		return errors.New("stripe: secret key is missing")
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errResp errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Message != "" {
			return fmt.Errorf("stripe error: %s (%s)", errResp.Error.Message, errResp.Error.Type)
		}
		return fmt.Errorf("stripe: http %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
