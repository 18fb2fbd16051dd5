package domain

// SessionMetadata is the payload attached to a checkout session at
// creation time and read back exactly once by the fulfillment sequencer.
type SessionMetadata struct {
	ProductID        int64   `json:"productId,string"`
	VariantID        int64   `json:"variantId,string"`
	MockupURL        string  `json:"mockupUrl"`
	OriginalImageURL string  `json:"originalImageUrl"`
	ShippingCost     float64 `json:"shippingCost,string"`
}

// Recipient is the shipping destination collected by the payment
// provider.
type Recipient struct {
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
}

// OrderItem is one line of a fulfillment order.
type OrderItem struct {
	VariantID int64  `json:"variant_id"`
	Quantity  int    `json:"quantity"`
	Name      string `json:"name,omitempty"`
	FileURL   string `json:"file_url"`
	Placement string `json:"placement"`
}

// OrderTotals carries the human-readable amounts shown on the return
// page and in emails. Source of truth is the payment session, never the
// fulfillment provider.
type OrderTotals struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

// FulfillmentOrder is the accepted print order. Immutable once the
// provider acknowledges it.
type FulfillmentOrder struct {
	ID        int64       `json:"id"`
	Recipient Recipient   `json:"recipient"`
	Items     []OrderItem `json:"items"`
	Totals    OrderTotals `json:"totals"`
}
