package domain

// Product is an immutable snapshot of a catalog entry. Variants are
// populated lazily when the product is selected.
type Product struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	TypeName     string    `json:"type_name"`
	Description  string    `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Discontinued bool      `json:"is_discontinued,omitempty"`
	Variants     []Variant `json:"variants,omitempty"`
}

// Variant is one purchasable configuration of a product.
type Variant struct {
	ID        int64   `json:"id"`
	Color     string  `json:"color,omitempty"`
	Size      string  `json:"size"`
	BasePrice float64 `json:"price"`
	InStock   bool    `json:"in_stock"`
	ImageURL  string  `json:"image,omitempty"`
}

// PricedVariant is a Variant with the storefront margin applied. It is
// only ever derived from a variant of the product currently shown.
type PricedVariant struct {
	Variant
	SellingPrice float64 `json:"selling_price"`
}
