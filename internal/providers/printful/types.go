package printful

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ProductSummary is one catalog listing from GET /products.
type ProductSummary struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	TypeName     string `json:"type_name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Discontinued bool   `json:"is_discontinued"`
}

// VariantRecord is one purchasable variant from GET /products/{id}.
// The provider serializes prices as strings.
type VariantRecord struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Size    string      `json:"size"`
	Color   string      `json:"color"`
	Price   PriceString `json:"price"`
	InStock bool        `json:"in_stock"`
	Image   string      `json:"image"`
}

// PriceString decodes the provider's string-typed money amounts.
type PriceString float64

func (p *PriceString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*p = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*p = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse price %q: %w", s, err)
		}
		*p = PriceString(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PriceString(v)
	return nil
}

// ProductDetail is the response of GET /products/{id}.
type ProductDetail struct {
	Product  ProductSummary  `json:"product"`
	Variants []VariantRecord `json:"variants"`
}

// Printfile describes one printable file template.
type Printfile struct {
	PrintfileID int64  `json:"printfile_id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	DPI         int    `json:"dpi"`
	FillMode    string `json:"fill_mode"`
}

// PlacementRef pairs a placement key with its printfile id, in the
// order the provider listed them. The document order matters: order
// placement selection uses the first entry.
type PlacementRef struct {
	Placement   string
	PrintfileID int64
}

// VariantPrintfile maps one variant to its ordered placement list.
type VariantPrintfile struct {
	VariantID  int64          `json:"variant_id"`
	Placements []PlacementRef `json:"placements"`
}

// UnmarshalJSON preserves the provider's placement ordering, which a
// plain map would scramble.
func (v *VariantPrintfile) UnmarshalJSON(data []byte) error {
	var head struct {
		VariantID  int64           `json:"variant_id"`
		Placements json.RawMessage `json:"placements"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	v.VariantID = head.VariantID
	v.Placements = nil
	if len(head.Placements) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(head.Placements))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("placements: expected object, got %v", tok)
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("placements: non-string key %v", keyTok)
		}
		var id int64
		if err := dec.Decode(&id); err != nil {
			return fmt.Errorf("placements[%s]: %w", key, err)
		}
		v.Placements = append(v.Placements, PlacementRef{Placement: key, PrintfileID: id})
	}
	return nil
}

// PrintfilesDescriptor is the printable-area descriptor for a product.
type PrintfilesDescriptor struct {
	ProductID         int64              `json:"product_id"`
	Printfiles        []Printfile        `json:"printfiles"`
	VariantPrintfiles []VariantPrintfile `json:"variant_printfiles"`
}

// ForVariant returns the descriptor entry for the given variant.
func (d *PrintfilesDescriptor) ForVariant(variantID int64) (VariantPrintfile, bool) {
	for _, vp := range d.VariantPrintfiles {
		if vp.VariantID == variantID {
			return vp, true
		}
	}
	return VariantPrintfile{}, false
}

// PrintfileByID resolves a printfile template by id.
func (d *PrintfilesDescriptor) PrintfileByID(id int64) (Printfile, bool) {
	for _, pf := range d.Printfiles {
		if pf.PrintfileID == id {
			return pf, true
		}
	}
	return Printfile{}, false
}

// Position anchors the artwork on the printfile. The storefront always
// fills the whole printable area from the top-left corner.
type Position struct {
	AreaWidth  int `json:"area_width"`
	AreaHeight int `json:"area_height"`
	Width      int `json:"width"`
	Height     int `json:"height"`
	Top        int `json:"top"`
	Left       int `json:"left"`
}

// MockupFile is one artwork file of a mockup render request.
type MockupFile struct {
	Placement string   `json:"placement"`
	ImageURL  string   `json:"image_url"`
	Position  Position `json:"position"`
}

// MockupTaskRequest is the body of POST /mockup-generator/create-task/{id}.
type MockupTaskRequest struct {
	VariantIDs []int64      `json:"variant_ids"`
	Format     string       `json:"format"`
	Files      []MockupFile `json:"files"`
}

// MockupTask is the state of a render task.
type MockupTask struct {
	TaskKey string `json:"task_key"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Mockups []struct {
		MockupURL string `json:"mockup_url"`
	} `json:"mockups,omitempty"`
}

// OrderRecipient is the shipping destination of an order request.
type OrderRecipient struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	StateCode   string `json:"state_code"`
	CountryCode string `json:"country_code"`
	Zip         string `json:"zip"`
}

// OrderFile references the print artwork for one placement.
type OrderFile struct {
	URL       string `json:"url"`
	Type      string `json:"type"`
	Placement string `json:"placement"`
}

// OrderItem is one line of an order request.
type OrderItem struct {
	VariantID int64       `json:"variant_id"`
	Quantity  int         `json:"quantity"`
	Files     []OrderFile `json:"files"`
}

// OrderRequest is the body of POST /orders.
type OrderRequest struct {
	Recipient OrderRecipient `json:"recipient"`
	Items     []OrderItem    `json:"items"`
}

// Order is the accepted order returned by the provider.
type Order struct {
	ID        int64          `json:"id"`
	Status    string         `json:"status"`
	Recipient OrderRecipient `json:"recipient"`
	Items     []struct {
		VariantID int64  `json:"variant_id"`
		Quantity  int    `json:"quantity"`
		Name      string `json:"name"`
	} `json:"items"`
	Costs struct {
		Subtotal PriceString `json:"subtotal"`
		Shipping PriceString `json:"shipping"`
		Tax      PriceString `json:"tax"`
		Total    PriceString `json:"total"`
	} `json:"costs"`
}
