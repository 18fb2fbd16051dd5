// Package checkout creates hosted payment sessions and, once a session
// is paid, drives fulfillment: resolve the paid session, prepare the
// print file, submit the order, and send the confirmation emails.
package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/adam-tracht/printgenie.ai/internal/catalog"
	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/jobstore"
	"github.com/adam-tracht/printgenie.ai/internal/metrics"
	"github.com/adam-tracht/printgenie.ai/internal/notify"
	"github.com/adam-tracht/printgenie.ai/internal/providers/printful"
	"github.com/adam-tracht/printgenie.ai/internal/providers/stripe"
)

// allowedShippingCountries is where the storefront ships.
var allowedShippingCountries = []string{"US", "CA"}

// PaymentProvider is the slice of the payments API the sequencer needs.
type PaymentProvider interface {
	CreateSession(ctx context.Context, params stripe.SessionParams) (*stripe.Session, error)
	Session(ctx context.Context, sessionID string) (*stripe.Session, error)
}

// FulfillmentProvider is the slice of the print API the sequencer needs.
type FulfillmentProvider interface {
	Printfiles(ctx context.Context, productID int64) (*printful.PrintfilesDescriptor, error)
	CreateOrder(ctx context.Context, req printful.OrderRequest) (*printful.Order, error)
}

// Upscaler enlarges artwork before fulfillment.
type Upscaler interface {
	Upscale(ctx context.Context, imageURL string, scale int) (string, error)
	ContentLength(ctx context.Context, rawURL string) (int64, error)
}

// CatalogResolver looks up products for email copy.
type CatalogResolver interface {
	Product(ctx context.Context, productID int64) (*domain.Product, error)
}

// Notifier sends the post-purchase emails.
type Notifier interface {
	OrderPlaced(ctx context.Context, order notify.OrderNotification) notify.Result
}

// Options wires the sequencer.
type Options struct {
	Payments      PaymentProvider
	Fulfillment   FulfillmentProvider
	Upscaler      Upscaler
	Catalog       CatalogResolver
	Notifier      Notifier
	Store         jobstore.Store
	Logger        infra.Logger
	Metrics       *metrics.Metrics
	PublicBaseURL string
}

type Service struct {
	payments      PaymentProvider
	fulfillment   FulfillmentProvider
	upscaler      Upscaler
	catalog       CatalogResolver
	notifier      Notifier
	store         jobstore.Store
	logger        infra.Logger
	metrics       *metrics.Metrics
	publicBaseURL string
}

func NewService(opts Options) *Service {
	return &Service{
		payments:      opts.Payments,
		fulfillment:   opts.Fulfillment,
		upscaler:      opts.Upscaler,
		catalog:       opts.Catalog,
		notifier:      opts.Notifier,
		store:         opts.Store,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
	}
}

// CreateSessionRequest is everything a checkout needs. The wizard only
// builds one when a priced variant and a finished mockup exist.
type CreateSessionRequest struct {
	ProductID        int64
	ProductTitle     string
	Variant          domain.PricedVariant
	MockupURL        string
	OriginalImageURL string
	ShippingCost     float64
}

func (r CreateSessionRequest) validate() error {
	switch {
	case r.ProductID == 0 || r.Variant.ID == 0:
		return fmt.Errorf("product and variant required: %w", domain.ErrValidation)
	case r.MockupURL == "":
		return fmt.Errorf("mockup required: %w", domain.ErrValidation)
	case r.OriginalImageURL == "":
		return fmt.Errorf("original image required: %w", domain.ErrValidation)
	case r.Variant.SellingPrice <= 0:
		return fmt.Errorf("selling price required: %w", domain.ErrValidation)
	case r.ShippingCost <= 0:
		return fmt.Errorf("shipping cost required: %w", domain.ErrValidation)
	}
	return nil
}

// CheckoutSession is what the handler returns: the id for later
// finalization and the URL to redirect the buyer to.
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// CreateSession opens a hosted payment session for the configured
// product. Totals shown to the buyer come from these line items; the
// metadata carries everything Finalize needs to fulfill later.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	name := lineItemName(req.ProductTitle, req.Variant.Variant)
	params := stripe.SessionParams{
		SuccessURL: s.publicBaseURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  s.publicBaseURL + "/checkout/cancel",
		LineItems: []stripe.LineItem{
			{
				Name:        name,
				Description: "Custom AI-generated artwork",
				ImageURL:    req.MockupURL,
				AmountCents: catalog.Cents(req.Variant.SellingPrice),
				Quantity:    1,
			},
			{
				Name:        "Shipping",
				AmountCents: catalog.Cents(req.ShippingCost),
				Quantity:    1,
			},
		},
		Metadata: map[string]string{
			"productId":        strconv.FormatInt(req.ProductID, 10),
			"variantId":        strconv.FormatInt(req.Variant.ID, 10),
			"mockupUrl":        req.MockupURL,
			"originalImageUrl": req.OriginalImageURL,
			"shippingCost":     strconv.FormatFloat(req.ShippingCost, 'f', -1, 64),
		},
		AllowedCountries: allowedShippingCountries,
	}

	session, err := s.payments.CreateSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create payment session: %w", err)
	}
	if s.metrics != nil {
		s.metrics.CheckoutsStarted.Inc()
	}
	s.logger.Info().Str("session_id", session.ID).Int64("variant_id", req.Variant.ID).Msg("checkout session created")
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func lineItemName(title string, v domain.Variant) string {
	parts := []string{title}
	if v.Color != "" && v.Color != "default" {
		parts = append(parts, v.Color)
	}
	if v.Size != "" {
		parts = append(parts, v.Size)
	}
	return strings.Join(parts, " / ")
}

// FinalizeResult is the return-page payload.
type FinalizeResult struct {
	OrderID          int64              `json:"orderId"`
	Totals           domain.OrderTotals `json:"totals"`
	Recipient        domain.Recipient   `json:"recipient"`
	Notifications    notify.Result      `json:"notifications"`
	AlreadyProcessed bool               `json:"alreadyProcessed,omitempty"`
}

// Finalize turns a paid session into a fulfillment order. A completed
// run claims the session for 24h, so repeated return-page loads get
// AlreadyProcessed instead of a duplicate order. A failed run releases
// the claim: the buyer has paid, so a reload must be able to retry.
func (s *Service) Finalize(ctx context.Context, sessionID string) (*FinalizeResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id required: %w", domain.ErrValidation)
	}

	claimKey := "finalize:" + sessionID
	claimed, err := s.store.ClaimOnce(ctx, claimKey, 24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("claim finalize marker: %w", err)
	}
	if !claimed {
		return &FinalizeResult{AlreadyProcessed: true}, nil
	}

	result, err := s.finalizeClaimed(ctx, sessionID)
	if err != nil {
		if rerr := s.store.Release(ctx, claimKey); rerr != nil {
			s.logger.Error().Err(rerr).Str("session_id", sessionID).Msg("could not release finalize marker, retries blocked until TTL")
		}
		return nil, err
	}
	return result, nil
}

func (s *Service) finalizeClaimed(ctx context.Context, sessionID string) (*FinalizeResult, error) {
	session, err := s.payments.Session(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve payment session %s: %v: %w", sessionID, err, domain.ErrPaymentResolution)
	}
	if session.PaymentStatus != "paid" {
		return nil, fmt.Errorf("session %s is %s, not paid: %w", sessionID, session.PaymentStatus, domain.ErrPaymentResolution)
	}

	meta, err := parseMetadata(session.Metadata)
	if err != nil {
		return nil, fmt.Errorf("session %s metadata: %v: %w", sessionID, err, domain.ErrPaymentResolution)
	}

	placement, err := s.resolvePlacement(ctx, meta.ProductID, meta.VariantID)
	if err != nil {
		return nil, err
	}

	fileURL := s.prepareOrderFile(ctx, meta.OriginalImageURL)
	recipient := recipientFromSession(session)

	order, err := s.fulfillment.CreateOrder(ctx, printful.OrderRequest{
		Recipient: printful.OrderRecipient{
			Name:        recipient.Name,
			Address1:    recipient.Address1,
			Address2:    recipient.Address2,
			City:        recipient.City,
			StateCode:   recipient.StateCode,
			CountryCode: recipient.CountryCode,
			Zip:         recipient.Zip,
		},
		Items: []printful.OrderItem{{
			VariantID: meta.VariantID,
			Quantity:  1,
			Files:     []printful.OrderFile{{URL: fileURL, Type: "default", Placement: placement}},
		}},
	})
	if err != nil {
		// The buyer has paid and no order exists. This needs a human.
		if s.metrics != nil {
			s.metrics.OrderSubmitFailures.Inc()
		}
		s.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Int64("variant_id", meta.VariantID).
			Msg("PAID SESSION WITHOUT FULFILLMENT ORDER, manual reconciliation required")
		return nil, fmt.Errorf("submit fulfillment order: %w", err)
	}
	if s.metrics != nil {
		s.metrics.OrdersSubmitted.Inc()
	}

	// Amounts shown to the buyer come from what was actually charged.
	totals := domain.OrderTotals{
		Subtotal: float64(session.AmountSubtotal) / 100,
		Tax:      float64(session.TotalDetails.AmountTax) / 100,
		Shipping: float64(session.TotalDetails.AmountShipping) / 100,
		Total:    float64(session.AmountTotal) / 100,
	}

	notifications := s.notifier.OrderPlaced(ctx, notify.OrderNotification{
		OrderID:    order.ID,
		ItemName:   s.itemName(ctx, meta),
		Quantity:   1,
		Totals:     totals,
		Recipient:  recipient,
		MockupURL:  meta.MockupURL,
		BuyerEmail: recipient.Email,
	})

	s.logger.Info().
		Str("session_id", sessionID).
		Int64("order_id", order.ID).
		Msg("order fulfilled")
	return &FinalizeResult{
		OrderID:       order.ID,
		Totals:        totals,
		Recipient:     recipient,
		Notifications: notifications,
	}, nil
}

// resolvePlacement re-fetches the printable-area descriptor at
// fulfillment time. Deliberately no cache shared with the mockup path;
// an order must never ship against a stale descriptor.
func (s *Service) resolvePlacement(ctx context.Context, productID, variantID int64) (string, error) {
	descriptor, err := s.fulfillment.Printfiles(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("fetch printfiles for order: %w", err)
	}
	vp, ok := descriptor.ForVariant(variantID)
	if !ok || len(vp.Placements) == 0 {
		return "", fmt.Errorf("variant %d not printable: %w", variantID, domain.ErrMissingSelection)
	}
	return vp.Placements[0].Placement, nil
}

func (s *Service) itemName(ctx context.Context, meta domain.SessionMetadata) string {
	if s.catalog != nil {
		if product, err := s.catalog.Product(ctx, meta.ProductID); err == nil {
			for _, v := range product.Variants {
				if v.ID == meta.VariantID {
					return lineItemName(product.Title, v)
				}
			}
			return product.Title
		}
	}
	return "Custom print"
}

func parseMetadata(raw map[string]string) (domain.SessionMetadata, error) {
	var meta domain.SessionMetadata
	productID, err := strconv.ParseInt(raw["productId"], 10, 64)
	if err != nil {
		return meta, fmt.Errorf("productId: %v", err)
	}
	variantID, err := strconv.ParseInt(raw["variantId"], 10, 64)
	if err != nil {
		return meta, fmt.Errorf("variantId: %v", err)
	}
	shipping, err := strconv.ParseFloat(raw["shippingCost"], 64)
	if err != nil {
		return meta, fmt.Errorf("shippingCost: %v", err)
	}
	meta.ProductID = productID
	meta.VariantID = variantID
	meta.MockupURL = raw["mockupUrl"]
	meta.OriginalImageURL = raw["originalImageUrl"]
	meta.ShippingCost = shipping
	if meta.OriginalImageURL == "" {
		return meta, fmt.Errorf("originalImageUrl missing")
	}
	return meta, nil
}

func recipientFromSession(session *stripe.Session) domain.Recipient {
	name := session.ShippingDetails.Name
	addr := session.ShippingDetails.Address
	if name == "" && addr.Line1 == "" {
		name = session.CustomerDetails.Name
		addr = session.CustomerDetails.Address
	}
	email := session.CustomerDetails.Email
	if email == "" {
		email = session.CustomerEmail
	}
	return domain.Recipient{
		Name:        name,
		Email:       email,
		Address1:    addr.Line1,
		Address2:    addr.Line2,
		City:        addr.City,
		StateCode:   addr.State,
		CountryCode: addr.Country,
		Zip:         addr.PostalCode,
	}
}
