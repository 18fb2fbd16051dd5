package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
	"github.com/adam-tracht/printgenie.ai/internal/jobstore"
	"github.com/adam-tracht/printgenie.ai/internal/metrics"
	"github.com/adam-tracht/printgenie.ai/internal/notify"
	"github.com/adam-tracht/printgenie.ai/internal/providers/printful"
	"github.com/adam-tracht/printgenie.ai/internal/providers/stripe"
)

type fakePayments struct {
	createdParams stripe.SessionParams
	createErr     error
	session       *stripe.Session
	sessionErr    error
}

func (f *fakePayments) CreateSession(ctx context.Context, params stripe.SessionParams) (*stripe.Session, error) {
	f.createdParams = params
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &stripe.Session{ID: "cs_test_123", URL: "https://pay.example/s/cs_test_123"}, nil
}

func (f *fakePayments) Session(ctx context.Context, id string) (*stripe.Session, error) {
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	return f.session, nil
}

type fakeFulfillment struct {
	descriptor *printful.PrintfilesDescriptor
	orderReq   printful.OrderRequest
	orderErr   error
}

func (f *fakeFulfillment) Printfiles(ctx context.Context, productID int64) (*printful.PrintfilesDescriptor, error) {
	return f.descriptor, nil
}

func (f *fakeFulfillment) CreateOrder(ctx context.Context, req printful.OrderRequest) (*printful.Order, error) {
	f.orderReq = req
	if f.orderErr != nil {
		return nil, f.orderErr
	}
	return &printful.Order{ID: 9001, Status: "draft"}, nil
}

type fakeUpscaler struct {
	results map[string]string
	sizes   map[string]int64
	err     error
}

func (f *fakeUpscaler) Upscale(ctx context.Context, imageURL string, scale int) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if out, ok := f.results[imageURL]; ok {
		return out, nil
	}
	return imageURL + "?upscaled", nil
}

func (f *fakeUpscaler) ContentLength(ctx context.Context, rawURL string) (int64, error) {
	if size, ok := f.sizes[rawURL]; ok {
		return size, nil
	}
	return 10 * 1024 * 1024, nil
}

type fakeNotifier struct {
	got    notify.OrderNotification
	result notify.Result
}

func (f *fakeNotifier) OrderPlaced(ctx context.Context, order notify.OrderNotification) notify.Result {
	f.got = order
	return f.result
}

type fakeCatalog struct{}

func (fakeCatalog) Product(ctx context.Context, productID int64) (*domain.Product, error) {
	return &domain.Product{
		ID:    71,
		Title: "Canvas",
		Variants: []domain.Variant{
			{ID: 4011, Color: "default", Size: "12×12"},
		},
	}, nil
}

func paidSession() *stripe.Session {
	s := &stripe.Session{
		ID:             "cs_test_123",
		PaymentStatus:  "paid",
		AmountSubtotal: 3095,
		AmountTotal:    3714,
		Metadata: map[string]string{
			"productId":        "71",
			"variantId":        "4011",
			"mockupUrl":        "https://cdn.example/mockup.jpg",
			"originalImageUrl": "https://images.example/art.png",
			"shippingCost":     "6.19",
		},
	}
	s.TotalDetails.AmountTax = 0
	s.TotalDetails.AmountShipping = 619
	s.CustomerDetails.Email = "buyer@example.com"
	s.ShippingDetails.Name = "Pat Doe"
	s.ShippingDetails.Address = stripe.Address{
		Line1: "1 Main St", City: "Denver", State: "CO", PostalCode: "80014", Country: "US",
	}
	return s
}

func testDescriptor() *printful.PrintfilesDescriptor {
	return &printful.PrintfilesDescriptor{
		ProductID:  71,
		Printfiles: []printful.Printfile{{PrintfileID: 9, Width: 4500, Height: 4500}},
		VariantPrintfiles: []printful.VariantPrintfile{{
			VariantID:  4011,
			Placements: []printful.PlacementRef{{Placement: "default", PrintfileID: 9}},
		}},
	}
}

type fixture struct {
	svc         *Service
	payments    *fakePayments
	fulfillment *fakeFulfillment
	upscaler    *fakeUpscaler
	notifier    *fakeNotifier
	metrics     *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		payments:    &fakePayments{session: paidSession()},
		fulfillment: &fakeFulfillment{descriptor: testDescriptor()},
		upscaler:    &fakeUpscaler{},
		notifier:    &fakeNotifier{result: notify.Result{BuyerEmailed: true, OperatorEmailed: true}},
		metrics:     metrics.New(prometheus.NewRegistry()),
	}
	f.svc = NewService(Options{
		Payments:      f.payments,
		Fulfillment:   f.fulfillment,
		Upscaler:      f.upscaler,
		Catalog:       fakeCatalog{},
		Notifier:      f.notifier,
		Store:         jobstore.NewMemoryStore(time.Minute),
		Logger:        infra.NewLogger("test", "checkout"),
		Metrics:       f.metrics,
		PublicBaseURL: "https://shop.example",
	})
	return f
}

func validRequest() CreateSessionRequest {
	return CreateSessionRequest{
		ProductID:    71,
		ProductTitle: "Canvas",
		Variant: domain.PricedVariant{
			Variant:      domain.Variant{ID: 4011, Color: "default", Size: "12×12", BasePrice: 25},
			SellingPrice: 30.95,
		},
		MockupURL:        "https://cdn.example/mockup.jpg",
		OriginalImageURL: "https://images.example/art.png",
		ShippingCost:     6.19,
	}
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]func(*CreateSessionRequest){
		"no variant":  func(r *CreateSessionRequest) { r.Variant.ID = 0 },
		"no mockup":   func(r *CreateSessionRequest) { r.MockupURL = "" },
		"no original": func(r *CreateSessionRequest) { r.OriginalImageURL = "" },
		"no price":    func(r *CreateSessionRequest) { r.Variant.SellingPrice = 0 },
		"no shipping": func(r *CreateSessionRequest) { r.ShippingCost = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			mutate(&req)
			_, err := f.svc.CreateSession(context.Background(), req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestCreateSessionBuildsParams(t *testing.T) {
	f := newFixture(t)

	session, err := f.svc.CreateSession(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", session.ID)
	assert.NotEmpty(t, session.URL)

	params := f.payments.createdParams
	require.Len(t, params.LineItems, 2)
	assert.Equal(t, int64(3095), params.LineItems[0].AmountCents)
	assert.Equal(t, "Shipping", params.LineItems[1].Name)
	assert.Equal(t, int64(619), params.LineItems[1].AmountCents)
	assert.Equal(t, "71", params.Metadata["productId"])
	assert.Equal(t, "4011", params.Metadata["variantId"])
	assert.Equal(t, "6.19", params.Metadata["shippingCost"])
	assert.Equal(t, []string{"US", "CA"}, params.AllowedCountries)
	assert.Contains(t, params.SuccessURL, "{CHECKOUT_SESSION_ID}")
}

func TestFinalizeHappyPath(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, int64(9001), result.OrderID)

	// Totals come from what the payment provider charged.
	assert.Equal(t, 30.95, result.Totals.Subtotal)
	assert.Equal(t, 6.19, result.Totals.Shipping)
	assert.Equal(t, 37.14, result.Totals.Total)

	assert.True(t, result.Notifications.BuyerEmailed)
	assert.True(t, result.Notifications.OperatorEmailed)
	assert.Equal(t, "buyer@example.com", f.notifier.got.BuyerEmail)

	require.Len(t, f.fulfillment.orderReq.Items, 1)
	item := f.fulfillment.orderReq.Items[0]
	assert.Equal(t, int64(4011), item.VariantID)
	assert.Equal(t, 1, item.Quantity)
	assert.Equal(t, "default", item.Files[0].Placement)
	assert.Equal(t, "Pat Doe", f.fulfillment.orderReq.Recipient.Name)
	assert.Equal(t, "US", f.fulfillment.orderReq.Recipient.CountryCode)
}

func TestFinalizeRunsOncePerSession(t *testing.T) {
	f := newFixture(t)

	first, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.False(t, first.AlreadyProcessed)

	second, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
	assert.Zero(t, second.OrderID)
}

func TestFinalizeSessionResolutionFatal(t *testing.T) {
	f := newFixture(t)
	f.payments.sessionErr = errors.New("http 500")

	_, err := f.svc.Finalize(context.Background(), "cs_test_123")
	assert.ErrorIs(t, err, domain.ErrPaymentResolution)
}

func TestFinalizeFailureAllowsRetry(t *testing.T) {
	f := newFixture(t)
	f.payments.sessionErr = errors.New("http 500")

	_, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.Error(t, err)

	// The provider recovers; the buyer reloading the return page must
	// get a real order, not AlreadyProcessed with no order behind it.
	f.payments.sessionErr = nil
	result, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, int64(9001), result.OrderID)
}

func TestFinalizeOrderFailureAllowsRetry(t *testing.T) {
	f := newFixture(t)
	f.fulfillment.orderErr = errors.New("printful: http 502")

	_, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.Error(t, err)

	f.fulfillment.orderErr = nil
	result, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, int64(9001), result.OrderID)

	// The retry succeeded, so only the successful run holds the claim.
	second, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.True(t, second.AlreadyProcessed)
}

func TestFinalizeRejectsUnpaidSession(t *testing.T) {
	f := newFixture(t)
	f.payments.session.PaymentStatus = "unpaid"

	_, err := f.svc.Finalize(context.Background(), "cs_test_123")
	assert.ErrorIs(t, err, domain.ErrPaymentResolution)
}

func TestFinalizeOrderFailureSurfacesAndCounts(t *testing.T) {
	f := newFixture(t)
	f.fulfillment.orderErr = errors.New("printful: bad file (http 400)")

	_, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "printful: bad file")
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrderSubmitFailures))
}

func TestFinalizeUpscaleFailureFallsBackToOriginal(t *testing.T) {
	f := newFixture(t)
	f.upscaler.err = errors.New("pixelcut down")

	_, err := f.svc.Finalize(context.Background(), "cs_test_123")
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/art.png", f.fulfillment.orderReq.Items[0].Files[0].URL)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.UpscaleFallbacks))
}

func TestPrepareOrderFileStopsAtTarget(t *testing.T) {
	f := newFixture(t)
	f.upscaler.results = map[string]string{
		"https://images.example/art.png": "https://cdn.example/art-4x.png",
	}

	got := f.svc.prepareOrderFile(context.Background(), "https://images.example/art.png")
	assert.Equal(t, "https://cdn.example/art-4x.png", got)
}

func TestPrepareOrderFileRespectsSizeCeiling(t *testing.T) {
	f := newFixture(t)
	f.upscaler.results = map[string]string{
		"https://images.example/art.png": "https://cdn.example/art-4x.png",
	}
	f.upscaler.sizes = map[string]int64{
		"https://cdn.example/art-4x.png": 60 * 1024 * 1024,
	}

	got := f.svc.prepareOrderFile(context.Background(), "https://images.example/art.png")
	assert.Equal(t, "https://images.example/art.png", got)
}
