package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
)

type recordingMailer struct {
	mu     sync.Mutex
	sent   map[string]string
	failTo string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTo == to {
		return errors.New("smtp rejected")
	}
	if m.sent == nil {
		m.sent = make(map[string]string)
	}
	m.sent[to] = body
	return nil
}

func testOrder() OrderNotification {
	return OrderNotification{
		OrderID:    42,
		ItemName:   "Canvas 12×12",
		Quantity:   1,
		Totals:     domain.OrderTotals{Subtotal: 30.95, Shipping: 6.19, Tax: 0, Total: 37.14},
		Recipient:  domain.Recipient{Name: "Pat Doe", Address1: "1 Main St", City: "Denver", StateCode: "CO", CountryCode: "US", Zip: "80014"},
		MockupURL:  "https://cdn.example/mockup.jpg",
		BuyerEmail: "buyer@example.com",
	}
}

func TestOrderPlacedSendsBoth(t *testing.T) {
	mailer := &recordingMailer{}
	notifier := NewNotifier(Options{
		Mailer:        mailer,
		Logger:        infra.NewLogger("test", "notify"),
		OperatorEmail: "ops@shop.example",
	})

	result := notifier.OrderPlaced(context.Background(), testOrder())
	if !result.BuyerEmailed || !result.OperatorEmailed {
		t.Fatalf("result = %+v, want both sent", result)
	}
	if body := mailer.sent["buyer@example.com"]; !strings.Contains(body, "$37.14") {
		t.Fatalf("buyer email missing total: %s", body)
	}
	if body := mailer.sent["ops@shop.example"]; !strings.Contains(body, "Order #42") {
		t.Fatalf("operator email missing order id: %s", body)
	}
}

func TestOrderPlacedPartialFailure(t *testing.T) {
	mailer := &recordingMailer{failTo: "buyer@example.com"}
	notifier := NewNotifier(Options{
		Mailer:        mailer,
		Logger:        infra.NewLogger("test", "notify"),
		OperatorEmail: "ops@shop.example",
	})

	result := notifier.OrderPlaced(context.Background(), testOrder())
	if result.BuyerEmailed {
		t.Fatalf("buyer flag must be false after send failure")
	}
	if !result.OperatorEmailed {
		t.Fatalf("operator email must still go out")
	}
}

func TestOrderPlacedNoBuyerEmail(t *testing.T) {
	mailer := &recordingMailer{}
	notifier := NewNotifier(Options{
		Mailer:        mailer,
		Logger:        infra.NewLogger("test", "notify"),
		OperatorEmail: "ops@shop.example",
	})
	order := testOrder()
	order.BuyerEmail = ""

	result := notifier.OrderPlaced(context.Background(), order)
	if result.BuyerEmailed {
		t.Fatalf("no buyer email address, flag must be false")
	}
	if !result.OperatorEmailed {
		t.Fatalf("operator email must still go out")
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(12.95); got != "$12.95" {
		t.Fatalf("FormatUSD(12.95) = %q", got)
	}
	if got := FormatUSD(1234.5); got != "$1,234.50" {
		t.Fatalf("FormatUSD(1234.5) = %q", got)
	}
}
