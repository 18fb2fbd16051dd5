// Package notify sends the post-purchase emails. Delivery is best
// effort: failures are logged and reported as flags, never returned as
// errors, because the order is already paid and submitted.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/adam-tracht/printgenie.ai/internal/domain"
	"github.com/adam-tracht/printgenie.ai/internal/infra"
)

// Mailer delivers one HTML email.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, htmlBody string) error
}

// Options configures the notifier.
type Options struct {
	Mailer        Mailer
	Logger        infra.Logger
	OperatorEmail string
}

// OrderNotification is everything the two emails need.
type OrderNotification struct {
	OrderID    int64
	ItemName   string
	Quantity   int
	Totals     domain.OrderTotals
	Recipient  domain.Recipient
	MockupURL  string
	BuyerEmail string
}

// Result reports which emails actually went out.
type Result struct {
	BuyerEmailed    bool `json:"buyerEmailed"`
	OperatorEmailed bool `json:"operatorEmailed"`
}

type Notifier struct {
	mailer        Mailer
	logger        infra.Logger
	operatorEmail string
}

func NewNotifier(opts Options) *Notifier {
	return &Notifier{
		mailer:        opts.Mailer,
		logger:        opts.Logger,
		operatorEmail: strings.TrimSpace(opts.OperatorEmail),
	}
}

// OrderPlaced sends the buyer confirmation and the operator copy
// concurrently and reports per-email success.
func (n *Notifier) OrderPlaced(ctx context.Context, order OrderNotification) Result {
	var result Result
	var wg sync.WaitGroup

	if order.BuyerEmail != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := n.mailer.Send(ctx, order.BuyerEmail, "Your order is confirmed", buyerBody(order))
			if err != nil {
				n.logger.Error().Err(err).Int64("order_id", order.OrderID).Msg("buyer confirmation email failed")
				return
			}
			result.BuyerEmailed = true
		}()
	}
	if n.operatorEmail != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			subject := fmt.Sprintf("New order #%d", order.OrderID)
			err := n.mailer.Send(ctx, n.operatorEmail, subject, operatorBody(order))
			if err != nil {
				n.logger.Error().Err(err).Int64("order_id", order.OrderID).Msg("operator email failed")
				return
			}
			result.OperatorEmailed = true
		}()
	}
	wg.Wait()
	return result
}

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders a dollar amount the way the emails show it, with
// thousands grouping and exactly two fraction digits.
func FormatUSD(amount float64) string {
	return usd.Sprintf("$%v", number.Decimal(amount,
		number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}

func buyerBody(order OrderNotification) string {
	var b strings.Builder
	b.WriteString("<h1>Thanks for your order!</h1>")
	fmt.Fprintf(&b, "<p>Order <strong>#%d</strong> is confirmed and heading to production.</p>", order.OrderID)
	fmt.Fprintf(&b, "<p>%s &times; %d</p>", html.EscapeString(order.ItemName), order.Quantity)
	if order.MockupURL != "" {
		fmt.Fprintf(&b, `<p><img src=%q alt="Your product" width="320"/></p>`, order.MockupURL)
	}
	writeTotals(&b, order.Totals)
	writeAddress(&b, order.Recipient)
	return b.String()
}

func operatorBody(order OrderNotification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Order #%d</h2>", order.OrderID)
	fmt.Fprintf(&b, "<p>%s &times; %d for %s</p>",
		html.EscapeString(order.ItemName), order.Quantity, html.EscapeString(order.Recipient.Name))
	if order.MockupURL != "" {
		fmt.Fprintf(&b, `<p><a href=%q>Mockup</a></p>`, order.MockupURL)
	}
	writeTotals(&b, order.Totals)
	writeAddress(&b, order.Recipient)
	return b.String()
}

func writeTotals(b *strings.Builder, totals domain.OrderTotals) {
	b.WriteString("<table>")
	fmt.Fprintf(b, "<tr><td>Subtotal</td><td>%s</td></tr>", FormatUSD(totals.Subtotal))
	fmt.Fprintf(b, "<tr><td>Shipping</td><td>%s</td></tr>", FormatUSD(totals.Shipping))
	fmt.Fprintf(b, "<tr><td>Tax</td><td>%s</td></tr>", FormatUSD(totals.Tax))
	fmt.Fprintf(b, "<tr><td><strong>Total</strong></td><td><strong>%s</strong></td></tr>", FormatUSD(totals.Total))
	b.WriteString("</table>")
}

func writeAddress(b *strings.Builder, r domain.Recipient) {
	b.WriteString("<p>")
	b.WriteString(html.EscapeString(r.Name))
	b.WriteString("<br/>")
	b.WriteString(html.EscapeString(r.Address1))
	if r.Address2 != "" {
		b.WriteString("<br/>")
		b.WriteString(html.EscapeString(r.Address2))
	}
	fmt.Fprintf(b, "<br/>%s, %s %s<br/>%s</p>",
		html.EscapeString(r.City), html.EscapeString(r.StateCode),
		html.EscapeString(r.Zip), html.EscapeString(r.CountryCode))
}
