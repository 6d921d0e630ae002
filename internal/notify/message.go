package notify

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/order"
	"github.com/mascotienda/backend-tienda/internal/pricing"
)

// Composer renders the customer-facing order confirmation. The totals come
// from the same persisted fields the invoice uses, recomputed under the same
// rounding policy, so the message can never disagree with the other
// surfaces.
type Composer struct {
	StoreName      string
	WhatsAppNumber string
	Currency       string
	AgencyAdvice   string
	Policy         pricing.RoundingPolicy
}

// Compose builds the plain-text order summary.
func (c Composer) Compose(o order.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "¡Hola %s! Gracias por tu compra en %s.\n", o.CustomerName, c.StoreName)
	fmt.Fprintf(&b, "Pedido %s\n\n", o.ID)
	for _, item := range o.Items {
		size := ""
		if item.SizeLabel != "" {
			size = fmt.Sprintf(" (talla %s)", item.SizeLabel)
		}
		fmt.Fprintf(&b, "- %dx %s%s: %s %s\n", item.Qty, item.Title, size, c.Currency, item.TotalPrice.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nSubtotal: %s %s\n", c.Currency, o.TotalPrice.StringFixed(2))
	if !o.Discount.IsZero() {
		fmt.Fprintf(&b, "Descuento (%s%%): -%s %s\n", o.Discount.StringFixed(0), c.Currency, o.DiscountAmount().StringFixed(2))
	}
	if o.Region == delivery.RegionProvince {
		advice := c.AgencyAdvice
		if advice == "" {
			advice = "a coordinar"
		}
		fmt.Fprintf(&b, "Envío: recargo a cobrar en agencia (%s)\n", advice)
	} else {
		fmt.Fprintf(&b, "Delivery: %s %s\n", c.Currency, o.DeliveryCost.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s %s\n", c.Currency, o.DerivedTotal(c.Policy).StringFixed(2))
	return b.String()
}

// DeepLink builds the wa.me link carrying the rendered text. No structured
// response comes back through this channel.
func (c Composer) DeepLink(text string) string {
	number := strings.TrimLeft(strings.ReplaceAll(c.WhatsAppNumber, " ", ""), "+")
	return "https://wa.me/" + number + "?text=" + url.QueryEscape(text)
}
