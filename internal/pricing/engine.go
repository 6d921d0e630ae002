package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mascotienda/backend-tienda/internal/delivery"
)

// Result aggregates the computed pricing components for one checkout.
// DiscountPercent and DiscountAmount are both carried: the order record
// persists the percent while the live total is built from the amount, and
// downstream reporting recomputes one from the other.
type Result struct {
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	DiscountAmount  decimal.Decimal `json:"discountAmount"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee"`
	Total           decimal.Decimal `json:"total"`
}

// Quoter resolves a delivery quote from a destination and the subtotal after
// discount. delivery.Resolver satisfies it.
type Quoter interface {
	Quote(dest delivery.Destination, discountedSubtotal decimal.Decimal) (delivery.Quote, error)
}

// Compute calculates the authoritative order total. The free-delivery
// threshold is checked against the discounted subtotal, and the delivery fee
// only participates for courier quotes; agency deliveries settle the recharge
// offline. Inputs are assumed validated; Compute itself never fails except
// when the quoter rejects the destination.
func Compute(subtotal, discountPercent decimal.Decimal, q Quoter, dest delivery.Destination, policy RoundingPolicy) (Result, delivery.Quote, error) {
	discountAmount := Round2(subtotal.Mul(discountPercent).Div(decimal.NewFromInt(100)))
	discounted := subtotal.Sub(discountAmount)

	quote, err := q.Quote(dest, discounted)
	if err != nil {
		return Result{}, delivery.Quote{}, err
	}

	fee := decimal.Zero
	if quote.Chargeable() {
		fee = quote.Fee
	}
	total := policy.Apply(discounted.Add(fee))

	return Result{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discountAmount,
		DeliveryFee:     fee,
		Total:           total,
	}, quote, nil
}
