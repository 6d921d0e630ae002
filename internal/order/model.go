package order

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/pricing"
)

// Item is one persisted order line, immutable once the order is captured.
type Item struct {
	ProductID  string          `json:"productId"`
	Title      string          `json:"title"`
	SizeLabel  string          `json:"sizeLabel,omitempty"`
	Qty        int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Order is the persisted order record. TotalPrice holds the SUBTOTAL (a
// naming wrinkle kept for downstream reporting compatibility) and Discount
// holds the coupon PERCENT, not the amount: reporting recomputes the amount
// from the stored percent and subtotal, so the two representations are never
// collapsed.
type Order struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	Region        delivery.Region `json:"region"`
	Destination   json.RawMessage `json:"destination"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	DeliveryCost  decimal.Decimal `json:"deliveryCost"`
	Discount      decimal.Decimal `json:"discount"`
	TotalProducts int             `json:"totalProducts"`
	CouponCode    string          `json:"couponCode,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	Items         []Item          `json:"products"`
}

// StatusCreated is the only status this service assigns; later transitions
// belong to the admin back office.
const StatusCreated = "CREATED"

// DiscountAmount recomputes the currency amount from the stored percent.
func (o Order) DiscountAmount() decimal.Decimal {
	return pricing.Round2(o.TotalPrice.Mul(o.Discount).Div(decimal.NewFromInt(100)))
}

// DerivedTotal rebuilds the order total from the stored fields. Every
// surface that renders a total goes through this recomputation rather than
// reading a pre-baked value, which keeps the record independently
// verifiable.
func (o Order) DerivedTotal(policy pricing.RoundingPolicy) decimal.Decimal {
	return policy.Apply(o.TotalPrice.Sub(o.DiscountAmount()).Add(o.DeliveryCost))
}
