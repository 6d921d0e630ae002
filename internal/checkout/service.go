package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mascotienda/backend-tienda/internal/cart"
	"github.com/mascotienda/backend-tienda/internal/common"
	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/events"
	"github.com/mascotienda/backend-tienda/internal/notify"
	"github.com/mascotienda/backend-tienda/internal/order"
	"github.com/mascotienda/backend-tienda/internal/pricing"
)

// ProductInput is one order line as submitted by the storefront.
type ProductInput struct {
	ProductID  string          `json:"productId" validate:"required"`
	Title      string          `json:"title" validate:"required"`
	SizeLabel  string          `json:"sizeLabel"`
	Quantity   int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

// Input is the order-submission payload. The client sends its own view of
// the figures (totalPrice is the SUBTOTAL, discount is the coupon PERCENT);
// the service recomputes everything and rejects payloads that disagree.
type Input struct {
	CustomerName  string          `json:"customerName" validate:"required"`
	CustomerPhone string          `json:"customerPhone" validate:"required"`
	Destination   json.RawMessage `json:"destination" validate:"required"`
	Products      []ProductInput  `json:"products" validate:"required,min=1,dive"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	TotalProducts int             `json:"totalProducts" validate:"required,gt=0"`
	Discount      decimal.Decimal `json:"discount"`
	CouponCode    string          `json:"couponCode"`
}

// Output echoes the created order together with the authoritative figures.
type Output struct {
	Order    order.Order    `json:"order"`
	Pricing  pricing.Result `json:"pricing"`
	Delivery delivery.Quote `json:"delivery"`
}

// CouponResolver maps a coupon code to its discount percent. Unknown or
// empty codes resolve to zero, never an error.
type CouponResolver interface {
	ResolvePercent(ctx context.Context, code string) decimal.Decimal
}

// OrderCreator persists a fully priced order.
type OrderCreator interface {
	Create(ctx context.Context, o order.Order) (order.Order, error)
}

// TaskEnqueuer is the slice of asynq.Client the service needs.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Service turns a submitted payload into a persisted order. Pricing is
// recomputed server-side; the client's figures are cross-checked, never
// trusted.
type Service struct {
	Orders   OrderCreator
	Coupons  CouponResolver
	Resolver delivery.Resolver
	Policy   pricing.RoundingPolicy
	Tasks    TaskEnqueuer
	Events   *events.Bus
	Logger   zerolog.Logger
}

// Submit validates, prices and persists one order. A storage failure is
// surfaced as retryable and carries the computed pricing so the client can
// resubmit without recomputing.
func (s *Service) Submit(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Orders == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if err := validateInput(in); err != nil {
		return Output{}, err
	}

	dest, err := delivery.UnmarshalDestination(in.Destination)
	if err != nil {
		return Output{}, common.Unprocessable("invalid destination", err.Error())
	}

	lines := make([]cart.Line, 0, len(in.Products))
	totalQty := 0
	for i, p := range in.Products {
		line := cart.Line{
			ProductID: p.ProductID,
			Title:     p.Title,
			SizeLabel: p.SizeLabel,
			UnitPrice: p.UnitPrice,
			Qty:       p.Quantity,
		}
		if p.UnitPrice.IsNegative() {
			return Output{}, common.Unprocessable("invalid line price", fmt.Sprintf("products[%d].unitPrice is negative", i))
		}
		if !p.TotalPrice.IsZero() && !p.TotalPrice.Equal(line.LineTotal()) {
			return Output{}, common.Unprocessable("line total mismatch", fmt.Sprintf("products[%d].totalPrice does not match unitPrice×quantity", i))
		}
		totalQty += p.Quantity
		lines = append(lines, line)
	}

	subtotal := cart.Subtotal(lines)
	if !in.TotalPrice.IsZero() && !in.TotalPrice.Equal(subtotal) {
		return Output{}, common.Unprocessable("subtotal mismatch", "totalPrice does not match the sum of the submitted lines")
	}
	if in.TotalProducts != totalQty {
		return Output{}, common.Unprocessable("item count mismatch", "totalProducts does not match the submitted quantities")
	}

	percent := decimal.Zero
	if s.Coupons != nil {
		percent = s.Coupons.ResolvePercent(ctx, in.CouponCode)
	}
	if !in.Discount.IsZero() && !in.Discount.Equal(percent) {
		s.Logger.Warn().
			Str("coupon_code", in.CouponCode).
			Str("declared_percent", in.Discount.String()).
			Str("resolved_percent", percent.String()).
			Msg("declared discount disagrees with registry, using registry value")
	}

	result, quote, err := pricing.Compute(subtotal, percent, s.Resolver, dest, s.Policy)
	if err != nil {
		return Output{}, common.Unprocessable("cannot price order", err.Error())
	}
	if !quote.Submittable() {
		return Output{}, common.Unprocessable("destination required", "select a delivery destination before submitting")
	}

	rawDest, err := delivery.MarshalDestination(dest)
	if err != nil {
		return Output{}, common.Unprocessable("invalid destination", err.Error())
	}

	o := order.Order{
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Region:        dest.Region(),
		Destination:   rawDest,
		TotalPrice:    result.Subtotal,
		DeliveryCost:  result.DeliveryFee,
		Discount:      result.DiscountPercent,
		TotalProducts: totalQty,
		CouponCode:    in.CouponCode,
	}
	for _, line := range lines {
		o.Items = append(o.Items, order.Item{
			ProductID:  line.ProductID,
			Title:      line.Title,
			SizeLabel:  line.SizeLabel,
			Qty:        line.Qty,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.LineTotal(),
		})
	}

	created, err := s.Orders.Create(ctx, o)
	if err != nil {
		appErr := common.Retryable("order could not be saved, please retry", err)
		appErr.Details = map[string]any{"pricing": result}
		return Output{}, appErr
	}

	s.afterSubmit(ctx, created, result)

	return Output{Order: created, Pricing: result, Delivery: quote}, nil
}

// afterSubmit runs the best-effort follow-ups: the confirmation task and the
// domain event. Failures here never fail the checkout.
func (s *Service) afterSubmit(ctx context.Context, o order.Order, result pricing.Result) {
	if s.Tasks != nil {
		task, err := notify.NewOrderConfirmationTask(o.ID)
		if err == nil {
			_, err = s.Tasks.EnqueueContext(ctx, task)
		}
		if err != nil {
			s.Logger.Error().Err(err).Str("order_id", o.ID).Msg("enqueue confirmation task")
		}
	}
	if s.Events != nil {
		_, err := s.Events.Emit(ctx, events.TopicOrderCreated, o.ID, map[string]any{
			"orderId": o.ID,
			"region":  string(o.Region),
			"total":   result.Total.StringFixed(2),
		})
		if err != nil {
			s.Logger.Error().Err(err).Str("order_id", o.ID).Msg("emit order created event")
		}
	}
}
