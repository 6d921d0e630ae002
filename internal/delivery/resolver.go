package delivery

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/mascotienda/backend-tienda/internal/geo"
)

// QuoteKind classifies how a delivery quote participates in the order total.
type QuoteKind string

const (
	// KindCourier quotes carry a numeric fee charged by the store's courier.
	KindCourier QuoteKind = "COURIER"
	// KindAgency quotes carry no numeric fee; the agency collects a
	// recharge outside the system and the quote is advisory only.
	KindAgency QuoteKind = "AGENCY"
	// KindUnavailable means no destination has been selected yet.
	KindUnavailable QuoteKind = "UNAVAILABLE"
)

// Quote is the resolved delivery cost for one checkout.
type Quote struct {
	Kind          QuoteKind       `json:"kind"`
	Fee           decimal.Decimal `json:"fee"`
	Free          bool            `json:"free"`
	DistanceKm    float64         `json:"distanceKm,omitempty"`
	AdvisoryRange string          `json:"advisoryRange,omitempty"`
}

// Chargeable reports whether the fee participates in the order total.
func (q Quote) Chargeable() bool { return q.Kind == KindCourier }

// Submittable reports whether an order using this quote may be placed.
func (q Quote) Submittable() bool { return q.Kind != KindUnavailable }

// Resolver turns a destination plus the discounted subtotal into a delivery
// quote. Courier pricing is distance-based with min/max clamps and a
// free-delivery threshold; agency pricing is settled offline.
type Resolver struct {
	Origin        geo.Point
	PerKmRate     decimal.Decimal
	MinFee        decimal.Decimal
	MaxFee        decimal.Decimal
	FreeThreshold decimal.Decimal
	AgencyFeeMin  decimal.Decimal
	AgencyFeeMax  decimal.Decimal
}

// Quote resolves the delivery fee. A nil destination yields an unavailable
// quote: fee zero, order not submittable. The free-threshold check uses the
// subtotal after discount.
func (r Resolver) Quote(dest Destination, discountedSubtotal decimal.Decimal) (Quote, error) {
	if dest == nil {
		return Quote{Kind: KindUnavailable}, nil
	}
	switch d := dest.(type) {
	case LimaDestination:
		if !d.Point.Valid() {
			return Quote{Kind: KindUnavailable}, ErrInvalidPoint
		}
		if discountedSubtotal.GreaterThan(r.FreeThreshold) {
			return Quote{Kind: KindCourier, Free: true}, nil
		}
		km := geo.DistanceKm(r.Origin, d.Point)
		fee := r.courierFee(km)
		return Quote{Kind: KindCourier, Fee: fee, DistanceKm: km}, nil
	case ProvinceDestination:
		return Quote{Kind: KindAgency, AdvisoryRange: r.advisoryRange()}, nil
	default:
		return Quote{Kind: KindUnavailable}, fmt.Errorf("%w: %T", ErrUnknownRegion, dest)
	}
}

// courierFee prices own-courier delivery: the raw distance is coarsened to a
// tenth of a kilometer (always up), multiplied by the per-km rate, rounded to
// one decimal and only then clamped between MinFee and MaxFee. The coarse
// 1-dp rounding happens before clamping on purpose; the final total is
// rounded to currency precision elsewhere.
func (r Resolver) courierFee(distanceKm float64) decimal.Decimal {
	coarse := math.Ceil(distanceKm*10) / 10
	raw := decimal.NewFromFloat(coarse).Mul(r.PerKmRate).Round(1)
	if raw.LessThan(r.MinFee) {
		return r.MinFee
	}
	if raw.GreaterThan(r.MaxFee) {
		return r.MaxFee
	}
	return raw
}

func (r Resolver) advisoryRange() string {
	return fmt.Sprintf("%s–%s", r.AgencyFeeMin.StringFixed(2), r.AgencyFeeMax.StringFixed(2))
}

// AdvisoryLabel formats the agency fee range with its currency, e.g.
// "S/ 10.00–15.00". Rendering surfaces wrap this value in their own sentence,
// so callers must pass the bare range and nothing more.
func (r Resolver) AdvisoryLabel(currency string) string {
	return currency + " " + r.advisoryRange()
}
