package settings

import (
	"context"

	"github.com/shopspring/decimal"
)

// CouponSource adapts the settings cache into the coupon resolver consumed by
// the cart and checkout services. When no snapshot can be obtained every code
// resolves to zero, so checkout proceeds without a discount instead of
// failing.
type CouponSource struct {
	Cache *Cache
}

func (s CouponSource) ResolvePercent(ctx context.Context, code string) decimal.Decimal {
	if s.Cache == nil {
		return decimal.Zero
	}
	snap, err := s.Cache.GetOrRefresh(ctx, false)
	if err != nil {
		return decimal.Zero
	}
	c, ok := snap.Registry().Lookup(code)
	if !ok {
		return decimal.Zero
	}
	return c.DiscountPercent
}
