package coupon_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mascotienda/backend-tienda/internal/coupon"
)

func pct(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func testRegistry() coupon.Registry {
	return coupon.NewRegistry([]coupon.Coupon{
		{Code: "VERANO15", DiscountPercent: pct("15"), IsVisible: true},
		{Code: "amigos10", DiscountPercent: pct("10"), IsVisible: true},
		{Code: "SECRETO25", DiscountPercent: pct("25"), IsVisible: false},
	})
}

func TestResolveCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	require.True(t, r.Resolve("verano15").Equal(pct("15")))
	require.True(t, r.Resolve("VERANO15").Equal(pct("15")))
	require.True(t, r.Resolve("  Amigos10 ").Equal(pct("10")))
}

func TestResolveUnknownIsZero(t *testing.T) {
	t.Parallel()

	r := testRegistry()
	require.True(t, r.Resolve("NOEXISTE").IsZero())
	require.True(t, r.Resolve("").IsZero())
}

func TestHiddenCouponStillApplies(t *testing.T) {
	t.Parallel()

	// Visibility gates listing only, never applicability.
	r := testRegistry()
	require.True(t, r.Resolve("secreto25").Equal(pct("25")))

	codes := make([]string, 0)
	for _, c := range r.Visible() {
		codes = append(codes, c.Code)
	}
	require.ElementsMatch(t, []string{"VERANO15", "amigos10"}, codes)
}

func TestNewRegistryDropsInvalidEntries(t *testing.T) {
	t.Parallel()

	r := coupon.NewRegistry([]coupon.Coupon{
		{Code: "", DiscountPercent: pct("10")},
		{Code: "NEG", DiscountPercent: pct("-5")},
		{Code: "BIG", DiscountPercent: pct("101")},
		{Code: "OK", DiscountPercent: pct("100")},
	})
	require.Equal(t, 1, r.Len())
	require.True(t, r.Resolve("ok").Equal(pct("100")))
}

func TestEmptyRegistryResolvesZero(t *testing.T) {
	t.Parallel()

	r := coupon.NewRegistry(nil)
	require.True(t, r.Resolve("VERANO15").IsZero())
}
