package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/geo"
	"github.com/mascotienda/backend-tienda/internal/pricing"
)

func testResolver() delivery.Resolver {
	return delivery.Resolver{
		Origin:        geo.Point{Lat: -12.0464, Lng: -77.0428},
		PerKmRate:     decimal.NewFromInt(1),
		MinFee:        decimal.RequireFromString("7.00"),
		MaxFee:        decimal.RequireFromString("20.00"),
		FreeThreshold: decimal.NewFromInt(150),
		AgencyFeeMin:  decimal.RequireFromString("10.00"),
		AgencyFeeMax:  decimal.RequireFromString("15.00"),
	}
}

func limaAtKm(r delivery.Resolver, km float64) delivery.LimaDestination {
	return delivery.LimaDestination{Point: geo.Point{Lat: r.Origin.Lat + km/111.195, Lng: r.Origin.Lng}}
}

func TestComputeCourierNoCoupon(t *testing.T) {
	t.Parallel()

	// Raw fee of 12 sits inside the clamp window, so it is charged as-is.
	r := testResolver()
	res, quote, err := pricing.Compute(decimal.NewFromInt(100), decimal.Zero, r, limaAtKm(r, 11.95), pricing.PolicyHalfUp)
	require.NoError(t, err)
	require.Equal(t, "12.00", quote.Fee.StringFixed(2))
	require.Equal(t, "12.00", res.DeliveryFee.StringFixed(2))
	require.Equal(t, "0.00", res.DiscountAmount.StringFixed(2))
	require.Equal(t, "112.00", res.Total.StringFixed(2))
}

func TestComputeFreeDelivery(t *testing.T) {
	t.Parallel()

	// A subtotal past the free threshold waives the fee at any distance.
	r := testResolver()
	res, quote, err := pricing.Compute(decimal.NewFromInt(200), decimal.Zero, r, limaAtKm(r, 300), pricing.PolicyHalfUp)
	require.NoError(t, err)
	require.True(t, quote.Free)
	require.Equal(t, "0.00", res.DeliveryFee.StringFixed(2))
	require.Equal(t, "200.00", res.Total.StringFixed(2))
}

func TestComputeCouponAndMinClamp(t *testing.T) {
	t.Parallel()

	// 15% off 100 leaves 85, under the threshold; the short-distance fee
	// clamps up to the minimum.
	r := testResolver()
	res, _, err := pricing.Compute(decimal.NewFromInt(100), decimal.NewFromInt(15), r, limaAtKm(r, 2.9), pricing.PolicyHalfUp)
	require.NoError(t, err)
	require.Equal(t, "15.00", res.DiscountAmount.StringFixed(2))
	require.Equal(t, "7.00", res.DeliveryFee.StringFixed(2))
	require.Equal(t, "92.00", res.Total.StringFixed(2))
}

func TestComputeProvinceIgnoresDistance(t *testing.T) {
	t.Parallel()

	// Agency shipments never add a numeric fee to the total.
	r := testResolver()
	dest := delivery.ProvinceDestination{AgencyID: "olva-trujillo", DNI: "70812345", Phone: "+51 912 345 678"}
	res, quote, err := pricing.Compute(decimal.NewFromInt(50), decimal.Zero, r, dest, pricing.PolicyHalfUp)
	require.NoError(t, err)
	require.Equal(t, delivery.KindAgency, quote.Kind)
	require.Equal(t, "10.00–15.00", quote.AdvisoryRange)
	require.Equal(t, "0.00", res.DeliveryFee.StringFixed(2))
	require.Equal(t, "50.00", res.Total.StringFixed(2))
}

func TestComputeDiscountMovesBelowThreshold(t *testing.T) {
	t.Parallel()

	// 160 before discount, 136 after 15%: the threshold check must use the
	// discounted figure, so delivery is charged.
	r := testResolver()
	res, _, err := pricing.Compute(decimal.NewFromInt(160), decimal.NewFromInt(15), r, limaAtKm(r, 4.95), pricing.PolicyHalfUp)
	require.NoError(t, err)
	require.Equal(t, "24.00", res.DiscountAmount.StringFixed(2))
	require.Equal(t, "7.00", res.DeliveryFee.StringFixed(2))
	require.Equal(t, "143.00", res.Total.StringFixed(2))
}

func TestComputeDecomposition(t *testing.T) {
	t.Parallel()

	r := testResolver()
	subtotals := []string{"10.00", "49.90", "100.00", "149.99", "151.00", "432.10"}
	percents := []string{"0", "5", "10", "15", "50"}
	for _, s := range subtotals {
		for _, p := range percents {
			res, _, err := pricing.Compute(decimal.RequireFromString(s), decimal.RequireFromString(p), r, limaAtKm(r, 8.3), pricing.PolicyHalfUp)
			require.NoError(t, err)
			want := pricing.Round2(res.Subtotal.Sub(res.DiscountAmount).Add(res.DeliveryFee))
			require.True(t, res.Total.Equal(want), "subtotal=%s pct=%s total=%s want=%s", s, p, res.Total, want)
		}
	}
}

func TestComputeNoDestinationNotSubmittable(t *testing.T) {
	t.Parallel()

	r := testResolver()
	res, quote, err := pricing.Compute(decimal.NewFromInt(80), decimal.Zero, r, nil, pricing.PolicyHalfUp)
	require.NoError(t, err)
	require.False(t, quote.Submittable())
	require.Equal(t, "0.00", res.DeliveryFee.StringFixed(2))
	require.Equal(t, "80.00", res.Total.StringFixed(2))
}

func TestRoundingPolicies(t *testing.T) {
	t.Parallel()

	v := decimal.RequireFromString("92.47")
	require.Equal(t, "92.47", pricing.PolicyHalfUp.Apply(v).StringFixed(2))
	require.Equal(t, "92.40", pricing.PolicyFloor1.Apply(v).StringFixed(2))

	require.Equal(t, pricing.PolicyFloor1, pricing.ParseRoundingPolicy("floor1"))
	require.Equal(t, pricing.PolicyHalfUp, pricing.ParseRoundingPolicy(""))
	require.Equal(t, pricing.PolicyHalfUp, pricing.ParseRoundingPolicy("banker"))
}

func TestParseRoundingPolicyRoundTrips(t *testing.T) {
	t.Parallel()

	require.Equal(t, pricing.PolicyHalfUp, pricing.ParseRoundingPolicy("half_up"))
	require.Equal(t, pricing.PolicyFloor1, pricing.ParseRoundingPolicy("floor1"))
	require.Equal(t, pricing.PolicyHalfUp, pricing.ParseRoundingPolicy(string(pricing.PolicyHalfUp)))
	require.Equal(t, pricing.PolicyHalfUp, pricing.ParseRoundingPolicy(""))
}
