package cart_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mascotienda/backend-tienda/internal/cart"
	"github.com/mascotienda/backend-tienda/internal/delivery"
	"github.com/mascotienda/backend-tienda/internal/geo"
)

func newTestService(t *testing.T) *cart.Service {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return &cart.Service{R: rdb, TTL: time.Hour}
}

func poloLine(qty int) cart.Line {
	return cart.Line{ProductID: "p1", Title: "Polo para perro", SizeLabel: "S", UnitPrice: decimal.RequireFromString("29.90"), Qty: qty}
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)

	loaded, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, loaded.Lines)
}

func TestGetUnknownCart(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, cart.ErrNotFound)
}

func TestAddItemMergesSameProductAndSize(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, poloLine(1))
	require.NoError(t, err)
	updated, err := svc.AddItem(ctx, c.ID, poloLine(2))
	require.NoError(t, err)

	require.Len(t, updated.Lines, 1)
	require.Equal(t, 3, updated.Lines[0].Qty)
}

func TestAddItemRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, c.ID, poloLine(0))
	require.ErrorIs(t, err, cart.ErrInvalidQty)

	_, err = svc.AddItem(ctx, c.ID, poloLine(-2))
	require.ErrorIs(t, err, cart.ErrInvalidQty)

	bad := poloLine(1)
	bad.UnitPrice = decimal.RequireFromString("-1")
	_, err = svc.AddItem(ctx, c.ID, bad)
	require.ErrorIs(t, err, cart.ErrInvalidPrice)
}

func TestUpdateAndRemoveItem(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, c.ID, poloLine(1))
	require.NoError(t, err)

	updated, err := svc.UpdateItem(ctx, c.ID, "p1", "S", 5)
	require.NoError(t, err)
	require.Equal(t, 5, updated.Lines[0].Qty)

	_, err = svc.UpdateItem(ctx, c.ID, "p1", "S", 0)
	require.ErrorIs(t, err, cart.ErrInvalidQty)

	_, err = svc.UpdateItem(ctx, c.ID, "p9", "S", 1)
	require.ErrorIs(t, err, cart.ErrLineNotFound)

	removed, err := svc.RemoveItem(ctx, c.ID, "p1", "S")
	require.NoError(t, err)
	require.Empty(t, removed.Lines)
}

func TestCouponLifecycle(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)

	applied, err := svc.ApplyCoupon(ctx, c.ID, "  Verano15 ")
	require.NoError(t, err)
	require.Equal(t, "Verano15", applied.CouponCode)

	cleared, err := svc.RemoveCoupon(ctx, c.ID)
	require.NoError(t, err)
	require.Empty(t, cleared.CouponCode)
}

func TestSetDestinationRoundTrip(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	c, err := svc.Create(ctx)
	require.NoError(t, err)

	dest := delivery.LimaDestination{Point: geo.Point{Lat: -12.1211, Lng: -77.0297}}
	updated, err := svc.SetDestination(ctx, c.ID, dest)
	require.NoError(t, err)

	decoded, err := updated.Dest()
	require.NoError(t, err)
	require.Equal(t, dest, decoded)

	province := delivery.ProvinceDestination{AgencyID: "olva-piura", DNI: "71234567", Phone: "+51 956 111 222"}
	updated, err = svc.SetDestination(ctx, c.ID, province)
	require.NoError(t, err)
	decoded, err = updated.Dest()
	require.NoError(t, err)
	require.Equal(t, province, decoded)
}
