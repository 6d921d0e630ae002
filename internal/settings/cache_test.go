package settings_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mascotienda/backend-tienda/internal/coupon"
	"github.com/mascotienda/backend-tienda/internal/settings"
)

type stubSource struct {
	mu      sync.Mutex
	snap    settings.Snapshot
	err     error
	fetches int
}

func (s *stubSource) Fetch(ctx context.Context, etag string) (settings.Snapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.err != nil {
		return settings.Snapshot{}, false, s.err
	}
	if etag != "" && etag == s.snap.Metadata.ETag {
		return settings.Snapshot{}, true, nil
	}
	return s.snap, false, nil
}

func (s *stubSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func testSnapshot() settings.Snapshot {
	return settings.Snapshot{
		Settings: map[string]string{"delivery.free_threshold": "150"},
		Coupons: []coupon.Coupon{
			{Code: "VERANO15", DiscountPercent: decimal.NewFromInt(15), IsVisible: true},
		},
		Metadata: settings.Metadata{ETag: "abc123", LastUpdated: time.Now().UTC()},
	}
}

func TestGetOrRefreshInitialLoad(t *testing.T) {
	t.Parallel()

	src := &stubSource{snap: testSnapshot()}
	cache := &settings.Cache{Source: src, TTL: time.Minute, Logger: zerolog.Nop()}

	snap, err := cache.GetOrRefresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, "abc123", snap.Metadata.ETag)
	require.Equal(t, settings.StateFresh, cache.State())

	// A second call within the TTL serves the cached copy.
	_, err = cache.GetOrRefresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, src.fetchCount())
}

func TestGetOrRefreshServesStaleWhileRevalidating(t *testing.T) {
	t.Parallel()

	src := &stubSource{snap: testSnapshot()}
	cache := &settings.Cache{Source: src, TTL: time.Nanosecond, Logger: zerolog.Nop()}

	_, err := cache.GetOrRefresh(context.Background(), false)
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	snap, err := cache.GetOrRefresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, "abc123", snap.Metadata.ETag)

	require.Eventually(t, func() bool {
		return cache.State() == settings.StateFresh
	}, time.Second, 5*time.Millisecond)
}

func TestGetOrRefreshFallsBackToPersistedCopy(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	// Warm the Redis copy with a working source.
	src := &stubSource{snap: testSnapshot()}
	warm := &settings.Cache{Source: src, R: rdb, TTL: time.Minute, Logger: zerolog.Nop()}
	_, err = warm.GetOrRefresh(context.Background(), false)
	require.NoError(t, err)

	// A fresh cache whose source is down serves the persisted copy.
	broken := &settings.Cache{Source: &stubSource{err: errors.New("db down")}, R: rdb, TTL: time.Minute, Logger: zerolog.Nop()}
	snap, err := broken.GetOrRefresh(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, "abc123", snap.Metadata.ETag)
	require.Equal(t, settings.StateStale, broken.State())
}

func TestGetOrRefreshNoCacheNoSource(t *testing.T) {
	t.Parallel()

	cache := &settings.Cache{Source: &stubSource{err: errors.New("db down")}, TTL: time.Minute, Logger: zerolog.Nop()}
	snap, err := cache.GetOrRefresh(context.Background(), false)
	require.Error(t, err)

	// The zero snapshot still yields a usable, empty registry.
	require.True(t, snap.Registry().Resolve("VERANO15").IsZero())
	require.Equal(t, settings.StateEmpty, cache.State())
}

func TestCouponSourceResolvesThroughCache(t *testing.T) {
	t.Parallel()

	src := &stubSource{snap: testSnapshot()}
	cache := &settings.Cache{Source: src, TTL: time.Minute, Logger: zerolog.Nop()}
	coupons := settings.CouponSource{Cache: cache}

	ctx := context.Background()
	require.Equal(t, "15", coupons.ResolvePercent(ctx, " verano15 ").String())
	require.True(t, coupons.ResolvePercent(ctx, "nope").IsZero())
	require.True(t, settings.CouponSource{}.ResolvePercent(ctx, "VERANO15").IsZero())
}
