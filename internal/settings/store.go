package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mascotienda/backend-tienda/internal/common"
	"github.com/mascotienda/backend-tienda/internal/coupon"
)

// Store reads the settings table and coupon registry from Postgres. It is a
// read-only view; the admin back office owns the writes.
type Store struct {
	Pool *pgxpool.Pool
}

const (
	settingsQuery = `SELECT key, value FROM settings ORDER BY key`
	couponsQuery  = `SELECT code, discount_percent::text, is_visible, updated_at FROM coupons ORDER BY code`
)

// Fetch implements Source. The etag is a content hash, so a conditional
// fetch only skips re-sending the payload, not the queries themselves.
func (s Store) Fetch(ctx context.Context, etag string) (Snapshot, bool, error) {
	if s.Pool == nil {
		return Snapshot{}, false, fmt.Errorf("settings store not configured")
	}
	values := map[string]string{}
	rows, err := s.Pool.Query(ctx, settingsQuery)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("query settings: %w", err)
	}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			rows.Close()
			return Snapshot{}, false, fmt.Errorf("scan setting: %w", err)
		}
		values[key] = value
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, false, fmt.Errorf("iterate settings: %w", err)
	}

	var coupons []coupon.Coupon
	var lastUpdated time.Time
	rows, err = s.Pool.Query(ctx, couponsQuery)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("query coupons: %w", err)
	}
	for rows.Next() {
		var (
			code      string
			percent   string
			isVisible bool
			updatedAt time.Time
		)
		if err := rows.Scan(&code, &percent, &isVisible, &updatedAt); err != nil {
			rows.Close()
			return Snapshot{}, false, fmt.Errorf("scan coupon: %w", err)
		}
		pct, err := decimal.NewFromString(percent)
		if err != nil {
			rows.Close()
			return Snapshot{}, false, fmt.Errorf("parse coupon percent: %w", err)
		}
		coupons = append(coupons, coupon.Coupon{Code: code, DiscountPercent: pct, IsVisible: isVisible})
		if updatedAt.After(lastUpdated) {
			lastUpdated = updatedAt
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Snapshot{}, false, fmt.Errorf("iterate coupons: %w", err)
	}

	snap := Snapshot{Settings: values, Coupons: coupons}
	snap.Metadata = Metadata{ETag: contentETag(snap), LastUpdated: lastUpdated}
	if etag != "" && etag == snap.Metadata.ETag {
		return Snapshot{}, true, nil
	}
	return snap, false, nil
}

func contentETag(snap Snapshot) string {
	payload, _ := json.Marshal(struct {
		Settings map[string]string `json:"settings"`
		Coupons  []coupon.Coupon   `json:"cupones"`
	}{snap.Settings, snap.Coupons})
	return common.Sha256Hex(payload)
}
