package settings

import (
	"context"
	"time"

	"github.com/mascotienda/backend-tienda/internal/coupon"
)

// Metadata carries the cache validator for a snapshot.
type Metadata struct {
	ETag        string    `json:"etag"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Snapshot is one consistent read of the key-value settings and the coupon
// registry. The pricing engine only ever reads snapshots; writes happen in
// the admin back office outside this service.
type Snapshot struct {
	Settings map[string]string `json:"settings"`
	Coupons  []coupon.Coupon   `json:"cupones"`
	Metadata Metadata          `json:"metadata"`
}

// Registry indexes the snapshot's coupons for lookup. A zero snapshot yields
// an empty registry: every code resolves to 0% and checkout still proceeds.
func (s Snapshot) Registry() coupon.Registry {
	return coupon.NewRegistry(s.Coupons)
}

// Source produces snapshots, honouring a validator for conditional fetches.
type Source interface {
	// Fetch returns the current snapshot. When the caller passes the etag
	// of the copy it already holds and nothing changed, Fetch reports
	// notModified and the snapshot may be zero.
	Fetch(ctx context.Context, etag string) (snap Snapshot, notModified bool, err error)
}
