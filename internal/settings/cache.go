package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// State labels the cache lifecycle. Transitions:
// Empty -> Loading -> Fresh, then Fresh -> Stale once the TTL lapses, and
// Stale -> Revalidating -> Fresh|Stale while a background refresh runs.
type State string

const (
	StateEmpty        State = "EMPTY"
	StateLoading      State = "LOADING"
	StateFresh        State = "FRESH"
	StateStale        State = "STALE"
	StateRevalidating State = "REVALIDATING"
)

// Entry is one cached snapshot with its validator.
type Entry struct {
	Data      Snapshot  `json:"data"`
	FetchedAt time.Time `json:"fetchedAt"`
	Validator string    `json:"validator"`
}

const persistKey = "settings:snapshot"

// Cache serves settings snapshots with stale-while-revalidate semantics: a
// cached copy is returned immediately and reconciled in the background. A
// Redis copy survives restarts so checkout keeps working when the source is
// unreachable; with neither cache nor source the caller gets a zero snapshot
// (empty registry) rather than an error that would block checkout.
type Cache struct {
	Source Source
	R      *redis.Client
	TTL    time.Duration
	Logger zerolog.Logger

	mu           sync.Mutex
	entry        *Entry
	state        State
	revalidating bool
}

// State reports the current lifecycle state.
func (c *Cache) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == "" {
		return StateEmpty
	}
	return c.state
}

// GetOrRefresh returns the current snapshot. force bypasses the freshness
// window. The first call loads synchronously; afterwards a stale entry is
// served as-is while a single background refresh reconciles it.
func (c *Cache) GetOrRefresh(ctx context.Context, force bool) (Snapshot, error) {
	c.mu.Lock()
	if c.entry == nil {
		c.state = StateLoading
		c.mu.Unlock()
		return c.loadInitial(ctx)
	}
	entry := *c.entry
	fresh := time.Since(entry.FetchedAt) < c.ttl()
	if fresh && !force {
		c.state = StateFresh
		c.mu.Unlock()
		return entry.Data, nil
	}
	c.state = StateStale
	if !c.revalidating {
		c.revalidating = true
		c.state = StateRevalidating
		go c.revalidate(entry.Validator)
	}
	c.mu.Unlock()
	return entry.Data, nil
}

func (c *Cache) loadInitial(ctx context.Context) (Snapshot, error) {
	snap, notModified, err := c.fetch(ctx, "")
	if err == nil && !notModified {
		c.store(snap)
		return snap, nil
	}
	// Source unreachable: fall back to the persisted copy, logging only.
	if persisted, ok := c.loadPersisted(ctx); ok {
		c.Logger.Warn().Err(err).Msg("settings source unreachable, serving persisted copy")
		c.mu.Lock()
		c.entry = &persisted
		c.state = StateStale
		c.mu.Unlock()
		return persisted.Data, nil
	}
	c.mu.Lock()
	c.state = StateEmpty
	c.mu.Unlock()
	if err == nil {
		err = errors.New("settings: empty initial fetch")
	}
	return Snapshot{}, err
}

func (c *Cache) revalidate(validator string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	snap, notModified, err := c.fetch(ctx, validator)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.revalidating = false
	switch {
	case err != nil:
		// Keep serving the stale copy; the failure is logged only.
		c.Logger.Warn().Err(err).Msg("settings revalidation failed, keeping stale copy")
		c.state = StateStale
	case notModified:
		if c.entry != nil {
			c.entry.FetchedAt = time.Now()
		}
		c.state = StateFresh
	default:
		c.entry = &Entry{Data: snap, FetchedAt: time.Now(), Validator: snap.Metadata.ETag}
		c.state = StateFresh
		c.persist(ctx, *c.entry)
	}
}

func (c *Cache) fetch(ctx context.Context, validator string) (Snapshot, bool, error) {
	if c.Source == nil {
		return Snapshot{}, false, errors.New("settings: source not configured")
	}
	return c.Source.Fetch(ctx, validator)
}

func (c *Cache) store(snap Snapshot) {
	entry := Entry{Data: snap, FetchedAt: time.Now(), Validator: snap.Metadata.ETag}
	c.mu.Lock()
	c.entry = &entry
	c.state = StateFresh
	c.mu.Unlock()
	c.Logger.Debug().Int("coupons", snap.Registry().Len()).Str("etag", snap.Metadata.ETag).Msg("settings snapshot stored")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c.persist(ctx, entry)
}

func (c *Cache) persist(ctx context.Context, entry Entry) {
	if c.R == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.R.Set(ctx, persistKey, data, 0).Err(); err != nil {
		c.Logger.Warn().Err(err).Msg("persist settings snapshot")
	}
}

func (c *Cache) loadPersisted(ctx context.Context) (Entry, bool) {
	if c.R == nil {
		return Entry{}, false
	}
	data, err := c.R.Get(ctx, persistKey).Bytes()
	if err != nil {
		return Entry{}, false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false
	}
	return entry, true
}

func (c *Cache) ttl() time.Duration {
	if c.TTL <= 0 {
		return 5 * time.Minute
	}
	return c.TTL
}
