// Package cache memoizes computed reports in the KV store, collapsing
// concurrent computations of the same key into one.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"shipstat/analytics"
	"shipstat/store"
)

const keyPrefix = "reports:"

// Key derives the cache key for one report request. The filter spec is
// hashed so arbitrarily large filter sets stay a fixed-size key segment.
func Key(sessionID, reportType string, g analytics.Granularity, filters analytics.FilterSpec) string {
	payload, _ := json.Marshal(filters)
	sum := md5.Sum(payload)
	return fmt.Sprintf("%s%s:%s:%s:%x", keyPrefix, sessionID, reportType, g, sum)
}

// ComputeFn produces the report payload on a cache miss.
type ComputeFn func(ctx context.Context) (json.RawMessage, error)

// ReportCache is the TTL'd report memo. Concurrent callers for the same key
// share a single computation; an error or cancellation stores nothing, so
// the key stays absent for the next caller.
type ReportCache struct {
	kv    store.KV
	ttl   time.Duration
	group singleflight.Group
}

// New wraps the KV with the report TTL.
func New(kv store.KV, ttl time.Duration) *ReportCache {
	return &ReportCache{kv: kv, ttl: ttl}
}

// GetOrCompute returns the cached payload for the key, computing and storing
// it on a miss. The second return reports whether the payload came from the
// cache.
func (c *ReportCache) GetOrCompute(ctx context.Context, key string, compute ComputeFn) (json.RawMessage, bool, error) {
	if cached, err := c.kv.Get(ctx, key); err == nil {
		return json.RawMessage(cached), true, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, fmt.Errorf("cache read failed: %w", err)
	}

	result, err, _ := c.group.Do(key, func() (any, error) {
		// A waiter may have landed after the winner stored the entry.
		if cached, err := c.kv.Get(ctx, key); err == nil {
			return json.RawMessage(cached), nil
		}

		payload, err := compute(ctx)
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := c.kv.Set(ctx, key, string(payload), c.ttl); err != nil {
			return nil, fmt.Errorf("cache write failed: %w", err)
		}
		return payload, nil
	})
	if err != nil {
		return nil, false, err
	}
	return result.(json.RawMessage), false, nil
}

// Get returns the cached payload without computing.
func (c *ReportCache) Get(ctx context.Context, key string) (json.RawMessage, error) {
	cached, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(cached), nil
}

// InvalidateSession evicts every cached report for the session, regardless
// of TTL. Called when a new dataset is uploaded under an existing id.
func (c *ReportCache) InvalidateSession(ctx context.Context, sessionID string) (int, error) {
	return c.kv.DeleteByPrefix(ctx, keyPrefix+sessionID+":")
}
