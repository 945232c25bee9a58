package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"shipstat/analytics"
	"shipstat/store"
)

func TestKeyStability(t *testing.T) {
	f := analytics.FilterSpec{Channel: []string{"Shopify"}}
	a := Key("s1", "weekly-summary", analytics.GranularityWeek, f)
	b := Key("s1", "weekly-summary", analytics.GranularityWeek, f)
	if a != b {
		t.Errorf("same request produced different keys: %s vs %s", a, b)
	}

	c := Key("s1", "weekly-summary", analytics.GranularityWeek, analytics.FilterSpec{Channel: []string{"Amazon"}})
	if a == c {
		t.Error("different filters produced the same key")
	}
	d := Key("s2", "weekly-summary", analytics.GranularityWeek, f)
	if a == d {
		t.Error("different sessions produced the same key")
	}
}

func TestGetOrComputeMemoizes(t *testing.T) {
	ctx := context.Background()
	c := New(store.NewMemoryKV(), time.Minute)

	var calls int32
	compute := func(ctx context.Context) (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		return json.RawMessage(`{"v":1}`), nil
	}

	payload, fromCache, err := c.GetOrCompute(ctx, "k", compute)
	if err != nil || fromCache {
		t.Fatalf("first call: %v fromCache=%v", err, fromCache)
	}
	if string(payload) != `{"v":1}` {
		t.Errorf("payload = %s", payload)
	}

	payload, fromCache, err = c.GetOrCompute(ctx, "k", compute)
	if err != nil || !fromCache {
		t.Fatalf("second call: %v fromCache=%v", err, fromCache)
	}
	if string(payload) != `{"v":1}` {
		t.Errorf("cached payload = %s", payload)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("compute ran %d times, want 1", calls)
	}
}

func TestGetOrComputeSingleFlight(t *testing.T) {
	ctx := context.Background()
	c := New(store.NewMemoryKV(), time.Minute)

	var calls int32
	release := make(chan struct{})
	compute := func(ctx context.Context) (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return json.RawMessage(`{"v":1}`), nil
	}

	const n = 8
	var wg sync.WaitGroup
	started := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			started <- struct{}{}
			if _, _, err := c.GetOrCompute(ctx, "k", compute); err != nil {
				t.Errorf("GetOrCompute: %v", err)
			}
		}()
	}
	for i := 0; i < n; i++ {
		<-started
	}
	// Give the goroutines a moment to pile onto the flight group.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("compute ran %d times for %d concurrent callers, want 1", got, n)
	}
}

func TestComputeErrorStoresNothing(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	c := New(kv, time.Minute)

	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(ctx, "k", func(ctx context.Context) (json.RawMessage, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the compute error", err)
	}

	if _, err := kv.Get(ctx, "k"); !errors.Is(err, store.ErrNotFound) {
		t.Error("failed computation left a cache entry behind")
	}

	// The next caller recomputes and succeeds.
	payload, _, err := c.GetOrCompute(ctx, "k", func(ctx context.Context) (json.RawMessage, error) {
		return json.RawMessage(`{"ok":true}`), nil
	})
	if err != nil || string(payload) != `{"ok":true}` {
		t.Errorf("retry after failure: %s %v", payload, err)
	}
}

func TestCancelledComputeStoresNothing(t *testing.T) {
	kv := store.NewMemoryKV()
	c := New(kv, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	_, _, err := c.GetOrCompute(ctx, "k", func(ctx context.Context) (json.RawMessage, error) {
		cancel()
		return json.RawMessage(`{"v":1}`), nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := kv.Get(context.Background(), "k"); !errors.Is(err, store.ErrNotFound) {
		t.Error("cancelled computation left a cache entry behind")
	}
}

func TestInvalidateSession(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	c := New(kv, time.Minute)

	seed := func(key string) {
		if _, _, err := c.GetOrCompute(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
			return json.RawMessage(`{}`), nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	k1 := Key("sess-a", "weekly-summary", analytics.GranularityWeek, analytics.FilterSpec{})
	k2 := Key("sess-a", "summary-metrics", analytics.GranularityWeek, analytics.FilterSpec{})
	k3 := Key("sess-b", "weekly-summary", analytics.GranularityWeek, analytics.FilterSpec{})
	seed(k1)
	seed(k2)
	seed(k3)

	n, err := c.InvalidateSession(ctx, "sess-a")
	if err != nil || n != 2 {
		t.Fatalf("InvalidateSession = %d %v, want 2", n, err)
	}
	if _, err := c.Get(ctx, k1); !errors.Is(err, store.ErrNotFound) {
		t.Error("invalidated key still cached")
	}
	if _, err := c.Get(ctx, k3); err != nil {
		t.Error("other session's entry evicted")
	}
}
