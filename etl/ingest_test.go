package etl

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shipstat/cache"
	"shipstat/record"
	"shipstat/store"
)

func testIngestor(t *testing.T) (*DataIngestor, *store.SessionStore, *cache.ReportCache) {
	t.Helper()
	kv := store.NewMemoryKV()
	sessions := store.NewSessionStore(kv, time.Hour)
	reportCache := cache.New(kv, time.Minute)
	return NewDataIngestor(sessions, reportCache, nil, nil), sessions, reportCache
}

func TestIngestRowsNormalizesAndStores(t *testing.T) {
	ctx := context.Background()
	ingestor, sessions, _ := testIngestor(t)

	rows := []record.Record{
		{"Shiprocket Created At": "2025-01-02", "Status": "DELIVERED"},
		{"Shiprocket Created At": "2025-01-03", "Status": "CANCELED"},
	}
	stats, err := ingestor.IngestRows(ctx, "", rows)
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionID == "" {
		t.Error("no session id minted")
	}
	if stats.TotalRows != 2 || stats.DroppedRows != 0 {
		t.Errorf("stats = %+v", stats)
	}

	stored, err := sessions.FetchRecords(ctx, stats.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	// Raw headers are normalized so the resolver tables match.
	if _, ok := record.ResolveDate(stored[0], record.OrderDate); !ok {
		t.Error("order date does not resolve after ingest")
	}
	if v, ok := record.Resolve(stored[0], record.Status); !ok || v != "DELIVERED" {
		t.Errorf("status after ingest = %q %v", v, ok)
	}
}

func TestIngestRowsDropsEmptyRows(t *testing.T) {
	ctx := context.Background()
	ingestor, _, _ := testIngestor(t)

	rows := []record.Record{
		{"Status": "DELIVERED"},
		{"Status": "", "Order Date": "N/A"},
		{},
	}
	stats, err := ingestor.IngestRows(ctx, "", rows)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalRows != 1 || stats.DroppedRows != 2 {
		t.Errorf("stats = %+v, want 1 kept and 2 dropped", stats)
	}
}

func TestIngestRowsEvictsStaleReports(t *testing.T) {
	ctx := context.Background()
	ingestor, _, reportCache := testIngestor(t)

	stats, err := ingestor.IngestRows(ctx, "sess-1", []record.Record{{"Status": "DELIVERED"}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.SessionID != "sess-1" {
		t.Errorf("explicit session id replaced with %s", stats.SessionID)
	}

	// Seed a cached report, then re-upload under the same id.
	key := "reports:sess-1:summary-metrics:week:abc"
	if _, _, err := reportCache.GetOrCompute(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		return json.RawMessage(`{}`), nil
	}); err != nil {
		t.Fatal(err)
	}

	stats, err = ingestor.IngestRows(ctx, "sess-1", []record.Record{{"Status": "RTO"}})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Evicted != 1 {
		t.Errorf("evicted %d cached reports, want 1", stats.Evicted)
	}
}
