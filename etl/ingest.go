// Package etl ingests tabular shipment rows into the session store and
// keeps the background maintenance loop.
package etl

import (
	"context"
	"fmt"
	"log"
	"time"

	"shipstat/cache"
	"shipstat/jobs"
	"shipstat/precompute"
	"shipstat/record"
	"shipstat/store"
)

// IngestStats summarizes one upload.
type IngestStats struct {
	SessionID   string    `json:"sessionId"`
	TotalRows   int       `json:"totalRows"`
	DroppedRows int       `json:"droppedRows"`
	Evicted     int       `json:"evictedReports"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// DataIngestor normalizes and stores uploaded rows, evicts any stale cached
// reports for the session and queues the warm pass.
type DataIngestor struct {
	sessions *store.SessionStore
	cache    *cache.ReportCache
	warmer   *precompute.Warmer
	pool     *jobs.WorkerPool
}

// NewDataIngestor wires the ingestor.
func NewDataIngestor(sessions *store.SessionStore, reportCache *cache.ReportCache, warmer *precompute.Warmer, pool *jobs.WorkerPool) *DataIngestor {
	return &DataIngestor{sessions: sessions, cache: reportCache, warmer: warmer, pool: pool}
}

// IngestRows stores already-tabular rows (parsed upstream from the
// spreadsheet) under the session id. Keys are normalized so the resolver
// tables match; rows with no usable value at all are dropped.
func (i *DataIngestor) IngestRows(ctx context.Context, sessionID string, rows []record.Record) (IngestStats, error) {
	if sessionID == "" {
		sessionID = store.NewSessionID()
	}

	cleaned := make([]record.Record, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		normalized := record.NormalizeKeys(row)
		if emptyRow(normalized) {
			dropped++
			continue
		}
		cleaned = append(cleaned, normalized)
	}

	meta, err := i.sessions.SaveRecords(ctx, sessionID, cleaned)
	if err != nil {
		return IngestStats{}, fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}

	// A re-upload under an existing id must not serve stale reports.
	evicted, err := i.cache.InvalidateSession(ctx, sessionID)
	if err != nil {
		log.Printf("Warning: cache invalidation failed for session %s: %v", sessionID, err)
	}

	i.queueWarm(sessionID)

	return IngestStats{
		SessionID:   sessionID,
		TotalRows:   len(cleaned),
		DroppedRows: dropped,
		Evicted:     evicted,
		ExpiresAt:   meta.ExpiresAt,
	}, nil
}

func (i *DataIngestor) queueWarm(sessionID string) {
	if i.warmer == nil || i.pool == nil {
		return
	}
	job := jobs.Job{
		ID: "warm-" + sessionID,
		Execute: func(ctx context.Context) error {
			stats, err := i.warmer.Warm(ctx, sessionID)
			if err != nil {
				return err
			}
			log.Printf("Warm pass for session %s finished in %dms (%d reports)", sessionID, stats.TotalMs, len(stats.Reports))
			return nil
		},
	}
	if err := i.pool.Submit(job); err != nil {
		log.Printf("Warning: could not queue warm pass for session %s: %v", sessionID, err)
	}
}

func emptyRow(rec record.Record) bool {
	for _, v := range rec {
		if !record.IsSentinel(v) {
			return false
		}
	}
	return true
}
