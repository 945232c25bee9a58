// Package precompute warms the report cache for a freshly ingested session.
package precompute

import (
	"context"
	"fmt"
	"log"
	"time"

	"shipstat/service"
)

// Warmer runs the configured warm list of reports through the service so
// the dashboard's first load hits warm cache entries.
type Warmer struct {
	svc      *service.ReportService
	warmList []string
}

// WarmStats summarizes one warm pass.
type WarmStats struct {
	SessionID string           `json:"sessionId"`
	Reports   map[string]int64 `json:"reports"` // report type -> duration ms
	Failed    []string         `json:"failed,omitempty"`
	TotalMs   int64            `json:"totalMs"`
}

// NewWarmer creates a warmer over the given report types.
func NewWarmer(svc *service.ReportService, warmList []string) *Warmer {
	return &Warmer{svc: svc, warmList: warmList}
}

// Warm computes every warm-list report with empty filters and the default
// granularity. Individual report failures are recorded, not fatal; a dead
// session aborts the pass.
func (w *Warmer) Warm(ctx context.Context, sessionID string) (WarmStats, error) {
	start := time.Now()
	stats := WarmStats{
		SessionID: sessionID,
		Reports:   make(map[string]int64, len(w.warmList)),
	}

	for _, reportType := range w.warmList {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		reportStart := time.Now()
		_, err := w.svc.Compute(ctx, service.Request{
			SessionID:  sessionID,
			ReportType: reportType,
		})
		if err != nil {
			log.Printf("Warm %s failed for session %s: %v", reportType, sessionID, err)
			stats.Failed = append(stats.Failed, reportType)
			continue
		}
		stats.Reports[reportType] = time.Since(reportStart).Milliseconds()
	}

	stats.TotalMs = time.Since(start).Milliseconds()
	if len(stats.Failed) == len(w.warmList) && len(w.warmList) > 0 {
		return stats, fmt.Errorf("warm pass failed for every report type")
	}
	return stats, nil
}
