// Package service orchestrates report computation: fetch session records,
// validate and apply filters, run the report builder, memoize the result.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"shipstat/analytics"
	"shipstat/cache"
	"shipstat/record"
	"shipstat/store"
)

// ErrNoData is returned when a session exists but the filtered set is empty
// or the session has no rows at all.
var ErrNoData = errors.New("no data")

// Request is one report computation request.
type Request struct {
	SessionID   string               `json:"sessionId"`
	ReportType  string               `json:"reportType"`
	Filters     analytics.FilterSpec `json:"filters"`
	Granularity string               `json:"granularity"`
}

// ReportService wires the session store, the cache and the report registry.
type ReportService struct {
	sessions *store.SessionStore
	cache    *cache.ReportCache
}

// New builds the service.
func New(sessions *store.SessionStore, reportCache *cache.ReportCache) *ReportService {
	return &ReportService{sessions: sessions, cache: reportCache}
}

// Sessions exposes the underlying session store.
func (s *ReportService) Sessions() *store.SessionStore { return s.sessions }

// Cache exposes the report cache, used by ingest to invalidate a session.
func (s *ReportService) Cache() *cache.ReportCache { return s.cache }

// Compute runs one report through the cache. Errors are typed: an expired
// session surfaces as store.ErrSessionNotFound, a bad filter as
// analytics.ErrInvalidFilter, an unknown type as analytics.ErrUnknownReport.
func (s *ReportService) Compute(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", store.ErrSessionNotFound)
	}
	if err := req.Filters.Validate(); err != nil {
		return nil, err
	}
	g := analytics.ParseGranularity(req.Granularity)

	key := cache.Key(req.SessionID, req.ReportType, g, req.Filters)
	payload, _, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		records, err := s.sessions.FetchRecords(ctx, req.SessionID)
		if err != nil {
			return nil, err
		}
		filtered := req.Filters.Apply(records)
		result, err := analytics.Build(req.ReportType, filtered, g)
		if err != nil {
			return nil, err
		}
		out, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return out, nil
	})
	return payload, err
}

// CacheKey returns the cache key Compute would use for this request.
func (s *ReportService) CacheKey(req Request) string {
	return cache.Key(req.SessionID, req.ReportType, analytics.ParseGranularity(req.Granularity), req.Filters)
}

// FilterOptions is the distinct-value catalog driving the dashboard's
// filter dropdowns.
type FilterOptions struct {
	Success           bool     `json:"success"`
	Channels          []string `json:"channels"`
	SKUs              []string `json:"skus"`
	SKUsTop10         []string `json:"skusTop10"`
	ProductNames      []string `json:"productNames"`
	ProductNamesTop10 []string `json:"productNamesTop10"`
	Statuses          []string `json:"statuses"`
}

// Options extracts the filter catalog for a session, optionally narrowed to
// one channel or SKU first. The status list is the union of observed raw
// statuses and the predefined closed list. The catalog is memoized like a
// report, so repeated dropdown loads skip the record decode.
func (s *ReportService) Options(ctx context.Context, sessionID, channel, sku string) (FilterOptions, error) {
	key := cache.Key(sessionID, "filter-options", analytics.GranularityOverall, analytics.FilterSpec{
		Channel: compact(channel),
		SKU:     compact(sku),
	})
	payload, _, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (json.RawMessage, error) {
		opts, err := s.computeOptions(ctx, sessionID, channel, sku)
		if err != nil {
			return nil, err
		}
		return json.Marshal(opts)
	})
	if err != nil {
		return FilterOptions{}, err
	}
	var opts FilterOptions
	if err := json.Unmarshal(payload, &opts); err != nil {
		return FilterOptions{}, fmt.Errorf("failed to decode filter options: %w", err)
	}
	return opts, nil
}

func compact(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}

func (s *ReportService) computeOptions(ctx context.Context, sessionID, channel, sku string) (FilterOptions, error) {
	records, err := s.sessions.FetchRecords(ctx, sessionID)
	if err != nil {
		return FilterOptions{}, err
	}
	if len(records) == 0 {
		return FilterOptions{}, fmt.Errorf("%w: session %s is empty", ErrNoData, sessionID)
	}

	narrowed := analytics.FilterSpec{}
	if channel != "" && channel != "All" {
		narrowed.Channel = []string{channel}
	}
	if sku != "" && sku != "All" {
		narrowed.SKU = []string{sku}
	}
	records = narrowed.Apply(records)
	if len(records) == 0 {
		return FilterOptions{}, fmt.Errorf("%w: nothing matches the narrowing filters", ErrNoData)
	}

	channels := make(map[string]bool)
	skuCounts := make(map[string]int)
	productCounts := make(map[string]int)
	statuses := make(map[string]bool)

	for _, rec := range records {
		if v, ok := record.Resolve(rec, record.Channel); ok {
			channels[v] = true
		}
		if v, ok := record.Resolve(rec, record.SKU); ok {
			skuCounts[strings.TrimSpace(v)]++
		}
		if v, ok := record.Resolve(rec, record.ProductName); ok {
			productCounts[strings.TrimSpace(v)]++
		}
		if v, ok := record.Resolve(rec, record.Status); ok {
			statuses[strings.ToUpper(strings.TrimSpace(v))] = true
		}
	}
	for _, predefined := range analytics.ExplicitStatuses() {
		statuses[predefined] = true
	}

	return FilterOptions{
		Success:           true,
		Channels:          sortedKeys(channels),
		SKUs:              sortedCountKeys(skuCounts),
		SKUsTop10:         topN(skuCounts, 10),
		ProductNames:      sortedCountKeys(productCounts),
		ProductNamesTop10: topN(productCounts, 10),
		Statuses:          sortedKeys(statuses),
	}, nil
}

// RawPage is one page of filtered raw rows.
type RawPage struct {
	Records    []record.Record `json:"records"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalRows  int             `json:"totalRows"`
	TotalPages int             `json:"totalPages"`
}

const maxRawLimit = 500

// Raw returns one page of the session's records after filtering. The page
// size is capped at 500 rows.
func (s *ReportService) Raw(ctx context.Context, sessionID string, filters analytics.FilterSpec, page, limit int) (RawPage, error) {
	if err := filters.Validate(); err != nil {
		return RawPage{}, err
	}
	records, err := s.sessions.FetchRecords(ctx, sessionID)
	if err != nil {
		return RawPage{}, err
	}
	filtered := filters.Apply(records)

	if limit <= 0 || limit > maxRawLimit {
		limit = maxRawLimit
	}
	if page < 1 {
		page = 1
	}
	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return RawPage{
		Records:    filtered[start:end],
		Page:       page,
		Limit:      limit,
		TotalRows:  total,
		TotalPages: totalPages,
	}, nil
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedCountKeys(counts map[string]int) []string {
	out := make([]string, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func topN(counts map[string]int, n int) []string {
	type kv struct {
		k string
		v int
	}
	pairs := make([]kv, 0, len(counts))
	for k, v := range counts {
		pairs = append(pairs, kv{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].v != pairs[j].v {
			return pairs[i].v > pairs[j].v
		}
		return pairs[i].k < pairs[j].k
	})
	if len(pairs) > n {
		pairs = pairs[:n]
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.k)
	}
	return out
}
