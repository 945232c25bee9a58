package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"shipstat/analytics"
	"shipstat/config"
	"shipstat/database"
	"shipstat/etl"
	"shipstat/jobs"
	"shipstat/record"
	"shipstat/service"
	"shipstat/store"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	cfg      *config.Config
	kv       store.KV
	svc      *service.ReportService
	ingestor *etl.DataIngestor
	repo     *database.Repository
	pool     *jobs.WorkerPool
}

// NewHandler creates a new handler instance
func NewHandler(cfg *config.Config, kv store.KV, svc *service.ReportService, ingestor *etl.DataIngestor, repo *database.Repository, pool *jobs.WorkerPool) *Handler {
	return &Handler{
		cfg:      cfg,
		kv:       kv,
		svc:      svc,
		ingestor: ingestor,
		repo:     repo,
		pool:     pool,
	}
}

// HealthCheck returns API health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.kv.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "session store health check failed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"queueSize": h.pool.QueueSize(),
	})
}

// IngestData accepts tabular shipment rows and stores them under a session.
// An empty sessionId mints a new one; re-using an id replaces the data and
// evicts that session's cached reports.
func (h *Handler) IngestData(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string          `json:"sessionId"`
		Records   []record.Record `json:"records"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Records) == 0 {
		respondError(w, http.StatusBadRequest, "no records provided")
		return
	}

	stats, err := h.ingestor.IngestRows(r.Context(), req.SessionID, req.Records)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("ingestion failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"stats":  stats,
	})
}

// GenerateSession creates a demo session filled with mock shipments.
func (h *Handler) GenerateSession(w http.ResponseWriter, r *http.Request) {
	gen := etl.NewMockDataGenerator(&h.cfg.MockData)
	rows := gen.GenerateShipments()

	stats, err := h.ingestor.IngestRows(r.Context(), "", rows)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("mock ingestion failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"stats":  stats,
	})
}

// SessionStats returns metadata and the remaining TTL for a session.
func (h *Handler) SessionStats(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	meta, err := h.svc.Sessions().Metadata(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	ttl, err := h.svc.Sessions().TTL(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"meta":       meta,
		"ttlSeconds": int64(ttl.Seconds()),
	})
}

// DeleteSession drops a session's data and its cached reports.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]

	if err := h.svc.Sessions().Delete(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}
	if _, err := h.svc.Cache().InvalidateSession(r.Context(), sessionID); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("cache invalidation failed: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted"})
}

// ComputeReport computes one report synchronously, or queues it when
// ?async=true and returns a job id to poll.
func (h *Handler) ComputeReport(w http.ResponseWriter, r *http.Request) {
	var req service.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ReportType == "" {
		respondError(w, http.StatusBadRequest, "reportType is required")
		return
	}

	if r.URL.Query().Get("async") == "true" {
		h.queueReport(w, req)
		return
	}

	start := time.Now()
	payload, err := h.svc.Compute(r.Context(), req)
	if err != nil {
		h.logReport(req, 0, time.Since(start), "failed")
		respondServiceError(w, err)
		return
	}
	h.logReport(req, len(payload), time.Since(start), "success")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"report": json.RawMessage(payload),
	})
}

func (h *Handler) queueReport(w http.ResponseWriter, req service.Request) {
	jobID := uuid.New().String()
	if err := h.repo.CreateReportJob(jobID, database.JobPending); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create job: %v", err))
		return
	}

	job := jobs.Job{
		ID: jobID,
		Execute: func(ctx context.Context) error {
			if err := h.repo.UpdateReportJob(jobID, database.JobRunning, "", "", 10); err != nil {
				return err
			}
			start := time.Now()
			payload, err := h.svc.Compute(ctx, req)
			if err != nil {
				h.repo.UpdateReportJob(jobID, database.JobFailed, "", err.Error(), 100)
				h.logReport(req, 0, time.Since(start), "failed")
				return err
			}
			key := h.svc.CacheKey(req)
			h.logReport(req, len(payload), time.Since(start), "success")
			return h.repo.UpdateReportJob(jobID, database.JobCompleted, key, "", 100)
		},
	}

	if err := h.pool.Submit(job); err != nil {
		h.repo.UpdateReportJob(jobID, database.JobFailed, "", err.Error(), 0)
		respondError(w, http.StatusServiceUnavailable, "job queue is full, try again later")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"status": "queued",
		"jobId":  jobID,
	})
}

// GetReport computes a report identified by the URL path. Filters arrive as
// a JSON object in the "filters" query parameter.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.Request{
		SessionID:   q.Get("session_id"),
		ReportType:  mux.Vars(r)["reportType"],
		Granularity: q.Get("granularity"),
	}
	if req.Granularity == "" {
		req.Granularity = h.cfg.Reports.DefaultGranularity
	}
	if raw := q.Get("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Filters); err != nil {
			respondError(w, http.StatusBadRequest, "invalid filters parameter")
			return
		}
	}

	start := time.Now()
	payload, err := h.svc.Compute(r.Context(), req)
	if err != nil {
		h.logReport(req, 0, time.Since(start), "failed")
		respondServiceError(w, err)
		return
	}
	h.logReport(req, len(payload), time.Since(start), "success")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"report": json.RawMessage(payload),
	})
}

// GetJobStatus returns the state of one queued report job. A completed job
// carries the cache key; the payload is served from the report cache.
func (h *Handler) GetJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["jobId"]

	job, err := h.repo.GetReportJobStatus(jobID)
	if err != nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	resp := map[string]interface{}{"job": job}
	if job.Status == database.JobCompleted && job.CacheKey != "" {
		payload, err := h.svc.Cache().Get(r.Context(), job.CacheKey)
		if err == nil {
			resp["report"] = json.RawMessage(payload)
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetFilterOptions returns the distinct-value catalog for the dropdowns,
// optionally narrowed to one channel or SKU.
func (h *Handler) GetFilterOptions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	opts, err := h.svc.Options(r.Context(), sessionID, q.Get("channel"), q.Get("sku"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, opts)
}

// GetRawData returns one page of filtered raw rows.
func (h *Handler) GetRawData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sessionID := q.Get("session_id")
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	var filters analytics.FilterSpec
	if raw := q.Get("filters"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			respondError(w, http.StatusBadRequest, "invalid filters parameter")
			return
		}
	}
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	pageData, err := h.svc.Raw(r.Context(), sessionID, filters, page, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pageData)
}

// GetRecentLogs returns the newest report audit rows.
func (h *Handler) GetRecentLogs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	logs, err := h.repo.GetRecentReportLogs(limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load logs: %v", err))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}

// GetConfig returns UI-controllable settings and the report registry.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"reports": map[string]interface{}{
			"warmList":           h.cfg.Reports.WarmList,
			"defaultGranularity": h.cfg.Reports.DefaultGranularity,
			"available":          analytics.ReportTypes(),
		},
		"scheduler": h.cfg.Scheduler,
	})
}

// UpdateConfig updates the warm list and the default granularity and
// persists them to config.yaml.
func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WarmList           []string `json:"warmList"`
		DefaultGranularity string   `json:"defaultGranularity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	known := make(map[string]bool)
	for _, t := range analytics.ReportTypes() {
		known[t] = true
	}
	for _, t := range req.WarmList {
		if !known[t] {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown report type in warm list: %s", t))
			return
		}
	}
	if req.DefaultGranularity == "" {
		req.DefaultGranularity = h.cfg.Reports.DefaultGranularity
	}

	if err := h.cfg.UpdateReportSettings(req.WarmList, req.DefaultGranularity); err != nil {
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to save config: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"status": "updated"})
}

func (h *Handler) logReport(req service.Request, payloadSize int, dur time.Duration, status string) {
	err := h.repo.LogReport(database.ReportLog{
		SessionID:  req.SessionID,
		ReportType: req.ReportType,
		RowCount:   payloadSize,
		DurationMs: dur.Milliseconds(),
		Status:     status,
	})
	if err != nil {
		// Audit logging must never fail a request.
		log.Printf("Warning: report log write failed: %v", err)
	}
}

// respondServiceError maps typed service errors to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNoData):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, analytics.ErrInvalidFilter):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrUnknownReport):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		respondError(w, 499, "request cancelled")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
