package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/api/health", h.HealthCheck).Methods("GET")

	// Session management
	r.HandleFunc("/api/ingest", h.IngestData).Methods("POST")
	r.HandleFunc("/api/session/generate", h.GenerateSession).Methods("POST")
	r.HandleFunc("/api/session/stats", h.SessionStats).Methods("GET")
	r.HandleFunc("/api/session/{sessionId}", h.DeleteSession).Methods("DELETE")

	// Reports
	reportRouter := r.PathPrefix("/api/reports").Subrouter()
	reportRouter.HandleFunc("/compute", h.ComputeReport).Methods("POST")
	reportRouter.HandleFunc("/jobs/{jobId}/status", h.GetJobStatus).Methods("GET")
	reportRouter.HandleFunc("/{reportType}", h.GetReport).Methods("GET")

	// Raw data and filter catalog
	r.HandleFunc("/api/filter-options", h.GetFilterOptions).Methods("GET")
	r.HandleFunc("/api/raw", h.GetRawData).Methods("GET")

	// Operations
	r.HandleFunc("/api/logs", h.GetRecentLogs).Methods("GET")
	r.HandleFunc("/api/config", h.GetConfig).Methods("GET")
	r.HandleFunc("/api/config", h.UpdateConfig).Methods("PUT")

	return r
}

// CORSMiddleware adds CORS headers
func CORSMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins([]string{"*"}),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		)(next)
	}
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Printf("%s %s %d %s", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush implements http.Flusher
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
