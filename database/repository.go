package database

import (
	"database/sql"
	"strings"
	"time"
)

// Job lifecycle states.
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// JobStatus is one async report job's tracked state.
type JobStatus struct {
	JobID        string    `json:"job_id"`
	Status       string    `json:"status"`
	CacheKey     string    `json:"cache_key,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Progress     int       `json:"progress"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReportLog is one audit row for a computed report.
type ReportLog struct {
	ID          int64     `json:"id"`
	RequestTime time.Time `json:"request_time"`
	SessionID   string    `json:"session_id"`
	ReportType  string    `json:"report_type"`
	RowCount    int       `json:"row_count"`
	DurationMs  int64     `json:"duration_ms"`
	Status      string    `json:"status"`
}

type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS report_jobs (
	job_id TEXT PRIMARY KEY,
	status TEXT NOT NULL,
	cache_key TEXT,
	error_message TEXT,
	progress INTEGER DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS report_logs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	request_time TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	session_id TEXT NOT NULL,
	report_type TEXT NOT NULL,
	row_count INTEGER DEFAULT 0,
	duration_ms INTEGER DEFAULT 0,
	status TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_jobs_created ON report_jobs(created_at);
CREATE INDEX IF NOT EXISTS idx_report_logs_session ON report_logs(session_id)
`

// CreateSchema creates the job and log tables.
func (r *Repository) CreateSchema() error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := r.db.App.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateReportJob inserts a new job row.
func (r *Repository) CreateReportJob(jobID, status string) error {
	_, err := r.db.App.Exec("INSERT INTO report_jobs (job_id, status, created_at, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)", jobID, status)
	return err
}

// UpdateReportJob updates a job's status, cache key, error and progress.
func (r *Repository) UpdateReportJob(jobID, status, cacheKey, errorMsg string, progress int) error {
	_, err := r.db.App.Exec("UPDATE report_jobs SET status = ?, cache_key = ?, error_message = ?, progress = ?, updated_at = CURRENT_TIMESTAMP WHERE job_id = ?", status, cacheKey, errorMsg, progress, jobID)
	return err
}

// GetReportJobStatus loads one job row.
func (r *Repository) GetReportJobStatus(jobID string) (*JobStatus, error) {
	var job JobStatus
	var cacheKey, errorMsg sql.NullString
	err := r.db.App.QueryRow("SELECT job_id, status, cache_key, error_message, progress, created_at, updated_at FROM report_jobs WHERE job_id = ?", jobID).
		Scan(&job.JobID, &job.Status, &cacheKey, &errorMsg, &job.Progress, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if cacheKey.Valid {
		job.CacheKey = cacheKey.String
	}
	if errorMsg.Valid {
		job.ErrorMessage = errorMsg.String
	}
	return &job, nil
}

// LogReport appends one audit row.
func (r *Repository) LogReport(l ReportLog) error {
	_, err := r.db.App.Exec("INSERT INTO report_logs (session_id, report_type, row_count, duration_ms, status, request_time) VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)", l.SessionID, l.ReportType, l.RowCount, l.DurationMs, l.Status)
	return err
}

// GetRecentReportLogs returns the newest audit rows.
func (r *Repository) GetRecentReportLogs(limit int) ([]ReportLog, error) {
	rows, err := r.db.App.Query("SELECT id, request_time, session_id, report_type, row_count, duration_ms, status FROM report_logs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var logs []ReportLog
	for rows.Next() {
		var l ReportLog
		if err := rows.Scan(&l.ID, &l.RequestTime, &l.SessionID, &l.ReportType, &l.RowCount, &l.DurationMs, &l.Status); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// CleanupOld removes jobs older than jobDays and logs older than logDays.
func (r *Repository) CleanupOld(jobDays, logDays int) error {
	if _, err := r.db.App.Exec("DELETE FROM report_jobs WHERE created_at < ?", time.Now().AddDate(0, 0, -jobDays)); err != nil {
		return err
	}
	_, err := r.db.App.Exec("DELETE FROM report_logs WHERE request_time < ?", time.Now().AddDate(0, 0, -logDays))
	return err
}
