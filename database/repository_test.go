package database

import (
	"path/filepath"
	"testing"
)

func testRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return repo
}

func TestReportJobLifecycle(t *testing.T) {
	repo := testRepo(t)

	if err := repo.CreateReportJob("job-1", JobPending); err != nil {
		t.Fatalf("CreateReportJob: %v", err)
	}

	job, err := repo.GetReportJobStatus("job-1")
	if err != nil {
		t.Fatalf("GetReportJobStatus: %v", err)
	}
	if job.Status != JobPending || job.Progress != 0 {
		t.Errorf("fresh job = %+v", job)
	}

	if err := repo.UpdateReportJob("job-1", JobRunning, "", "", 50); err != nil {
		t.Fatalf("UpdateReportJob: %v", err)
	}
	if err := repo.UpdateReportJob("job-1", JobCompleted, "reports:s:weekly-summary:week:abc", "", 100); err != nil {
		t.Fatalf("UpdateReportJob: %v", err)
	}

	job, err = repo.GetReportJobStatus("job-1")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != JobCompleted {
		t.Errorf("status = %s, want completed", job.Status)
	}
	if job.CacheKey != "reports:s:weekly-summary:week:abc" {
		t.Errorf("cache key = %q", job.CacheKey)
	}
	if job.Progress != 100 {
		t.Errorf("progress = %d, want 100", job.Progress)
	}
}

func TestFailedJobKeepsError(t *testing.T) {
	repo := testRepo(t)

	if err := repo.CreateReportJob("job-2", JobPending); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateReportJob("job-2", JobFailed, "", "session not found", 100); err != nil {
		t.Fatal(err)
	}

	job, err := repo.GetReportJobStatus("job-2")
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != JobFailed || job.ErrorMessage != "session not found" {
		t.Errorf("failed job = %+v", job)
	}
}

func TestGetMissingJob(t *testing.T) {
	repo := testRepo(t)
	if _, err := repo.GetReportJobStatus("nope"); err == nil {
		t.Error("missing job returned no error")
	}
}

func TestReportLogs(t *testing.T) {
	repo := testRepo(t)

	logs := []ReportLog{
		{SessionID: "s1", ReportType: "weekly-summary", RowCount: 120, DurationMs: 35, Status: "success"},
		{SessionID: "s1", ReportType: "summary-metrics", RowCount: 0, DurationMs: 5, Status: "failed"},
		{SessionID: "s2", ReportType: "ndr-count", RowCount: 9, DurationMs: 12, Status: "success"},
	}
	for _, l := range logs {
		if err := repo.LogReport(l); err != nil {
			t.Fatalf("LogReport: %v", err)
		}
	}

	got, err := repo.GetRecentReportLogs(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d logs, want 2", len(got))
	}
	// Newest first.
	if got[0].ReportType != "ndr-count" {
		t.Errorf("newest log is %s, want ndr-count", got[0].ReportType)
	}

	if err := repo.CleanupOld(30, 90); err != nil {
		t.Errorf("CleanupOld: %v", err)
	}
	remaining, err := repo.GetRecentReportLogs(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 3 {
		t.Errorf("cleanup removed fresh logs, %d remain", len(remaining))
	}
}
