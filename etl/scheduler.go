package etl

import (
	"log"
	"time"

	"shipstat/config"
	"shipstat/database"
)

// Scheduler handles periodic maintenance: expired job and audit log cleanup.
type Scheduler struct {
	cfg         *config.Config
	repo        *database.Repository
	ticker      *time.Ticker
	quit        chan struct{}
	lastCleanup time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.Config, repo *database.Repository) *Scheduler {
	return &Scheduler{
		cfg:  cfg,
		repo: repo,
		quit: make(chan struct{}),
	}
}

// Start begins the scheduling loop
func (s *Scheduler) Start() {
	if !s.cfg.Scheduler.Enabled {
		log.Println("Scheduler is disabled by config.")
		return
	}

	interval := time.Duration(s.cfg.Scheduler.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 60 * time.Minute
	}

	log.Printf("Starting Scheduler. Interval: %v (Cleanup at %s)", interval, s.cfg.Retention.CleanupTime)
	s.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.checkAndRunCleanup()
			case <-s.quit:
				s.ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.ticker != nil {
		close(s.quit)
	}
}

func (s *Scheduler) checkAndRunCleanup() {
	cleanupTimeStr := s.cfg.Retention.CleanupTime
	if cleanupTimeStr == "" {
		cleanupTimeStr = "06:00"
	}

	now := time.Now()
	target, err := time.Parse("15:04", cleanupTimeStr)
	if err != nil {
		log.Printf("[Scheduler] Invalid cleanup time format: %v", err)
		return
	}

	cleanupTarget := time.Date(now.Year(), now.Month(), now.Day(), target.Hour(), target.Minute(), 0, 0, now.Location())

	// Run once per day after the target time. A restart resets lastCleanup,
	// so duplicate runs on restart are accepted.
	shouldRun := false
	if now.After(cleanupTarget) {
		if s.lastCleanup.IsZero() || s.lastCleanup.Before(cleanupTarget) {
			shouldRun = true
		}
	}

	if shouldRun {
		log.Println("[Scheduler] Starting Daily Cleanup...")
		if err := s.repo.CleanupOld(s.cfg.Retention.JobDays, s.cfg.Retention.LogDays); err != nil {
			log.Printf("[Scheduler] Cleanup Failed: %v", err)
		}
		s.lastCleanup = now
		log.Println("[Scheduler] Cleanup Completed.")
	}
}
