package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shipstat/api"
	"shipstat/cache"
	"shipstat/config"
	"shipstat/database"
	"shipstat/etl"
	"shipstat/jobs"
	"shipstat/precompute"
	"shipstat/service"
	"shipstat/store"
)

func main() {
	fmt.Println("=== ShipStat - Shipment Analytics Service ===")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✓ Configuration loaded")

	// Initialize app database
	db, err := database.Initialize(cfg.AppDBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repo := database.NewRepository(db)
	if err := repo.CreateSchema(); err != nil {
		log.Fatalf("Failed to create schema: %v", err)
	}
	log.Println("✓ Database schema created")

	// Session and cache store. Redis is the normal backend; fall back to the
	// in-process store so local development works without one.
	var kv store.KV
	if redisKV, err := store.NewRedisKV(cfg.RedisURL); err != nil {
		log.Printf("Warning: Redis unavailable (%v), using in-memory store", err)
		kv = store.NewMemoryKV()
	} else {
		kv = redisKV
	}
	defer kv.Close()

	sessions := store.NewSessionStore(kv, time.Duration(cfg.SessionTTLHours)*time.Hour)
	reportCache := cache.New(kv, time.Duration(cfg.ReportCacheTTLMinutes)*time.Minute)
	fmt.Println("✓ Session store and report cache ready")

	// Report service and cache warmer
	svc := service.New(sessions, reportCache)
	warmer := precompute.NewWarmer(svc, cfg.Reports.WarmList)

	// Initialize worker pool
	workerPool := jobs.NewWorkerPool(cfg.WorkerPoolSize)
	defer workerPool.Stop()
	fmt.Printf("✓ Worker pool started with %d workers\n", cfg.WorkerPoolSize)

	// Ingestion pipeline
	ingestor := etl.NewDataIngestor(sessions, reportCache, warmer, workerPool)

	// Maintenance scheduler
	scheduler := etl.NewScheduler(cfg, repo)
	scheduler.Start()
	defer scheduler.Stop()

	// Optional demo session on startup
	if cfg.MockData.Enabled {
		gen := etl.NewMockDataGenerator(&cfg.MockData)
		stats, err := ingestor.IngestRows(context.Background(), "", gen.GenerateShipments())
		if err != nil {
			log.Printf("Warning: mock session ingestion failed: %v", err)
		} else {
			fmt.Printf("✓ Mock session %s loaded with %d rows\n", stats.SessionID, stats.TotalRows)
		}
	}

	// Initialize API handler
	handler := api.NewHandler(cfg, kv, svc, ingestor, repo, workerPool)

	// Setup router
	router := api.SetupRouter(handler)
	router.Use(api.CORSMiddleware())
	router.Use(api.LoggingMiddleware())

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		fmt.Printf("✓ API server listening on %s\n", addr)
		fmt.Println("\nAPI Endpoints:")
		fmt.Println("  GET    /health")
		fmt.Println("  POST   /api/ingest")
		fmt.Println("  POST   /api/session/generate")
		fmt.Println("  GET    /api/session/stats")
		fmt.Println("  DELETE /api/session/{sessionId}")
		fmt.Println("  POST   /api/reports/compute")
		fmt.Println("  GET    /api/reports/{reportType}")
		fmt.Println("  GET    /api/reports/jobs/{jobId}/status")
		fmt.Println("  GET    /api/filter-options")
		fmt.Println("  GET    /api/raw")
		fmt.Println("  GET    /api/logs")
		fmt.Println("  GET    /api/config")
		fmt.Println("  PUT    /api/config")
		fmt.Println("\nPress Ctrl+C to shutdown")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		fmt.Printf("Server forced to shutdown: %v\n", err)
	}

	fmt.Println("Server exited")
}
