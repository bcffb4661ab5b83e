package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pep299/study-planner/internal/config"
	"github.com/pep299/study-planner/internal/handlers"
	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/pipeline"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showHelp {
		fmt.Printf("Study Planner Server\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  AI_PROVIDER           ollama, openrouter or gemini (default: ollama)\n")
		fmt.Printf("  USE_AI_GENERATION     Set to false to always serve template plans\n")
		fmt.Printf("  OPENROUTER_API_KEY    OpenRouter API key\n")
		fmt.Printf("  GEMINI_API_KEY        Gemini API key\n")
		fmt.Printf("  PORT                  Server port (default: 8080)\n")
		fmt.Printf("  HOST                  Server host (default: 0.0.0.0)\n")
		fmt.Printf("  CACHE_TYPE            none, memory or cloud-storage (default: none)\n")
		fmt.Printf("  CACHE_PRUNE_SCHEDULE  Cron spec for page cache pruning (default: @every 30m)\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("Study Planner Server\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logr.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, err := pipeline.NewFromConfig(ctx, cfg, logr)
	if err != nil {
		logr.Error("failed to create pipeline", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// Setup routes
	router := handlers.NewServer(cfg, svc, logr).SetupRoutes()

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Page cache pruning
	c := cron.New()
	if cfg.CacheType != config.CacheNone {
		_, err := c.AddFunc(cfg.CachePruneSchedule, func() {
			removed, err := svc.PrunePages(ctx)
			if err != nil {
				logr.Warn("page cache prune failed", "error", err)
				return
			}
			logr.Info("page cache pruned", "removed", removed)
		})
		if err != nil {
			logr.Warn("invalid prune schedule", "schedule", cfg.CachePruneSchedule, "error", err)
		} else {
			logr.Info("scheduled page cache pruning", "schedule", cfg.CachePruneSchedule)
		}
	}
	c.Start()
	defer c.Stop()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server
	go func() {
		logr.Info("starting server", "addr", httpServer.Addr, "version", Version)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	logr.Info("shutting down server")

	// Cancel background tasks
	cancel()
	c.Stop()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logr.Warn("server shutdown error", "error", err)
	}

	logr.Info("server stopped")
}
