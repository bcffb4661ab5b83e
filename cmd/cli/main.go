package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pep299/study-planner/internal/config"
	"github.com/pep299/study-planner/internal/logger"
	"github.com/pep299/study-planner/internal/pipeline"
)

// Version is set via -ldflags at build time.
var Version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdout stays valid JSON
	logr, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logr.Sync()

	ctx := context.Background()
	svc, err := pipeline.NewFromConfig(ctx, cfg, logr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	app := newCLIApp(svc, os.Stdout)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
