// Package main provides the processor command that transforms the raw movie
// dataset into normalized relation prefixes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"moviedata/internal/config"
	"moviedata/internal/logger"
	"moviedata/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file (optional)")
	sourceRoot := flag.String("source-root", "", "Directory containing the raw CSV sources")
	destRoot := flag.String("dest-root", "", "Directory to write relation prefixes into")
	partitions := flag.Int("partitions", 0, "Number of parallel partitions (0 = config default)")
	tieBreak := flag.String("tie-break", "", "Dedup tie-break policy: last_wins or first_wins")
	skipSmall := flag.Bool("skip-small", false, "Skip the links_small and ratings_small sources")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	cfg := config.Default()

	if *configPath != "" {
		loaded, err := config.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		cfg = loaded
	}

	// Flags override whatever the file said.
	if *sourceRoot != "" {
		cfg.Processor.SourceRoot = *sourceRoot
	}

	if *destRoot != "" {
		cfg.Processor.DestinationRoot = *destRoot
	}

	if *partitions > 0 {
		cfg.Processor.Partitions = *partitions
	}

	if *tieBreak != "" {
		cfg.Processor.TieBreak = *tieBreak
	}

	if *skipSmall {
		cfg.Processor.IncludeSmall = false
	}

	if *logLevel != "" {
		cfg.Processor.Logging.Level = *logLevel
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.Processor.Logging.Level, cfg.Processor.Logging.Format)

	log.Info("🚀 Starting movie dataset processor")
	log.Info(fmt.Sprintf("📍 Source: %s", cfg.Processor.SourceRoot))
	log.Info(fmt.Sprintf("🎯 Destination: %s", cfg.Processor.DestinationRoot))
	log.Info(fmt.Sprintf("⚙️  Partitions: %d, tie-break: %s", cfg.Processor.Partitions, cfg.Processor.TieBreak))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startTime := time.Now()

	summary, err := pipeline.New(cfg, log).Run(ctx)
	if err != nil {
		var runErr *pipeline.RunError
		if errors.As(err, &runErr) {
			log.Error(fmt.Sprintf("❌ Run failed: %s (%s)", runErr.Kind, runErr.Subject), "error", runErr.Err)
		} else {
			log.Error("❌ Run failed", "error", err)
		}

		os.Exit(1)
	}

	log.Info("✨ Run complete!")

	fmt.Println("\n------------------------------------------------")
	fmt.Printf("📊 Summary Report\n")
	fmt.Println("------------------------------------------------")

	var totalRows, totalAccepted, totalRejected int
	for _, s := range summary.Sources {
		totalRows += s.Rows
		totalAccepted += s.Accepted
		totalRejected += s.Rejected
	}

	fmt.Printf("Sources Processed: %d\n", len(summary.Sources))
	fmt.Printf("Rows Read: %d\n", totalRows)
	fmt.Printf("Rows Accepted: %d\n", totalAccepted)
	fmt.Printf("Rows Rejected: %d\n", totalRejected)
	fmt.Printf("Relations Written: %d\n", len(summary.Relations))
	fmt.Printf("Total Duration: %v\n", time.Since(startTime))
	fmt.Printf("Report: %s\n", filepath.Join(cfg.Processor.DestinationRoot, pipeline.ReportFile))

	if len(summary.Failures) > 0 {
		fmt.Printf("⚠️  Failures encountered: %d\n", len(summary.Failures))

		for _, f := range summary.Failures {
			fmt.Printf("  - %s\n", f)
		}
	}

	fmt.Println("------------------------------------------------")
}
