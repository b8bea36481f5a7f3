// Command etl runs the one-shot reconciliation pipeline: it loads the three
// raw extracts, cleans and deduplicates them, and writes them into the
// relational store with foreign-key-safe ordering. main() stays tiny and
// delegates to run(); all side effects (store constructors, the pipeline
// entrypoint) are injected via Deps so run() is fully testable.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fleximart/internal/config"
	"fleximart/internal/metrics"
	"fleximart/internal/metrics/prompush"
	"fleximart/internal/pipeline"
	"fleximart/internal/report"
	"fleximart/internal/store"
)

// Deps holds injectable dependencies so run() is testable with fakes.
type Deps struct {
	NewPostgres func(ctx context.Context, dsn string) (store.Store, error)
	NewSQLite   func(path string) (store.Store, error)
	Run         func(ctx context.Context, cfg *config.Config, st store.Store, runID string, log *logrus.Entry) (*report.Report, error)
}

func defaultDeps() Deps {
	return Deps{
		NewPostgres: store.NewPostgres,
		NewSQLite:   store.NewSQLite,
		Run:         pipeline.Run,
	}
}

// setupLogger builds the structured run logger: leveled, timestamped, and
// duplicated to stdout and the log file. Rotation is left to the outside
// world. The returned entry carries the run id on every line.
func setupLogger(cfg *config.Config, runID string) (*logrus.Entry, func(), error) {
	logger := logrus.New()
	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(io.MultiWriter(os.Stdout, f))

	cleanup := func() { _ = f.Close() }
	return logger.WithField("run", runID), cleanup, nil
}

// run executes the program: connect, pipeline, report. The store connection
// is released on every path.
func run(ctx context.Context, cfg *config.Config, runID string, log *logrus.Entry, deps Deps) error {
	var st store.Store
	var err error
	switch cfg.Driver {
	case "postgres":
		st, err = deps.NewPostgres(ctx, cfg.PostgresDSN())
	case "sqlite":
		st, err = deps.NewSQLite(cfg.SQLiteDSN())
	default:
		return fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
	if err != nil {
		return fmt.Errorf("connect store: %w", err)
	}
	defer st.Close(ctx)
	log.WithField("stage", "connect").Infof("connected to %s store", cfg.Driver)

	rep, err := deps.Run(ctx, cfg, st, runID, log)
	if err != nil {
		return err
	}

	if err := rep.WriteFile(cfg.ReportFile); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func main() {
	cfg := config.Load()
	runID := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	log, cleanup, err := setupLogger(cfg, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	switch cfg.MetricsBackend {
	case "pushgateway":
		b, err := prompush.NewBackend("fleximart_etl", cfg.PushgatewayURL)
		if err != nil {
			log.Warnf("metrics: init pushgateway backend: %v; metrics disabled", err)
		} else {
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Warnf("metrics: flush: %v", err)
				}
			}()
		}
	case "", "none":
		// metrics disabled; nop backend remains
	default:
		log.Warnf("metrics: unknown backend %q; metrics disabled", cfg.MetricsBackend)
	}

	start := time.Now()
	log.WithField("stage", "start").Info("ETL run started")

	if err := run(context.Background(), cfg, runID, log, defaultDeps()); err != nil {
		elapsed := time.Since(start).Round(10 * time.Millisecond)
		log.WithField("stage", "error").Errorf("ETL run failed after %s: %v", elapsed, err)
		cleanup()
		os.Exit(1)
	}

	elapsed := time.Since(start).Round(10 * time.Millisecond)
	log.WithField("stage", "end").Infof("ETL run finished successfully in %s", elapsed)
	fmt.Println("ETL Pipeline Completed Successfully.")
}
