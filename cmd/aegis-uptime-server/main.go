package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/samijaber1/aegis-uptime/internal/alert"
	"github.com/samijaber1/aegis-uptime/internal/config"
	"github.com/samijaber1/aegis-uptime/internal/eval"
	"github.com/samijaber1/aegis-uptime/internal/incident"
	"github.com/samijaber1/aegis-uptime/internal/measure"
	"github.com/samijaber1/aegis-uptime/internal/metrics"
	"github.com/samijaber1/aegis-uptime/internal/probe"
	"github.com/samijaber1/aegis-uptime/internal/scheduler"
	"github.com/samijaber1/aegis-uptime/internal/sla"
	"github.com/samijaber1/aegis-uptime/internal/storage"
	"github.com/samijaber1/aegis-uptime/internal/storage/sqlite"
	"github.com/samijaber1/aegis-uptime/internal/store"
)

func main() {
	cfg := parseFlags()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()
	logger := zlog.Sugar()

	logger.Infow("starting aegis-uptime server",
		"sla_dir", cfg.SLADirectory,
		"check_dir", cfg.CheckDirectory,
		"evaluation_interval", cfg.EvaluationInterval)

	// Validate definitions against the schema before loading anything.
	if cfg.SchemaPath != "" {
		validator, err := sla.NewValidator(cfg.SchemaPath)
		if err != nil {
			logger.Fatalw("failed to load schema", "path", cfg.SchemaPath, "error", err)
		}
		if errs := validator.ValidateDirectory(cfg.SLADirectory); len(errs) > 0 {
			for _, e := range errs {
				logger.Errorw("invalid sla definition", "file", e.File, "path", e.Path, "message", e.Message)
			}
			logger.Fatal("sla validation failed")
		}
	}

	slas := store.NewSLARegistry(cfg.HistoryLimit)
	checks := store.NewCheckRegistry(cfg.HistoryLimit)
	ledger := incident.NewLedger(logger)

	synthetic := measure.NewSynthetic(checks)
	sources := measure.NewRegistry(synthetic)
	evaluator := eval.NewEvaluator(sources)

	dispatcher := alert.NewDispatcher(logger, alert.NewLogChannel(logger))
	publisher := metrics.NewPrometheus(prometheus.DefaultRegisterer)
	prober := probe.NewProber(logger, nil, cfg.MaxConcurrentProbes)

	sched := scheduler.NewScheduler(
		slas, checks, evaluator, dispatcher, prober, publisher, logger, cfg.EvaluationInterval)

	loadDefinitions(logger, sched, cfg)

	// Restore retained history from the previous run, if persistence is
	// configured.
	var snapshots storage.SnapshotStore
	if cfg.SnapshotPath != "" {
		snapshots, err = sqlite.NewStore(cfg.SnapshotPath)
		if err != nil {
			logger.Fatalw("failed to open snapshot store", "path", cfg.SnapshotPath, "error", err)
		}
		defer snapshots.Close()

		snap, err := snapshots.Load()
		if err != nil {
			logger.Fatalw("failed to load snapshot", "error", err)
		}
		slas.Restore(snap.Records)
		checks.Restore(snap.Results)
		ledger.Restore(snap.Incidents)
		logger.Infow("snapshot restored", "taken_at", snap.TakenAt)
	}

	if err := sched.Start(); err != nil {
		logger.Fatalw("failed to start scheduler", "error", err)
	}

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux()}
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- metricsServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Fatalw("metrics server error", "error", err)

	case sig := <-shutdown:
		logger.Infow("received signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
		defer cancel()

		if err := metricsServer.Shutdown(ctx); err != nil {
			logger.Errorw("error shutting down metrics server", "error", err)
		}

		// Timers first: after Stop returns nothing writes the
		// registries, so the snapshot below is consistent.
		sched.Stop()

		if snapshots != nil {
			snap := storage.Snapshot{
				Records:   slas.Snapshot(),
				Results:   checks.Snapshot(),
				Incidents: ledger.List(),
				TakenAt:   time.Now().UTC(),
			}
			if err := snapshots.Save(snap); err != nil {
				logger.Errorw("failed to save snapshot", "error", err)
			} else {
				logger.Info("snapshot saved")
			}
		}

		logger.Info("shutdown complete")
	}
}

// loadDefinitions loads SLA and check definitions from the configured
// directories into the scheduler.
func loadDefinitions(logger *zap.SugaredLogger, sched *scheduler.Scheduler, cfg config.Config) {
	slaFiles, errs := sla.LoadFromDirectory(cfg.SLADirectory)
	if len(errs) > 0 {
		for _, e := range errs {
			logger.Errorw("failed to load sla", "file", e.File, "message", e.Message)
		}
		logger.Fatal("sla loading failed")
	}
	for _, sf := range slaFiles {
		if err := sched.AddSLA(sf.SLA); err != nil {
			logger.Fatalw("failed to register sla", "file", sf.File, "error", err)
		}
	}

	if cfg.CheckDirectory == "" {
		logger.Info("no check directory configured, running without uptime checks")
		return
	}
	checkFiles, errs := probe.LoadFromDirectory(cfg.CheckDirectory)
	if len(errs) > 0 {
		for _, e := range errs {
			logger.Errorw("failed to load check", "file", e.File, "message", e.Message)
		}
		logger.Fatal("check loading failed")
	}
	for _, cf := range checkFiles {
		if err := sched.AddCheck(cf.Check); err != nil {
			logger.Fatalw("failed to register check", "file", cf.File, "error", err)
		}
	}
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func parseFlags() config.Config {
	cfg := config.DefaultConfig()

	flag.StringVar(&cfg.SLADirectory, "sla-dir", cfg.SLADirectory, "Directory containing SLA YAML files")
	flag.StringVar(&cfg.CheckDirectory, "check-dir", cfg.CheckDirectory, "Directory containing uptime check YAML files")
	flag.StringVar(&cfg.SchemaPath, "schema", cfg.SchemaPath, "Path to the SLA JSON schema (empty disables schema validation)")
	flag.DurationVar(&cfg.EvaluationInterval, "evaluation-interval", cfg.EvaluationInterval, "Shared SLA evaluation interval")
	flag.IntVar(&cfg.HistoryLimit, "history-limit", cfg.HistoryLimit, "Retained results/records per check or SLA")
	flag.Int64Var(&cfg.MaxConcurrentProbes, "max-concurrent-probes", cfg.MaxConcurrentProbes, "Maximum in-flight region probes")
	flag.StringVar(&cfg.SnapshotPath, "snapshot-db", cfg.SnapshotPath, "SQLite snapshot database path (empty disables persistence)")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Prometheus metrics listen address")
	flag.DurationVar(&cfg.GracefulShutdownTimeout, "shutdown-timeout", cfg.GracefulShutdownTimeout, "Graceful shutdown timeout")

	flag.Parse()

	return cfg
}
