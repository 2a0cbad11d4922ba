package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/celochoi/aptos-indexer-processors/internal/config"
	"github.com/celochoi/aptos-indexer-processors/internal/processor"
	"github.com/celochoi/aptos-indexer-processors/internal/store/postgres"
	"github.com/celochoi/aptos-indexer-processors/internal/stream"
	"github.com/celochoi/aptos-indexer-processors/internal/tracing"
	"github.com/celochoi/aptos-indexer-processors/internal/worker"
)

const poolStatsInterval = 15 * time.Second

func main() {
	// Setup logger
	logLevel := slog.LevelInfo
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	logger.Info("starting aptos-indexer-processors",
		"data_service_url", cfg.Stream.DataServiceURL,
		"starting_version", cfg.Stream.StartingVersion,
		"processors", cfg.Processor.Enabled,
		"txn_chunk_size", cfg.Processor.TxnChunkSize,
	)

	shutdownTracing, err := tracing.Init(context.Background(), "aptos-indexer-processors", tracing.Config{
		Enabled:  cfg.Tracing.Enabled,
		Endpoint: cfg.Tracing.Endpoint,
		Insecure: cfg.Tracing.Insecure,
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown error", "error", err)
		}
	}()

	db, err := postgres.New(postgres.Config{
		URL:             cfg.DB.URL,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.DB.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	deps := processor.Deps{
		Runner:        db,
		Transactions:  postgres.NewLedgerTransactionRepo(db),
		Events:        postgres.NewEventRepo(db),
		TableItems:    postgres.NewTableItemRepo(db),
		TableMetadata: postgres.NewTableMetadataRepo(db),
		Logger:        logger,
	}
	processors := make([]processor.Processor, 0, len(cfg.Processor.Enabled))
	for _, name := range cfg.Processor.Enabled {
		p, err := processor.New(name, deps)
		if err != nil {
			logger.Error("failed to build processor", "processor", name, "error", err)
			os.Exit(1)
		}
		processors = append(processors, p)
	}

	connector := stream.NewGrpcConnector(cfg.Stream, "aptos-indexer-processors", logger)
	w := worker.New(cfg, connector, processors,
		postgres.NewProcessorStatusRepo(db),
		postgres.NewLedgerInfoRepo(db),
		logger,
	)

	// Context with signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// Health check server
	g.Go(func() error {
		return runHealthServer(gCtx, cfg.Server.HealthPort, logger)
	})

	g.Go(func() error {
		defer cancel()
		return w.Run(gCtx)
	})

	g.Go(func() error {
		db.ReportPoolStats(gCtx, poolStatsInterval)
		return nil
	})

	// Signal handler
	g.Go(func() error {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
			return nil
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("indexer exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("indexer shut down gracefully")
}

func runHealthServer(ctx context.Context, port int, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
			logger.Warn("health server shutdown error", "error", err)
		}
	}()

	logger.Info("health server started", "port", port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
