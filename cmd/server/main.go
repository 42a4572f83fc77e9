package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vendasapp/sales-import/internal/config"
	"github.com/vendasapp/sales-import/internal/export"
	"github.com/vendasapp/sales-import/internal/importer"
	"github.com/vendasapp/sales-import/internal/jobs"
	"github.com/vendasapp/sales-import/internal/jobs/inmemory"
	"github.com/vendasapp/sales-import/internal/logging"
	"github.com/vendasapp/sales-import/internal/repository"
	"github.com/vendasapp/sales-import/internal/web"
)

func main() {
	// Load .env if present; real environment variables win in production.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"addr", cfg.Server.Addr(),
		"db_max_conns", cfg.Database.MaxConns,
		"job_workers", cfg.Jobs.Workers,
	)

	ctx := context.Background()
	pool, err := repository.Open(ctx, repository.Config{
		URL:             cfg.Database.URL,
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, slog.Default())
	if err != nil {
		os.Exit(1)
	}
	defer pool.Close()

	imports := repository.NewImportRepository(pool, slog.Default())
	sales := repository.NewSaleRepository(pool, slog.Default())
	entities := repository.NewEntityRepository(pool, slog.Default())
	processor := importer.NewProcessor(imports, entities, slog.Default())
	exporter := export.NewService(imports, sales, slog.Default())

	// Background import workers. The processor leaves every import in a
	// terminal state; the queue only logs outcomes.
	queue := inmemory.NewQueue(cfg.Jobs.QueueSize, cfg.Jobs.Workers, slog.Default())
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	err = queue.Start(jobCtx, func(ctx context.Context, job *jobs.ProcessImportJob) error {
		imp, err := imports.Get(ctx, job.ImportID)
		if err != nil {
			return err
		}
		return processor.ProcessStored(ctx, imp)
	})
	if err != nil {
		slog.Error("failed to start job workers", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(cfg, imports, sales, exporter, queue, pool)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		serverErr <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		slog.Error("server failed", "error", err)
		os.Exit(1)

	case <-sigCh:
		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Stop accepting uploads first, then let queued and in-flight
		// imports finish before the workers are released. main must not
		// return until the drain is over.
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		if err := queue.Stop(shutdownCtx); err != nil {
			slog.Warn("import jobs did not complete in time", "error", err)
		}
		cancelJobs()

		if err := <-serverErr; err != nil {
			slog.Info("server stopped", "error", err)
		}
	}
}
