package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/vendasapp/sales-import/internal/importer"
	"github.com/vendasapp/sales-import/internal/logging"
	"github.com/vendasapp/sales-import/internal/repository"
)

var processCmd = &cobra.Command{
	Use:   "process <file.tab>",
	Short: "Import one tab-separated sales file",
	Long: `Process parses the given file, validates every row and commits the
resulting transaction records in one atomic transaction. The import is
recorded with the same lifecycle as service-submitted imports, so it shows
up in history and dashboard figures.

The command exits non-zero when the import fails; the failure reason is
printed and the import is left in the failed state.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}
		logging.Setup(cfg.LogLevel, cfg.LogFormat)

		path := args[0]
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		pool, err := repository.Open(ctx, repository.Config{
			URL:         cfg.DatabaseURL,
			MaxConns:    4,
			MinConns:    1,
			DialTimeout: 5 * time.Second,
		}, slog.Default())
		if err != nil {
			return err
		}
		defer pool.Close()

		imports := repository.NewImportRepository(pool, slog.Default())
		entities := repository.NewEntityRepository(pool, slog.Default())
		processor := importer.NewProcessor(imports, entities, slog.Default())

		imp, err := imports.Create(ctx, filepath.Base(path), absPath)
		if err != nil {
			return err
		}

		if err := processor.ProcessStored(ctx, imp); err != nil {
			return fmt.Errorf("import %s failed: %w", imp.ID, err)
		}

		fmt.Printf("import %s completed: total revenue %.2f (%d cents)\n",
			imp.ID, imp.Revenue(), imp.TotalCents)
		return nil
	},
}
