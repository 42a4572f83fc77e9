package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vendasapp/sales-import/internal/entity"
	"github.com/vendasapp/sales-import/internal/tsv"
)

// ErrNoFile is returned when an import reaches the processor without an
// attached source file. The caller's pending state is left untouched.
var ErrNoFile = errors.New("no file attached")

// ErrEmptyFile is returned for files that contain no non-blank data rows.
// Its text is part of the API surface and must not change.
var ErrEmptyFile = errors.New("No valid data found in file")

// Processor sequences the import pipeline (parse, validate, aggregate,
// commit) and owns the import's lifecycle status. Every failure path leaves
// the import in the failed state; none leaves it pending or processing.
type Processor struct {
	imports    ImportStore
	parser     *tsv.Parser
	aggregator *Aggregator
	logger     *slog.Logger
}

// NewProcessor wires a processor from its stores.
func NewProcessor(imports ImportStore, resolver EntityResolver, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		imports:    imports,
		parser:     tsv.NewParser(),
		aggregator: NewAggregator(resolver, logger),
		logger:     logger,
	}
}

// Process runs the whole pipeline for one import against its source file.
// Processing is synchronous; the function returns only once the import has
// reached a terminal state (or the missing-file precondition failed). The
// processor never retries; that is the calling scheduler's concern.
func (p *Processor) Process(ctx context.Context, imp *entity.Import, src io.Reader) (err error) {
	if imp == nil {
		return errors.New("sales import not found")
	}
	if src == nil {
		// Precondition failure: no state write beyond what the caller set.
		return ErrNoFile
	}

	log := p.logger.With("import_id", imp.ID, "filename", imp.Filename)

	// Unexpected faults are converted into the failed state exactly once, at
	// this boundary.
	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during import processing", "panic", r)
			p.setStatus(ctx, imp, entity.StatusFailed)
			err = fmt.Errorf("Processing failed: %v", r)
		}
	}()

	// Progress marker: this write must stay visible even if a later stage
	// aborts, so it is not part of the commit transaction below.
	p.setStatus(ctx, imp, entity.StatusProcessing)

	rows, parseErr := p.parser.Parse(src)
	if parseErr != nil {
		log.Error("file parsing failed", "error", parseErr)
		p.setStatus(ctx, imp, entity.StatusFailed)
		return fmt.Errorf("failed to parse file: %w", parseErr)
	}

	if valErr := ValidateRows(rows); valErr != nil {
		log.Error("row validation failed", "error", valErr)
		p.setStatus(ctx, imp, entity.StatusFailed)
		return valErr
	}

	if len(rows) == 0 {
		p.setStatus(ctx, imp, entity.StatusFailed)
		return ErrEmptyFile
	}

	result, aggErr := p.aggregator.Aggregate(ctx, imp.ID, rows)
	if aggErr != nil {
		log.Error("sales creation failed", "error", aggErr)
		p.setStatus(ctx, imp, entity.StatusFailed)
		return aggErr
	}

	if commitErr := p.imports.CommitResult(ctx, imp.ID, imp.Filename, result.TotalCents, result.Sales); commitErr != nil {
		log.Error("import commit failed", "error", commitErr)
		p.setStatus(ctx, imp, entity.StatusFailed)
		return fmt.Errorf("commit import: %w", commitErr)
	}

	imp.Status = entity.StatusCompleted
	imp.TotalCents = result.TotalCents
	log.Info("import completed", "sales", result.Created, "total_cents", result.TotalCents)
	return nil
}

// ProcessStored opens the import's stored source file and runs Process on
// it. An unreadable-but-attached file is an input error that fails the
// import; a missing attachment is the ErrNoFile precondition.
func (p *Processor) ProcessStored(ctx context.Context, imp *entity.Import) error {
	if imp == nil {
		return errors.New("sales import not found")
	}
	if !imp.HasFile() {
		return ErrNoFile
	}

	f, err := os.Open(imp.FilePath)
	if err != nil {
		p.logger.Error("cannot open import source file",
			"import_id", imp.ID, "path", imp.FilePath, "error", err)
		p.setStatus(ctx, imp, entity.StatusFailed)
		return fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	return p.Process(ctx, imp, f)
}

// setStatus records a lifecycle transition. Failures here are logged only: a
// broken status write must not mask the pipeline's own outcome.
func (p *Processor) setStatus(ctx context.Context, imp *entity.Import, status entity.ImportStatus) {
	if err := p.imports.SetStatus(ctx, imp.ID, status); err != nil {
		p.logger.Error("failed to update import status",
			"import_id", imp.ID, "status", status.String(), "error", err)
		return
	}
	imp.Status = status
}
