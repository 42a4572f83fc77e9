package importer

import (
	"context"

	"github.com/google/uuid"

	"github.com/vendasapp/sales-import/internal/entity"
)

// EntityResolver maps natural keys to canonical entities, creating them on
// first sight. Implementations must be idempotent and safe under concurrent
// callers racing to create the same key: the same key never yields two
// different identities, within or across calls.
type EntityResolver interface {
	FindOrCreatePurchaser(ctx context.Context, name string) (*entity.Purchaser, error)
	FindOrCreateItem(ctx context.Context, description string) (*entity.Item, error)
	FindOrCreateMerchant(ctx context.Context, name, address string) (*entity.Merchant, error)
}

// ImportStore persists import lifecycle state and the final commit.
type ImportStore interface {
	// SetStatus writes the import's lifecycle status. It is deliberately a
	// standalone write, not part of any commit transaction, so progress
	// markers stay visible even when a later stage aborts.
	SetStatus(ctx context.Context, id uuid.UUID, status entity.ImportStatus) error

	// CommitResult atomically persists the created sales, the aggregate
	// revenue, the finalized filename and the completed status. Either all of
	// it lands or none of it does.
	CommitResult(ctx context.Context, id uuid.UUID, filename string, totalCents int64, sales []*entity.Sale) error
}
