// Package entity holds the domain types persisted by the repository layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Import represents one submitted sales file and its processing lifecycle.
// TotalCents is only meaningful once Status is StatusCompleted.
type Import struct {
	ID         uuid.UUID
	Filename   string
	FilePath   string // location of the stored source file; empty if none attached
	Status     ImportStatus
	TotalCents int64
	CreatedAt  time.Time
}

// Revenue returns the aggregate revenue in currency units.
func (i *Import) Revenue() float64 {
	return float64(i.TotalCents) / 100.0
}

// HasFile reports whether a source file is attached to the import.
func (i *Import) HasFile() bool {
	return i.FilePath != ""
}
