package entity

import (
	"time"

	"github.com/google/uuid"
)

// Sale is one validated transaction row belonging to exactly one Import.
// GrossCents is always derived from Quantity and UnitPriceCents, never
// supplied by input.
type Sale struct {
	ID             uuid.UUID
	ImportID       uuid.UUID
	PurchaserID    uuid.UUID
	ItemID         uuid.UUID
	MerchantID     uuid.UUID
	Quantity       int
	UnitPriceCents int64
	GrossCents     int64
	CreatedAt      time.Time
}

// NewSale builds a sale with its gross revenue computed.
func NewSale(importID, purchaserID, itemID, merchantID uuid.UUID, quantity int, unitPriceCents int64) *Sale {
	s := &Sale{
		ID:             uuid.New(),
		ImportID:       importID,
		PurchaserID:    purchaserID,
		ItemID:         itemID,
		MerchantID:     merchantID,
		Quantity:       quantity,
		UnitPriceCents: unitPriceCents,
	}
	s.RecomputeGross()
	return s
}

// RecomputeGross derives GrossCents from the current quantity and unit price.
// Call after changing either operand; the stale value is never reused.
func (s *Sale) RecomputeGross() {
	s.GrossCents = int64(s.Quantity) * s.UnitPriceCents
}
