package entity

import (
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Purchaser is a canonical identity keyed by name, shared across all imports.
type Purchaser struct {
	ID   uuid.UUID
	Name string
}

// Item is a canonical identity keyed by description, shared across all imports.
type Item struct {
	ID          uuid.UUID
	Description string
}

// Merchant is a canonical identity keyed by the (name, address) pair.
type Merchant struct {
	ID      uuid.UUID
	Name    string
	Address string
}

// Natural-key length bounds. An entity outside these bounds is never created.
const (
	PurchaserNameMin   = 3
	PurchaserNameMax   = 100
	ItemDescriptionMin = 3
	ItemDescriptionMax = 50
	MerchantNameMin    = 3
	MerchantNameMax    = 100
	MerchantAddressMin = 3
	MerchantAddressMax = 255
)

func lengthBetween(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min || n > max {
		return fmt.Errorf("%s must be between %d and %d characters", field, min, max)
	}
	return nil
}

// Validate checks the purchaser's natural key bounds.
func (p *Purchaser) Validate() error {
	return lengthBetween("purchaser name", p.Name, PurchaserNameMin, PurchaserNameMax)
}

// Validate checks the item's natural key bounds.
func (i *Item) Validate() error {
	return lengthBetween("item description", i.Description, ItemDescriptionMin, ItemDescriptionMax)
}

// Validate checks both parts of the merchant's natural key.
func (m *Merchant) Validate() error {
	if err := lengthBetween("merchant name", m.Name, MerchantNameMin, MerchantNameMax); err != nil {
		return err
	}
	return lengthBetween("merchant address", m.Address, MerchantAddressMin, MerchantAddressMax)
}
