package entity

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewSale_ComputesGross(t *testing.T) {
	s := NewSale(uuid.New(), uuid.New(), uuid.New(), uuid.New(), 4, 350)
	if s.GrossCents != 1400 {
		t.Errorf("GrossCents = %d, want 1400", s.GrossCents)
	}
	if s.ID == uuid.Nil {
		t.Error("NewSale must assign an ID")
	}
}

func TestSale_RecomputeGross(t *testing.T) {
	s := NewSale(uuid.New(), uuid.New(), uuid.New(), uuid.New(), 2, 1025)
	s.Quantity = 5
	s.RecomputeGross()
	if s.GrossCents != 5125 {
		t.Errorf("GrossCents = %d, want 5125 after recompute", s.GrossCents)
	}
}

func TestImport_Revenue(t *testing.T) {
	imp := &Import{TotalCents: 10295}
	if got := imp.Revenue(); got != 102.95 {
		t.Errorf("Revenue() = %v, want 102.95", got)
	}
}

func TestImport_HasFile(t *testing.T) {
	imp := &Import{}
	if imp.HasFile() {
		t.Error("HasFile() = true for empty path")
	}
	imp.FilePath = "/uploads/sales.tab"
	if !imp.HasFile() {
		t.Error("HasFile() = false with path set")
	}
}

func TestPurchaser_Validate(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"Al", false},
		{"Amy", true},
		{strings.Repeat("a", 100), true},
		{strings.Repeat("a", 101), false},
		{"", false},
	}
	for _, tt := range tests {
		p := &Purchaser{Name: tt.name}
		if err := p.Validate(); (err == nil) != tt.valid {
			t.Errorf("Purchaser(%q).Validate() = %v, want valid=%v", tt.name, err, tt.valid)
		}
	}
}

func TestPurchaser_Validate_CountsRunes(t *testing.T) {
	// Three runes, more than three bytes.
	p := &Purchaser{Name: "Joã"}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v, want rune-counted length to pass", err)
	}
}

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		description string
		valid       bool
	}{
		{"ab", false},
		{"abc", true},
		{strings.Repeat("x", 50), true},
		{strings.Repeat("x", 51), false},
	}
	for _, tt := range tests {
		i := &Item{Description: tt.description}
		if err := i.Validate(); (err == nil) != tt.valid {
			t.Errorf("Item(%d chars).Validate() = %v, want valid=%v", len(tt.description), err, tt.valid)
		}
	}
}

func TestMerchant_Validate(t *testing.T) {
	m := &Merchant{Name: "Bob's Pizza", Address: "987 Fake St"}
	if err := m.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	m.Name = "ab"
	if err := m.Validate(); err == nil || !strings.Contains(err.Error(), "merchant name") {
		t.Errorf("Validate() = %v, want merchant name bound violation", err)
	}

	m.Name = "Bob's Pizza"
	m.Address = strings.Repeat("a", 256)
	if err := m.Validate(); err == nil || !strings.Contains(err.Error(), "merchant address") {
		t.Errorf("Validate() = %v, want merchant address bound violation", err)
	}
}
