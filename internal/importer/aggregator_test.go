package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/vendasapp/sales-import/internal/entity"
	"github.com/vendasapp/sales-import/internal/tsv"
)

// fakeResolver is an in-memory EntityResolver with the same idempotency and
// validation behavior as the database-backed one.
type fakeResolver struct {
	purchasers map[string]*entity.Purchaser
	items      map[string]*entity.Item
	merchants  map[string]*entity.Merchant

	failPurchaser string // name that always fails to resolve
	panicOn       string // name that panics mid-resolution
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		purchasers: make(map[string]*entity.Purchaser),
		items:      make(map[string]*entity.Item),
		merchants:  make(map[string]*entity.Merchant),
	}
}

func (f *fakeResolver) FindOrCreatePurchaser(_ context.Context, name string) (*entity.Purchaser, error) {
	if name == f.failPurchaser && name != "" {
		return nil, fmt.Errorf("resolve purchaser: connection reset")
	}
	if name == f.panicOn && name != "" {
		panic("resolver blew up")
	}
	if p, ok := f.purchasers[name]; ok {
		return p, nil
	}
	p := &entity.Purchaser{ID: uuid.New(), Name: name}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f.purchasers[name] = p
	return p, nil
}

func (f *fakeResolver) FindOrCreateItem(_ context.Context, description string) (*entity.Item, error) {
	if i, ok := f.items[description]; ok {
		return i, nil
	}
	i := &entity.Item{ID: uuid.New(), Description: description}
	if err := i.Validate(); err != nil {
		return nil, err
	}
	f.items[description] = i
	return i, nil
}

func (f *fakeResolver) FindOrCreateMerchant(_ context.Context, name, address string) (*entity.Merchant, error) {
	key := name + "\x00" + address
	if m, ok := f.merchants[key]; ok {
		return m, nil
	}
	m := &entity.Merchant{ID: uuid.New(), Name: name, Address: address}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	f.merchants[key] = m
	return m, nil
}

// scenarioRows is the reference file: five rows, four purchasers, three items,
// three merchants, 10295 cents of gross revenue.
func scenarioRows() []tsv.Row {
	return []tsv.Row{
		{LineNumber: 2, PurchaserName: "João Silva", ItemDescription: "R$10 off R$20 of food", ItemPrice: 1000, PurchaseCount: 2, MerchantAddress: "987 Fake St", MerchantName: "Bob's Pizza"},
		{LineNumber: 3, PurchaserName: "Amy Pond", ItemDescription: "R$30 of awesome for R$10", ItemPrice: 1000, PurchaseCount: 5, MerchantAddress: "456 Unreal Rd", MerchantName: "Tom's Awesome Shop"},
		{LineNumber: 4, PurchaserName: "Marty McFly", ItemDescription: "R$20 Sneakers for R$5", ItemPrice: 500, PurchaseCount: 1, MerchantAddress: "123 Fake St", MerchantName: "Sneaker Store Emporium"},
		{LineNumber: 5, PurchaserName: "Snake Plissken", ItemDescription: "R$20 Sneakers for R$5", ItemPrice: 500, PurchaseCount: 4, MerchantAddress: "123 Fake St", MerchantName: "Sneaker Store Emporium"},
		{LineNumber: 6, PurchaserName: "Amy Pond", ItemDescription: "R$10 off R$20 of food", ItemPrice: 1000, PurchaseCount: 1, MerchantAddress: "987 Fake St", MerchantName: "Bob's Pizza"},
	}
}

const scenarioTotalCents = 2*1000 + 5*1000 + 1*500 + 4*500 + 1*1000 // 10500

func TestAggregate_Scenario(t *testing.T) {
	resolver := newFakeResolver()
	agg := NewAggregator(resolver, nil)
	importID := uuid.New()

	result, err := agg.Aggregate(context.Background(), importID, scenarioRows())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	if result.Created != 5 || len(result.Sales) != 5 {
		t.Errorf("Created = %d, len(Sales) = %d, want 5 each", result.Created, len(result.Sales))
	}
	if result.TotalCents != scenarioTotalCents {
		t.Errorf("TotalCents = %d, want %d", result.TotalCents, scenarioTotalCents)
	}

	// Entities deduplicate across rows on their natural key.
	if len(resolver.purchasers) != 4 {
		t.Errorf("got %d purchasers, want 4", len(resolver.purchasers))
	}
	if len(resolver.items) != 3 {
		t.Errorf("got %d items, want 3", len(resolver.items))
	}
	if len(resolver.merchants) != 3 {
		t.Errorf("got %d merchants, want 3", len(resolver.merchants))
	}

	for _, s := range result.Sales {
		if s.ImportID != importID {
			t.Errorf("sale %s bound to import %s, want %s", s.ID, s.ImportID, importID)
		}
		if s.GrossCents != int64(s.Quantity)*s.UnitPriceCents {
			t.Errorf("sale %s gross = %d, want %d", s.ID, s.GrossCents, int64(s.Quantity)*s.UnitPriceCents)
		}
	}
}

func TestAggregate_ReusesEntityIdentity(t *testing.T) {
	resolver := newFakeResolver()
	agg := NewAggregator(resolver, nil)

	result, err := agg.Aggregate(context.Background(), uuid.New(), scenarioRows())
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}

	// Rows 4 and 5 share item and merchant, rows 2 and 6 share purchaser.
	if result.Sales[2].ItemID != result.Sales[3].ItemID {
		t.Error("same item description resolved to two identities")
	}
	if result.Sales[2].MerchantID != result.Sales[3].MerchantID {
		t.Error("same merchant resolved to two identities")
	}
	if result.Sales[1].PurchaserID != result.Sales[4].PurchaserID {
		t.Error("same purchaser name resolved to two identities")
	}
}

func TestAggregate_PartialFailure(t *testing.T) {
	resolver := newFakeResolver()
	resolver.failPurchaser = "Marty McFly"
	agg := NewAggregator(resolver, nil)

	_, err := agg.Aggregate(context.Background(), uuid.New(), scenarioRows())
	if err == nil {
		t.Fatal("Aggregate() expected error when a row fails")
	}
	if !strings.HasPrefix(err.Error(), "1 sales failed validation or creation: ") {
		t.Errorf("error = %q, want partial-failure prefix", err)
	}
	if !strings.Contains(err.Error(), "Row 4:") {
		t.Errorf("error = %q, want failing row number", err)
	}
}

func TestAggregate_AllRowsFail(t *testing.T) {
	resolver := newFakeResolver()
	agg := NewAggregator(resolver, nil)

	// Every purchaser name is below the entity minimum length.
	rows := scenarioRows()
	for i := range rows {
		rows[i].PurchaserName = "Al"
	}

	_, err := agg.Aggregate(context.Background(), uuid.New(), rows)
	if err == nil {
		t.Fatal("Aggregate() expected error when every row fails")
	}
	if !strings.HasPrefix(err.Error(), "All sales failed validation or creation: ") {
		t.Errorf("error = %q, want all-failed prefix", err)
	}
	if !strings.Contains(err.Error(), "purchaser name must be between 3 and 100 characters") {
		t.Errorf("error = %q, want entity validation detail", err)
	}
}

func TestAggregate_EntityBoundsRejectRow(t *testing.T) {
	resolver := newFakeResolver()
	agg := NewAggregator(resolver, nil)

	rows := scenarioRows()
	rows[1].ItemDescription = strings.Repeat("x", 51)

	_, err := agg.Aggregate(context.Background(), uuid.New(), rows)
	if err == nil {
		t.Fatal("Aggregate() expected error for overlong item description")
	}
	if !strings.Contains(err.Error(), "Row 3: item description must be between 3 and 50 characters") {
		t.Errorf("error = %q, want item bounds violation on row 3", err)
	}
}
