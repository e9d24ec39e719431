package service

import (
	"errors"
	"testing"
	"time"

	"go-pharmacy-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestValidateTransactionTime(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		last    *time.Time
		next    time.Time
		wantErr bool
	}{
		{"first transaction ever", nil, base, false},
		{"strictly later", &base, base.Add(time.Second), false},
		{"equal timestamp rejected", &base, base, true},
		{"earlier timestamp rejected", &base, base.Add(-time.Minute), true},
		{"zero timestamp rejected", nil, time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTransactionTime(tt.last, tt.next)
			if tt.wantErr && !errors.Is(err, ErrInvalidTransactionTime) {
				t.Errorf("err = %v, want ErrInvalidTransactionTime", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestSaleSerial(t *testing.T) {
	if got := saleSerial(0); got != 100001 {
		t.Errorf("first serial = %d, want 100001", got)
	}
	if got := saleSerial(41); got != 100042 {
		t.Errorf("serial after 41 sales = %d, want 100042", got)
	}
}

func TestDeductStock(t *testing.T) {
	tests := []struct {
		name        string
		stock       int
		units       int
		wantStock   int
		wantClamped bool
	}{
		{"normal deduction", 100, 30, 70, false},
		{"exactly drained", 30, 30, 0, false},
		{"oversell clamps to zero", 10, 25, 0, true},
		{"zero units", 10, 0, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := deductStock(tt.stock, tt.units)
			if got != tt.wantStock || clamped != tt.wantClamped {
				t.Errorf("deductStock(%d, %d) = (%d, %v), want (%d, %v)",
					tt.stock, tt.units, got, clamped, tt.wantStock, tt.wantClamped)
			}
		})
	}
}

// fakeCustomerRepo backs resolveCustomer tests without a database. Lookups
// that miss return gorm.ErrRecordNotFound like the real repository.
type fakeCustomerRepo struct {
	byCode   map[string]*model.Customer
	bySerial map[int64]*model.Customer
	byName   map[string]*model.Customer
}

func (f *fakeCustomerRepo) FindByCode(code string) (*model.Customer, error) {
	if c, ok := f.byCode[code]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCustomerRepo) FindBySerial(serial int64) (*model.Customer, error) {
	if c, ok := f.bySerial[serial]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCustomerRepo) FindByExactName(name string) (*model.Customer, error) {
	if c, ok := f.byName[name]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCustomerRepo) Create(*model.Customer) error       { return nil }
func (f *fakeCustomerRepo) FindAll() ([]model.Customer, error) { return nil, nil }
func (f *fakeCustomerRepo) FindByID(uuid.UUID) (*model.Customer, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeCustomerRepo) NextSerial() (int64, error)                   { return 1, nil }
func (f *fakeCustomerRepo) Update(*model.Customer) error                 { return nil }
func (f *fakeCustomerRepo) Delete(uuid.UUID, string) error               { return nil }
func (f *fakeCustomerRepo) AddPoints(*gorm.DB, uuid.UUID, float64) error { return nil }

func TestResolveCustomer(t *testing.T) {
	cardHolder := &model.Customer{Name: "Alice Hart", Code: "MBR-001", Serial: 7}
	serialOnly := &model.Customer{Name: "Bob Finch", Serial: 42}
	named := &model.Customer{Name: "Carol Wu", Serial: 9}

	repo := &fakeCustomerRepo{
		byCode:   map[string]*model.Customer{"MBR-001": cardHolder},
		bySerial: map[int64]*model.Customer{7: cardHolder, 42: serialOnly},
		byName:   map[string]*model.Customer{"Alice Hart": cardHolder, "Carol Wu": named},
	}

	tests := []struct {
		name string
		code string
		cust string
		want *model.Customer
	}{
		{"match by member code", "MBR-001", "", cardHolder},
		{"numeric code falls through to serial", "42", "", serialOnly},
		{"unknown code never falls back to name", "NOPE", "Carol Wu", nil},
		{"exact name when no code given", "", "Carol Wu", named},
		{"guest placeholder never matches", "", model.GuestCustomerName, nil},
		{"empty name and code", "", "", nil},
		{"unknown name", "", "Nobody", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveCustomer(repo, tt.code, tt.cust)
			if got != tt.want {
				t.Errorf("resolveCustomer(%q, %q) = %v, want %v", tt.code, tt.cust, got, tt.want)
			}
		})
	}
}

func TestMatchSaleItem(t *testing.T) {
	drugA := uuid.New()
	drugB := uuid.New()

	items := []model.SaleItem{
		{DrugID: drugA, IsUnit: true, Quantity: 3},
		{DrugID: drugA, IsUnit: false, Quantity: 2},
		{DrugID: drugB, IsUnit: false, Quantity: 1},
	}

	if got := matchSaleItem(items, drugA, true); got == nil || !got.IsUnit {
		t.Error("expected the unit line for drugA")
	}
	if got := matchSaleItem(items, drugA, false); got == nil || got.IsUnit {
		t.Error("expected the pack line for drugA")
	}
	// A unit return against a pack-only sale line still matches the drug.
	if got := matchSaleItem(items, drugB, true); got == nil || got.DrugID != drugB {
		t.Error("expected fallback match on drug alone")
	}
	if got := matchSaleItem(items, uuid.New(), true); got != nil {
		t.Error("expected nil for a drug not on the sale")
	}
}

func TestBuildReturnItems(t *testing.T) {
	sold := uuid.New()
	saleItems := []model.SaleItem{{DrugID: sold, IsUnit: true, Quantity: 5}}

	t.Run("valid lines pass and refunds sum", func(t *testing.T) {
		items, refund, err := buildReturnItems(saleItems, []ReturnLineRequest{
			{DrugID: sold.String(), Quantity: 2, RefundAmount: 300, IsUnit: true},
			{DrugID: sold.String(), Quantity: 1, RefundAmount: 150, IsUnit: true},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 2 || refund != 450 {
			t.Errorf("got %d items, refund %v, want 2 items, refund 450", len(items), refund)
		}
	})

	t.Run("drug never sold is rejected", func(t *testing.T) {
		_, _, err := buildReturnItems(saleItems, []ReturnLineRequest{
			{DrugID: uuid.New().String(), Quantity: 1, RefundAmount: 100, IsUnit: true},
		})
		if !errors.Is(err, ErrReturnItemNotOnSale) {
			t.Errorf("err = %v, want ErrReturnItemNotOnSale", err)
		}
	})

	t.Run("malformed drug id is rejected", func(t *testing.T) {
		_, _, err := buildReturnItems(saleItems, []ReturnLineRequest{
			{DrugID: "not-a-uuid", Quantity: 1, RefundAmount: 100, IsUnit: true},
		})
		if !errors.Is(err, ErrDrugNotFound) {
			t.Errorf("err = %v, want ErrDrugNotFound", err)
		}
	})
}
