package model

import "testing"

func TestDrugUnitsFor(t *testing.T) {
	d := &Drug{UnitsPerPack: 12}

	if got := d.UnitsFor(3, true); got != 3 {
		t.Errorf("3 units = %d stock units, want 3", got)
	}
	if got := d.UnitsFor(3, false); got != 36 {
		t.Errorf("3 packs = %d stock units, want 36", got)
	}

	// Legacy rows with a zero pack size behave as pack size 1.
	legacy := &Drug{UnitsPerPack: 0}
	if got := legacy.UnitsFor(5, false); got != 5 {
		t.Errorf("5 packs with zero pack size = %d, want 5", got)
	}
}

func TestSaleItemEffectiveUnitPrice(t *testing.T) {
	unit := &SaleItem{UnitPrice: 90, IsUnit: true, UnitsPerPack: 10}
	if got := unit.EffectiveUnitPrice(); got != 90 {
		t.Errorf("unit line = %v, want 90", got)
	}

	pack := &SaleItem{UnitPrice: 120, IsUnit: false, UnitsPerPack: 10}
	if got := pack.EffectiveUnitPrice(); got != 12 {
		t.Errorf("pack line = %v, want 12", got)
	}

	single := &SaleItem{UnitPrice: 120, IsUnit: false, UnitsPerPack: 1}
	if got := single.EffectiveUnitPrice(); got != 120 {
		t.Errorf("single-unit pack = %v, want 120", got)
	}
}

func TestShiftExpectedCash(t *testing.T) {
	s := &Shift{
		OpeningCash: 200,
		CashSales:   1500,
		CardSales:   900, // card never touches the drawer
		Returns:     120,
	}
	if got := s.ExpectedCash(); got != 1580 {
		t.Errorf("ExpectedCash = %v, want 1580", got)
	}
}
