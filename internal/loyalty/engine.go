// Package loyalty computes tiered reward points for completed sales.
//
// Points come from two tiers that are summed and rounded to one decimal
// place: an order-level rate applied to the sale total, and a per-line rate
// applied to each line's effective unit price times quantity. The effective
// unit price of a pack sale is the pack price divided by units per pack.
package loyalty

import "github.com/shopspring/decimal"

// Line is one cart line as the engine sees it: the tier-relevant unit price
// and the quantity sold.
type Line struct {
	EffectiveUnitPrice float64
	Quantity           int
}

type tier struct {
	threshold float64 // exclusive lower bound
	rate      float64
}

// Tiers are ordered highest-first; the first match wins.
var orderTiers = []tier{
	{20000, 0.05},
	{15000, 0.04},
	{5000, 0.03},
	{1000, 0.02},
	{100, 0.01},
}

var itemTiers = []tier{
	{20000, 0.15},
	{10000, 0.12},
	{5000, 0.10},
	{1000, 0.05},
	{500, 0.03},
	{100, 0.02},
}

func rateFor(tiers []tier, amount float64) float64 {
	for _, t := range tiers {
		if amount > t.threshold {
			return t.rate
		}
	}
	return 0
}

// OrderRate returns the order-level rate for a sale total.
func OrderRate(total float64) float64 {
	return rateFor(orderTiers, total)
}

// ItemRate returns the per-line rate for an effective unit price.
func ItemRate(unitPrice float64) float64 {
	return rateFor(itemTiers, unitPrice)
}

// Points computes the loyalty points for a sale. Arithmetic runs through
// decimal so the tier products do not accumulate float artifacts before the
// final one-decimal rounding.
func Points(total float64, lines []Line) float64 {
	sum := decimal.NewFromFloat(total).Mul(decimal.NewFromFloat(OrderRate(total)))

	for _, line := range lines {
		rate := ItemRate(line.EffectiveUnitPrice)
		if rate == 0 || line.Quantity <= 0 {
			continue
		}
		contribution := decimal.NewFromFloat(line.EffectiveUnitPrice).
			Mul(decimal.NewFromInt(int64(line.Quantity))).
			Mul(decimal.NewFromFloat(rate))
		sum = sum.Add(contribution)
	}

	return sum.Round(1).InexactFloat64()
}
