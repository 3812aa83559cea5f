package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tariff turns a converted wholesale price into a retail price:
// (price * rate * UnitScale + markup) * TaxMultiplier.
type Tariff struct {
	UnitScale     decimal.Decimal
	TaxMultiplier decimal.Decimal
	Markups       map[string]decimal.Decimal
}

// NewTariff builds a tariff from plain config numbers.
func NewTariff(unitScale, taxMultiplier float64, markups map[string]float64) Tariff {
	m := make(map[string]decimal.Decimal, len(markups))
	for supplier, v := range markups {
		m[supplier] = decimal.NewFromFloat(v)
	}
	return Tariff{
		UnitScale:     decimal.NewFromFloat(unitScale),
		TaxMultiplier: decimal.NewFromFloat(taxMultiplier),
		Markups:       m,
	}
}

// MarkupDecision records whether a supplier markup was applied.
// Unknown suppliers get no markup; Reason says why.
type MarkupDecision struct {
	Supplier string
	Amount   decimal.Decimal
	Applied  bool
	Reason   string
}

func (d MarkupDecision) String() string {
	if d.Applied {
		return fmt.Sprintf("markup %s applied for %s", d.Amount, d.Supplier)
	}
	return fmt.Sprintf("markup skipped for %q: %s", d.Supplier, d.Reason)
}

// Markup looks up the additive markup for supplier.
func (t Tariff) Markup(supplier string) MarkupDecision {
	amount, ok := t.Markups[supplier]
	if !ok {
		return MarkupDecision{Supplier: supplier, Amount: decimal.Zero, Reason: "unknown supplier"}
	}
	return MarkupDecision{Supplier: supplier, Amount: amount, Applied: true}
}

// Retail applies conversion, unit scale, markup and tax in that order.
func (t Tariff) Retail(wholesale, rate decimal.Decimal, markup MarkupDecision) decimal.Decimal {
	return wholesale.Mul(rate).Mul(t.UnitScale).Add(markup.Amount).Mul(t.TaxMultiplier)
}
