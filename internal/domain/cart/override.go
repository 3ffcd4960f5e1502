package cart

import "github.com/shopspring/decimal"

// OverrideKind enumerates how a staff-entered line override is interpreted.
type OverrideKind string

const (
	// OverrideAmount subtracts whole cents from the unit price.
	OverrideAmount OverrideKind = "amount"
	// OverridePercentage reduces the unit price by a percentage.
	OverridePercentage OverrideKind = "percentage"
)

// Override is a manual per-line discount entered by store staff on a draft
// order. It is independent of the rule engine: overrides are applied first and
// the resulting unit price is what the engine sees. Reason is free text kept
// for the order audit trail.
type Override struct {
	Kind    OverrideKind
	Cents   int64
	Percent decimal.Decimal
	Reason  string
}

var overrideHundred = decimal.NewFromInt(100)

// Apply returns the unit price after the override, clamped to zero.
// Percentage math is done in decimal and rounded half-up to whole cents.
func (o Override) Apply(unitPriceCents int64) int64 {
	var reduced int64
	switch o.Kind {
	case OverrideAmount:
		reduced = unitPriceCents - o.Cents
	case OverridePercentage:
		cut := decimal.NewFromInt(unitPriceCents).
			Mul(o.Percent).
			Div(overrideHundred).
			Round(0)
		reduced = unitPriceCents - cut.IntPart()
	default:
		return unitPriceCents
	}
	if reduced < 0 {
		return 0
	}
	return reduced
}

// ApplyOverrides returns a copy of lines with each present override applied to
// the matching line's unit price. The overrides map is keyed by line position.
func ApplyOverrides(lines []Line, overrides map[int]Override) []Line {
	if len(overrides) == 0 {
		return lines
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	for i, o := range overrides {
		if i < 0 || i >= len(out) {
			continue
		}
		out[i].UnitPriceCents = o.Apply(out[i].UnitPriceCents)
	}
	return out
}
