// Package pricing implements cart pricing: resolving which discount rules
// target a cart, selecting a mutually combinable subset, and computing the
// final integer-cent breakdown.
package pricing

import (
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

// Selection pairs a rule with the cart line positions it targets. For order
// and shipping rules Lines covers the whole cart.
type Selection struct {
	Rule  discount.Rule
	Lines []int
}

// Applied identifies one rule that contributed to a Result, in application
// order (product, then order, then shipping). Kept on the persisted order
// snapshot for receipts and support.
type Applied struct {
	ID   string
	Code string
	Kind discount.Kind
}

// Excluded records a rule that was considered but not applied, with the
// reason. Surfaced in previews for merchant diagnostics.
type Excluded struct {
	ID     string
	Code   string
	Reason discount.Reason
}

// Exclusion reasons produced after eligibility, by targeting and selection.
const (
	// ReasonNoTargetedLines: a product rule matched no cart line.
	ReasonNoTargetedLines discount.Reason = "no_targeted_lines"
	// ReasonMinimumNotMet: the rule's purchase/quantity threshold failed.
	ReasonMinimumNotMet discount.Reason = "minimum_not_met"
	// ReasonCountryNotCovered: a shipping rule excludes the destination.
	ReasonCountryNotCovered discount.Reason = "country_not_covered"
	// ReasonNotCombinable: the rule lost the combinability selection.
	ReasonNotCombinable discount.Reason = "not_combinable"
)

// Result is the complete price breakdown for one cart. All amounts are whole
// cents. Totals never go negative: the calculator clamps instead, and counts
// clamps in Clamped so callers can alert on authoring bugs.
type Result struct {
	SubtotalCents         int64
	PerLineDiscountCents  []int64
	ProductDiscountCents  int64
	OrderDiscountCents    int64
	ShippingDiscountCents int64
	FinalShippingCents    int64
	TotalCents            int64
	Applied               []Applied
	Clamped               int
}
