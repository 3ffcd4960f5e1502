package pricing

import (
	"slices"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

// ResolveTarget attaches a rule to the cart lines it affects. The second
// return value carries the exclusion reason when the rule does not apply to
// this cart at all.
//
// Product rules target the subset of lines matching the rule's targeting
// (all products, explicit variants, or collection overlap); an empty subset
// drops the rule. Order rules target the whole cart. Shipping rules target
// the whole cart but are additionally gated by destination country.
//
// The rule's minimum threshold is checked over the targeted lines for product
// rules and over the whole cart otherwise.
func ResolveTarget(rule discount.Rule, c *cart.Cart) (Selection, discount.Reason) {
	var lines []int

	switch rule.Kind {
	case discount.KindProduct:
		for i, l := range c.Lines {
			if lineTargeted(rule.Targeting, l) {
				lines = append(lines, i)
			}
		}
		if len(lines) == 0 {
			return Selection{}, ReasonNoTargetedLines
		}
	case discount.KindShipping:
		if !rule.AllCountries && !slices.Contains(rule.CountryCodes, c.ShippingCountry) {
			return Selection{}, ReasonCountryNotCovered
		}
		lines = allLines(c)
	default:
		lines = allLines(c)
	}

	if !minimumMet(rule.Minimum, c, lines) {
		return Selection{}, ReasonMinimumNotMet
	}

	return Selection{Rule: rule, Lines: lines}, ""
}

func lineTargeted(t discount.Targeting, l cart.Line) bool {
	if t.AllProducts {
		return true
	}
	if slices.Contains(t.VariantIDs, l.VariantID) {
		return true
	}
	for _, id := range t.CollectionIDs {
		if l.InCollection(id) {
			return true
		}
	}
	return false
}

func allLines(c *cart.Cart) []int {
	lines := make([]int, len(c.Lines))
	for i := range c.Lines {
		lines[i] = i
	}
	return lines
}

func minimumMet(m discount.Minimum, c *cart.Cart, lines []int) bool {
	switch m.Kind {
	case discount.MinimumQuantity:
		qty := 0
		for _, i := range lines {
			qty += c.Lines[i].Quantity
		}
		return qty >= m.Quantity
	case discount.MinimumPurchase:
		var subtotal int64
		for _, i := range lines {
			subtotal += c.Lines[i].SubtotalCents()
		}
		return subtotal >= m.PurchaseCents
	default:
		return true
	}
}
