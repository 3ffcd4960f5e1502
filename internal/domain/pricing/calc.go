package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

var hundred = decimal.NewFromInt(100)

// Price computes the full breakdown for a cart and an already-selected,
// mutually combinable set of rules. It is pure: no I/O, no ledger access, and
// identical inputs always produce identical results.
//
// Application order is fixed: product rules discount their targeted lines,
// the order rule discounts what remains of the subtotal, and the shipping
// rule removes the shipping cost. All arithmetic is integer cents; percentage
// amounts are rounded half-up via decimal.
func Price(c *cart.Cart, selected []Selection) Result {
	res := Result{
		SubtotalCents:        c.SubtotalCents(),
		PerLineDiscountCents: make([]int64, len(c.Lines)),
	}

	for _, sel := range selected {
		if sel.Rule.Kind != discount.KindProduct {
			continue
		}
		res.applyProduct(c, sel)
	}
	for _, sel := range selected {
		if sel.Rule.Kind != discount.KindOrder {
			continue
		}
		res.applyOrder(sel)
	}
	for _, sel := range selected {
		if sel.Rule.Kind != discount.KindShipping {
			continue
		}
		res.applyShipping(c, sel)
	}

	res.FinalShippingCents = c.ShippingCents - res.ShippingDiscountCents
	if res.FinalShippingCents < 0 {
		res.FinalShippingCents = 0
		res.Clamped++
	}

	res.TotalCents = res.SubtotalCents - res.ProductDiscountCents -
		res.OrderDiscountCents + res.FinalShippingCents
	if res.TotalCents < 0 {
		res.TotalCents = 0
		res.Clamped++
	}

	return res
}

// applyProduct prorates the rule across its targeted lines, clamping each
// line's discount to the line subtotal.
func (r *Result) applyProduct(c *cart.Cart, sel Selection) {
	for _, i := range sel.Lines {
		line := c.Lines[i]
		lineSubtotal := line.SubtotalCents()

		var cut int64
		switch sel.Rule.AmountKind {
		case discount.AmountPercentage:
			cut = percentOf(lineSubtotal, sel.Rule.Value)
		case discount.AmountFixed:
			cut = sel.Rule.Value.IntPart() * int64(line.Quantity)
		}

		remaining := lineSubtotal - r.PerLineDiscountCents[i]
		if cut > remaining {
			cut = remaining
			r.Clamped++
		}
		if cut < 0 {
			cut = 0
			r.Clamped++
		}

		r.PerLineDiscountCents[i] += cut
		r.ProductDiscountCents += cut
	}
	r.Applied = append(r.Applied, applied(sel.Rule))
}

// applyOrder discounts the subtotal remaining after product discounts,
// clamped so it never exceeds that remainder.
func (r *Result) applyOrder(sel Selection) {
	remaining := r.SubtotalCents - r.ProductDiscountCents - r.OrderDiscountCents

	var cut int64
	switch sel.Rule.AmountKind {
	case discount.AmountPercentage:
		cut = percentOf(remaining, sel.Rule.Value)
	case discount.AmountFixed:
		cut = sel.Rule.Value.IntPart()
	}

	if cut > remaining {
		cut = remaining
		r.Clamped++
	}
	if cut < 0 {
		cut = 0
		r.Clamped++
	}

	r.OrderDiscountCents += cut
	r.Applied = append(r.Applied, applied(sel.Rule))
}

// applyShipping removes the entire shipping cost. A shipping rule's effective
// amount is always 100%, whatever its stored value says.
func (r *Result) applyShipping(c *cart.Cart, sel Selection) {
	r.ShippingDiscountCents = c.ShippingCents
	r.Applied = append(r.Applied, applied(sel.Rule))
}

// percentOf returns pct% of cents, rounded half-up to whole cents.
func percentOf(cents int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(cents).Mul(pct).Div(hundred).Round(0).IntPart()
}

func applied(rule discount.Rule) Applied {
	return Applied{ID: rule.ID, Code: rule.Code, Kind: rule.Kind}
}

// SavingsCents estimates the total monetary effect of applying sel alone to
// the cart. The combinability resolver ranks candidates with it.
func SavingsCents(c *cart.Cart, sel Selection) int64 {
	res := Price(c, []Selection{sel})
	return res.ProductDiscountCents + res.OrderDiscountCents + res.ShippingDiscountCents
}
