// Package cart holds the immutable cart snapshot the pricing engine consumes.
// Unit prices are captured in whole cents at evaluation time; the engine never
// reads the catalog itself.
package cart

// Line is a single cart position. ProductID and CollectionIDs are denormalized
// onto the line so product-rule targeting needs no catalog lookups.
type Line struct {
	VariantID      string
	ProductID      string
	CollectionIDs  []string
	Quantity       int
	UnitPriceCents int64
	// CompareAtPriceCents is informational only (strike-through pricing);
	// it never participates in discount math.
	CompareAtPriceCents *int64
}

// SubtotalCents returns quantity * unit price for this line.
func (l Line) SubtotalCents() int64 {
	return int64(l.Quantity) * l.UnitPriceCents
}

// InCollection reports whether the line belongs to the given collection.
func (l Line) InCollection(id string) bool {
	for _, c := range l.CollectionIDs {
		if c == id {
			return true
		}
	}
	return false
}

// Cart is the engine's input snapshot. Lines keep their caller-supplied order;
// per-line results are reported by position.
type Cart struct {
	Lines           []Line
	CustomerID      string
	CouponCode      string
	ShippingCents   int64
	ShippingCountry string
}

// SubtotalCents returns the sum of line subtotals before any discount.
func (c *Cart) SubtotalCents() int64 {
	var sum int64
	for _, l := range c.Lines {
		sum += l.SubtotalCents()
	}
	return sum
}
