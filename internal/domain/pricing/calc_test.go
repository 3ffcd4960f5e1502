package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

func percentProduct(id string, pct int64, lines ...int) Selection {
	return Selection{
		Rule: discount.Rule{
			ID:         id,
			Code:       id,
			Kind:       discount.KindProduct,
			AmountKind: discount.AmountPercentage,
			Value:      decimal.NewFromInt(pct),
		},
		Lines: lines,
	}
}

func fixedProduct(id string, cents int64, lines ...int) Selection {
	return Selection{
		Rule: discount.Rule{
			ID:         id,
			Code:       id,
			Kind:       discount.KindProduct,
			AmountKind: discount.AmountFixed,
			Value:      decimal.NewFromInt(cents),
		},
		Lines: lines,
	}
}

func orderSelection(id string, kind discount.AmountKind, value int64, c *cart.Cart) Selection {
	return Selection{
		Rule: discount.Rule{
			ID:         id,
			Code:       id,
			Kind:       discount.KindOrder,
			AmountKind: kind,
			Value:      decimal.NewFromInt(value),
		},
		Lines: allLines(c),
	}
}

func shippingSelection(id string, c *cart.Cart) Selection {
	return Selection{
		Rule: discount.Rule{
			ID:   id,
			Code: id,
			Kind: discount.KindShipping,
		},
		Lines: allLines(c),
	}
}

func TestPricePercentageProduct(t *testing.T) {
	// Two units at $10.00 with 20% off the line.
	c := &cart.Cart{
		Lines: []cart.Line{{VariantID: "v1", Quantity: 2, UnitPriceCents: 1000}},
	}

	res := Price(c, []Selection{percentProduct("P20", 20, 0)})

	assert.Equal(t, int64(2000), res.SubtotalCents)
	assert.Equal(t, int64(400), res.ProductDiscountCents)
	assert.Equal(t, []int64{400}, res.PerLineDiscountCents)
	assert.Equal(t, int64(1600), res.TotalCents)
	assert.Zero(t, res.Clamped)
}

func TestPricePercentageRoundsHalfUp(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		pct   int64
		want  int64
	}{
		{"exact", 1000, 20, 200},
		{"rounds down below half", 333, 10, 33},   // 33.3
		{"half rounds up", 1050, 10, 105},         // exact
		{"odd half rounds up", 1250, 15, 188},     // 187.5
		{"just below half stays", 1249, 15, 187},  // 187.35
		{"tiny values survive", 1, 50, 1},         // 0.5 rounds to 1
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentOf(tt.cents, decimal.NewFromInt(tt.pct)))
		})
	}
}

func TestPriceFixedProductIsPerUnit(t *testing.T) {
	// $3.00 off per unit, three units.
	c := &cart.Cart{
		Lines: []cart.Line{{VariantID: "v1", Quantity: 3, UnitPriceCents: 1000}},
	}

	res := Price(c, []Selection{fixedProduct("F300", 300, 0)})

	assert.Equal(t, int64(900), res.ProductDiscountCents)
	assert.Equal(t, int64(2100), res.TotalCents)
}

func TestPriceFixedProductClampsToLine(t *testing.T) {
	// $15.00 off per unit exceeds the $10.00 unit price.
	c := &cart.Cart{
		Lines: []cart.Line{{VariantID: "v1", Quantity: 2, UnitPriceCents: 1000}},
	}

	res := Price(c, []Selection{fixedProduct("F1500", 1500, 0)})

	assert.Equal(t, int64(2000), res.ProductDiscountCents)
	assert.Equal(t, int64(0), res.TotalCents)
	assert.Equal(t, 1, res.Clamped)
}

func TestPriceStackedProductRulesShareLineBudget(t *testing.T) {
	// Two stacked 60% rules on the same line cannot exceed the line subtotal.
	c := &cart.Cart{
		Lines: []cart.Line{{VariantID: "v1", Quantity: 1, UnitPriceCents: 1000}},
	}

	res := Price(c, []Selection{
		percentProduct("A60", 60, 0),
		percentProduct("B60", 60, 0),
	})

	assert.Equal(t, int64(1000), res.ProductDiscountCents)
	assert.Equal(t, []int64{1000}, res.PerLineDiscountCents)
	assert.Equal(t, 1, res.Clamped)
}

func TestPriceOrderAfterProduct(t *testing.T) {
	// Order percentage applies to the subtotal remaining after product cuts.
	c := &cart.Cart{
		Lines: []cart.Line{{VariantID: "v1", Quantity: 2, UnitPriceCents: 1000}},
	}

	res := Price(c, []Selection{
		percentProduct("P50", 50, 0),
		orderSelection("O10", discount.AmountPercentage, 10, c),
	})

	assert.Equal(t, int64(1000), res.ProductDiscountCents)
	assert.Equal(t, int64(100), res.OrderDiscountCents) // 10% of 1000
	assert.Equal(t, int64(900), res.TotalCents)
}

func TestPriceOrderFixedClamped(t *testing.T) {
	c := &cart.Cart{
		Lines: []cart.Line{{VariantID: "v1", Quantity: 1, UnitPriceCents: 500}},
	}

	res := Price(c, []Selection{orderSelection("O999", discount.AmountFixed, 99900, c)})

	assert.Equal(t, int64(500), res.OrderDiscountCents)
	assert.Equal(t, int64(0), res.TotalCents)
	assert.Equal(t, 1, res.Clamped)
}

func TestPriceShippingRemovesFullCost(t *testing.T) {
	c := &cart.Cart{
		Lines:         []cart.Line{{VariantID: "v1", Quantity: 1, UnitPriceCents: 1000}},
		ShippingCents: 799,
	}

	res := Price(c, []Selection{shippingSelection("FREESHIP", c)})

	assert.Equal(t, int64(799), res.ShippingDiscountCents)
	assert.Equal(t, int64(0), res.FinalShippingCents)
	assert.Equal(t, int64(1000), res.TotalCents)
}

func TestPriceNoSelections(t *testing.T) {
	c := &cart.Cart{
		Lines:         []cart.Line{{VariantID: "v1", Quantity: 2, UnitPriceCents: 1250}},
		ShippingCents: 500,
	}

	res := Price(c, nil)

	assert.Equal(t, int64(2500), res.SubtotalCents)
	assert.Equal(t, int64(500), res.FinalShippingCents)
	assert.Equal(t, int64(3000), res.TotalCents)
	assert.Empty(t, res.Applied)
}

func TestPriceAppliedOrder(t *testing.T) {
	c := &cart.Cart{
		Lines:         []cart.Line{{VariantID: "v1", Quantity: 1, UnitPriceCents: 1000}},
		ShippingCents: 500,
	}

	res := Price(c, []Selection{
		shippingSelection("SHIP", c),
		orderSelection("ORDER", discount.AmountFixed, 100, c),
		percentProduct("PROD", 10, 0),
	})

	codes := make([]string, len(res.Applied))
	for i, a := range res.Applied {
		codes[i] = a.Code
	}
	assert.Equal(t, []string{"PROD", "ORDER", "SHIP"}, codes)
}

func TestPriceIsPure(t *testing.T) {
	c := &cart.Cart{
		Lines:         []cart.Line{{VariantID: "v1", Quantity: 2, UnitPriceCents: 1000}},
		ShippingCents: 300,
	}
	sel := []Selection{percentProduct("P20", 20, 0), shippingSelection("SHIP", c)}

	first := Price(c, sel)
	second := Price(c, sel)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(2000), c.SubtotalCents(), "cart must not be mutated")
}

func TestSavingsCents(t *testing.T) {
	c := &cart.Cart{
		Lines:         []cart.Line{{VariantID: "v1", Quantity: 2, UnitPriceCents: 1000}},
		ShippingCents: 600,
	}

	assert.Equal(t, int64(400), SavingsCents(c, percentProduct("P20", 20, 0)))
	assert.Equal(t, int64(600), SavingsCents(c, shippingSelection("SHIP", c)))
	assert.Equal(t, int64(250), SavingsCents(c, orderSelection("O", discount.AmountFixed, 250, c)))
}
