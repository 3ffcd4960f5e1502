package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

func combineCart() *cart.Cart {
	return &cart.Cart{
		Lines: []cart.Line{
			{VariantID: "v1", Quantity: 2, UnitPriceCents: 1000},
		},
		ShippingCents: 500,
	}
}

type combineFlags struct {
	product  bool
	order    bool
	shipping bool
}

func candidate(code string, kind discount.Kind, pct int64, combine combineFlags, c *cart.Cart) Selection {
	return Selection{
		Rule: discount.Rule{
			ID:                  "dsc-" + code,
			Code:                code,
			Kind:                kind,
			AmountKind:          discount.AmountPercentage,
			Value:               decimal.NewFromInt(pct),
			CombineWithProduct:  combine.product,
			CombineWithOrder:    combine.order,
			CombineWithShipping: combine.shipping,
		},
		Lines: allLines(c),
	}
}

func TestSelectHigherSavingsWins(t *testing.T) {
	// Two product rules, neither combinable with product: the bigger cut wins.
	c := combineCart()

	kept, excluded := Select(c, []Selection{
		candidate("SMALL10", discount.KindProduct, 10, combineFlags{}, c),
		candidate("BIG25", discount.KindProduct, 25, combineFlags{}, c),
	})

	assert.Len(t, kept, 1)
	assert.Equal(t, "BIG25", kept[0].Rule.Code)
	assert.Len(t, excluded, 1)
	assert.Equal(t, "SMALL10", excluded[0].Code)
	assert.Equal(t, ReasonNotCombinable, excluded[0].Reason)
}

func TestSelectTieBreaksByCode(t *testing.T) {
	c := combineCart()

	kept, _ := Select(c, []Selection{
		candidate("ZEBRA15", discount.KindProduct, 15, combineFlags{}, c),
		candidate("ALPHA15", discount.KindProduct, 15, combineFlags{}, c),
	})

	assert.Len(t, kept, 1)
	assert.Equal(t, "ALPHA15", kept[0].Rule.Code)
}

func TestSelectCrossKindStacking(t *testing.T) {
	c := combineCart()

	kept, excluded := Select(c, []Selection{
		candidate("PROD20", discount.KindProduct, 20,
			combineFlags{order: true, shipping: true}, c),
		candidate("ORDER10", discount.KindOrder, 10,
			combineFlags{product: true, shipping: true}, c),
		candidate("SHIP", discount.KindShipping, 100,
			combineFlags{product: true, order: true}, c),
	})

	assert.Len(t, kept, 3)
	assert.Empty(t, excluded)
}

func TestSelectCombineMustHoldBothWays(t *testing.T) {
	// The product rule allows order stacking but the order rule does not allow
	// product stacking; the weaker saver is dropped.
	c := combineCart()

	kept, excluded := Select(c, []Selection{
		candidate("PROD20", discount.KindProduct, 20, combineFlags{order: true}, c),
		candidate("ORDER10", discount.KindOrder, 10, combineFlags{}, c),
	})

	assert.Len(t, kept, 1)
	assert.Equal(t, "PROD20", kept[0].Rule.Code)
	assert.Len(t, excluded, 1)
	assert.Equal(t, "ORDER10", excluded[0].Code)
}

func TestSelectSameKindStackingWhenBothAllow(t *testing.T) {
	c := combineCart()
	both := combineFlags{product: true}

	kept, excluded := Select(c, []Selection{
		candidate("STACK-A", discount.KindProduct, 10, both, c),
		candidate("STACK-B", discount.KindProduct, 5, both, c),
	})

	assert.Len(t, kept, 2)
	assert.Empty(t, excluded)
}

func TestSelectKeptInApplicationOrder(t *testing.T) {
	// Shipping saves the most here yet must still come last in the result.
	c := combineCart()
	c.ShippingCents = 5000
	all := combineFlags{product: true, order: true, shipping: true}

	kept, _ := Select(c, []Selection{
		candidate("SHIP", discount.KindShipping, 100, all, c),
		candidate("ORDER5", discount.KindOrder, 5, all, c),
		candidate("PROD10", discount.KindProduct, 10, all, c),
	})

	kinds := make([]discount.Kind, len(kept))
	for i, s := range kept {
		kinds[i] = s.Rule.Kind
	}
	assert.Equal(t, []discount.Kind{
		discount.KindProduct,
		discount.KindOrder,
		discount.KindShipping,
	}, kinds)
}

func TestSelectEmpty(t *testing.T) {
	kept, excluded := Select(combineCart(), nil)
	assert.Nil(t, kept)
	assert.Nil(t, excluded)
}
