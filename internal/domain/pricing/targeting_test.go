package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

func testCart() *cart.Cart {
	return &cart.Cart{
		Lines: []cart.Line{
			{VariantID: "v-mug", ProductID: "p-mug", CollectionIDs: []string{"kitchen"}, Quantity: 2, UnitPriceCents: 1000},
			{VariantID: "v-tee", ProductID: "p-tee", CollectionIDs: []string{"apparel"}, Quantity: 1, UnitPriceCents: 2500},
			{VariantID: "v-cap", ProductID: "p-cap", CollectionIDs: []string{"apparel"}, Quantity: 3, UnitPriceCents: 1500},
		},
		ShippingCents:   500,
		ShippingCountry: "US",
	}
}

func TestResolveTargetProduct(t *testing.T) {
	tests := []struct {
		name       string
		targeting  discount.Targeting
		minimum    discount.Minimum
		wantLines  []int
		wantReason discount.Reason
	}{
		{
			name:      "all products targets every line",
			targeting: discount.Targeting{AllProducts: true},
			minimum:   discount.NoMinimum(),
			wantLines: []int{0, 1, 2},
		},
		{
			name:      "explicit variants",
			targeting: discount.Targeting{VariantIDs: []string{"v-tee"}},
			minimum:   discount.NoMinimum(),
			wantLines: []int{1},
		},
		{
			name:      "collection overlap",
			targeting: discount.Targeting{CollectionIDs: []string{"apparel"}},
			minimum:   discount.NoMinimum(),
			wantLines: []int{1, 2},
		},
		{
			name:      "variant and collection union",
			targeting: discount.Targeting{VariantIDs: []string{"v-mug"}, CollectionIDs: []string{"apparel"}},
			minimum:   discount.NoMinimum(),
			wantLines: []int{0, 1, 2},
		},
		{
			name:       "no matching line drops the rule",
			targeting:  discount.Targeting{VariantIDs: []string{"v-ghost"}},
			minimum:    discount.NoMinimum(),
			wantReason: ReasonNoTargetedLines,
		},
		{
			name:      "quantity minimum over targeted lines only",
			targeting: discount.Targeting{CollectionIDs: []string{"apparel"}},
			minimum:   discount.QuantityMinimum(4), // tee 1 + cap 3
			wantLines: []int{1, 2},
		},
		{
			name:       "quantity minimum not met by targeted subset",
			targeting:  discount.Targeting{VariantIDs: []string{"v-tee"}},
			minimum:    discount.QuantityMinimum(2),
			wantReason: ReasonMinimumNotMet,
		},
		{
			name:      "purchase minimum over targeted lines",
			targeting: discount.Targeting{CollectionIDs: []string{"apparel"}},
			minimum:   discount.PurchaseMinimum(7000), // 2500 + 4500
			wantLines: []int{1, 2},
		},
		{
			name:       "purchase minimum not met",
			targeting:  discount.Targeting{VariantIDs: []string{"v-mug"}},
			minimum:    discount.PurchaseMinimum(2001), // mug line is 2000
			wantReason: ReasonMinimumNotMet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := discount.Rule{
				ID:        "dsc-1",
				Kind:      discount.KindProduct,
				Targeting: tt.targeting,
				Minimum:   tt.minimum,
			}

			sel, reason := ResolveTarget(rule, testCart())
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reason)
				return
			}
			assert.Empty(t, reason)
			assert.Equal(t, tt.wantLines, sel.Lines)
		})
	}
}

func TestResolveTargetOrder(t *testing.T) {
	rule := discount.Rule{
		ID:      "dsc-order",
		Kind:    discount.KindOrder,
		Minimum: discount.PurchaseMinimum(9000), // cart subtotal is 9000
	}

	sel, reason := ResolveTarget(rule, testCart())
	assert.Empty(t, reason)
	assert.Equal(t, []int{0, 1, 2}, sel.Lines)

	rule.Minimum = discount.PurchaseMinimum(9001)
	_, reason = ResolveTarget(rule, testCart())
	assert.Equal(t, ReasonMinimumNotMet, reason)
}

func TestResolveTargetShipping(t *testing.T) {
	tests := []struct {
		name         string
		allCountries bool
		countryCodes []string
		country      string
		wantReason   discount.Reason
	}{
		{
			name:         "all countries",
			allCountries: true,
			country:      "NZ",
		},
		{
			name:         "destination in list",
			countryCodes: []string{"US", "CA"},
			country:      "US",
		},
		{
			name:         "destination outside list",
			countryCodes: []string{"US", "CA"},
			country:      "DE",
			wantReason:   ReasonCountryNotCovered,
		},
		{
			name:       "no countries configured covers nothing",
			country:    "US",
			wantReason: ReasonCountryNotCovered,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := discount.Rule{
				ID:           "dsc-ship",
				Kind:         discount.KindShipping,
				AllCountries: tt.allCountries,
				CountryCodes: tt.countryCodes,
				Minimum:      discount.NoMinimum(),
			}
			c := testCart()
			c.ShippingCountry = tt.country

			sel, reason := ResolveTarget(rule, c)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, reason)
				return
			}
			assert.Empty(t, reason)
			assert.Len(t, sel.Lines, 3)
		})
	}
}

func TestResolveTargetKeepsRuleValue(t *testing.T) {
	rule := discount.Rule{
		ID:        "dsc-1",
		Kind:      discount.KindProduct,
		Value:     decimal.NewFromInt(20),
		Targeting: discount.Targeting{AllProducts: true},
		Minimum:   discount.NoMinimum(),
	}

	sel, reason := ResolveTarget(rule, testCart())
	assert.Empty(t, reason)
	assert.True(t, sel.Rule.Value.Equal(decimal.NewFromInt(20)))
}
