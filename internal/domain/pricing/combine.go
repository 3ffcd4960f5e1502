package pricing

import (
	"sort"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

// Select chooses the final, mutually compatible subset of candidate
// selections. Candidates are ranked by estimated savings (a dry run of the
// calculator) descending, ties broken by code ascending for determinism, and
// kept greedily: a candidate survives only when every already-kept selection
// allows its kind AND it allows the kind of every already-kept selection.
//
// The combine-flag matrix also governs same-kind stacking: two product rules
// co-apply only when both carry combine-with-product. In the common case the
// flags yield at most one rule per kind. The returned exclusions cover every
// candidate that lost the selection.
func Select(c *cart.Cart, candidates []Selection) ([]Selection, []Excluded) {
	if len(candidates) == 0 {
		return nil, nil
	}

	type ranked struct {
		sel     Selection
		savings int64
	}
	order := make([]ranked, len(candidates))
	for i, sel := range candidates {
		order[i] = ranked{sel: sel, savings: SavingsCents(c, sel)}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].savings != order[j].savings {
			return order[i].savings > order[j].savings
		}
		return order[i].sel.Rule.Code < order[j].sel.Rule.Code
	})

	var (
		kept     []Selection
		excluded []Excluded
	)
	for _, cand := range order {
		rule := cand.sel.Rule
		if !compatible(rule, kept) {
			excluded = append(excluded, Excluded{
				ID:     rule.ID,
				Code:   rule.Code,
				Reason: ReasonNotCombinable,
			})
			continue
		}
		kept = append(kept, cand.sel)
	}

	// Fixed application order regardless of savings rank.
	sort.SliceStable(kept, func(i, j int) bool {
		return kindRank(kept[i].Rule.Kind) < kindRank(kept[j].Rule.Kind)
	})

	return kept, excluded
}

// compatible reports whether rule may stack with every already-kept selection.
// Both directions of the combine matrix must agree.
func compatible(rule discount.Rule, kept []Selection) bool {
	for _, k := range kept {
		if !k.Rule.CombinesWith(rule.Kind) || !rule.CombinesWith(k.Rule.Kind) {
			return false
		}
	}
	return true
}

func kindRank(k discount.Kind) int {
	switch k {
	case discount.KindProduct:
		return 0
	case discount.KindOrder:
		return 1
	default:
		return 2
	}
}
