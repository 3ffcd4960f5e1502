package pricing

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

// Evaluation is the full outcome of pricing one cart against a rule snapshot.
// Excluded lists every considered-but-dropped rule with its reason, for
// merchant-facing diagnostics.
type Evaluation struct {
	Result   Result
	Selected []Selection
	Excluded []Excluded
}

// Engine evaluates a cart against an immutable discount snapshot. It reads
// the redemption ledger for usage checks and never writes to it, so any
// number of previews may run concurrently.
type Engine struct {
	ledger discount.Ledger
	now    func() time.Time
}

// NewEngine creates an Engine backed by the given ledger.
func NewEngine(ledger discount.Ledger) *Engine {
	return &Engine{ledger: ledger, now: time.Now}
}

// Evaluate runs the full pipeline: per-rule eligibility, cart targeting,
// combinability selection, and the final price calculation.
func (e *Engine) Evaluate(ctx context.Context, c *cart.Cart, rules []discount.Rule) (*Evaluation, error) {
	now := e.now()

	var (
		candidates []Selection
		excluded   []Excluded
	)
	for _, rule := range rules {
		elig, err := discount.Evaluate(ctx, &rule, now, c.CustomerID, c.CouponCode, e.ledger)
		if err != nil {
			return nil, errors.Wrapf(err, "evaluate rule %s", rule.ID)
		}
		if !elig.Eligible {
			excluded = append(excluded, Excluded{ID: rule.ID, Code: rule.Code, Reason: elig.Reason})
			continue
		}

		sel, reason := ResolveTarget(rule, c)
		if reason != "" {
			excluded = append(excluded, Excluded{ID: rule.ID, Code: rule.Code, Reason: reason})
			continue
		}
		candidates = append(candidates, sel)
	}

	selected, dropped := Select(c, candidates)
	excluded = append(excluded, dropped...)

	return &Evaluation{
		Result:   Price(c, selected),
		Selected: selected,
		Excluded: excluded,
	}, nil
}
