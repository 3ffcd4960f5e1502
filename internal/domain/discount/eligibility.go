package discount

import (
	"context"
	"slices"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Reason identifies why a rule was excluded from the candidate set.
// Exclusions are diagnostics, never errors.
type Reason string

const (
	ReasonInactive           Reason = "inactive"
	ReasonOutOfWindow        Reason = "out_of_window"
	ReasonCodeMismatch       Reason = "code_mismatch"
	ReasonUsesExceeded       Reason = "uses_exceeded"
	ReasonAlreadyRedeemed    Reason = "already_redeemed"
	ReasonCustomerNotAllowed Reason = "customer_not_allowed"
	// ReasonMalformed marks rules that violate authoring invariants. Such
	// rules should have been rejected at authoring time; the evaluator skips
	// them defensively instead of failing the pricing call.
	ReasonMalformed Reason = "malformed"
)

// Eligibility is the outcome of evaluating a single rule.
type Eligibility struct {
	Eligible bool
	Reason   Reason
}

func eligible() Eligibility           { return Eligibility{Eligible: true} }
func ineligible(r Reason) Eligibility { return Eligibility{Reason: r} }

var percentCeiling = decimal.NewFromInt(100)

// wellFormed checks the authoring invariants the engine relies on.
func wellFormed(r *Rule) bool {
	if r.EndsAt != nil && r.StartsAt.After(*r.EndsAt) {
		return false
	}
	if r.Value.IsNegative() {
		return false
	}
	if r.AmountKind == AmountPercentage && r.Value.GreaterThan(percentCeiling) {
		return false
	}
	if r.Minimum.Kind == MinimumPurchase && r.Minimum.PurchaseCents < 0 {
		return false
	}
	if r.Minimum.Kind == MinimumQuantity && r.Minimum.Quantity < 0 {
		return false
	}
	return true
}

// Evaluate decides whether a rule is currently usable at all, independent of
// any particular cart. Checks run in a fixed order and short-circuit on the
// first failure:
//
//  1. rule is active (and well formed),
//  2. now falls inside [StartsAt, EndsAt],
//  3. non-automatic rules require a case-sensitive coupon code match,
//  4. global usage cap not exhausted (ledger uses counter),
//  5. once-per-customer rules require a known, not-yet-redeemed customer,
//  6. customer allow-list, when present, must contain the customer.
func Evaluate(
	ctx context.Context,
	rule *Rule,
	now time.Time,
	customerID, couponCode string,
	ledger Ledger,
) (Eligibility, error) {
	if !wellFormed(rule) {
		return ineligible(ReasonMalformed), nil
	}
	if !rule.Active {
		return ineligible(ReasonInactive), nil
	}

	if now.Before(rule.StartsAt) {
		return ineligible(ReasonOutOfWindow), nil
	}
	if rule.EndsAt != nil && now.After(*rule.EndsAt) {
		return ineligible(ReasonOutOfWindow), nil
	}

	// Automatic rules ignore any supplied code.
	if !rule.Automatic && couponCode != rule.Code {
		return ineligible(ReasonCodeMismatch), nil
	}

	if rule.Caps.LimitUses {
		uses, err := ledger.Uses(ctx, rule.ID)
		if err != nil {
			return Eligibility{}, errors.Wrapf(err, "ledger uses for %s", rule.ID)
		}
		if uses >= rule.Caps.MaxUses {
			return ineligible(ReasonUsesExceeded), nil
		}
	}

	if rule.Caps.OncePerCustomer {
		if customerID == "" {
			return ineligible(ReasonAlreadyRedeemed), nil
		}
		redeemed, err := ledger.Redeemed(ctx, rule.ID, customerID)
		if err != nil {
			return Eligibility{}, errors.Wrapf(err, "ledger redemption for %s", rule.ID)
		}
		if redeemed {
			return ineligible(ReasonAlreadyRedeemed), nil
		}
	}

	if len(rule.CustomerIDs) > 0 && !slices.Contains(rule.CustomerIDs, customerID) {
		return ineligible(ReasonCustomerNotAllowed), nil
	}

	return eligible(), nil
}
