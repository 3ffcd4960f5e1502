package discount

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind enumerates what part of an order a discount rule affects.
type Kind string

const (
	// KindProduct discounts targeted cart lines.
	KindProduct Kind = "product"
	// KindOrder discounts the order subtotal after product discounts.
	KindOrder Kind = "order"
	// KindShipping removes the shipping cost entirely.
	KindShipping Kind = "shipping"
)

// AmountKind enumerates how a rule's value is interpreted.
type AmountKind string

const (
	// AmountPercentage interprets Value as a percentage in [0, 100].
	AmountPercentage AmountKind = "percentage"
	// AmountFixed interprets Value as whole cents per unit.
	AmountFixed AmountKind = "fixed"
)

// MinimumKind enumerates the cart threshold a rule may require.
type MinimumKind string

const (
	MinimumNone     MinimumKind = "none"
	MinimumPurchase MinimumKind = "purchase"
	MinimumQuantity MinimumKind = "quantity"
)

// Minimum is a tagged threshold requirement. Only the field matching Kind is
// meaningful; use the constructors to keep the pairing consistent.
type Minimum struct {
	Kind          MinimumKind
	PurchaseCents int64
	Quantity      int
}

// NoMinimum returns a Minimum that always passes.
func NoMinimum() Minimum { return Minimum{Kind: MinimumNone} }

// PurchaseMinimum returns a Minimum requiring the targeted subtotal to reach
// the given amount in cents.
func PurchaseMinimum(cents int64) Minimum {
	return Minimum{Kind: MinimumPurchase, PurchaseCents: cents}
}

// QuantityMinimum returns a Minimum requiring the targeted quantity to reach n.
func QuantityMinimum(n int) Minimum {
	return Minimum{Kind: MinimumQuantity, Quantity: n}
}

// UsageCaps holds the optional redemption limits of a rule.
type UsageCaps struct {
	// LimitUses activates the global MaxUses cap.
	LimitUses bool
	MaxUses   int
	// OncePerCustomer restricts each customer to a single redemption and
	// requires a known customer id plus a ledger lookup.
	OncePerCustomer bool
}

// Targeting describes which cart lines a product rule touches. AllProducts
// takes precedence; otherwise a line matches on variant id or on any shared
// collection id.
type Targeting struct {
	AllProducts   bool
	VariantIDs    []string
	CollectionIDs []string
}

// Rule is a merchant-authored discount, read-only to the pricing engine.
// Uses is owned by the redemption ledger and only changes at order commit.
type Rule struct {
	ID   string
	Code string
	Kind Kind

	AmountKind AmountKind
	// Value is a percentage in [0, 100] for AmountPercentage, whole cents
	// per unit for AmountFixed. Shipping rules ignore it: their effective
	// amount is always 100%.
	Value decimal.Decimal

	Active    bool
	Automatic bool
	StartsAt  time.Time
	EndsAt    *time.Time

	Minimum Minimum
	Caps    UsageCaps

	CombineWithProduct  bool
	CombineWithOrder    bool
	CombineWithShipping bool

	Targeting       Targeting
	ApplyToOrder    bool
	ApplyToShipping bool

	// Shipping geography. AllCountries short-circuits CountryCodes.
	AllCountries bool
	CountryCodes []string

	// CustomerIDs restricts the rule to listed customers; empty = open.
	CustomerIDs []string

	Uses        int
	Description string
}

// CombinesWith reports whether this rule allows co-application with a
// selected rule of the given kind.
func (r *Rule) CombinesWith(k Kind) bool {
	switch k {
	case KindProduct:
		return r.CombineWithProduct
	case KindOrder:
		return r.CombineWithOrder
	case KindShipping:
		return r.CombineWithShipping
	default:
		return false
	}
}

var (
	// ErrCapReached is returned by Ledger.Reserve when the global usage cap
	// would be exceeded. Callers must re-price without the rule rather than
	// completing the order with a stale discount.
	ErrCapReached = errors.New("discount usage cap reached")
	// ErrAlreadyRedeemed is returned by Ledger.Reserve when a once-per-customer
	// rule has already been redeemed by the customer.
	ErrAlreadyRedeemed = errors.New("discount already redeemed by customer")
)

// Ledger is the durable redemption counter store. Uses and Redeemed are
// read-only and safe during pricing previews; Reserve is the atomic
// check-and-increment called exactly once per applied rule at order commit.
// Release undoes a Reserve when the commit aborts, so an order that never
// persists consumes no uses.
type Ledger interface {
	Uses(ctx context.Context, discountID string) (int, error)
	Redeemed(ctx context.Context, discountID, customerID string) (bool, error)
	Reserve(ctx context.Context, discountID, customerID string) error
	Release(ctx context.Context, discountID, customerID string) error
}

// Repository provides read access to the discount catalog.
type Repository interface {
	// ListCandidates returns every active rule plus inactive rules matching
	// the given coupon code, so the evaluator can report why a supplied code
	// did not apply.
	ListCandidates(ctx context.Context, couponCode string) ([]Rule, error)
	FindByCode(ctx context.Context, code string) (*Rule, error)
}
