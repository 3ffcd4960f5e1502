package checkout

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
	"github.com/xenking/storefront-pricing/internal/domain/discount"
	"github.com/xenking/storefront-pricing/internal/domain/pricing"
)

// Sentinel errors for cart validation.
var (
	ErrEmptyCart       = errors.New("cart has no lines")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// DiscountUnavailableError indicates a discount hit its usage cap between
// preview and commit. The condition is recoverable: re-price without the code
// and tell the customer, never complete the order with a stale total.
type DiscountUnavailableError struct {
	Code string
}

func (e *DiscountUnavailableError) Error() string {
	return fmt.Sprintf("discount %s is no longer available", e.Code)
}

// Service prices carts and commits orders. Preview is read-only; PlaceOrder
// additionally reserves redemptions and persists the snapshot.
type Service struct {
	discounts discount.Repository
	ledger    discount.Ledger
	orders    Repository
	engine    *pricing.Engine
}

// NewService creates a checkout Service with the required dependencies.
func NewService(
	discounts discount.Repository,
	ledger discount.Ledger,
	orders Repository,
	engine *pricing.Engine,
) *Service {
	return &Service{
		discounts: discounts,
		ledger:    ledger,
		orders:    orders,
		engine:    engine,
	}
}

// Preview prices the cart against the current rule catalog without touching
// the redemption ledger.
func (s *Service) Preview(ctx context.Context, c *cart.Cart) (*pricing.Evaluation, error) {
	if err := validate(c); err != nil {
		return nil, err
	}

	rules, err := s.discounts.ListCandidates(ctx, c.CouponCode)
	if err != nil {
		return nil, errors.Wrap(err, "list discount candidates")
	}

	ev, err := s.engine.Evaluate(ctx, c, rules)
	if err != nil {
		return nil, errors.Wrap(err, "evaluate cart")
	}
	return ev, nil
}

// PlaceOrder prices the cart, atomically reserves a redemption for every
// applied rule, and persists the order snapshot. A failed reservation aborts
// the commit with DiscountUnavailableError so the caller can re-price; any
// reservations already made for the aborted order are released, so uses only
// ever count committed orders.
func (s *Service) PlaceOrder(ctx context.Context, c *cart.Cart) (*Order, error) {
	ev, err := s.Preview(ctx, c)
	if err != nil {
		return nil, err
	}

	// Reservations are made per rule; if any later step fails the earlier
	// ones must be released, or an aborted commit would consume uses.
	var reserved []string
	release := func() {
		for i := len(reserved) - 1; i >= 0; i-- {
			// Best effort: the commit already failed and the release error
			// carries no information the caller can act on.
			_ = s.ledger.Release(ctx, reserved[i], c.CustomerID)
		}
	}

	for _, sel := range ev.Selected {
		if err := s.ledger.Reserve(ctx, sel.Rule.ID, c.CustomerID); err != nil {
			release()
			if errors.Is(err, discount.ErrCapReached) || errors.Is(err, discount.ErrAlreadyRedeemed) {
				return nil, &DiscountUnavailableError{Code: sel.Rule.Code}
			}
			return nil, errors.Wrapf(err, "reserve redemption for %s", sel.Rule.ID)
		}
		reserved = append(reserved, sel.Rule.ID)
	}

	res := ev.Result
	o := &Order{
		ID:            uuid.New().String(),
		CustomerID:    c.CustomerID,
		Lines:         c.Lines,
		SubtotalCents: res.SubtotalCents,
		DiscountCents: res.ProductDiscountCents + res.OrderDiscountCents + res.ShippingDiscountCents,
		ShippingCents: res.FinalShippingCents,
		TotalCents:    res.TotalCents,
		CouponCode:    c.CouponCode,
		Metadata:      buildMetadata(ev),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		release()
		return nil, errors.Wrapf(err, "create order %s", o.ID)
	}

	return o, nil
}

func validate(c *cart.Cart) error {
	if len(c.Lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range c.Lines {
		if l.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

func buildMetadata(ev *pricing.Evaluation) Metadata {
	md := Metadata{}
	for _, a := range ev.Result.Applied {
		md.Applied = append(md.Applied, AppliedCode{ID: a.ID, Code: a.Code, Kind: string(a.Kind)})
	}
	for _, x := range ev.Excluded {
		md.Excluded = append(md.Excluded, DroppedCode{Code: x.Code, Reason: string(x.Reason)})
	}
	return md
}
