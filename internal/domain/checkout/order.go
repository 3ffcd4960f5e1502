package checkout

import (
	"context"
	"time"

	"github.com/xenking/storefront-pricing/internal/domain/cart"
)

// Order is the immutable pricing snapshot persisted at commit. Amounts are
// whole cents; Metadata records which codes applied and why, for receipts
// and support lookups.
type Order struct {
	ID            string
	CustomerID    string
	Lines         []cart.Line
	SubtotalCents int64
	DiscountCents int64
	ShippingCents int64
	TotalCents    int64
	CouponCode    string
	Metadata      Metadata
	CreatedAt     time.Time
}

// Metadata is the audit blob stored alongside the order.
type Metadata struct {
	Applied  []AppliedCode `json:"applied"`
	Excluded []DroppedCode `json:"excluded,omitempty"`
}

// AppliedCode records one discount that contributed to the order total.
type AppliedCode struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Kind string `json:"kind"`
}

// DroppedCode records a discount that was considered but not applied.
type DroppedCode struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// Repository defines persistence for committed orders.
type Repository interface {
	Create(ctx context.Context, order *Order) error
}
