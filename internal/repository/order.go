package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-pricing/internal/domain/checkout"
)

const createOrderSQL = `INSERT INTO orders
	(id, customer_id, lines, subtotal_cents, discount_cents, shipping_cents,
	 total_cents, coupon_code, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

var _ checkout.Repository = (*OrderRepository)(nil)

// OrderRepository implements checkout.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a committed order snapshot. Lines and the discount metadata
// blob are serialized to JSON for the JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *checkout.Order) error {
	linesJSON, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("marshaling order lines: %w", err)
	}
	metadataJSON, err := json.Marshal(o.Metadata)
	if err != nil {
		return fmt.Errorf("marshaling order metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.CustomerID, linesJSON, o.SubtotalCents, o.DiscountCents,
		o.ShippingCents, o.TotalCents, o.CouponCode, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}
