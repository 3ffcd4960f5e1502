package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

const (
	getUsesSQL = `SELECT uses FROM discounts WHERE id = $1`

	getRedeemedSQL = `SELECT EXISTS (
		SELECT 1 FROM discount_redemptions
		WHERE discount_id = $1 AND customer_id = $2)`

	// The WHERE clause makes the increment conditional: two concurrent
	// commits cannot both pass a hard usage cap.
	reserveUseSQL = `UPDATE discounts SET uses = uses + 1, updated_at = now()
		WHERE id = $1 AND (NOT limit_uses OR uses < max_uses)
		RETURNING uses`

	recordRedemptionSQL = `INSERT INTO discount_redemptions (discount_id, customer_id)
		VALUES ($1, $2)
		ON CONFLICT (discount_id, customer_id) DO NOTHING`

	oncePerCustomerSQL = `SELECT once_per_customer FROM discounts WHERE id = $1`

	releaseUseSQL = `UPDATE discounts SET uses = GREATEST(uses - 1, 0), updated_at = now()
		WHERE id = $1`

	deleteRedemptionSQL = `DELETE FROM discount_redemptions
		WHERE discount_id = $1 AND customer_id = $2`
)

var _ discount.Ledger = (*RedemptionLedger)(nil)

// RedemptionLedger implements discount.Ledger backed by PostgreSQL. Reserve
// runs check-and-increment in a single transaction so concurrent checkouts
// serialize on the uses counter.
type RedemptionLedger struct {
	pool *pgxpool.Pool
}

// NewRedemptionLedger returns a RedemptionLedger that uses the given pool.
func NewRedemptionLedger(pool *pgxpool.Pool) *RedemptionLedger {
	return &RedemptionLedger{pool: pool}
}

// Uses returns the current global redemption count for a discount.
func (l *RedemptionLedger) Uses(ctx context.Context, discountID string) (int, error) {
	var uses int
	err := l.pool.QueryRow(ctx, getUsesSQL, discountID).Scan(&uses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading uses for discount %q: %w", discountID, err)
	}
	return uses, nil
}

// Redeemed reports whether the customer has already redeemed the discount.
func (l *RedemptionLedger) Redeemed(ctx context.Context, discountID, customerID string) (bool, error) {
	var redeemed bool
	err := l.pool.QueryRow(ctx, getRedeemedSQL, discountID, customerID).Scan(&redeemed)
	if err != nil {
		return false, fmt.Errorf("reading redemption for discount %q: %w", discountID, err)
	}
	return redeemed, nil
}

// Reserve atomically increments the uses counter, failing with ErrCapReached
// when the cap is already exhausted, and records the customer redemption for
// once-per-customer rules, failing with ErrAlreadyRedeemed on a repeat.
// Both writes commit together or not at all.
func (l *RedemptionLedger) Reserve(ctx context.Context, discountID, customerID string) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reserve for discount %q: %w", discountID, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var uses int
	if err := tx.QueryRow(ctx, reserveUseSQL, discountID).Scan(&uses); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return discount.ErrCapReached
		}
		return fmt.Errorf("incrementing uses for discount %q: %w", discountID, err)
	}

	var oncePerCustomer bool
	if err := tx.QueryRow(ctx, oncePerCustomerSQL, discountID).Scan(&oncePerCustomer); err != nil {
		return fmt.Errorf("reading caps for discount %q: %w", discountID, err)
	}

	if oncePerCustomer && customerID != "" {
		tag, err := tx.Exec(ctx, recordRedemptionSQL, discountID, customerID)
		if err != nil {
			return fmt.Errorf("recording redemption for discount %q: %w", discountID, err)
		}
		if tag.RowsAffected() == 0 {
			return discount.ErrAlreadyRedeemed
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reserve for discount %q: %w", discountID, err)
	}
	return nil
}

// Release undoes a successful Reserve after an aborted commit: the uses
// counter is decremented and the customer redemption row removed, both in one
// transaction. Releasing a reservation that was never made is a no-op.
func (l *RedemptionLedger) Release(ctx context.Context, discountID, customerID string) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin release for discount %q: %w", discountID, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx, releaseUseSQL, discountID); err != nil {
		return fmt.Errorf("decrementing uses for discount %q: %w", discountID, err)
	}
	if customerID != "" {
		if _, err := tx.Exec(ctx, deleteRedemptionSQL, discountID, customerID); err != nil {
			return fmt.Errorf("removing redemption for discount %q: %w", discountID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit release for discount %q: %w", discountID, err)
	}
	return nil
}
