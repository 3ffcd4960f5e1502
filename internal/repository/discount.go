package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-pricing/internal/domain/discount"
)

const discountColumns = `id, code, kind, amount_kind, value, active, automatic,
	starts_at, ends_at, minimum_kind, minimum_purchase_cents, minimum_quantity,
	limit_uses, max_uses, once_per_customer, uses,
	combine_with_product, combine_with_order, combine_with_shipping,
	all_products, variant_ids, collection_ids, apply_to_order, apply_to_shipping,
	all_countries, country_codes, customer_ids, description`

const (
	listCandidatesSQL = `SELECT ` + discountColumns + `
		FROM discounts WHERE active = TRUE OR code = $1
		ORDER BY code`

	findByCodeSQL = `SELECT ` + discountColumns + `
		FROM discounts WHERE code = $1`
)

// ErrDiscountNotFound is returned when no discount matches the given code.
var ErrDiscountNotFound = errors.New("discount not found")

var _ discount.Repository = (*DiscountRepository)(nil)

// DiscountRepository implements discount.Repository backed by PostgreSQL.
type DiscountRepository struct {
	pool *pgxpool.Pool
}

// NewDiscountRepository returns a DiscountRepository that uses the given pool.
func NewDiscountRepository(pool *pgxpool.Pool) *DiscountRepository {
	return &DiscountRepository{pool: pool}
}

// ListCandidates returns every active rule, plus any inactive rule matching
// the supplied coupon code so evaluation can report why it did not apply.
// Passing an empty code returns only active rules.
func (r *DiscountRepository) ListCandidates(ctx context.Context, couponCode string) ([]discount.Rule, error) {
	rows, err := r.pool.Query(ctx, listCandidatesSQL, couponCode)
	if err != nil {
		return nil, fmt.Errorf("listing discount candidates: %w", err)
	}

	rules, err := pgx.CollectRows(rows, scanRule)
	if err != nil {
		return nil, fmt.Errorf("listing discount candidates: %w", err)
	}
	return rules, nil
}

// FindByCode looks up a discount by its exact code.
// Returns ErrDiscountNotFound when no such discount exists.
func (r *DiscountRepository) FindByCode(ctx context.Context, code string) (*discount.Rule, error) {
	rows, err := r.pool.Query(ctx, findByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}

	rule, err := pgx.CollectExactlyOneRow(rows, scanRule)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDiscountNotFound
		}
		return nil, fmt.Errorf("finding discount by code %q: %w", code, err)
	}
	return &rule, nil
}

func scanRule(row pgx.CollectableRow) (discount.Rule, error) {
	var (
		rule        discount.Rule
		value       decimal.Decimal
		endsAt      *time.Time
		minimumKind string
		minPurchase int64
		minQuantity int
	)
	err := row.Scan(
		&rule.ID, &rule.Code, &rule.Kind, &rule.AmountKind, &value,
		&rule.Active, &rule.Automatic, &rule.StartsAt, &endsAt,
		&minimumKind, &minPurchase, &minQuantity,
		&rule.Caps.LimitUses, &rule.Caps.MaxUses, &rule.Caps.OncePerCustomer, &rule.Uses,
		&rule.CombineWithProduct, &rule.CombineWithOrder, &rule.CombineWithShipping,
		&rule.Targeting.AllProducts, &rule.Targeting.VariantIDs, &rule.Targeting.CollectionIDs,
		&rule.ApplyToOrder, &rule.ApplyToShipping,
		&rule.AllCountries, &rule.CountryCodes, &rule.CustomerIDs, &rule.Description,
	)
	if err != nil {
		return discount.Rule{}, err
	}

	rule.Value = value
	rule.EndsAt = endsAt

	switch discount.MinimumKind(minimumKind) {
	case discount.MinimumPurchase:
		rule.Minimum = discount.PurchaseMinimum(minPurchase)
	case discount.MinimumQuantity:
		rule.Minimum = discount.QuantityMinimum(minQuantity)
	default:
		rule.Minimum = discount.NoMinimum()
	}

	return rule, nil
}
