// Command seed-db loads a discount catalog from a JSON file and provisions a
// back-office API key. Intended for local development and demo environments.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront-pricing/internal/repository"
)

// discountJSON mirrors the discounts table for seed files.
type discountJSON struct {
	ID                   string          `json:"id"`
	Code                 string          `json:"code"`
	Kind                 string          `json:"kind"`
	AmountKind           string          `json:"amountKind"`
	Value                decimal.Decimal `json:"value"`
	Active               bool            `json:"active"`
	Automatic            bool            `json:"automatic"`
	StartsAt             *time.Time      `json:"startsAt"`
	EndsAt               *time.Time      `json:"endsAt"`
	MinimumKind          string          `json:"minimumKind"`
	MinimumPurchaseCents int64           `json:"minimumPurchaseCents"`
	MinimumQuantity      int             `json:"minimumQuantity"`
	LimitUses            bool            `json:"limitUses"`
	MaxUses              int             `json:"maxUses"`
	OncePerCustomer      bool            `json:"oncePerCustomer"`
	CombineWithProduct   bool            `json:"combineWithProduct"`
	CombineWithOrder     bool            `json:"combineWithOrder"`
	CombineWithShipping  bool            `json:"combineWithShipping"`
	AllProducts          bool            `json:"allProducts"`
	VariantIDs           []string        `json:"variantIds"`
	CollectionIDs        []string        `json:"collectionIds"`
	ApplyToOrder         bool            `json:"applyToOrder"`
	ApplyToShipping      bool            `json:"applyToShipping"`
	AllCountries         *bool           `json:"allCountries"`
	CountryCodes         []string        `json:"countryCodes"`
	CustomerIDs          []string        `json:"customerIds"`
	Description          string          `json:"description"`
}

const upsertDiscountSQL = `INSERT INTO discounts
	(id, code, kind, amount_kind, value, active, automatic, starts_at, ends_at,
	 minimum_kind, minimum_purchase_cents, minimum_quantity,
	 limit_uses, max_uses, once_per_customer,
	 combine_with_product, combine_with_order, combine_with_shipping,
	 all_products, variant_ids, collection_ids, apply_to_order, apply_to_shipping,
	 all_countries, country_codes, customer_ids, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
	        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	ON CONFLICT (code) DO UPDATE SET
		kind = EXCLUDED.kind, amount_kind = EXCLUDED.amount_kind,
		value = EXCLUDED.value, active = EXCLUDED.active,
		automatic = EXCLUDED.automatic, starts_at = EXCLUDED.starts_at,
		ends_at = EXCLUDED.ends_at, minimum_kind = EXCLUDED.minimum_kind,
		minimum_purchase_cents = EXCLUDED.minimum_purchase_cents,
		minimum_quantity = EXCLUDED.minimum_quantity,
		limit_uses = EXCLUDED.limit_uses, max_uses = EXCLUDED.max_uses,
		once_per_customer = EXCLUDED.once_per_customer,
		combine_with_product = EXCLUDED.combine_with_product,
		combine_with_order = EXCLUDED.combine_with_order,
		combine_with_shipping = EXCLUDED.combine_with_shipping,
		all_products = EXCLUDED.all_products,
		variant_ids = EXCLUDED.variant_ids,
		collection_ids = EXCLUDED.collection_ids,
		apply_to_order = EXCLUDED.apply_to_order,
		apply_to_shipping = EXCLUDED.apply_to_shipping,
		all_countries = EXCLUDED.all_countries,
		country_codes = EXCLUDED.country_codes,
		customer_ids = EXCLUDED.customer_ids,
		description = EXCLUDED.description,
		updated_at = now()`

const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
	VALUES ($1, $2, $3, $4, TRUE)
	ON CONFLICT (id) DO UPDATE SET
		key_hash = EXCLUDED.key_hash, name = EXCLUDED.name,
		scopes = EXCLUDED.scopes, active = TRUE`

func main() {
	var (
		databaseURL   string
		discountsFile string
		apiKey        string
		apiKeyPepper  string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&discountsFile, "discounts-file", "db/seed/discounts.json", "path to discounts JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or PRICING_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or PRICING_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("PRICING_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or PRICING_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("PRICING_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, discountsFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, discountsFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedDiscounts(ctx, pool, discountsFile); err != nil {
		return errors.Wrap(err, "seed discounts")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool, discountsFile string) error {
	slog.Info("reading discounts file", slog.String("path", discountsFile))

	data, err := os.ReadFile(discountsFile)
	if err != nil {
		return errors.Wrap(err, "read discounts file")
	}

	var discounts []discountJSON
	if err := json.Unmarshal(data, &discounts); err != nil {
		return errors.Wrap(err, "parse discounts JSON")
	}

	slog.Info("upserting discounts", slog.Int("count", len(discounts)))

	for _, d := range discounts {
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		startsAt := time.Now()
		if d.StartsAt != nil {
			startsAt = *d.StartsAt
		}
		if d.MinimumKind == "" {
			d.MinimumKind = "none"
		}
		allCountries := true
		if d.AllCountries != nil {
			allCountries = *d.AllCountries
		}

		_, err := pool.Exec(ctx, upsertDiscountSQL,
			d.ID, d.Code, d.Kind, d.AmountKind, d.Value, d.Active, d.Automatic,
			startsAt, d.EndsAt, d.MinimumKind, d.MinimumPurchaseCents, d.MinimumQuantity,
			d.LimitUses, d.MaxUses, d.OncePerCustomer,
			d.CombineWithProduct, d.CombineWithOrder, d.CombineWithShipping,
			d.AllProducts, orEmpty(d.VariantIDs), orEmpty(d.CollectionIDs),
			d.ApplyToOrder, d.ApplyToShipping,
			allCountries, orEmpty(d.CountryCodes), orEmpty(d.CustomerIDs), d.Description,
		)
		if err != nil {
			return errors.Wrapf(err, "upsert discount %s", d.Code)
		}

		slog.Info("upserted discount", slog.String("code", d.Code), slog.String("kind", d.Kind))
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, upsertAPIKeySQL,
		"default", keyHash, "Default back-office key", []string{"price", "create_order"},
	)
	if err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))
	return nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
