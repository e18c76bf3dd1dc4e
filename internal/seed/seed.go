package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type productSeed struct {
	SKU         string
	Name        string
	Description string
	PriceCents  int64
	Currency    string
	ImageURL    string
	Stock       int
}

type couponSeed struct {
	Code  string
	Kind  string
	Value int64
}

// Apply inserts basic seed data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	products := []productSeed{
		{
			SKU:         "SKU-ASHWA-250",
			Name:        "Ashwagandha Capsules 250mg",
			Description: "60 vegetarian capsules",
			PriceCents:  20000,
			Currency:    "INR",
			ImageURL:    "/images/ashwagandha.jpg",
			Stock:       120,
		},
		{
			SKU:         "SKU-CHYAWAN-500",
			Name:        "Chyawanprash 500g",
			Description: "Classic herbal jam",
			PriceCents:  15000,
			Currency:    "INR",
			ImageURL:    "/images/chyawanprash.jpg",
			Stock:       80,
		},
		{
			SKU:         "SKU-BRAHMI-OIL",
			Name:        "Brahmi Hair Oil 100ml",
			Description: "Cold pressed, no additives",
			PriceCents:  5000,
			Currency:    "INR",
			ImageURL:    "/images/brahmi-oil.jpg",
			Stock:       200,
		},
		{
			SKU:         "SKU-TRIPHALA-120",
			Name:        "Triphala Tablets",
			Description: "120 tablets",
			PriceCents:  9900,
			Currency:    "INR",
			ImageURL:    "/images/triphala.jpg",
			Stock:       150,
		},
	}

	for _, p := range products {
		if err := upsertProduct(ctx, pool, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.SKU, err)
		}
	}

	coupons := []couponSeed{
		{Code: "WELLNESS20", Kind: "percentage", Value: 20},
		{Code: "FLAT50", Kind: "fixed", Value: 5000},
	}
	for _, c := range coupons {
		if err := upsertCoupon(ctx, pool, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}

	return nil
}

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, p productSeed) error {
	const q = `
INSERT INTO products (sku, name, description, price_cents, currency, image_url, stock)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (sku) DO UPDATE
SET name = EXCLUDED.name,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    image_url = EXCLUDED.image_url,
    stock = EXCLUDED.stock
`
	_, err := pool.Exec(ctx, q, p.SKU, p.Name, p.Description, p.PriceCents, p.Currency, p.ImageURL, p.Stock)
	return err
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, c couponSeed) error {
	const q = `
INSERT INTO coupons (code, kind, value, active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT (code) DO UPDATE
SET kind = EXCLUDED.kind,
    value = EXCLUDED.value,
    active = TRUE
`
	_, err := pool.Exec(ctx, q, c.Code, c.Kind, c.Value)
	return err
}
