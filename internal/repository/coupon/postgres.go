package coupon

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	couponreg "storefront/internal/coupon"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Lookup(ctx context.Context, code string) (*domain.Coupon, error) {
	const q = `
SELECT code, kind, value
FROM coupons
WHERE code = $1 AND active
`
	var c domain.Coupon
	var kind string
	err := r.pool.QueryRow(ctx, q, couponreg.Normalize(code)).Scan(&c.Code, &kind, &c.Value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvalidCoupon
		}
		return nil, err
	}
	c.Kind = domain.DiscountKind(kind)
	return &c, nil
}

func (r *postgresRepo) List(ctx context.Context) ([]domain.Coupon, error) {
	const q = `SELECT code, kind, value FROM coupons WHERE active ORDER BY code`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Coupon
	for rows.Next() {
		var c domain.Coupon
		var kind string
		if err := rows.Scan(&c.Code, &kind, &c.Value); err != nil {
			return nil, err
		}
		c.Kind = domain.DiscountKind(kind)
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *postgresRepo) Upsert(ctx context.Context, c domain.Coupon) error {
	const q = `
INSERT INTO coupons (code, kind, value, active)
VALUES ($1, $2, $3, true)
ON CONFLICT (code) DO UPDATE SET kind = EXCLUDED.kind, value = EXCLUDED.value, active = true
`
	_, err := r.pool.Exec(ctx, q, couponreg.Normalize(c.Code), string(c.Kind), c.Value)
	return err
}
