package cart

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
)

const cartColumns = `id::text, customer_id::text, anonymous_id, currency, version, state, created_at`

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetOrCreateActive(ctx context.Context, owner Owner, currency string) (*domain.Cart, error) {
	cart, err := r.GetActive(ctx, owner)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	const q = `
INSERT INTO carts (customer_id, anonymous_id, currency, version, state)
VALUES ($1, $2, $3, 0, 'active')
RETURNING ` + cartColumns + `
`
	row := r.pool.QueryRow(ctx, q, owner.CustomerID, owner.AnonymousID, currency)
	created, err := scanCart(row)
	if err != nil {
		return nil, err
	}
	created.Lines = []domain.CartLine{}
	return created, nil
}

func (r *postgresRepo) GetActive(ctx context.Context, owner Owner) (*domain.Cart, error) {
	var (
		q   string
		arg string
	)
	switch {
	case owner.CustomerID != nil:
		q = `SELECT ` + cartColumns + ` FROM carts WHERE customer_id = $1 AND state = 'active' ORDER BY created_at DESC LIMIT 1`
		arg = *owner.CustomerID
	case owner.AnonymousID != nil:
		q = `SELECT ` + cartColumns + ` FROM carts WHERE anonymous_id = $1 AND state = 'active' ORDER BY created_at DESC LIMIT 1`
		arg = *owner.AnonymousID
	default:
		return nil, domain.ErrNotFound
	}

	cart, err := scanCart(r.pool.QueryRow(ctx, q, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadLines(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (r *postgresRepo) PutLine(ctx context.Context, cartID string, line domain.CartLine) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const q = `
INSERT INTO cart_lines (cart_id, product_id, name, unit_price_cents, quantity, image_ref)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
`
	if _, err := tx.Exec(ctx, q, cartID, line.ProductID, line.Name, line.UnitPriceCents, line.Quantity, line.ImageRef); err != nil {
		return err
	}
	if err := bumpVersion(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) SetLineQuantity(ctx context.Context, cartID, productID string, quantity int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if quantity <= 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1 AND product_id = $2`, cartID, productID); err != nil {
			return err
		}
	} else {
		cmd, err := tx.Exec(ctx, `
UPDATE cart_lines
SET quantity = $1
WHERE cart_id = $2 AND product_id = $3
`, quantity, cartID, productID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
	}

	if err := bumpVersion(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) RemoveLine(ctx context.Context, cartID, productID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1 AND product_id = $2`, cartID, productID); err != nil {
		return err
	}
	if err := bumpVersion(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) ClearLines(ctx context.Context, cartID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE cart_id = $1`, cartID); err != nil {
		return err
	}
	if err := bumpVersion(ctx, tx, cartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) MergeAnonymousIntoCustomer(ctx context.Context, anonymousID, customerID, currency string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var anonCartID string
	err = tx.QueryRow(ctx, `
SELECT id::text FROM carts
WHERE anonymous_id = $1 AND state = 'active'
ORDER BY created_at DESC
LIMIT 1
`, anonymousID).Scan(&anonCartID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Nothing to merge.
			return tx.Commit(ctx)
		}
		return err
	}

	var customerCartID string
	err = tx.QueryRow(ctx, `
SELECT id::text FROM carts
WHERE customer_id = $1 AND state = 'active'
ORDER BY created_at DESC
LIMIT 1
`, customerID).Scan(&customerCartID)
	if errors.Is(err, pgx.ErrNoRows) {
		// No customer cart yet: the anonymous cart simply changes hands.
		if _, err := tx.Exec(ctx, `
UPDATE carts
SET customer_id = $1, anonymous_id = NULL, version = version + 1
WHERE id = $2
`, customerID, anonCartID); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}
	if err != nil {
		return err
	}

	// Customer lines win per product; anonymous-only lines carry over.
	if _, err := tx.Exec(ctx, `
INSERT INTO cart_lines (cart_id, product_id, name, unit_price_cents, quantity, image_ref)
SELECT $1, product_id, name, unit_price_cents, quantity, image_ref
FROM cart_lines
WHERE cart_id = $2
ON CONFLICT (cart_id, product_id) DO NOTHING
`, customerCartID, anonCartID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE carts SET state = 'merged' WHERE id = $1`, anonCartID); err != nil {
		return err
	}
	if err := bumpVersion(ctx, tx, customerCartID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *postgresRepo) loadLines(ctx context.Context, cart *domain.Cart) error {
	const q = `
SELECT product_id, name, unit_price_cents, quantity, COALESCE(image_ref, ''), added_at
FROM cart_lines
WHERE cart_id = $1
ORDER BY added_at ASC
`
	rows, err := r.pool.Query(ctx, q, cart.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	cart.Lines = []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Name, &line.UnitPriceCents, &line.Quantity, &line.ImageRef, &line.AddedAt); err != nil {
			return err
		}
		cart.Lines = append(cart.Lines, line)
	}
	return rows.Err()
}

func scanCart(row pgx.Row) (*domain.Cart, error) {
	var cart domain.Cart
	var customerID, anonymousID *string
	if err := row.Scan(
		&cart.ID,
		&customerID,
		&anonymousID,
		&cart.Currency,
		&cart.Version,
		&cart.State,
		&cart.CreatedAt,
	); err != nil {
		return nil, err
	}
	cart.CustomerID = customerID
	cart.AnonymousID = anonymousID
	return &cart, nil
}

func bumpVersion(ctx context.Context, tx pgx.Tx, cartID string) error {
	_, err := tx.Exec(ctx, `UPDATE carts SET version = version + 1 WHERE id = $1`, cartID)
	return err
}
