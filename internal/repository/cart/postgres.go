package cart

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) Lines(ctx context.Context, customerID string) ([]domain.CartLine, error) {
	if _, err := uuid.Parse(customerID); err != nil {
		return nil, domain.ErrNotFound
	}
	const q = `
SELECT product_id::text, quantity, added_at
FROM cart_lines
WHERE customer_id = $1
ORDER BY added_at ASC, product_id ASC
`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.AddedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) Add(ctx context.Context, customerID, productID string, quantity int) error {
	if err := checkIDs(customerID, productID); err != nil {
		return err
	}
	return addLine(ctx, r.pool, customerID, productID, quantity)
}

func (r *postgresRepo) SetQuantity(ctx context.Context, customerID, productID string, quantity int) error {
	if err := checkIDs(customerID, productID); err != nil {
		return err
	}
	const q = `
INSERT INTO cart_lines (customer_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (customer_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
`
	_, err := r.pool.Exec(ctx, q, customerID, productID, quantity)
	return translate(err)
}

func (r *postgresRepo) Remove(ctx context.Context, customerID, productID string) error {
	if err := checkIDs(customerID, productID); err != nil {
		// Removing something that cannot exist is a no-op.
		return nil
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1 AND product_id = $2`, customerID, productID)
	return err
}

func (r *postgresRepo) Clear(ctx context.Context, customerID string) error {
	if _, err := uuid.Parse(customerID); err != nil {
		return domain.ErrNotFound
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_lines WHERE customer_id = $1`, customerID)
	return err
}

func (r *postgresRepo) Merge(ctx context.Context, customerID, token string, lines []domain.CartLine) (bool, error) {
	if _, err := uuid.Parse(customerID); err != nil {
		return false, domain.ErrNotFound
	}
	applied := false
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `
INSERT INTO cart_merges (customer_id, merge_token)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, customerID, token)
		if err != nil {
			return translate(err)
		}
		if cmd.RowsAffected() == 0 {
			return nil
		}
		for _, line := range lines {
			if _, err := uuid.Parse(line.ProductID); err != nil {
				return domain.ProductNotFound(line.ProductID)
			}
			if err := addLine(ctx, tx, customerID, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

func addLine(ctx context.Context, q db.Querier, customerID, productID string, quantity int) error {
	const stmt = `
INSERT INTO cart_lines (customer_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (customer_id, product_id) DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity
`
	_, err := q.Exec(ctx, stmt, customerID, productID, quantity)
	return translate(err)
}

func checkIDs(customerID, productID string) error {
	if _, err := uuid.Parse(customerID); err != nil {
		return domain.ErrNotFound
	}
	if _, err := uuid.Parse(productID); err != nil {
		return domain.ProductNotFound(productID)
	}
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		if strings.Contains(pgErr.ConstraintName, "product") {
			return domain.ProductNotFound("")
		}
		return domain.ErrNotFound
	}
	return err
}
