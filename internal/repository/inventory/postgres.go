package inventory

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) Available(ctx context.Context, productID string) (int, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return 0, domain.ProductNotFound(productID)
	}
	var stock int
	err := r.pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ProductNotFound(productID)
		}
		return 0, err
	}
	return stock, nil
}

func (r *postgresRepo) Debit(ctx context.Context, productID string, qty int) error {
	err := DebitTx(ctx, r.pool, productID, qty)
	if err != nil {
		r.logger.Printf("inventory repo: debit product_id=%s qty=%d error=%v", productID, qty, err)
	}
	return err
}

func (r *postgresRepo) Restock(ctx context.Context, productID string, qty int) error {
	err := RestockTx(ctx, r.pool, productID, qty)
	if err != nil {
		r.logger.Printf("inventory repo: restock product_id=%s qty=%d error=%v", productID, qty, err)
	}
	return err
}

// DebitTx decrements stock by qty only if at least qty units remain. The
// check and the write are one statement, so concurrent debits cannot oversell.
func DebitTx(ctx context.Context, q db.Querier, productID string, qty int) error {
	if qty < 1 {
		return domain.InvalidQuantity(productID, qty)
	}
	if _, err := uuid.Parse(productID); err != nil {
		return domain.ProductNotFound(productID)
	}
	var remaining int
	err := q.QueryRow(ctx, `
UPDATE products
SET stock = stock - $2
WHERE id = $1 AND stock >= $2
RETURNING stock
`, productID, qty).Scan(&remaining)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	var (
		available int
		name      string
	)
	err = q.QueryRow(ctx, `SELECT stock, name FROM products WHERE id = $1`, productID).Scan(&available, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ProductNotFound(productID)
		}
		return err
	}
	return domain.InsufficientStock(productID, name, available, qty)
}

// RestockTx returns qty units to the ledger.
func RestockTx(ctx context.Context, q db.Querier, productID string, qty int) error {
	if qty < 1 {
		return domain.InvalidQuantity(productID, qty)
	}
	if _, err := uuid.Parse(productID); err != nil {
		return domain.ProductNotFound(productID)
	}
	cmd, err := q.Exec(ctx, `UPDATE products SET stock = stock + $2 WHERE id = $1`, productID, qty)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ProductNotFound(productID)
	}
	return nil
}
