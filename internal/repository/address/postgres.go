package address

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

func (r *postgresRepo) List(ctx context.Context, customerID string) ([]domain.Address, error) {
	if _, err := uuid.Parse(customerID); err != nil {
		return nil, nil
	}
	return load(ctx, r.pool, customerID)
}

func (r *postgresRepo) Mutate(ctx context.Context, customerID string, fn func(book *domain.AddressBook) error) error {
	if _, err := uuid.Parse(customerID); err != nil {
		return domain.ErrNotFound
	}
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, customerID); err != nil {
			return err
		}
		before, err := load(ctx, tx, customerID)
		if err != nil {
			return err
		}
		book := &domain.AddressBook{Addresses: append([]domain.Address(nil), before...)}
		if err := fn(book); err != nil {
			return err
		}
		return persist(ctx, tx, customerID, before, book.Addresses)
	})
	if err != nil && domain.KindOf(err) == "" {
		r.logger.Printf("address repo: mutate customer_id=%s error=%v", customerID, err)
	}
	return err
}

func load(ctx context.Context, q db.Querier, customerID string) ([]domain.Address, error) {
	const stmt = `
SELECT id::text, type, full_name, phone, address_line1, address_line2, city, state,
       postal_code, country, landmark, is_default, created_at
FROM addresses
WHERE customer_id = $1
ORDER BY seq ASC
`
	rows, err := q.Query(ctx, stmt, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Address
	for rows.Next() {
		var a domain.Address
		if err := rows.Scan(
			&a.ID, &a.Type, &a.FullName, &a.Phone, &a.AddressLine1, &a.AddressLine2,
			&a.City, &a.State, &a.PostalCode, &a.Country, &a.Landmark, &a.IsDefault, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// persist writes next over before. Defaults are cleared first so the partial
// unique index never sees two defaults mid-transaction.
func persist(ctx context.Context, tx pgx.Tx, customerID string, before, next []domain.Address) error {
	if _, err := tx.Exec(ctx, `UPDATE addresses SET is_default = false WHERE customer_id = $1 AND is_default`, customerID); err != nil {
		return err
	}

	keep := make(map[string]struct{}, len(next))
	for _, a := range next {
		keep[a.ID] = struct{}{}
	}
	for _, a := range before {
		if _, ok := keep[a.ID]; ok {
			continue
		}
		if _, err := tx.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND customer_id = $2`, a.ID, customerID); err != nil {
			return err
		}
	}

	const upsert = `
INSERT INTO addresses (
    id, customer_id, type, full_name, phone, address_line1, address_line2,
    city, state, postal_code, country, landmark, is_default, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
    type = EXCLUDED.type,
    full_name = EXCLUDED.full_name,
    phone = EXCLUDED.phone,
    address_line1 = EXCLUDED.address_line1,
    address_line2 = EXCLUDED.address_line2,
    city = EXCLUDED.city,
    state = EXCLUDED.state,
    postal_code = EXCLUDED.postal_code,
    country = EXCLUDED.country,
    landmark = EXCLUDED.landmark,
    is_default = EXCLUDED.is_default
WHERE addresses.customer_id = EXCLUDED.customer_id
`
	for _, a := range next {
		if _, err := uuid.Parse(a.ID); err != nil {
			return domain.Validation("invalid address id %q", a.ID)
		}
		if _, err := tx.Exec(ctx, upsert,
			a.ID, customerID, string(a.Type), a.FullName, a.Phone, a.AddressLine1, a.AddressLine2,
			a.City, a.State, a.PostalCode, a.Country, a.Landmark, a.IsDefault, a.CreatedAt,
		); err != nil {
			return translate(err)
		}
	}
	return nil
}

// translate maps a missing customer (foreign key violation) to ErrNotFound.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return domain.ErrNotFound
	}
	return err
}
