package inventory

import "context"

// Repository is the per-product stock ledger.
type Repository interface {
	Available(ctx context.Context, productID string) (int, error)
	Debit(ctx context.Context, productID string, qty int) error
	Restock(ctx context.Context, productID string, qty int) error
}
