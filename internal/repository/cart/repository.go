package cart

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores account carts: one line per (customer, product).
type Repository interface {
	Lines(ctx context.Context, customerID string) ([]domain.CartLine, error)
	Add(ctx context.Context, customerID, productID string, quantity int) error
	SetQuantity(ctx context.Context, customerID, productID string, quantity int) error
	Remove(ctx context.Context, customerID, productID string) error
	Clear(ctx context.Context, customerID string) error
	// Merge adds lines to the account cart once per (customer, token).
	// applied is false when the token was already consumed.
	Merge(ctx context.Context, customerID, token string, lines []domain.CartLine) (applied bool, err error)
}
