package address

import (
	"context"

	"storefront/internal/domain"
)

// Repository stores each customer's address book.
type Repository interface {
	List(ctx context.Context, customerID string) ([]domain.Address, error)
	// Mutate loads the book under a per-customer lock, applies fn and persists
	// the result. Nothing is written when fn returns an error.
	Mutate(ctx context.Context, customerID string, fn func(book *domain.AddressBook) error) error
}
