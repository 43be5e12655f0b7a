package order

import (
	"context"
	"time"

	"storefront/internal/domain"
)

// OwnerFilter selects orders by owning customer or by contact email.
// CustomerID wins when both are set.
type OwnerFilter struct {
	CustomerID string
	Email      string
}

// ListFilter drives the administrative order listing.
type ListFilter struct {
	Status  domain.OrderStatus
	From    *time.Time
	To      *time.Time
	Page    int
	Limit   int
	SortAsc bool
}

// StatusUpdate is applied by UpdateStatus. A nil AdminNotes keeps the stored notes.
type StatusUpdate struct {
	Status     domain.OrderStatus
	AdminNotes *string
	At         time.Time
}

// Repository is the append-only order ledger.
type Repository interface {
	// Place stores o with its items and debits stock for every line in one
	// transaction. A failed debit leaves no order behind.
	Place(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByOwner(ctx context.Context, f OwnerFilter) ([]domain.Order, error)
	List(ctx context.Context, f ListFilter) ([]domain.Order, int, error)
	UpdateStatus(ctx context.Context, id string, u StatusUpdate) (*domain.Order, error)
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Normalize clamps paging values.
func (f ListFilter) Normalize() ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return f
}
