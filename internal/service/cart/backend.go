package cart

import (
	"context"
	"time"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

// Backend is where a cart's lines live. Callers pick one explicitly:
// a DeviceBackend for anonymous shoppers, an AccountBackend once identified.
type Backend interface {
	Lines(ctx context.Context) ([]domain.CartLine, error)
	Add(ctx context.Context, productID string, qty int) error
	SetQuantity(ctx context.Context, productID string, qty int) error
	Remove(ctx context.Context, productID string) error
	Clear(ctx context.Context) error
}

// DeviceBackend holds a cart snapshot owned by the client. Nothing is stored
// server side; the caller returns Cart() to the device after each change.
type DeviceBackend struct {
	cart domain.Cart
	now  func() time.Time
}

// NewDeviceBackend validates snapshot with domain.NormalizeCart and wraps a
// copy of it.
func NewDeviceBackend(snapshot domain.Cart, now func() time.Time) (*DeviceBackend, error) {
	if now == nil {
		now = time.Now
	}
	cart, err := domain.NormalizeCart(snapshot)
	if err != nil {
		return nil, err
	}
	return &DeviceBackend{cart: cart, now: now}, nil
}

// Cart returns the current snapshot.
func (d *DeviceBackend) Cart() domain.Cart {
	return d.cart
}

func (d *DeviceBackend) Lines(context.Context) ([]domain.CartLine, error) {
	return d.cart.Lines, nil
}

func (d *DeviceBackend) Add(_ context.Context, productID string, qty int) error {
	return d.cart.Add(productID, qty, d.now())
}

func (d *DeviceBackend) SetQuantity(_ context.Context, productID string, qty int) error {
	return d.cart.SetQuantity(productID, qty, d.now())
}

func (d *DeviceBackend) Remove(_ context.Context, productID string) error {
	d.cart.Remove(productID)
	return nil
}

func (d *DeviceBackend) Clear(context.Context) error {
	d.cart.Clear()
	return nil
}

// AccountBackend persists lines under a customer id.
type AccountBackend struct {
	repo       cartrepo.Repository
	customerID string
}

func (a *AccountBackend) CustomerID() string { return a.customerID }

func (a *AccountBackend) Lines(ctx context.Context) ([]domain.CartLine, error) {
	return a.repo.Lines(ctx, a.customerID)
}

func (a *AccountBackend) Add(ctx context.Context, productID string, qty int) error {
	if qty < 1 {
		return domain.InvalidQuantity(productID, qty)
	}
	return a.repo.Add(ctx, a.customerID, productID, qty)
}

func (a *AccountBackend) SetQuantity(ctx context.Context, productID string, qty int) error {
	switch {
	case qty < 0:
		return domain.InvalidQuantity(productID, qty)
	case qty == 0:
		return a.repo.Remove(ctx, a.customerID, productID)
	}
	return a.repo.SetQuantity(ctx, a.customerID, productID, qty)
}

func (a *AccountBackend) Remove(ctx context.Context, productID string) error {
	return a.repo.Remove(ctx, a.customerID, productID)
}

func (a *AccountBackend) Clear(ctx context.Context) error {
	return a.repo.Clear(ctx, a.customerID)
}
