package product

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/domain"
	inventoryrepo "storefront/internal/repository/inventory"
	productrepo "storefront/internal/repository/product"
)

// Service exposes catalog reads and the administrative stock and price edits.
type Service struct {
	repo      productrepo.Repository
	inventory inventoryrepo.Repository
}

func New(repo productrepo.Repository, inventory inventoryrepo.Repository) *Service {
	return &Service{repo: repo, inventory: inventory}
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ProductNotFound(id)
		}
		return nil, domain.Unavailable("get product", err)
	}
	return p, nil
}

func (s *Service) Stock(ctx context.Context, id string) (int, error) {
	n, err := s.inventory.Available(ctx, strings.TrimSpace(id))
	if err != nil {
		return 0, domain.Unavailable("read stock", err)
	}
	return n, nil
}

// Restock adds qty units and returns the new level.
func (s *Service) Restock(ctx context.Context, id string, qty int) (int, error) {
	id = strings.TrimSpace(id)
	if qty < 1 {
		return 0, domain.InvalidQuantity(id, qty)
	}
	if err := s.inventory.Restock(ctx, id, qty); err != nil {
		return 0, domain.Unavailable("restock", err)
	}
	return s.Stock(ctx, id)
}

// UpdatePrice changes the catalog price. Placed orders keep their snapshot.
func (s *Service) UpdatePrice(ctx context.Context, id string, priceCents int64) error {
	if priceCents < 0 {
		return domain.Validation("price must not be negative")
	}
	if err := s.repo.UpdatePrice(ctx, strings.TrimSpace(id), priceCents); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ProductNotFound(id)
		}
		return domain.Unavailable("update price", err)
	}
	return nil
}
