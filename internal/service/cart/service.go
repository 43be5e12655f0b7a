package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	cartrepo "storefront/internal/repository/cart"
)

type Service struct {
	repo        cartrepo.Repository
	productRepo productRepo
	logger      *log.Logger
	now         func() time.Time
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	ListByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
}

func New(repo cartrepo.Repository, productRepo productRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, productRepo: productRepo, logger: logger, now: time.Now}
}

// Device wraps a client supplied snapshot. Duplicate products are folded and
// non-positive quantities rejected.
func (s *Service) Device(snapshot domain.Cart) (*DeviceBackend, error) {
	return NewDeviceBackend(snapshot, s.now)
}

// Account selects the persisted cart of customerID.
func (s *Service) Account(customerID string) (*AccountBackend, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return &AccountBackend{repo: s.repo, customerID: customerID}, nil
}

func (s *Service) Add(ctx context.Context, b Backend, productID string, qty int) error {
	productID = strings.TrimSpace(productID)
	if qty < 1 {
		return domain.InvalidQuantity(productID, qty)
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}
	return domain.Unavailable("add to cart", b.Add(ctx, productID, qty))
}

func (s *Service) SetQuantity(ctx context.Context, b Backend, productID string, qty int) error {
	productID = strings.TrimSpace(productID)
	if qty < 0 {
		return domain.InvalidQuantity(productID, qty)
	}
	if qty == 0 {
		return s.Remove(ctx, b, productID)
	}
	if err := s.ensureProduct(ctx, productID); err != nil {
		return err
	}
	return domain.Unavailable("set cart quantity", b.SetQuantity(ctx, productID, qty))
}

func (s *Service) Remove(ctx context.Context, b Backend, productID string) error {
	return domain.Unavailable("remove from cart", b.Remove(ctx, strings.TrimSpace(productID)))
}

func (s *Service) Clear(ctx context.Context, b Backend) error {
	return domain.Unavailable("clear cart", b.Clear(ctx))
}

// View prices every line at the current catalog price. Lines whose product is
// gone are flagged and contribute nothing to the total.
func (s *Service) View(ctx context.Context, b Backend) (*domain.CartView, error) {
	lines, err := b.Lines(ctx)
	if err != nil {
		return nil, domain.Unavailable("load cart", err)
	}
	view := &domain.CartView{Lines: make([]domain.CartViewLine, 0, len(lines))}
	if len(lines) == 0 {
		return view, nil
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.productRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, domain.Unavailable("load cart products", err)
	}
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, l := range lines {
		vl := domain.CartViewLine{CartLine: l}
		if p, ok := byID[l.ProductID]; ok {
			vl.Name = p.Name
			vl.Brand = p.Brand
			vl.UnitPriceCents = p.PriceCents
			vl.TotalCents = p.PriceCents * int64(l.Quantity)
		} else {
			vl.Unavailable = true
		}
		view.TotalCents += vl.TotalCents
		view.ItemCount += l.Quantity
		view.Lines = append(view.Lines, vl)
	}
	return view, nil
}

// MergeResult reports whether a merge changed the account cart.
type MergeResult struct {
	Applied bool
	Device  domain.Cart
}

// Merge folds the device cart into the account cart of customerID, adding
// quantities line by line. token identifies the login; replaying it is a
// no-op. The device cart is emptied only once the account cart holds its
// lines; on failure it is returned untouched alongside ErrMergeFailed.
func (s *Service) Merge(ctx context.Context, customerID string, device *DeviceBackend, token string) (MergeResult, error) {
	account, err := s.Account(customerID)
	if err != nil {
		return MergeResult{Device: device.Cart()}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return MergeResult{Device: device.Cart()}, domain.Validation("merge token is required")
	}

	lines := device.Cart().Lines
	for _, l := range lines {
		if l.Quantity < 1 {
			return MergeResult{Device: device.Cart()}, domain.InvalidQuantity(l.ProductID, l.Quantity)
		}
	}

	applied, err := s.repo.Merge(ctx, account.CustomerID(), token, lines)
	if err != nil {
		s.logger.Printf("cart service: merge customer_id=%s lines=%d error=%v", customerID, len(lines), err)
		// Unknown products and customers fail the same way on every retry.
		if kind := domain.KindOf(err); kind != "" && kind != domain.KindUnavailable {
			return MergeResult{Device: device.Cart()}, err
		}
		return MergeResult{Device: device.Cart()}, domain.MergeFailed(err)
	}
	// A replayed token means an earlier merge already consumed these lines.
	_ = device.Clear(ctx)
	return MergeResult{Applied: applied, Device: device.Cart()}, nil
}

func (s *Service) ensureProduct(ctx context.Context, productID string) error {
	if productID == "" {
		return domain.Validation("productId is required")
	}
	if _, err := s.productRepo.GetByID(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrProductNotFound) {
			return domain.ProductNotFound(productID)
		}
		return domain.Unavailable("load product", err)
	}
	return nil
}
