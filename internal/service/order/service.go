package order

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"strings"
	"time"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
)

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type customerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type addressBook interface {
	Get(ctx context.Context, customerID, id string) (*domain.Address, error)
}

// CartSource is the cart an order was assembled from. It is cleared after
// the order is stored.
type CartSource interface {
	Lines(ctx context.Context) ([]domain.CartLine, error)
	Clear(ctx context.Context) error
}

// Notifier receives placed orders. Failures never fail order creation.
type Notifier interface {
	OrderPlaced(ctx context.Context, o domain.Order) error
}

type Service struct {
	orders       orderrepo.Repository
	products     productRepo
	customers    customerRepo
	addresses    addressBook
	notifier     Notifier
	logger       *log.Logger
	deliveryDays int
	now          func() time.Time
}

type Option func(*Service)

// WithDeliveryDays sets the estimated delivery window.
func WithDeliveryDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.deliveryDays = days
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(orders orderrepo.Repository, products productRepo, customers customerRepo, addresses addressBook, opts ...Option) *Service {
	s := &Service{
		orders:       orders,
		products:     products,
		customers:    customers,
		addresses:    addresses,
		logger:       log.New(io.Discard, "", 0),
		deliveryDays: 7,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LineInput is one requested product and quantity.
type LineInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateInput is a checkout request. Items may be left empty when Cart is
// set, in which case the cart's lines are ordered.
type CreateInput struct {
	CustomerID    string
	Items         []LineInput
	Cart          CartSource
	Address       domain.AddressSelector
	CustomerNotes string
	PaymentMethod string
}

// Create assembles, stores and announces an order. Stock is debited in the
// same transaction that stores the order.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Order, error) {
	items := in.Items
	if len(items) == 0 && in.Cart != nil {
		lines, err := in.Cart.Lines(ctx)
		if err != nil {
			return nil, domain.Unavailable("load cart", err)
		}
		for _, l := range lines {
			items = append(items, LineInput{ProductID: l.ProductID, Quantity: l.Quantity})
		}
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	customerID := strings.TrimSpace(in.CustomerID)
	if customerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, domain.Unavailable("load customer", err)
	}

	shipping, phone, err := s.resolveAddress(ctx, customerID, in.Address)
	if err != nil {
		return nil, err
	}

	orderItems, err := s.snapshotItems(ctx, items)
	if err != nil {
		return nil, err
	}
	method, err := domain.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}

	info := domain.CustomerInfo{Name: customer.FullName, Email: customer.Email, Phone: customer.Phone}
	if strings.TrimSpace(info.Phone) == "" {
		info.Phone = phone
	}
	total, count := domain.Totals(orderItems)
	placed := s.now().UTC()
	o := &domain.Order{
		CustomerInfo:      info,
		Items:             orderItems,
		TotalAmountCents:  total,
		TotalItems:        count,
		ShippingAddress:   shipping,
		Status:            domain.StatusPending,
		PaymentStatus:     domain.PaymentPending,
		PaymentMethod:     method,
		OrderDate:         placed,
		EstimatedDelivery: placed.AddDate(0, 0, s.deliveryDays),
		CustomerNotes:     strings.TrimSpace(in.CustomerNotes),
		OwnerID:           customerID,
	}

	if err := s.orders.Place(ctx, o); err != nil {
		return nil, domain.Unavailable("place order", err)
	}
	s.logger.Printf("order service: placed id=%s customer_id=%s total=%d items=%d", o.ID, customerID, o.TotalAmountCents, o.TotalItems)

	if in.Cart != nil {
		if err := in.Cart.Clear(ctx); err != nil {
			s.logger.Printf("order service: clear cart after order id=%s error=%v", o.ID, err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, *o); err != nil {
			s.logger.Printf("order service: confirmation email id=%s error=%v", o.ID, err)
		}
	}
	return o, nil
}

func (s *Service) resolveAddress(ctx context.Context, customerID string, sel domain.AddressSelector) (domain.ShippingAddress, string, error) {
	if id, ok := sel.Reference(); ok {
		addr, err := s.addresses.Get(ctx, customerID, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ShippingAddress{}, "", domain.ErrAddressNotFound
			}
			return domain.ShippingAddress{}, "", domain.Unavailable("load address", err)
		}
		shipping := domain.ShippingFromAddress(*addr)
		if strings.TrimSpace(shipping.FullAddress) == "" {
			return domain.ShippingAddress{}, "", domain.ErrMissingAddress
		}
		return shipping, addr.Phone, nil
	}
	if inline, ok := sel.InlineAddress(); ok {
		inline.FullAddress = strings.TrimSpace(inline.FullAddress)
		inline.City = strings.TrimSpace(inline.City)
		inline.State = strings.TrimSpace(inline.State)
		inline.Pincode = strings.TrimSpace(inline.Pincode)
		if inline.FullAddress == "" {
			return domain.ShippingAddress{}, "", domain.ErrMissingAddress
		}
		return inline, "", nil
	}
	return domain.ShippingAddress{}, "", domain.ErrMissingAddress
}

// snapshotItems validates every line against the live catalog and freezes
// name, brand and price. Repeated products are folded into one line.
func (s *Service) snapshotItems(ctx context.Context, items []LineInput) ([]domain.OrderItem, error) {
	var (
		order []string
		qty   = make(map[string]int, len(items))
	)
	for _, it := range items {
		id := strings.TrimSpace(it.ProductID)
		if it.Quantity < 1 {
			return nil, domain.InvalidQuantity(id, it.Quantity)
		}
		if id == "" {
			return nil, domain.Validation("productId is required")
		}
		if _, seen := qty[id]; !seen {
			order = append(order, id)
		}
		if qty[id] > math.MaxInt32-it.Quantity {
			return nil, domain.InvalidQuantity(id, it.Quantity)
		}
		qty[id] += it.Quantity
	}

	out := make([]domain.OrderItem, 0, len(order))
	for _, id := range order {
		p, err := s.products.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrProductNotFound) {
				return nil, domain.ProductNotFound(id)
			}
			return nil, domain.Unavailable("load product", err)
		}
		if p.Stock < qty[id] {
			return nil, domain.InsufficientStock(p.ID, p.Name, p.Stock, qty[id])
		}
		out = append(out, domain.NewOrderItem(*p, qty[id]))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, domain.Unavailable("get order", err)
	}
	return o, nil
}

// GetForOwner hides orders of other customers behind NotFound.
func (s *Service) GetForOwner(ctx context.Context, customerID, id string) (*domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.OwnerID != customerID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// ListByOwner returns the caller's orders, newest first.
func (s *Service) ListByOwner(ctx context.Context, customerID string) ([]domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	orders, err := s.orders.ListByOwner(ctx, orderrepo.OwnerFilter{CustomerID: customerID})
	if err != nil {
		return nil, domain.Unavailable("list orders", err)
	}
	return nonNil(orders), nil
}

// ListByEmail returns orders placed with email. The caller must own the
// address; anything else reads as NotFound.
func (s *Service) ListByEmail(ctx context.Context, customerID, email string) ([]domain.Order, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.Validation("email is required")
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, domain.Unavailable("load customer", err)
	}
	if !strings.EqualFold(customer.Email, email) {
		return nil, domain.ErrNotFound
	}
	orders, err := s.orders.ListByOwner(ctx, orderrepo.OwnerFilter{Email: email})
	if err != nil {
		return nil, domain.Unavailable("list orders", err)
	}
	return nonNil(orders), nil
}

// ListResult is one page of the administrative listing.
type ListResult struct {
	Orders []domain.Order `json:"orders"`
	Total  int            `json:"total"`
	Page   int            `json:"page"`
	Limit  int            `json:"limit"`
	Pages  int            `json:"pages"`
}

func (s *Service) List(ctx context.Context, f orderrepo.ListFilter) (*ListResult, error) {
	f = f.Normalize()
	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, domain.Unavailable("list orders", err)
	}
	return &ListResult{
		Orders: nonNil(orders),
		Total:  total,
		Page:   f.Page,
		Limit:  f.Limit,
		Pages:  (total + f.Limit - 1) / f.Limit,
	}, nil
}

// UpdateStatus moves an order along the fulfilment state machine. A nil
// adminNotes keeps the stored notes.
func (s *Service) UpdateStatus(ctx context.Context, id, status string, adminNotes *string) (*domain.Order, error) {
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}
	if adminNotes != nil {
		trimmed := strings.TrimSpace(*adminNotes)
		adminNotes = &trimmed
	}
	o, err := s.orders.UpdateStatus(ctx, strings.TrimSpace(id), orderrepo.StatusUpdate{
		Status:     next,
		AdminNotes: adminNotes,
		At:         s.now().UTC(),
	})
	if err != nil {
		return nil, domain.Unavailable("update order status", err)
	}
	s.logger.Printf("order service: status id=%s status=%s", o.ID, o.Status)
	return o, nil
}

func nonNil(orders []domain.Order) []domain.Order {
	if orders == nil {
		return []domain.Order{}
	}
	return orders
}
