package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	carts    map[string]*domain.Cart
	merges   map[string]bool
	mergeErr error
}

func newMemRepo() *memRepo {
	return &memRepo{carts: map[string]*domain.Cart{}, merges: map[string]bool{}}
}

func (m *memRepo) cart(id string) *domain.Cart {
	c, ok := m.carts[id]
	if !ok {
		c = &domain.Cart{}
		m.carts[id] = c
	}
	return c
}

func (m *memRepo) Lines(_ context.Context, customerID string) ([]domain.CartLine, error) {
	return m.cart(customerID).Lines, nil
}

func (m *memRepo) Add(_ context.Context, customerID, productID string, qty int) error {
	return m.cart(customerID).Add(productID, qty, time.Now())
}

func (m *memRepo) SetQuantity(_ context.Context, customerID, productID string, qty int) error {
	return m.cart(customerID).SetQuantity(productID, qty, time.Now())
}

func (m *memRepo) Remove(_ context.Context, customerID, productID string) error {
	m.cart(customerID).Remove(productID)
	return nil
}

func (m *memRepo) Clear(_ context.Context, customerID string) error {
	m.cart(customerID).Clear()
	return nil
}

func (m *memRepo) Merge(_ context.Context, customerID, token string, lines []domain.CartLine) (bool, error) {
	if m.mergeErr != nil {
		return false, m.mergeErr
	}
	key := customerID + "/" + token
	if m.merges[key] {
		return false, nil
	}
	m.merges[key] = true
	for _, l := range lines {
		if err := m.cart(customerID).Add(l.ProductID, l.Quantity, time.Now()); err != nil {
			return false, err
		}
	}
	return true, nil
}

type stubProducts struct {
	products map[string]domain.Product
	err      error
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (s *stubProducts) ListByIDs(_ context.Context, ids []string) ([]domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memRepo, *stubProducts) {
	repo := newMemRepo()
	products := &stubProducts{products: map[string]domain.Product{
		"A": {ID: "A", Name: "Keyboard", Brand: "Acme", PriceCents: 1500},
		"B": {ID: "B", Name: "Mouse", Brand: "Acme", PriceCents: 700},
	}}
	return New(repo, products, nil), repo, products
}

func mustDevice(t *testing.T, svc *Service, snapshot domain.Cart) *DeviceBackend {
	t.Helper()
	d, err := svc.Device(snapshot)
	require.NoError(t, err)
	return d
}

func quantities(lines []domain.CartLine) map[string]int {
	out := map[string]int{}
	for _, l := range lines {
		out[l.ProductID] = l.Quantity
	}
	return out
}

func TestMergeAddsDeviceLinesToAccount(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	account, err := svc.Account("cust-1")
	require.NoError(t, err)
	require.NoError(t, svc.Add(ctx, account, "A", 1))
	require.NoError(t, svc.Add(ctx, account, "B", 3))

	device := mustDevice(t, svc, domain.Cart{})
	require.NoError(t, svc.Add(ctx, device, "A", 2))

	res, err := svc.Merge(ctx, "cust-1", device, "login-1")
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Empty(t, res.Device.Lines)
	assert.Equal(t, map[string]int{"A": 3, "B": 3}, quantities(repo.carts["cust-1"].Lines))
}

func TestMergeReplayedTokenIsNoop(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()

	snapshot := domain.Cart{Lines: []domain.CartLine{{ProductID: "A", Quantity: 2}}}
	_, err := svc.Merge(ctx, "cust-1", mustDevice(t, svc, snapshot), "login-1")
	require.NoError(t, err)

	res, err := svc.Merge(ctx, "cust-1", mustDevice(t, svc, snapshot), "login-1")
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Empty(t, res.Device.Lines)
	assert.Equal(t, map[string]int{"A": 2}, quantities(repo.carts["cust-1"].Lines))
}

func TestMergeFailureKeepsDeviceCart(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	repo.mergeErr = errors.New("connection refused")

	device := mustDevice(t, svc, domain.Cart{Lines: []domain.CartLine{{ProductID: "A", Quantity: 2}}})
	res, err := svc.Merge(ctx, "cust-1", device, "login-1")
	require.ErrorIs(t, err, domain.ErrMergeFailed)
	assert.Equal(t, map[string]int{"A": 2}, quantities(res.Device.Lines))
	assert.Equal(t, map[string]int{"A": 2}, quantities(device.Cart().Lines))
}

func TestMergeRequiresIdentity(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Merge(context.Background(), " ", mustDevice(t, svc, domain.Cart{}), "login-1")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAddThenSetZeroEmptiesCart(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	account, err := svc.Account("cust-1")
	require.NoError(t, err)

	for _, b := range []Backend{mustDevice(t, svc, domain.Cart{}), account} {
		require.NoError(t, svc.Add(ctx, b, "A", 2))
		require.NoError(t, svc.SetQuantity(ctx, b, "A", 0))
		lines, err := b.Lines(ctx)
		require.NoError(t, err)
		assert.Empty(t, lines)
	}
}

func TestRemoveAbsentProductLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	device := mustDevice(t, svc, domain.Cart{})
	require.NoError(t, svc.Add(ctx, device, "A", 2))
	before := device.Cart()

	require.NoError(t, svc.Remove(ctx, device, "missing"))
	assert.Equal(t, before, device.Cart())
}

func TestQuantityValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	device := mustDevice(t, svc, domain.Cart{})

	err := svc.Add(ctx, device, "A", 0)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	err = svc.SetQuantity(ctx, device, "A", -1)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	err = svc.Add(ctx, device, "nope", 1)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestViewUsesLivePrices(t *testing.T) {
	ctx := context.Background()
	svc, _, products := newTestService()
	device := mustDevice(t, svc, domain.Cart{})
	require.NoError(t, svc.Add(ctx, device, "A", 2))
	require.NoError(t, svc.Add(ctx, device, "B", 1))

	view, err := svc.View(ctx, device)
	require.NoError(t, err)
	assert.Equal(t, int64(3700), view.TotalCents)
	assert.Equal(t, 3, view.ItemCount)

	p := products.products["A"]
	p.PriceCents = 2000
	products.products["A"] = p
	delete(products.products, "B")

	view, err = svc.View(ctx, device)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), view.TotalCents)
	assert.Equal(t, 3, view.ItemCount)
	assert.True(t, view.Lines[1].Unavailable)
}

func TestViewStorageFailureIsUnavailable(t *testing.T) {
	ctx := context.Background()
	svc, _, products := newTestService()
	device := mustDevice(t, svc, domain.Cart{})
	require.NoError(t, svc.Add(ctx, device, "A", 1))
	products.err = errors.New("timeout")

	_, err := svc.View(ctx, device)
	require.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestDeviceFoldsDuplicateProducts(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	device := mustDevice(t, svc, domain.Cart{Lines: []domain.CartLine{
		{ProductID: "A", Quantity: 2, AddedAt: early.Add(time.Hour)},
		{ProductID: "B", Quantity: 1},
		{ProductID: " A ", Quantity: 3, AddedAt: early},
	}})

	lines, err := device.Lines(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "A", lines[0].ProductID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.True(t, lines[0].AddedAt.Equal(early))

	require.NoError(t, svc.Remove(ctx, device, "A"))
	assert.Equal(t, map[string]int{"B": 1}, quantities(device.Cart().Lines))

	view, err := svc.View(ctx, device)
	require.NoError(t, err)
	assert.Equal(t, 1, view.ItemCount)
	assert.Equal(t, int64(700), view.TotalCents)
}

func TestDeviceRejectsBadSnapshot(t *testing.T) {
	svc, _, _ := newTestService()
	for _, q := range []int{0, -4} {
		_, err := svc.Device(domain.Cart{Lines: []domain.CartLine{{ProductID: "A", Quantity: 2}, {ProductID: "B", Quantity: q}}})
		var derr *domain.Error
		require.True(t, errors.As(err, &derr), "quantity %d", q)
		assert.Equal(t, domain.KindInvalidQuantity, derr.Kind)
		assert.Equal(t, "B", derr.ProductID)
	}

	_, err := svc.Device(domain.Cart{Lines: []domain.CartLine{{ProductID: " ", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestMergePassesPermanentErrorsThrough(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService()
	repo.mergeErr = domain.ProductNotFound("not-a-uuid")

	device := mustDevice(t, svc, domain.Cart{Lines: []domain.CartLine{{ProductID: "not-a-uuid", Quantity: 1}}})
	res, err := svc.Merge(ctx, "cust-1", device, "login-1")
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.NotErrorIs(t, err, domain.ErrMergeFailed)
	assert.Len(t, res.Device.Lines, 1)
}
