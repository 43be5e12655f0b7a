package order

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_PlaceDebitsStockAtomically(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	laptop := seedProduct(ctx, t, pool, "laptop", 50000, 1)
	mouse := seedProduct(ctx, t, pool, "mouse", 700, 5)

	repo := NewPostgres(pool, nil)
	first := newOrder(laptop, mouse)
	if err := repo.Place(ctx, first); err != nil {
		t.Fatalf("Place: %v", err)
	}
	if stock(ctx, t, pool, laptop.ID) != 0 || stock(ctx, t, pool, mouse.ID) != 4 {
		t.Fatalf("stock not debited")
	}

	second := newOrder(laptop, mouse)
	err := repo.Place(ctx, second)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Available != 0 || derr.Requested != 1 {
		t.Fatalf("unexpected error detail %+v", derr)
	}
	if stock(ctx, t, pool, mouse.ID) != 4 {
		t.Fatalf("failed order must not debit other lines")
	}
	if _, err := repo.GetByID(ctx, second.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("failed order must not persist, got %v", err)
	}

	got, err := repo.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Items) != 2 || got.Items[0].ProductID != laptop.ID || got.TotalAmountCents != first.TotalAmountCents {
		t.Fatalf("unexpected stored order %+v", got)
	}
	if got.ShippingAddress.Pincode != "560001" {
		t.Fatalf("shipping snapshot lost: %+v", got.ShippingAddress)
	}
}

func TestPostgres_OppositeItemOrderDoesNotDeadlock(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	const stockEach = 20
	a := seedProduct(ctx, t, pool, "a", 100, stockEach)
	b := seedProduct(ctx, t, pool, "b", 200, stockEach)

	repo := NewPostgres(pool, nil)
	const workers = 30
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		unwanted []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := newOrder(a, b)
			if i%2 == 1 {
				o = newOrder(b, a)
			}
			err := repo.Place(ctx, o)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case errors.Is(err, domain.ErrInsufficientStock):
			default:
				unwanted = append(unwanted, err)
			}
		}(i)
	}
	wg.Wait()

	if len(unwanted) > 0 {
		t.Fatalf("expected only InsufficientStock failures, got %v", unwanted)
	}
	if placed != stockEach {
		t.Fatalf("expected %d orders placed, got %d", stockEach, placed)
	}
	if stock(ctx, t, pool, a.ID) != 0 || stock(ctx, t, pool, b.ID) != 0 {
		t.Fatalf("expected stock drained exactly")
	}
}

func TestLockOrderSortsCopy(t *testing.T) {
	items := []domain.OrderItem{{ProductID: "c"}, {ProductID: "a"}, {ProductID: "b"}}
	got := lockOrder(items)
	if got[0].ProductID != "a" || got[1].ProductID != "b" || got[2].ProductID != "c" {
		t.Fatalf("unexpected lock order %+v", got)
	}
	if items[0].ProductID != "c" || items[1].ProductID != "a" {
		t.Fatalf("input reordered: %+v", items)
	}
}

func TestPostgres_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	laptop := seedProduct(ctx, t, pool, "laptop", 50000, 3)
	mouse := seedProduct(ctx, t, pool, "mouse", 700, 3)

	repo := NewPostgres(pool, nil)
	delivered := newOrder(laptop, mouse)
	if err := repo.Place(ctx, delivered); err != nil {
		t.Fatalf("Place: %v", err)
	}
	now := time.Now().UTC()
	got, err := repo.UpdateStatus(ctx, delivered.ID, StatusUpdate{Status: domain.StatusDelivered, At: now})
	if err != nil {
		t.Fatalf("UpdateStatus delivered: %v", err)
	}
	if got.DeliveryDate == nil {
		t.Fatalf("expected delivery date")
	}
	if _, err := repo.UpdateStatus(ctx, delivered.ID, StatusUpdate{Status: domain.StatusPending, At: now}); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	cancelled := newOrder(laptop, mouse)
	if err := repo.Place(ctx, cancelled); err != nil {
		t.Fatalf("Place: %v", err)
	}
	notes := "customer called"
	got, err = repo.UpdateStatus(ctx, cancelled.ID, StatusUpdate{Status: domain.StatusCancelled, AdminNotes: &notes, At: now})
	if err != nil {
		t.Fatalf("UpdateStatus cancelled: %v", err)
	}
	if got.AdminNotes != notes {
		t.Fatalf("admin notes not stored")
	}
	if stock(ctx, t, pool, laptop.ID) != 2 || stock(ctx, t, pool, mouse.ID) != 2 {
		t.Fatalf("cancel should restock")
	}

	list, total, err := repo.List(ctx, ListFilter{Status: domain.StatusCancelled})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 || list[0].ID != cancelled.ID {
		t.Fatalf("unexpected admin list total=%d %+v", total, list)
	}

	byEmail, err := repo.ListByOwner(ctx, OwnerFilter{Email: "BUYER@example.com"})
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(byEmail) != 2 {
		t.Fatalf("expected 2 orders by email, got %d", len(byEmail))
	}
}

func newOrder(products ...domain.Product) *domain.Order {
	items := make([]domain.OrderItem, 0, len(products))
	for _, p := range products {
		items = append(items, domain.NewOrderItem(p, 1))
	}
	total, count := domain.Totals(items)
	now := time.Now().UTC()
	return &domain.Order{
		CustomerInfo:      domain.CustomerInfo{Name: "Buyer", Email: "buyer@example.com", Phone: "9000000000"},
		Items:             items,
		TotalAmountCents:  total,
		TotalItems:        count,
		ShippingAddress:   domain.ShippingAddress{FullAddress: "12 MG Road, Bengaluru, KA 560001", City: "Bengaluru", State: "KA", Pincode: "560001"},
		Status:            domain.StatusPending,
		PaymentStatus:     domain.PaymentPending,
		PaymentMethod:     domain.PaymentCOD,
		OrderDate:         now,
		EstimatedDelivery: now.AddDate(0, 0, 7),
	}
}

func seedProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, key string, price int64, stock int) domain.Product {
	t.Helper()
	p := domain.Product{Key: key, SKU: key, Name: key, Brand: "Acme", PriceCents: price, Currency: "INR", Stock: stock}
	err := pool.QueryRow(ctx, `
INSERT INTO products (key, sku, name, brand, price_cents, currency, stock)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id::text
`, p.Key, p.SKU, p.Name, p.Brand, p.PriceCents, p.Currency, p.Stock).Scan(&p.ID)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return p
}

func stock(ctx context.Context, t *testing.T, pool *pgxpool.Pool, id string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, id).Scan(&n); err != nil {
		t.Fatalf("read stock: %v", err)
	}
	return n
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE order_items, orders, addresses, cart_merges, cart_lines, products, customers RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
