package inventory

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/domain"
	"storefront/internal/migrate"
)

func TestPostgres_DebitIsConditional(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	productID := insertProduct(ctx, t, pool, 3)

	repo := NewPostgres(pool, nil)
	if err := repo.Debit(ctx, productID, 2); err != nil {
		t.Fatalf("Debit: %v", err)
	}

	err := repo.Debit(ctx, productID, 2)
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Kind != domain.KindInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if derr.Available != 1 || derr.Requested != 2 {
		t.Fatalf("unexpected quantities available=%d requested=%d", derr.Available, derr.Requested)
	}

	if err := repo.Restock(ctx, productID, 4); err != nil {
		t.Fatalf("Restock: %v", err)
	}
	got, err := repo.Available(ctx, productID)
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if got != 5 {
		t.Fatalf("expected stock 5, got %d", got)
	}
}

func TestPostgres_ConcurrentDebitsNeverOversell(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	productID := insertProduct(ctx, t, pool, 5)
	repo := NewPostgres(pool, nil)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Debit(ctx, productID, 1); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != 5 {
		t.Fatalf("expected 5 successful debits, got %d", success)
	}
	if got, _ := repo.Available(ctx, productID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, stock int) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `
		INSERT INTO products (key, sku, name, price_cents, currency, stock)
		VALUES ('p1', 'SKU1', 'Prod 1', 100, 'INR', $1)
		RETURNING id::text
	`, stock).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
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
