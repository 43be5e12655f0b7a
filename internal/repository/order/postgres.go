package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/repository/inventory"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `
    id::text, COALESCE(owner_id::text, ''), customer_name, customer_email, customer_phone,
    total_amount_cents, total_items, shipping_address, status, payment_status, payment_method,
    order_date, estimated_delivery, delivery_date, customer_notes, admin_notes`

func (r *postgresRepo) Place(ctx context.Context, o *domain.Order) error {
	if len(o.Items) == 0 {
		return domain.ErrEmptyOrder
	}
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	var owner *string
	if o.OwnerID != "" {
		owner = &o.OwnerID
	}

	err = db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
INSERT INTO orders (
    id, owner_id, customer_name, customer_email, customer_phone,
    total_amount_cents, total_items, shipping_address, status, payment_status, payment_method,
    order_date, estimated_delivery, customer_notes, admin_notes
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`,
			o.ID, owner, o.CustomerInfo.Name, o.CustomerInfo.Email, o.CustomerInfo.Phone,
			o.TotalAmountCents, o.TotalItems, shipping, string(o.Status), string(o.PaymentStatus), string(o.PaymentMethod),
			o.OrderDate, o.EstimatedDelivery, o.CustomerNotes, o.AdminNotes,
		)
		if err != nil {
			return err
		}

		for _, it := range lockOrder(o.Items) {
			if err := inventory.DebitTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}

		for i, it := range o.Items {
			_, err := tx.Exec(ctx, `
INSERT INTO order_items (
    order_id, position, product_id, product_name, product_brand,
    unit_price_cents, quantity, subtotal_cents
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, o.ID, i, it.ProductID, it.ProductName, it.ProductBrand, it.UnitPriceCents, it.Quantity, it.SubtotalCents)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Printf("order repo: place id=%s items=%d error=%v", o.ID, len(o.Items), err)
		return err
	}
	return nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	o, err := scanOrder(r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("order repo: get id=%s error=%v", id, err)
		return nil, err
	}
	if err := r.attachItems(ctx, r.pool, []*domain.Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByOwner(ctx context.Context, f OwnerFilter) ([]domain.Order, error) {
	var (
		where string
		arg   any
	)
	switch {
	case f.CustomerID != "":
		if _, err := uuid.Parse(f.CustomerID); err != nil {
			return nil, nil
		}
		where, arg = `owner_id = $1`, f.CustomerID
	case strings.TrimSpace(f.Email) != "":
		where, arg = `lower(customer_email) = lower($1)`, strings.TrimSpace(f.Email)
	default:
		return nil, domain.Validation("customer id or email is required")
	}
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE `+where+` ORDER BY order_date DESC, id`, arg)
}

func (r *postgresRepo) List(ctx context.Context, f ListFilter) ([]domain.Order, int, error) {
	f = f.Normalize()

	var (
		conds []string
		args  []any
	)
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("order_date >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("order_date <= $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`+where, args...).Scan(&total); err != nil {
		r.logger.Printf("order repo: count error=%v", err)
		return nil, 0, err
	}

	dir := "DESC"
	if f.SortAsc {
		dir = "ASC"
	}
	args = append(args, f.Limit, (f.Page-1)*f.Limit)
	q := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY order_date %s, id LIMIT $%d OFFSET $%d`,
		orderColumns, where, dir, len(args)-1, len(args))
	orders, err := r.query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, id string, u StatusUpdate) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	var updated *domain.Order
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		o, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrNotFound
			}
			return err
		}
		if o.Status != u.Status && !domain.CanTransition(o.Status, u.Status) {
			return domain.InvalidStatus("cannot move order from %s to %s", o.Status, u.Status)
		}
		if o.Status == u.Status && o.Status.Terminal() {
			return domain.InvalidStatus("order is already %s", o.Status)
		}
		if err := r.attachItems(ctx, tx, []*domain.Order{o}); err != nil {
			return err
		}

		if u.Status == domain.StatusCancelled && o.Status != domain.StatusCancelled {
			for _, it := range lockOrder(o.Items) {
				if err := inventory.RestockTx(ctx, tx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}
		if u.Status == domain.StatusDelivered && o.Status != domain.StatusDelivered {
			at := u.At.UTC()
			o.DeliveryDate = &at
		}
		o.Status = u.Status
		if u.AdminNotes != nil {
			o.AdminNotes = *u.AdminNotes
		}

		_, err = tx.Exec(ctx, `
UPDATE orders
SET status = $2, delivery_date = $3, admin_notes = $4
WHERE id = $1
`, id, string(o.Status), o.DeliveryDate, o.AdminNotes)
		if err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		if domain.KindOf(err) == "" {
			r.logger.Printf("order repo: update status id=%s status=%s error=%v", id, u.Status, err)
		}
		return nil, err
	}
	return updated, nil
}

func (r *postgresRepo) query(ctx context.Context, q string, args ...any) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Printf("order repo: list error=%v", err)
		return nil, err
	}
	var ptrs []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		ptrs = append(ptrs, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachItems(ctx, r.pool, ptrs); err != nil {
		return nil, err
	}

	out := make([]domain.Order, 0, len(ptrs))
	for _, o := range ptrs {
		out = append(out, *o)
	}
	return out, nil
}

func (r *postgresRepo) attachItems(ctx context.Context, q db.Querier, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, 0, len(orders))
	byID := make(map[string]*domain.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Items = nil
	}
	rows, err := q.Query(ctx, `
SELECT order_id::text, product_id::text, product_name, product_brand, unit_price_cents, quantity, subtotal_cents
FROM order_items
WHERE order_id = ANY($1::uuid[])
ORDER BY order_id, position
`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID string
			it      domain.OrderItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.ProductBrand, &it.UnitPriceCents, &it.Quantity, &it.SubtotalCents); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o        domain.Order
		shipping []byte
		status   string
		payStat  string
		payMeth  string
	)
	if err := row.Scan(
		&o.ID, &o.OwnerID, &o.CustomerInfo.Name, &o.CustomerInfo.Email, &o.CustomerInfo.Phone,
		&o.TotalAmountCents, &o.TotalItems, &shipping, &status, &payStat, &payMeth,
		&o.OrderDate, &o.EstimatedDelivery, &o.DeliveryDate, &o.CustomerNotes, &o.AdminNotes,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.PaymentStatus = domain.PaymentStatus(payStat)
	o.PaymentMethod = domain.PaymentMethod(payMeth)
	return &o, nil
}

// lockOrder returns items sorted by product id. Product rows are always
// locked in this order so concurrent orders over the same products cannot
// deadlock. The stored item order is left as given.
func lockOrder(items []domain.OrderItem) []domain.OrderItem {
	out := make([]domain.OrderItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
