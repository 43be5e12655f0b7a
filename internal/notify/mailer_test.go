package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureClient struct {
	sent []Message
	err  error
}

func (c *captureClient) Send(_ context.Context, msg Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func sampleOrder() domain.Order {
	placed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	items := []domain.OrderItem{
		domain.NewOrderItem(domain.Product{ID: "p1", Name: "Keyboard", Brand: "Acme", PriceCents: 150000}, 2),
		domain.NewOrderItem(domain.Product{ID: "p2", Name: "Mouse", PriceCents: 70000}, 1),
	}
	total, count := domain.Totals(items)
	return domain.Order{
		ID:                "ord-1001",
		CustomerInfo:      domain.CustomerInfo{Name: "Asha Rao", Email: "asha@example.com", Phone: "9000000000"},
		Items:             items,
		TotalAmountCents:  total,
		TotalItems:        count,
		ShippingAddress:   domain.ShippingAddress{FullAddress: "12 MG Road, Bengaluru, KA 560001"},
		Status:            domain.StatusPending,
		PaymentStatus:     domain.PaymentPending,
		PaymentMethod:     domain.PaymentCOD,
		OrderDate:         placed,
		EstimatedDelivery: placed.AddDate(0, 0, 7),
	}
}

func TestRenderOrderPlaced(t *testing.T) {
	m := NewMailer(&captureClient{}, "orders@store.test", "Computer Store")
	msg, err := m.RenderOrderPlaced(sampleOrder())
	require.NoError(t, err)

	assert.Equal(t, "Order Confirmation - ord-1001", msg.Subject)
	assert.Equal(t, "asha@example.com", msg.To)
	assert.Equal(t, "orders@store.test", msg.From)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "order_placed_text", []byte(msg.Text))
	g.Assert(t, "order_placed_html", []byte(msg.HTML))
}

func TestOrderPlacedPropagatesClientError(t *testing.T) {
	client := &captureClient{err: errors.New("smtp down")}
	m := NewMailer(client, "orders@store.test", "Computer Store")
	err := m.OrderPlaced(context.Background(), sampleOrder())
	require.Error(t, err)
}

func TestOrderPlacedSends(t *testing.T) {
	client := &captureClient{}
	m := NewMailer(client, "orders@store.test", "Computer Store")
	require.NoError(t, m.OrderPlaced(context.Background(), sampleOrder()))
	require.Len(t, client.sent, 1)
	assert.Contains(t, client.sent[0].Text, "Total (3 items): Rs. 3700.00")
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "Rs. 0.05", FormatMoney(5))
	assert.Equal(t, "Rs. 1234.50", FormatMoney(123450))
	assert.Equal(t, "-Rs. 1.00", FormatMoney(-100))
}
