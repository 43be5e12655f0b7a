package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"storefront/internal/domain"
)

const dateLayout = "02 Jan 2006"

var textTmpl = texttemplate.Must(texttemplate.New("order_text").Parse(`Hi {{.Name}},

Thank you for shopping with {{.Store}}. We have received your order.

Order ID: {{.ID}}
Order date: {{.OrderDate}}
Estimated delivery: {{.EstimatedDelivery}}
Payment method: {{.PaymentMethod}}

Items:
{{range .Items}}- {{.Name}} ({{.Brand}}) x{{.Quantity}} @ {{.UnitPrice}} = {{.Subtotal}}
{{end}}
Total ({{.TotalItems}} items): {{.Total}}

Shipping to:
{{.Address}}
`))

var htmlTmpl = htmltemplate.Must(htmltemplate.New("order_html").Parse(`<h2>Thank you for your order, {{.Name}}!</h2>
<p>Order <strong>{{.ID}}</strong> placed on {{.OrderDate}}. Estimated delivery: {{.EstimatedDelivery}}.</p>
<table>
<tr><th>Item</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
{{range .Items}}<tr><td>{{.Name}} ({{.Brand}})</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.Subtotal}}</td></tr>
{{end}}</table>
<p>Total ({{.TotalItems}} items): <strong>{{.Total}}</strong></p>
<p>Shipping to: {{.Address}}</p>
<p>{{.Store}}</p>
`))

type mailItem struct {
	Name      string
	Brand     string
	Quantity  int
	UnitPrice string
	Subtotal  string
}

type mailData struct {
	Store             string
	Name              string
	ID                string
	OrderDate         string
	EstimatedDelivery string
	PaymentMethod     string
	Items             []mailItem
	TotalItems        int
	Total             string
	Address           string
}

// Mailer renders and sends customer notifications.
type Mailer struct {
	client    EmailClient
	from      string
	storeName string
}

func NewMailer(client EmailClient, from, storeName string) *Mailer {
	return &Mailer{client: client, from: strings.TrimSpace(from), storeName: storeName}
}

// OrderPlaced sends the confirmation for o to the customer's email.
func (m *Mailer) OrderPlaced(ctx context.Context, o domain.Order) error {
	msg, err := m.RenderOrderPlaced(o)
	if err != nil {
		return err
	}
	return m.client.Send(ctx, msg)
}

// RenderOrderPlaced builds the confirmation message without sending it.
func (m *Mailer) RenderOrderPlaced(o domain.Order) (Message, error) {
	data := mailData{
		Store:             m.storeName,
		Name:              o.CustomerInfo.Name,
		ID:                o.ID,
		OrderDate:         o.OrderDate.UTC().Format(dateLayout),
		EstimatedDelivery: o.EstimatedDelivery.UTC().Format(dateLayout),
		PaymentMethod:     strings.ToUpper(string(o.PaymentMethod)),
		TotalItems:        o.TotalItems,
		Total:             FormatMoney(o.TotalAmountCents),
		Address:           o.ShippingAddress.FullAddress,
	}
	for _, it := range o.Items {
		data.Items = append(data.Items, mailItem{
			Name:      it.ProductName,
			Brand:     it.ProductBrand,
			Quantity:  it.Quantity,
			UnitPrice: FormatMoney(it.UnitPriceCents),
			Subtotal:  FormatMoney(it.SubtotalCents),
		})
	}

	var text, html bytes.Buffer
	if err := textTmpl.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("render order text: %w", err)
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("render order html: %w", err)
	}
	return Message{
		FromName: m.storeName,
		From:     m.from,
		To:       o.CustomerInfo.Email,
		ToName:   o.CustomerInfo.Name,
		Subject:  fmt.Sprintf("Order Confirmation - %s", o.ID),
		Text:     text.String(),
		HTML:     html.String(),
	}, nil
}

// FormatMoney renders minor units as rupees with two decimals.
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%sRs. %d.%02d", sign, cents/100, cents%100)
}
