package domain

import (
	"strings"
	"time"
)

// OrderStatus is a step of the fulfilment state machine.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

var statusRank = map[OrderStatus]int{
	StatusPending:    0,
	StatusConfirmed:  1,
	StatusProcessing: 2,
	StatusShipped:    3,
	StatusDelivered:  4,
}

// ParseOrderStatus returns the status for s or InvalidStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := statusRank[st]; ok || st == StatusCancelled {
		return st, nil
	}
	return "", InvalidStatus("invalid status %q. Valid statuses are: pending, confirmed, processing, shipped, delivered, cancelled", s)
}

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether from -> to moves strictly forward, or cancels a
// non-terminal order.
func CanTransition(from, to OrderStatus) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusCancelled {
		return true
	}
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

// PaymentStatus tracks settlement of an order. Payment itself happens elsewhere.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PaymentMethod is the method chosen by the shopper.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
)

// ParsePaymentMethod defaults to cash on delivery when s is empty.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case "":
		return PaymentCOD, nil
	case PaymentCOD, PaymentOnline, PaymentCard, PaymentUPI:
		return m, nil
	}
	return "", Validation("invalid payment method %q", s)
}

// CustomerInfo is the contact snapshot captured when the order is placed.
type CustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ShippingAddress is the flattened address snapshot stored on the order.
type ShippingAddress struct {
	FullAddress string `json:"fullAddress"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
	Pincode     string `json:"pincode,omitempty"`
}

// ShippingFromAddress flattens an address book entry.
func ShippingFromAddress(a Address) ShippingAddress {
	return ShippingAddress{
		FullAddress: a.FullAddress(),
		City:        a.City,
		State:       a.State,
		Pincode:     a.PostalCode,
	}
}

// AddressSelector picks the shipping address: exactly one of a saved address
// reference or an inline payload.
type AddressSelector struct {
	addressID string
	inline    *ShippingAddress
}

// ByReference selects a saved address from the customer's own book.
func ByReference(addressID string) AddressSelector {
	return AddressSelector{addressID: strings.TrimSpace(addressID)}
}

// Inline uses a caller supplied address payload.
func Inline(a ShippingAddress) AddressSelector {
	return AddressSelector{inline: &a}
}

// Reference returns the address id when the selector is by reference.
func (s AddressSelector) Reference() (string, bool) {
	return s.addressID, s.addressID != ""
}

// InlineAddress returns the payload when the selector is inline.
func (s AddressSelector) InlineAddress() (ShippingAddress, bool) {
	if s.inline == nil {
		return ShippingAddress{}, false
	}
	return *s.inline, true
}

// OrderItem is the immutable per-line snapshot taken at order time.
type OrderItem struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	ProductBrand   string `json:"productBrand"`
	UnitPriceCents int64  `json:"unitPriceAtOrderTime"`
	Quantity       int    `json:"quantity"`
	SubtotalCents  int64  `json:"subtotal"`
}

// NewOrderItem snapshots the current product name, brand and price.
func NewOrderItem(p Product, qty int) OrderItem {
	brand := p.Brand
	if brand == "" {
		brand = "Unknown"
	}
	return OrderItem{
		ProductID:      p.ID,
		ProductName:    p.Name,
		ProductBrand:   brand,
		UnitPriceCents: p.PriceCents,
		Quantity:       qty,
		SubtotalCents:  p.PriceCents * int64(qty),
	}
}

// Order is an append-only record. Only status fields change after creation.
type Order struct {
	ID                string          `json:"id"`
	CustomerInfo      CustomerInfo    `json:"customerInfo"`
	Items             []OrderItem     `json:"items"`
	TotalAmountCents  int64           `json:"totalAmount"`
	TotalItems        int             `json:"totalItems"`
	ShippingAddress   ShippingAddress `json:"shippingAddress"`
	Status            OrderStatus     `json:"status"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus"`
	PaymentMethod     PaymentMethod   `json:"paymentMethod"`
	OrderDate         time.Time       `json:"orderDate"`
	EstimatedDelivery time.Time       `json:"estimatedDelivery"`
	DeliveryDate      *time.Time      `json:"deliveryDate,omitempty"`
	CustomerNotes     string          `json:"customerNotes,omitempty"`
	AdminNotes        string          `json:"adminNotes,omitempty"`
	OwnerID           string          `json:"ownerId,omitempty"`
}

// Totals returns the sum of subtotals and quantities over items.
func Totals(items []OrderItem) (amountCents int64, count int) {
	for _, it := range items {
		amountCents += it.SubtotalCents
		count += it.Quantity
	}
	return amountCents, count
}
