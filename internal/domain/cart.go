package domain

import (
	"strings"
	"time"
)

// CartLine is one product entry in a cart. A cart holds at most one line per product.
type CartLine struct {
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// Cart is an ordered list of lines. The order matters for display only.
type Cart struct {
	Lines []CartLine `json:"items"`
}

// Add increases the quantity of an existing line or appends a new one.
func (c *Cart) Add(productID string, qty int, now time.Time) error {
	if qty < 1 {
		return InvalidQuantity(productID, qty)
	}
	if i := c.index(productID); i >= 0 {
		c.Lines[i].Quantity += qty
		return nil
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: qty, AddedAt: now.UTC()})
	return nil
}

// SetQuantity replaces or inserts a line. Zero removes the line.
func (c *Cart) SetQuantity(productID string, qty int, now time.Time) error {
	if qty < 0 {
		return InvalidQuantity(productID, qty)
	}
	if qty == 0 {
		c.Remove(productID)
		return nil
	}
	if i := c.index(productID); i >= 0 {
		c.Lines[i].Quantity = qty
		return nil
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: qty, AddedAt: now.UTC()})
	return nil
}

// Remove drops the line for productID. Absent products are ignored.
func (c *Cart) Remove(productID string) {
	i := c.index(productID)
	if i < 0 {
		return
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
}

// NormalizeCart checks a client supplied cart. Lines for the same product are
// folded into the first one by adding quantities; a line with a blank product
// or a quantity below 1 rejects the whole cart.
func NormalizeCart(in Cart) (Cart, error) {
	out := Cart{Lines: make([]CartLine, 0, len(in.Lines))}
	for _, l := range in.Lines {
		l.ProductID = strings.TrimSpace(l.ProductID)
		if l.ProductID == "" {
			return Cart{}, Validation("productId is required")
		}
		if l.Quantity < 1 {
			return Cart{}, InvalidQuantity(l.ProductID, l.Quantity)
		}
		if i := out.index(l.ProductID); i >= 0 {
			out.Lines[i].Quantity += l.Quantity
			if !l.AddedAt.IsZero() && (out.Lines[i].AddedAt.IsZero() || l.AddedAt.Before(out.Lines[i].AddedAt)) {
				out.Lines[i].AddedAt = l.AddedAt
			}
			continue
		}
		out.Lines = append(out.Lines, l)
	}
	return out, nil
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) index(productID string) int {
	for i, l := range c.Lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// CartViewLine joins a cart line with the live product price.
type CartViewLine struct {
	CartLine
	Name           string `json:"name,omitempty"`
	Brand          string `json:"brand,omitempty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
	Unavailable    bool   `json:"unavailable,omitempty"`
}

// CartView is the priced read model of a cart.
type CartView struct {
	Lines      []CartViewLine `json:"items"`
	TotalCents int64          `json:"totalCents"`
	ItemCount  int            `json:"itemCount"`
}
