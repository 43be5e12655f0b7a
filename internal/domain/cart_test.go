package domain

import (
	"errors"
	"testing"
	"time"
)

func TestCart_AddAccumulates(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	var c Cart
	if err := c.Add("a", 2, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add("b", 1, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.Add("a", 3, now.Add(time.Hour)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(c.Lines) != 2 || c.Lines[0].Quantity != 5 || !c.Lines[0].AddedAt.Equal(now) {
		t.Fatalf("unexpected lines: %+v", c.Lines)
	}
	if c.ItemCount() != 6 {
		t.Fatalf("expected 6 items, got %d", c.ItemCount())
	}
}

func TestCart_RejectsBadQuantity(t *testing.T) {
	var c Cart
	for _, q := range []int{0, -1} {
		err := c.Add("a", q, time.Now())
		var derr *Error
		if !errors.As(err, &derr) || derr.Kind != KindInvalidQuantity || derr.Requested != q {
			t.Fatalf("Add(%d): expected invalid quantity, got %v", q, err)
		}
	}
	if err := c.SetQuantity("a", -2, time.Now()); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("SetQuantity(-2): expected invalid quantity, got %v", err)
	}
	if len(c.Lines) != 0 {
		t.Fatalf("cart changed on rejected input: %+v", c.Lines)
	}
}

func TestCart_SetQuantityAndRemove(t *testing.T) {
	var c Cart
	_ = c.SetQuantity("a", 4, time.Now())
	_ = c.SetQuantity("b", 1, time.Now())
	_ = c.SetQuantity("a", 2, time.Now())
	if c.Lines[0].ProductID != "a" || c.Lines[0].Quantity != 2 {
		t.Fatalf("expected a=2 first, got %+v", c.Lines)
	}

	if err := c.SetQuantity("a", 0, time.Now()); err != nil {
		t.Fatalf("set 0: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].ProductID != "b" {
		t.Fatalf("expected only b, got %+v", c.Lines)
	}

	c.Remove("missing")
	if len(c.Lines) != 1 {
		t.Fatalf("removing an absent product changed the cart: %+v", c.Lines)
	}
	c.Clear()
	if c.ItemCount() != 0 || len(c.Lines) != 0 {
		t.Fatalf("expected empty cart, got %+v", c.Lines)
	}
}

func TestNormalizeCart(t *testing.T) {
	got, err := NormalizeCart(Cart{Lines: []CartLine{
		{ProductID: "A", Quantity: 2},
		{ProductID: "A", Quantity: 3},
		{ProductID: "B", Quantity: 1},
	}})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got.Remove("A")
	if len(got.Lines) != 1 || got.ItemCount() != 1 {
		t.Fatalf("expected only B after removing A, got %+v", got.Lines)
	}

	_, err = NormalizeCart(Cart{Lines: []CartLine{{ProductID: "A", Quantity: 2}, {ProductID: "B", Quantity: -4}}})
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
}
