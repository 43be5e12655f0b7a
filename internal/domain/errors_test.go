package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnavailable_PassesDomainErrorsThrough(t *testing.T) {
	if Unavailable("op", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
	stock := InsufficientStock("p1", "Mouse", 1, 3)
	wrapped := fmt.Errorf("debit: %w", stock)
	if got := Unavailable("place", wrapped); got != wrapped {
		t.Fatalf("domain error was re-wrapped: %v", got)
	}

	raw := errors.New("conn reset")
	got := Unavailable("place", raw)
	if !errors.Is(got, ErrUnavailable) || !errors.Is(got, raw) {
		t.Fatalf("expected unavailable wrapping raw, got %v", got)
	}
	if KindOf(got) != KindUnavailable || KindOf(raw) != "" {
		t.Fatalf("unexpected kinds")
	}
}

func TestInsufficientStock_Fields(t *testing.T) {
	err := InsufficientStock("p1", "", 0, 2)
	var derr *Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *Error")
	}
	if derr.Available != 0 || derr.Requested != 2 || derr.ProductID != "p1" {
		t.Fatalf("unexpected fields: %+v", derr)
	}
	if derr.Message != "insufficient stock for p1. Available: 0, Requested: 2" {
		t.Fatalf("unexpected message: %q", derr.Message)
	}
}
