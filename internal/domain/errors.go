package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures returned across the service boundary.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindInvalidQuantity   Kind = "invalid_quantity"
	KindInsufficientStock Kind = "insufficient_stock"
	KindMergeFailed       Kind = "merge_failed"
	KindUnavailable       Kind = "unavailable"
	KindInvalidStatus     Kind = "invalid_status"
	KindEmptyOrder        Kind = "empty_order"
	KindUnauthenticated   Kind = "unauthenticated"
	KindMissingAddress    Kind = "missing_address"
	KindAddressNotFound   Kind = "address_not_found"
	KindProductNotFound   Kind = "product_not_found"
	KindAlreadyExists     Kind = "already_exists"
)

// Error is the typed result for every business-rule failure.
// ProductID, Available and Requested are set for stock and quantity failures.
type Error struct {
	Kind      Kind
	Message   string
	ProductID string
	Available int
	Requested int
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "not found"}
	// ErrAlreadyExists indicates a unique constraint was hit.
	ErrAlreadyExists = &Error{Kind: KindAlreadyExists, Message: "already exists"}

	ErrValidation        = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrInvalidQuantity   = &Error{Kind: KindInvalidQuantity, Message: "invalid quantity"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Message: "insufficient stock"}
	ErrMergeFailed       = &Error{Kind: KindMergeFailed, Message: "cart merge failed"}
	ErrUnavailable       = &Error{Kind: KindUnavailable, Message: "storage unavailable"}
	ErrInvalidStatus     = &Error{Kind: KindInvalidStatus, Message: "invalid status"}
	ErrEmptyOrder        = &Error{Kind: KindEmptyOrder, Message: "at least one item is required"}
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated, Message: "customer must be logged in"}
	ErrMissingAddress    = &Error{Kind: KindMissingAddress, Message: "shipping address is required"}
	ErrAddressNotFound   = &Error{Kind: KindAddressNotFound, Message: "selected address not found"}
	ErrProductNotFound   = &Error{Kind: KindProductNotFound, Message: "product not found"}
)

// Validation builds a ValidationError with the given message.
func Validation(format string, args ...interface{}) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// InvalidQuantity reports a rejected quantity for a product.
func InvalidQuantity(productID string, requested int) error {
	return &Error{
		Kind:      KindInvalidQuantity,
		Message:   fmt.Sprintf("invalid quantity %d for product %s", requested, productID),
		ProductID: productID,
		Requested: requested,
	}
}

// InsufficientStock reports available versus requested units.
func InsufficientStock(productID, name string, available, requested int) error {
	label := name
	if label == "" {
		label = productID
	}
	return &Error{
		Kind:      KindInsufficientStock,
		Message:   fmt.Sprintf("insufficient stock for %s. Available: %d, Requested: %d", label, available, requested),
		ProductID: productID,
		Available: available,
		Requested: requested,
	}
}

// ProductNotFound reports an unknown product id.
func ProductNotFound(productID string) error {
	return &Error{
		Kind:      KindProductNotFound,
		Message:   fmt.Sprintf("product with ID %s not found", productID),
		ProductID: productID,
	}
}

// InvalidStatus reports a rejected status value or transition.
func InvalidStatus(format string, args ...interface{}) error {
	return &Error{Kind: KindInvalidStatus, Message: fmt.Sprintf(format, args...)}
}

// MergeFailed wraps the storage failure that aborted a cart merge.
func MergeFailed(err error) error {
	return &Error{Kind: KindMergeFailed, Message: "cart merge failed", Err: err}
}

// Unavailable wraps a storage failure. Typed domain errors pass through untouched.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	var derr *Error
	if errors.As(err, &derr) {
		return err
	}
	return &Error{Kind: KindUnavailable, Message: op, Err: err}
}

// KindOf extracts the Kind of err, or "" for untyped errors.
func KindOf(err error) Kind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return ""
}
