package service

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("negative adjustment requires admin")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidDelta      = errors.New("quantity must be a nonzero integer")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrStaleLoad         = errors.New("catalog load superseded by a newer load")
)

// InsufficientStockError carries the line that could not be covered and the
// quantity available when the check ran.
type InsufficientStockError struct {
	ItemID    int64
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d", e.Name, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ValidationError reports malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
