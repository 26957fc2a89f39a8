package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrAlreadyPaid      = errors.New("order already paid")
	ErrOrderNotPaid     = errors.New("order is not paid")
	ErrOrderLocked      = errors.New("paid undelivered order cannot be deleted")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrNoTransactions   = errors.New("store does not support transactions")
	ErrReconcileBusy    = errors.New("payment reconciliation already in progress")
)

// InsufficientStockError reports which SKU could not cover the requested
// quantity. It aborts the whole reconciliation attempt.
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.SKU, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err wraps an InsufficientStockError.
func IsInsufficientStock(err error) bool {
	var target InsufficientStockError
	return errors.As(err, &target)
}
