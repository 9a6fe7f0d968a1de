package service

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the allocator, transfer and settlement services.
// Handlers map these to HTTP statuses with errors.As / errors.Is; none of
// them is retried by the services themselves — a replayed settlement would
// double-decrement stock and double-log the transaction.

// ValidationError signals missing or malformed caller input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundError signals an unknown product/branch/sku reference.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

// InsufficientStockError signals a business-rule violation: the requested
// quantity exceeds what the branch holds. Names the offending SKU so the
// caller can adjust quantity or branch.
type InsufficientStockError struct {
	SKU       string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for SKU %s: %d available, %d requested", e.SKU, e.Available, e.Requested)
}

// TransactionError wraps a storage-level transaction failure. Surfaced as 500
// and logged — never silently swallowed.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// ErrProtectedBranch is returned when a delete targets the protected main branch.
var ErrProtectedBranch = errors.New("cannot delete a protected branch")
