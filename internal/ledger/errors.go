package ledger

import "errors"

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("price must be positive")
	ErrInvalidAmount   = errors.New("amount must be positive")

	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInsufficientHoldings = errors.New("insufficient holdings")

	ErrStockSuspended      = errors.New("stock is suspended")
	ErrStockNotFound       = errors.New("stock not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrRollbackNotAllowed        = errors.New("rollback not allowed")
	ErrRollbackInsufficientFunds = errors.New("insufficient funds to reverse sale proceeds")

	ErrIllegalStatusTransition = errors.New("illegal transaction status transition")

	// ErrConcurrencyConflict is returned when the per-entity lock could not be
	// acquired before the configured timeout.
	ErrConcurrencyConflict = errors.New("operation timed out waiting for entity lock")

	// ErrServiceUnavailable wraps unexpected storage failures. The enclosing
	// database transaction is rolled back, so no partial state is committed.
	ErrServiceUnavailable = errors.New("service unavailable")
)
