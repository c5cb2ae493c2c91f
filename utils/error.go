package utils

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrorRecordNotFound = errors.New("record not found")

// InsufficientStockError reports the shortfall in the unit the caller asked in.
type InsufficientStockError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
	Unit      string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: available %s %s, requested %s %s",
		e.Available.String(), e.Unit, e.Requested.String(), e.Unit)
}

type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient account balance: available %s, requested %s",
		e.Available.String(), e.Requested.String())
}

type InsufficientAdvanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientAdvanceError) Error() string {
	return fmt.Sprintf("insufficient advance: available %s, requested %s",
		e.Available.String(), e.Requested.String())
}

// StateConflictError rejects an operation against a record in the wrong state,
// e.g. approving a non-pending return or deleting a paid salary.
type StateConflictError struct {
	Message string
}

func (e *StateConflictError) Error() string { return e.Message }

func NewStateConflict(format string, args ...any) *StateConflictError {
	return &StateConflictError{Message: fmt.Sprintf(format, args...)}
}
