package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the referenced entity has no visible row.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates a role or ownership check failed.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized indicates a missing or invalid credential.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidStatus indicates an unrecognized order status value.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidOperation indicates an unrecognized stock operation value.
	ErrInvalidOperation = errors.New("invalid operation")
	// ErrValidation indicates a malformed or rule-violating request payload.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicate indicates a unique-constraint violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInsufficientStock indicates requested quantity exceeds current stock.
	// The carrying value is *InsufficientStockError; match with errors.Is.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the offending medicine and the quantity still available.
type InsufficientStockError struct {
	MedicineID int64
	Name       string
	Available  int
	Requested  int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d", e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
