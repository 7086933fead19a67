package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/sangkips/duka-pos/pkg/apperror"
)

// Commit error kinds
var (
	ErrUnauthenticated    = errors.New("no authenticated user")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidPaymentType = errors.New("invalid payment type")
	ErrCommitInProgress   = errors.New("a commit for this cart is already in progress")
	ErrPersistenceFailure = errors.New("sale could not be persisted")
	ErrReceiptIssuance    = errors.New("receipt issuance failed")
)

// Causes of a rolled back commit
var (
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrProductUnavailable = errors.New("product unavailable")
)

// CommitError is returned by SaleService.Commit. Kind is one of the commit
// error kinds; Cause carries the underlying error for diagnostics.
// errors.Is matches both.
type CommitError struct {
	Kind  error
	Cause error
}

func (e *CommitError) Error() string {
	if e.Cause == nil {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Cause)
}

// Is reports whether target is the error kind
func (e *CommitError) Is(target error) bool {
	return target == e.Kind
}

func (e *CommitError) Unwrap() error {
	return e.Cause
}

// AppError maps the commit failure to its HTTP shape
func (e *CommitError) AppError() *apperror.AppError {
	switch e.Kind {
	case ErrUnauthenticated:
		return apperror.ErrUnauthorized
	case ErrEmptyCart:
		return apperror.NewBadRequestError("Cart is empty")
	case ErrInvalidPaymentType:
		return apperror.NewBadRequestError("Payment type must be one of cash, card, mobile_money, credit")
	case ErrCommitInProgress:
		return apperror.NewConflictError("Checkout already in progress for this cart")
	}

	var stockErr *StockError
	if errors.As(e.Cause, &stockErr) {
		return &apperror.AppError{
			Code:    http.StatusConflict,
			Message: stockErr.Error(),
			Errors: []apperror.FieldError{
				{Field: stockErr.ProductID.String(), Message: stockErr.Err.Error()},
			},
		}
	}
	return apperror.NewAppError(http.StatusInternalServerError, "Sale could not be saved, the cart is unchanged")
}

// StockError identifies the cart line whose stock decrement matched no row
type StockError struct {
	ProductID uuid.UUID
	Name      string
	Requested int
	Available int
	Err       error // ErrInsufficientStock or ErrProductUnavailable
}

func (e *StockError) Error() string {
	if errors.Is(e.Err, ErrProductUnavailable) {
		return fmt.Sprintf("%s is no longer available", e.Name)
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Name, e.Requested, e.Available)
}

func (e *StockError) Unwrap() error {
	return e.Err
}

// Cart registry errors
var (
	ErrCartNotFound = apperror.NewNotFoundError("Cart")
	ErrCartBusy     = apperror.NewConflictError("Cart is being checked out")
)
