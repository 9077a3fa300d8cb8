package types

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrInvalidFee        = fmt.Errorf("%w: invalid fee", ErrValidation)
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNotFound          = errors.New("not found")
	ErrAuthorization     = errors.New("not authorized")
	ErrInvalidReference  = errors.New("invalid reference")
	ErrPersistence       = errors.New("persistence error")
	ErrConflict          = errors.New("concurrent modification")
)

// InsufficientFundsError carries the amount a debit needed and the balance it found.
type InsufficientFundsError struct {
	Required decimal.Decimal
	Current  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf(
		"insufficient funds: required %s, current balance %s",
		e.Required.StringFixed(2),
		e.Current.StringFixed(2),
	)
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Persistence(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

func Authorizationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

func InvalidReferencef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidReference, fmt.Sprintf(format, args...))
}
