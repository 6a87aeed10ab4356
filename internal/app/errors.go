package app

import (
	"errors"
	"fmt"

	"github.com/mesfinance/finance-service/internal/domain"
	"github.com/shopspring/decimal"
)

// ErrInvalidCredentials is returned for any credential mismatch at login. The
// message stays generic on purpose: callers must not learn which of the two
// fields was wrong.
var ErrInvalidCredentials = errors.New("invalid phone number or password")

// ErrTooManyLoginAttempts is returned when the login rate limiter trips.
// The concrete value is a TooManyLoginAttemptsError carrying the wait time.
var ErrTooManyLoginAttempts = errors.New("too many login attempts")

// TooManyLoginAttemptsError tells a throttled caller how long to back off.
type TooManyLoginAttemptsError struct {
	RetryAfterSeconds int
}

func (e *TooManyLoginAttemptsError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %ds", e.RetryAfterSeconds)
}

func (e *TooManyLoginAttemptsError) Is(target error) bool {
	return target == ErrTooManyLoginAttempts
}

// ValidationError reports a missing or malformed field in a request. It is
// always recoverable: the request is rejected with no state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErr(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// InsufficientFundsError rejects an expense that exceeds the recomputed
// balance of its account tag. Nothing is written when it is returned.
type InsufficientFundsError struct {
	Compte  domain.AccountTag
	Balance decimal.Decimal
	Amount  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on %s: balance is %s, requested %s",
		e.Compte, e.Balance.StringFixed(2), e.Amount.StringFixed(2))
}
