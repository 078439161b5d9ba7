package market

import (
	"errors"
	"fmt"

	"skin-market-go/internal/store"
)

// Kind classifies business-rule failures. Anything that is not an *Error is an infrastructure failure.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindValidation
	KindInvalidState
	KindConflict
	KindBusinessRule
	KindInsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindInvalidState:
		return "invalid_state"
	case KindConflict:
		return "conflict"
	case KindBusinessRule:
		return "business_rule"
	case KindInsufficientFunds:
		return "insufficient_funds"
	}
	return "unknown"
}

// Error is a typed business-rule failure carrying a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return newError(KindInvalidState, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

func BusinessRule(format string, args ...any) *Error {
	return newError(KindBusinessRule, format, args...)
}

func InsufficientFunds(format string, args ...any) *Error {
	return newError(KindInsufficientFunds, format, args...)
}

// KindOf returns the kind of a business-rule failure, or false for infrastructure errors.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsKind reports whether err is a business-rule failure of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// classify turns store sentinels that escape a unit of work into business-rule failures.
// Other errors are infrastructure failures and are returned wrapped.
func classify(err error, op string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, store.ErrConcurrentModification):
		return Conflict("%s conflicted with a concurrent change, please retry", op)
	case errors.Is(err, store.ErrDuplicate):
		return Conflict("%s conflicts with an existing record", op)
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
