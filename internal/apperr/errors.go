// Package apperr defines the error taxonomy shared across Mythril services.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// DomainError is a rule violation (invalid state transition, bad input)
// that the request layer maps to a 4xx response.
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string { return e.Msg }

// Domainf creates a DomainError with a formatted message.
func Domainf(format string, args ...any) *DomainError {
	return &DomainError{Msg: fmt.Sprintf(format, args...)}
}

// IsDomain reports whether err is (or wraps) a DomainError.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
