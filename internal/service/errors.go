package service

import (
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/event-ticketing/internal/repository"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation failed")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrForbidden        = errors.New("forbidden")
	ErrInfrastructure   = errors.New("infrastructure failure")
)

// Error is the typed failure returned by every service operation.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func notFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func exceeded(format string, args ...any) error {
	return &Error{Kind: ErrCapacityExceeded, Msg: fmt.Sprintf(format, args...)}
}

func forbidden(format string, args ...any) error {
	return &Error{Kind: ErrForbidden, Msg: fmt.Sprintf(format, args...)}
}

// storeErr classifies an error coming out of the repository. Errors that
// are already typed pass through; ErrNotFound becomes a NotFound naming
// what was missing; anything else is an infrastructure failure.
func storeErr(op, what string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("%s not found", what)
	}
	return &Error{Kind: ErrInfrastructure, Msg: op, Err: err}
}

func isInfrastructure(err error) bool {
	return errors.Is(err, ErrInfrastructure)
}
