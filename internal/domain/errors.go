package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation: the request cannot be planned as given (e.g. fewer than two stops).
	ErrValidation = errors.New("validation failed")
	// ErrAddressNotFound: the geocoder succeeded but matched nothing.
	ErrAddressNotFound = errors.New("address not found")
	// ErrService: a geocoding or directions provider failed.
	ErrService = errors.New("service error")
	// ErrNoRouteFound: the directions provider found no path between two points.
	ErrNoRouteFound = errors.New("no route found")
	// ErrMatrixIncomplete: a matrix cell was still missing after all lookups settled.
	ErrMatrixIncomplete = errors.New("time matrix incomplete")
)

// ServiceError carries the failing operation and the address or pair it was for.
// It matches both ErrService and the underlying cause with errors.Is.
type ServiceError struct {
	Op      string
	Subject string
	Err     error
}

func NewServiceError(op, subject string, err error) *ServiceError {
	return &ServiceError{Op: op, Subject: subject, Err: err}
}

func (e *ServiceError) Error() string {
	if e.Subject == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Subject, e.Err)
}

func (e *ServiceError) Unwrap() []error {
	return []error{ErrService, e.Err}
}
