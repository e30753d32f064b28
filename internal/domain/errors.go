package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound: unknown slug or id at the catalog service.
	ErrNotFound = errors.New("catalog: not found")
	// ErrInvalidRange: local date validation failed; never reaches the network.
	ErrInvalidRange = errors.New("reservation: invalid date range")
	// ErrConflict: the catalog service rejected a create because the range is
	// taken. Expected business outcome, not a fault.
	ErrConflict = errors.New("reservation: range conflict")
	// ErrUnauthorized / ErrForbidden: catalog credentials problems.
	ErrUnauthorized = errors.New("catalog: unauthorized")
	ErrForbidden    = errors.New("catalog: forbidden")
)

// ValidationError names the request fields that failed local validation.
// No partial submission happens when one of these is returned.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// TransportError wraps a network or upstream-service failure. Callers must
// treat it as "unknown", never as unavailable or as success.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
