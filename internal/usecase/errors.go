package usecase

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")

	// ErrMissingDependency marks a row that cannot be written because an
	// identifier or referenced entity it needs is absent.
	ErrMissingDependency = errors.New("missing dependency")

	// ErrDependencyUnavailable wraps provider failures that survived every
	// retry.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrSchemaMismatch means the destination table lacks a required or
	// natural key column.
	ErrSchemaMismatch = errors.New("destination schema mismatch")
)
