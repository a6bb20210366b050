package domain

import "errors"

// Domain errors returned by the engine and repository implementations.

var (
	// ErrObligationNotFound indicates the referenced obligation does not exist.
	ErrObligationNotFound = errors.New("obligation not found")

	// ErrInvalidRecurrence indicates the recurrence calculator was invoked on
	// a non-recurring obligation. This is always a caller contract bug: the
	// batch query only selects recurring obligations, so seeing it there
	// points at a query-filter defect.
	ErrInvalidRecurrence = errors.New("obligation has no recurrence")

	// ErrVersionConflict indicates the record changed since it was read.
	// Treated as a retryable per-item failure by the batch driver.
	ErrVersionConflict = errors.New("version conflict: record changed since read")

	// ErrInvalidID indicates the provided ID format is invalid.
	ErrInvalidID = errors.New("invalid ID format")
)
