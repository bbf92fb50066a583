package stdnames

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a standard name is not in the catalog.
	ErrNotFound = errors.New("standard name not found")
	// ErrExists is returned when staging an addition for a name that is
	// already present.
	ErrExists = errors.New("standard name already exists")
	// ErrUnitOfWorkActive is returned by Begin while another unit of work
	// is open; the catalog is single-writer.
	ErrUnitOfWorkActive = errors.New("another unit of work is active")
	// ErrUnitOfWorkClosed is returned when using a unit of work after
	// Commit or Abort.
	ErrUnitOfWorkClosed = errors.New("unit of work is closed")
	// ErrValidationFailed is returned by Commit when the staged catalog
	// violates grammar, rank or relational rules; the accompanying
	// Report lists every violation.
	ErrValidationFailed = errors.New("catalog validation failed")
	// ErrCatalogClosed is returned when using a closed catalog.
	ErrCatalogClosed = errors.New("catalog is closed")
)

// ErrInvalidQuery indicates an unusable search query.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInvalidQuery struct {
	Query string
	cause error
}

func (e *ErrInvalidQuery) Error() string {
	return fmt.Sprintf("invalid query %q", e.Query)
}

func (e *ErrInvalidQuery) Unwrap() error { return e.cause }
