package legisnapshot

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested root or element matches no adjacency row at any date.
	ErrNotFound = errors.New("element not found")

	// ErrInvalidDate is returned when a reference date is unparsable or outside the accepted calendar range.
	ErrInvalidDate = errors.New("invalid reference date")

	// ErrStoreFailed wraps any failed backing-store round trip. Callers may retry.
	ErrStoreFailed = errors.New("backing store round trip failed")

	// ErrNilStore is returned when a Service is constructed without a Store.
	ErrNilStore = errors.New("store must not be nil")

	// ErrNilDatabaseConnection is returned when a store is constructed from a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyTableName is returned when an empty table name is configured.
	ErrEmptyTableName = errors.New("empty table name supplied")

	// ErrUnsupportedDialect is returned when an unknown SQL dialect is configured.
	ErrUnsupportedDialect = errors.New("unsupported sql dialect")

	// ErrBuildingQueryFailed is returned when a SQL query cannot be built.
	ErrBuildingQueryFailed = errors.New("building the query failed")

	// ErrQueryingFailed is returned when a SQL query fails to execute.
	ErrQueryingFailed = errors.New("querying the store failed")

	// ErrScanningDBRowFailed is returned when a result row cannot be scanned.
	ErrScanningDBRowFailed = errors.New("scanning db row failed")

	// ErrInvalidStructureDepth is returned when a negative structure depth is configured.
	ErrInvalidStructureDepth = errors.New("structure depth must not be negative")
)

// DanglingReference describes an adjacency row whose element has no record in its type table.
// It is reported through the logger and metrics, never returned as an error.
type DanglingReference struct {
	ElementID string
	Kind      Kind
}

// wrapStoreError marks a failed store round trip with ErrStoreFailed.
// Not-found and context errors pass through unchanged so callers can still match them.
func wrapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrStoreFailed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return errors.Join(ErrStoreFailed, err)
	}
}

// classifyError maps an error to the error_type label used in metrics and spans.
func classifyError(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return ErrorTypeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	case errors.Is(err, ErrNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, ErrInvalidDate):
		return ErrorTypeInvalidDate
	default:
		return ErrorTypeStore
	}
}
