package xlsxreader

import (
	"errors"
	"fmt"
)

// ErrDestroyed indicates an operation on a cursor after Destroy. Destruction
// is terminal; every later operation fails the same way.
var ErrDestroyed = errors.New("cursor has been destroyed")

// ErrNotLoaded indicates a read before any sheet was loaded.
var ErrNotLoaded = errors.New("no sheet loaded")

// ErrMissingRecordHandler indicates ReadAll was invoked with no record
// callback, neither as an argument nor registered on the cursor.
var ErrMissingRecordHandler = errors.New("no record handler available")

// ErrNegativeCount indicates ReadMany was called with a negative count.
var ErrNegativeCount = errors.New("count must not be negative")

// ErrNoInput indicates Read was called without an input path.
var ErrNoInput = errors.New("input path is required")

// ErrUnknownFormat indicates an output format with no built-in sink.
var ErrUnknownFormat = errors.New("unknown output format")

// BoundsError reports a row or column index outside the declared used range.
// The offending call returns a null result; cursor state is not mutated.
type BoundsError struct {
	Index int
	Min   int
	Max   int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("index %d outside used range [%d, %d]", e.Index, e.Min, e.Max)
}

// SchemaMappingError reports a header column with no schema entry. It is
// raised at most once per read operation; further unmapped columns in the
// same run are skipped silently.
type SchemaMappingError struct {
	Column string
}

func (e *SchemaMappingError) Error() string {
	return fmt.Sprintf("no schema entry for column %q", e.Column)
}
