package htmgo

import (
	"errors"
	"fmt"
)

var (
	// ErrColumnsNotAscending is returned when the active-column input is
	// not strictly ascending.
	ErrColumnsNotAscending = errors.New("active columns must be strictly ascending")

	// ErrNilStore is returned when a snapshot operation is given a nil
	// blob store.
	ErrNilStore = errors.New("blob store must not be nil")
)

// ErrInvalidColumn indicates an active-column index outside the configured
// column range. This is a caller bug, reported before any state mutation.
type ErrInvalidColumn struct {
	Index      int
	NumColumns int
}

func (e *ErrInvalidColumn) Error() string {
	return fmt.Sprintf("column index out of range: %d (have %d columns)", e.Index, e.NumColumns)
}

// ErrInvalidParam indicates a configuration value that fails validation.
type ErrInvalidParam struct {
	Param  string
	Reason string
}

func (e *ErrInvalidParam) Error() string {
	return fmt.Sprintf("invalid param %s: %s", e.Param, e.Reason)
}

// ErrSnapshotMismatch indicates a loaded snapshot whose structure does not
// match the supplied parameters.
type ErrSnapshotMismatch struct {
	Field string
	Want  int
	Got   int
}

func (e *ErrSnapshotMismatch) Error() string {
	return fmt.Sprintf("snapshot mismatch: %s is %d, params say %d", e.Field, e.Got, e.Want)
}
