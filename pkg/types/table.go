package types

import "errors"

// Table provides uniform operations over a single flat-file table. Row 0 of
// the underlying file is always the header; data rows are addressed 0-based
// immediately after it.
type Table interface {
	// Name returns the table name (the file name inside the data directory).
	Name() string

	// Header returns the column names from the table's header row.
	Header() ([]string, error)

	// Rows returns a snapshot of all data rows in file order.
	Rows() ([]Row, error)

	// Get retrieves the data row whose id column equals id.
	// Returns ErrRowNotFound if no row has that id, ErrInvalidSchema if the
	// table has no id column.
	Get(id string) (Row, error)

	// Append adds a row at the end of the table. The id column is assigned
	// max(existing ids)+1, the status column defaults to StatusOpen, and the
	// user column is stamped with the current actor when the schema names
	// one. Returns the stored row.
	Append(fields []string) (Row, error)

	// Update replaces the fields of the row resolved by ref. A positional
	// ref equal to the current data-row count appends (grow-on-write).
	// Returns ErrInvalidRowIndex for positions outside [0, rowCount] and
	// ErrRowNotFound for an id with no match.
	Update(ref RowRef, fields []string) error

	// SetStatus sets the status column of the row with the given id.
	// Soft delete is SetStatus(id, StatusCancelled); archive is
	// SetStatus(id, StatusArchived). The row is never removed.
	// Returns ErrInvalidSchema if the table lacks an id or status column,
	// ErrInvalidTransition if the table's policy rejects the change.
	SetStatus(id string, status Status) error

	// Search returns every data row where some column equals token exactly.
	// The token must be a non-empty pure-digit string; anything else is
	// rejected with ErrInvalidToken before the table is read.
	Search(token string) ([]Row, error)

	// SearchAndDelete physically removes every row matched by Search and
	// returns the number of removed rows. This is the only physical
	// deletion path; everything user-facing goes through SetStatus.
	SearchAndDelete(token string) (int, error)
}

// Table operation errors.
var (
	ErrRowNotFound            = errors.New("row not found")
	ErrInvalidRowIndex        = errors.New("row index out of range")
	ErrInvalidSchema          = errors.New("required column absent")
	ErrMalformedTable         = errors.New("row field count does not match header")
	ErrInvalidToken           = errors.New("search token must be digits only")
	ErrInvalidData            = errors.New("field value contains a delimiter")
	ErrConcurrentModification = errors.New("table changed since load")
)
