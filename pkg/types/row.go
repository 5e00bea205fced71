package types

import "fmt"

// Row is one data row of a table. Index is the 0-based data-row position
// (the header does not count). ID is the value of the table's id column, or
// "" when the table has none.
type Row struct {
	Index  int
	ID     string
	Fields []string
}

// refKind discriminates RowRef variants.
type refKind int

const (
	refByPosition refKind = iota
	refByID
)

// RowRef addresses a data row either by position or by identity. The zero
// value addresses position 0; use ByPosition or ByID to construct one.
// Append is its own operation on Table, never a sentinel index.
type RowRef struct {
	kind refKind
	pos  int
	id   string
}

// ByPosition addresses the data row at 0-based index i.
func ByPosition(i int) RowRef {
	return RowRef{kind: refByPosition, pos: i}
}

// ByID addresses the first data row whose id column equals id.
func ByID(id string) RowRef {
	return RowRef{kind: refByID, id: id}
}

// Position returns the positional index and whether the ref is positional.
func (r RowRef) Position() (int, bool) {
	return r.pos, r.kind == refByPosition
}

// ID returns the identity value and whether the ref is identity-based.
func (r RowRef) ID() (string, bool) {
	return r.id, r.kind == refByID
}

func (r RowRef) String() string {
	if r.kind == refByID {
		return fmt.Sprintf("id=%s", r.id)
	}
	return fmt.Sprintf("row=%d", r.pos)
}
