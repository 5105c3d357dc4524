package index

import "fmt"

// Driver is the host's column-scan seam. The core never touches storage,
// tuple iteration, or SQL directly; it only asks a Driver to scan one
// column and hands back a RowIterator.
type Driver interface {
	// Scan opens an iterator over every row of table.column, in
	// undefined-but-stable order.
	Scan(table, column string) (RowIterator, error)
}

// RowIterator yields one column's values row by row. Record ids are
// assigned by Build in the order Next is called, starting at 0 — the
// iterator's order *is* the scan order every positional bitmap is built
// against.
type RowIterator interface {
	// Next advances to the next row. It returns false, nil once the
	// iterator is exhausted, or false, err on failure.
	Next() (ok bool, err error)
	// Value returns the current row's bytes. A nil return represents a
	// SQL NULL, which Build maps to the empty string.
	Value() []byte
}

// DriverError wraps a failure surfaced by a Driver or RowIterator during
// Build.
type DriverError struct {
	Table, Column string
	Cause         error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("index: driver failed scanning %s.%s: %v", e.Table, e.Column, e.Cause)
}

func (e *DriverError) Unwrap() error { return e.Cause }
