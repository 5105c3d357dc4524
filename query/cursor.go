package query

import (
	"github.com/CrystallineCore/likematch/index"
	"github.com/CrystallineCore/likematch/pattern"
)

// Cursor iterates (RecordId, Value) pairs in ascending id order over a
// query's result set. A Cursor borrows the Index it was built from; it
// is invalidated by a subsequent Build.
type Cursor struct {
	ix  *index.Index
	ids []uint32
	pos int
}

// NewCursor wraps a precomputed ascending id list for reading back
// through ix.
func NewCursor(ix *index.Index, ids []uint32) *Cursor {
	return &Cursor{ix: ix, ids: ids}
}

// Next advances the cursor and reports its current (id, value). ok is
// false once every id has been consumed.
func (c *Cursor) Next() (id uint32, value []byte, ok bool) {
	if c.pos >= len(c.ids) {
		return 0, nil, false
	}
	id = c.ids[c.pos]
	value = c.ix.Value(id)
	c.pos++
	return id, value, true
}

// Len returns the total number of (id, value) pairs the cursor will
// yield.
func (c *Cursor) Len() int {
	return len(c.ids)
}

// Rows evaluates p and returns a Cursor over the matching ids in
// ascending order.
func Rows(ix *index.Index, p *pattern.Plan, cancel Canceller) (*Cursor, error) {
	bm, err := Evaluate(ix, p, cancel)
	if err != nil {
		return nil, err
	}
	return NewCursor(ix, bm.ToArray()), nil
}
