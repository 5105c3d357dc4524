package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/CrystallineCore/likematch/bitmap"
	"github.com/CrystallineCore/likematch/internal/conv"
)

// ErrOutOfMemory is surfaced when Build cannot allocate the index's
// backing storage.
//
// Go does not expose a recoverable out-of-memory condition the way some
// other runtimes do: a failed make() for an absurd length panics with
// runtime.Error rather than returning an error. Build recovers that
// specific panic class and converts it to ErrOutOfMemory so the contract
// ("caller sees failure, prior index remains") still holds; a true
// process-wide allocator exhaustion remains fatal and unwinds past Build.
var ErrOutOfMemory = errors.New("index: out of memory building index")

// BuildError wraps a failure that aborted an Index build. The index being
// (re)built is discarded; any previously published Index is untouched.
type BuildError struct {
	Cause error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("index: build failed: %v", e.Cause)
}

func (e *BuildError) Unwrap() error { return e.Cause }

// Build scans table.column through driver and returns a freshly
// constructed, immutable Index.
//
// Build follows this procedure:
//  1. Pack every row's value into the arena, in scan order (RecordId is
//     the row's position in that order).
//  2. For each value, clamped to MaxPositions, populate the forward and
//     reverse positional bitmaps.
//  3. Derive the character-anywhere cache from the forward map.
//  4. Derive the length partition, plus its suffix-union cache, from the
//     stored lengths.
//
// Build never mutates a previously published Index: the caller is
// expected to swap the returned Index in only after Build returns nil
// error (see the root package's publish-on-success pattern).
func Build(driver Driver, table, column string) (*Index, error) {
	return BuildWithLimit(driver, table, column, MaxPositions)
}

// BuildWithLimit is like Build but overrides the default MaxPositions
// truncation bound, letting a caller trade memory for positional
// precision on unusually long values.
func BuildWithLimit(driver Driver, table, column string, maxPositions int) (ix *Index, err error) {
	// posKey.pos is uint16-addressed; a caller-supplied limit beyond that
	// range is clamped rather than silently wrapping during indexing.
	if maxPositions > maxPosKeyPos {
		maxPositions = maxPosKeyPos
	}
	defer func() {
		if r := recover(); r != nil {
			if isAllocPanic(r) {
				ix, err = nil, &BuildError{Cause: ErrOutOfMemory}
				return
			}
			panic(r)
		}
	}()

	rows, scanErr := driver.Scan(table, column)
	if scanErr != nil {
		return nil, &BuildError{Cause: &DriverError{Table: table, Column: column, Cause: scanErr}}
	}

	arenaB := newArenaBuilder()
	forward := make(map[posKey]*bitmap.Bitmap)
	reverse := make(map[posKey]*bitmap.Bitmap)
	var lengths []int
	maxLen := 0

	var id uint32
	for {
		ok, nextErr := rows.Next()
		if nextErr != nil {
			return nil, &BuildError{Cause: &DriverError{Table: table, Column: column, Cause: nextErr}}
		}
		if !ok {
			break
		}

		value := rows.Value()
		arenaB.append(value)

		l := len(value)
		lengths = append(lengths, l)
		if l > maxLen {
			maxLen = l
		}

		clamped := l
		if clamped > maxPositions {
			clamped = maxPositions
		}
		for p := 0; p < clamped; p++ {
			pos := conv.IntToUint16(p)
			insertBitmap(forward, posKey{value[p], pos}, id)
			insertBitmap(reverse, posKey{value[clamped-1-p], pos}, id)
		}

		id++
	}

	charCache := make(map[byte]*bitmap.Bitmap)
	for key, bm := range forward {
		cc, ok := charCache[key.b]
		if !ok {
			cc = bitmap.New()
			charCache[key.b] = cc
		}
		cc.OrInto(bm)
	}

	length := make([]*bitmap.Bitmap, maxLen+1)
	for recID, l := range lengths {
		if length[l] == nil {
			length[l] = bitmap.New()
		}
		length[l].Add(conv.IntToUint32(recID))
	}

	atLeast := make([]*bitmap.Bitmap, maxLen+2)
	atLeast[maxLen+1] = bitmap.New()
	running := bitmap.New()
	for k := maxLen; k >= 0; k-- {
		if length[k] != nil {
			running.OrInto(length[k])
		}
		atLeast[k] = running.Copy()
	}

	return &Index{
		arena:        arenaB.build(),
		forward:      forward,
		reverse:      reverse,
		charCache:    charCache,
		length:       length,
		atLeast:      atLeast,
		maxLen:       maxLen,
		n:            int(id),
		maxPositions: maxPositions,
	}, nil
}

func insertBitmap(m map[posKey]*bitmap.Bitmap, key posKey, id uint32) {
	bm, ok := m[key]
	if !ok {
		bm = bitmap.New()
		m[key] = bm
	}
	bm.Add(id)
}

// isAllocPanic reports whether a recovered panic value looks like a
// failed allocation (e.g. "makeslice: len out of range", "out of
// memory") rather than an unrelated programming error that should keep
// propagating.
func isAllocPanic(r any) bool {
	err, ok := r.(error)
	if !ok {
		return false
	}
	msg := err.Error()
	for _, sub := range []string{"out of memory", "makeslice", "makemap", "cannot allocate memory"} {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}
