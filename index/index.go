// Package index implements the positional bitmap index: the forward and
// reverse per-(byte, position) bitmaps, the character-anywhere cache, and
// the length partition.
//
// An *Index is built once (see Build) and is immutable afterward — there
// is no partial mutation. It is created once, read only during queries,
// and destroyed or replaced wholesale on rebuild.
package index

import (
	"github.com/CrystallineCore/likematch/bitmap"
)

// MaxPositions is the default largest byte offset the index tracks.
// Values longer than this are truncated for indexing purposes only; the
// stored Value itself is never truncated. BuildWithLimit accepts an
// override; Build uses this default.
const MaxPositions = 256

// maxPosKeyPos is the largest position posKey.pos (a uint16) can address.
const maxPosKeyPos = 1<<16 - 1

// posKey identifies one (byte, position) cell of the forward or reverse
// positional map.
type posKey struct {
	b   byte
	pos uint16
}

// Index is the immutable, queryable state produced by Build.
//
// All Bitmap fields are owned by the Index and must not be mutated by
// callers; the evaluator (package query) only ever reads them or combines
// them into freshly allocated scratch bitmaps.
type Index struct {
	arena arena

	// forward[posKey{c,i}] = P+[c][i]: ids whose byte at offset i is c.
	forward map[posKey]*bitmap.Bitmap
	// reverse[posKey{c,j}] = P-[c][j]: ids whose byte at offset
	// len-1-j is c (the j-th byte from the end). For a value longer than
	// maxPositions, len is the clamped length, so j counts back from the
	// end of the value's first maxPositions bytes.
	reverse map[posKey]*bitmap.Bitmap
	// charCache[c] = A[c]: ids containing byte c anywhere.
	charCache map[byte]*bitmap.Bitmap
	// length[k] = L[k]: ids whose value has length exactly k.
	length []*bitmap.Bitmap
	// atLeast[k] = union of length[j] for j >= k. atLeast[maxLen+1] is
	// always empty, so a query clamped to maxLen+1 short-circuits to the
	// empty result without a bounds check.
	atLeast []*bitmap.Bitmap

	maxLen       int
	n            int
	maxPositions int
}

// N returns the number of records in the index.
func (ix *Index) N() int { return ix.n }

// MaxLen returns the longest value length observed during build. It is
// the full stored length, not clamped to MaxPositions.
func (ix *Index) MaxLen() int { return ix.maxLen }

// Value returns the stored bytes for id. The returned slice is owned by
// the index and must not be modified.
func (ix *Index) Value(id uint32) []byte { return ix.arena.value(id) }

// Forward returns P+[c][pos], or nil if no record has byte c at offset
// pos — an absent entry and an empty set mean the same thing here.
func (ix *Index) Forward(c byte, pos int) *bitmap.Bitmap {
	if pos < 0 || pos >= ix.maxPositions {
		return nil
	}
	return ix.forward[posKey{c, uint16(pos)}]
}

// Reverse returns P-[c][j], or nil if no record has byte c as its j-th
// byte from the end.
func (ix *Index) Reverse(c byte, j int) *bitmap.Bitmap {
	if j < 0 || j >= ix.maxPositions {
		return nil
	}
	return ix.reverse[posKey{c, uint16(j)}]
}

// MaxPositions returns the largest byte offset this index tracks
// (positions at or past this bound were truncated for indexing purposes
// during Build).
func (ix *Index) MaxPositions() int { return ix.maxPositions }

// CharAnywhere returns A[c], or nil if byte c never appears in any value.
func (ix *Index) CharAnywhere(c byte) *bitmap.Bitmap {
	return ix.charCache[c]
}

// LengthExact returns L[k], or nil if no record has length exactly k.
func (ix *Index) LengthExact(k int) *bitmap.Bitmap {
	if k < 0 || k >= len(ix.length) {
		return nil
	}
	return ix.length[k]
}

// LengthAtLeast returns a Bitmap equal to the union of L[j] for every
// j >= k. The returned Bitmap is shared, owned-by-index state: callers
// must Copy it before any in-place bitmap mutation.
func (ix *Index) LengthAtLeast(k int) *bitmap.Bitmap {
	if k < 0 {
		k = 0
	}
	if k >= len(ix.atLeast) {
		return bitmap.New()
	}
	return ix.atLeast[k]
}
