// Package query implements the pattern evaluator: it dispatches a
// compiled pattern.Plan to one of several strategies that combine the
// positional index (package index) through bitmap algebra (package
// bitmap), falling back to the verifier (package verify) only where the
// index cannot exactly decide a candidate on its own.
package query

import (
	"github.com/CrystallineCore/likematch/bitmap"
	"github.com/CrystallineCore/likematch/index"
	"github.com/CrystallineCore/likematch/pattern"
)

// forwardIntersect intersects index.Forward bitmaps for every non-'_'
// byte of s, each rooted at baseOffset (s[k] must sit at baseOffset+k).
//
// It returns constrained=false when s contributes no positional
// constraint at all (every byte is '_'); the caller should then apply no
// filter rather than treat the nil result as "empty". When constrained
// is true, a nil bitmap means the constraint matches no records.
func forwardIntersect(ix *index.Index, s []byte, baseOffset int) (bm *bitmap.Bitmap, constrained bool) {
	for i, b := range s {
		if b == '_' {
			continue
		}
		cell := ix.Forward(b, baseOffset+i)
		if cell == nil {
			return nil, true
		}
		if bm == nil {
			bm = cell.Copy()
		} else {
			bm.AndInto(cell)
			if bm.IsEmpty() {
				return nil, true
			}
		}
		constrained = true
	}
	return bm, constrained
}

// reverseIntersect intersects index.Reverse bitmaps for every non-'_'
// byte of s, under the assumption that s sits flush against the end of
// the value: s[k] must be the (len(s)-1-k)-th byte from the end.
func reverseIntersect(ix *index.Index, s []byte) (bm *bitmap.Bitmap, constrained bool) {
	n := len(s)
	for k, b := range s {
		if b == '_' {
			continue
		}
		j := n - 1 - k
		cell := ix.Reverse(b, j)
		if cell == nil {
			return nil, true
		}
		if bm == nil {
			bm = cell.Copy()
		} else {
			bm.AndInto(cell)
			if bm.IsEmpty() {
				return nil, true
			}
		}
		constrained = true
	}
	return bm, constrained
}

// andConstraint intersects acc (which may be nil, meaning "no filter
// yet") with a constrained result from forwardIntersect/reverseIntersect.
// It returns the updated accumulator and whether the result is
// definitely empty.
func andConstraint(acc *bitmap.Bitmap, bm *bitmap.Bitmap, constrained bool) (out *bitmap.Bitmap, empty bool) {
	if !constrained {
		return acc, false
	}
	if bm == nil {
		return nil, true
	}
	if acc == nil {
		return bm, bm.IsEmpty()
	}
	acc.AndInto(bm)
	return acc, acc.IsEmpty()
}

// allIDs builds the full [0, N) set. Used for the "%" shape's Rows path
// and as evalMultiSlice's candidate set when no literal byte narrows it;
// Count short-circuits "%" to ix.N() without materializing this.
func allIDs(ix *index.Index) *bitmap.Bitmap {
	bm := bitmap.New()
	n := uint32(ix.N())
	for id := uint32(0); id < n; id++ {
		bm.Add(id)
	}
	return bm
}

// evalExact implements the no-'%' shape: intersect every non-'_'
// position's Forward bitmap, then intersect the exact length partition.
func evalExact(ix *index.Index, p *pattern.Plan) *bitmap.Bitmap {
	var cand *bitmap.Bitmap
	if len(p.Slices) == 1 {
		bm, constrained := forwardIntersect(ix, p.Slices[0].Bytes, 0)
		var empty bool
		cand, empty = andConstraint(cand, bm, constrained)
		if empty {
			return bitmap.New()
		}
	}

	exact := ix.LengthExact(p.MinLength)
	if exact == nil {
		return bitmap.New()
	}
	if cand == nil {
		return exact.Copy()
	}
	cand.AndInto(exact)
	return cand
}

// evalPrefix implements "s%": Forward-intersect s at offset 0, then
// require length >= len(s).
func evalPrefix(ix *index.Index, p *pattern.Plan) *bitmap.Bitmap {
	s := p.Slices[0].Bytes
	bm, constrained := forwardIntersect(ix, s, 0)
	cand, empty := andConstraint(nil, bm, constrained)
	if empty {
		return bitmap.New()
	}
	lf := ix.LengthAtLeast(len(s))
	if cand == nil {
		return lf.Copy()
	}
	cand.AndInto(lf)
	return cand
}

// evalSuffix implements "%s": Reverse-intersect s flush against the end,
// then require length >= len(s).
func evalSuffix(ix *index.Index, p *pattern.Plan) *bitmap.Bitmap {
	s := p.Slices[0].Bytes
	bm, constrained := reverseIntersect(ix, s)
	cand, empty := andConstraint(nil, bm, constrained)
	if empty {
		return bitmap.New()
	}
	lf := ix.LengthAtLeast(len(s))
	if cand == nil {
		return lf.Copy()
	}
	cand.AndInto(lf)
	return cand
}

// evalDualAnchor implements "s1%s2": Forward-intersect s1 at offset 0,
// Reverse-intersect s2 flush against the end, then require
// length >= len(s1)+len(s2) so the two constraints cannot overlap.
func evalDualAnchor(ix *index.Index, p *pattern.Plan) *bitmap.Bitmap {
	s1, s2 := p.Slices[0].Bytes, p.Slices[1].Bytes

	fb, fc := forwardIntersect(ix, s1, 0)
	cand, empty := andConstraint(nil, fb, fc)
	if empty {
		return bitmap.New()
	}

	rb, rc := reverseIntersect(ix, s2)
	cand, empty = andConstraint(cand, rb, rc)
	if empty {
		return bitmap.New()
	}

	lf := ix.LengthAtLeast(p.MinLength)
	if cand == nil {
		return lf.Copy()
	}
	cand.AndInto(lf)
	return cand
}
