package query

import (
	"errors"

	"github.com/CrystallineCore/likematch/bitmap"
	"github.com/CrystallineCore/likematch/index"
	"github.com/CrystallineCore/likematch/pattern"
	"github.com/CrystallineCore/likematch/verify"
)

// ErrPatternTooLong is returned when a pattern's minimum required length
// exceeds the index's MaxPositions bound (ix.MaxPositions()).
var ErrPatternTooLong = errors.New("query: pattern minimum length exceeds MaxPositions")

// ErrCancelled is returned when a host-supplied cancellation check aborts
// an in-progress query.
var ErrCancelled = errors.New("query: cancelled")

// Canceller is a host-provided abort check, polled between bitmap
// operations and between verification iterations for the more expensive
// strategies. A nil Canceller never aborts.
type Canceller func() bool

func (c Canceller) cancelled() bool {
	return c != nil && c()
}

// Evaluate dispatches plan to the strategy matching its Shape and
// returns the resulting Bitmap of matching record ids.
//
// The returned Bitmap is independently owned by the caller except where
// documented otherwise (the pure-length-filter shapes return a Copy of
// index-owned state already); every evaluator in this package upholds
// that by construction.
func Evaluate(ix *index.Index, p *pattern.Plan, cancel Canceller) (*bitmap.Bitmap, error) {
	if p.MinLength > ix.MaxPositions() {
		return nil, ErrPatternTooLong
	}
	if cancel.cancelled() {
		return nil, ErrCancelled
	}

	switch p.Classify() {
	case pattern.ShapeAllPercent:
		return allIDs(ix), nil

	case pattern.ShapePureWildcardExact:
		k, _, _ := p.IsPureWildcard()
		if bm := ix.LengthExact(k); bm != nil {
			return bm.Copy(), nil
		}
		return bitmap.New(), nil

	case pattern.ShapePureWildcardAtLeast:
		k, _, _ := p.IsPureWildcard()
		return ix.LengthAtLeast(k).Copy(), nil

	case pattern.ShapeExact:
		return evalExact(ix, p), nil

	case pattern.ShapePrefix:
		return evalPrefix(ix, p), nil

	case pattern.ShapeSuffix:
		return evalSuffix(ix, p), nil

	case pattern.ShapeDualAnchor:
		return evalDualAnchor(ix, p), nil

	case pattern.ShapeContains:
		if b, ok := p.IsSingleAnyByte(); ok {
			// A single non-'_' byte bounded by '%' on both sides is
			// exactly A[c]: no candidate can be a false positive, so no
			// verification pass is needed.
			if bm := ix.CharAnywhere(b); bm != nil {
				return bm.Copy(), nil
			}
			return bitmap.New(), nil
		}
		return evalMultiSlice(ix, p, cancel)

	default: // pattern.ShapeMultiSlice
		return evalMultiSlice(ix, p, cancel)
	}
}

// evalMultiSlice implements the "contains" (multi-byte literal) and
// general multi-slice shapes: a character-anywhere filter over every
// unique byte across all slices, narrowed by length and by positional
// anchoring of the first/last slice when the pattern is not
// '%'-anchored there, followed by a verification pass (package verify)
// to eliminate false positives.
//
// A single-slice pattern anchored on both sides by '%' (the "contains"
// shape) is just the n=1 case of this same algorithm: no first/last
// positional narrowing applies, since both anchors are '%'.
func evalMultiSlice(ix *index.Index, p *pattern.Plan, cancel Canceller) (*bitmap.Bitmap, error) {
	if len(p.Slices) == 0 {
		// Only "%" itself has zero slices, and that shape is handled
		// before Evaluate ever calls this function.
		return allIDs(ix), nil
	}

	var cand *bitmap.Bitmap

	seen := make(map[byte]bool)
	for _, s := range p.Slices {
		for _, b := range s.UniqueBytes() {
			if seen[b] {
				continue
			}
			seen[b] = true
			cc := ix.CharAnywhere(b)
			if cc == nil {
				return bitmap.New(), nil
			}
			if cand == nil {
				cand = cc.Copy()
			} else {
				cand.AndInto(cc)
				if cand.IsEmpty() {
					return bitmap.New(), nil
				}
			}
		}
		if cancel.cancelled() {
			return nil, ErrCancelled
		}
	}

	lf := ix.LengthAtLeast(p.MinLength)
	var empty bool
	cand, empty = andConstraint(cand, lf, true)
	if empty {
		return bitmap.New(), nil
	}

	if !p.StartsWithPercent {
		fb, fc := forwardIntersect(ix, p.Slices[0].Bytes, 0)
		cand, empty = andConstraint(cand, fb, fc)
		if empty {
			return bitmap.New(), nil
		}
	}
	if !p.EndsWithPercent {
		last := p.Slices[len(p.Slices)-1]
		rb, rc := reverseIntersect(ix, last.Bytes)
		cand, empty = andConstraint(cand, rb, rc)
		if empty {
			return bitmap.New(), nil
		}
	}

	if cand == nil {
		// No slice contributed any literal byte, e.g. every slice is
		// pure '_': fall back to treating the whole set as candidates.
		cand = allIDs(ix)
	}

	verifier := verify.NewMultiSliceVerifier(p)
	out := bitmap.New()
	var cancelled bool
	cand.Iterate(func(id uint32) bool {
		if cancel.cancelled() {
			cancelled = true
			return false
		}
		if verifier.Verify(ix.Value(id)) {
			out.Add(id)
		}
		return true
	})
	if cancelled {
		return nil, ErrCancelled
	}
	return out, nil
}

// Count returns the number of records matching plan, without
// materializing the id list when the shape allows a direct count (the
// "%" shape is exactly ix.N()).
func Count(ix *index.Index, p *pattern.Plan, cancel Canceller) (uint64, error) {
	if p.Classify() == pattern.ShapeAllPercent {
		return uint64(ix.N()), nil
	}
	bm, err := Evaluate(ix, p, cancel)
	if err != nil {
		return 0, err
	}
	return bm.Count(), nil
}
