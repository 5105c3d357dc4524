package verify

import (
	"github.com/coregx/ahocorasick"

	"github.com/CrystallineCore/likematch/pattern"
)

// MultiSliceVerifier confirms candidates for the multi-slice and contains
// pattern shapes: it locates every slice of a Plan in a value, in
// left-to-right order, honoring the start/end anchors.
//
// Literal slices (no '_') are located with a dedicated single-pattern
// Aho-Corasick automaton per slice: Find(haystack, at) returns the
// leftmost occurrence at or after at in a single linear scan, which is
// exactly the "search for slice i, advance past it, search for slice
// i+1" procedure this verifier needs. Slices containing '_' have no
// literal byte sequence for Aho-Corasick to match against, since '_' is
// a wildcard and not a literal value; those fall back to a direct
// positional scan.
type MultiSliceVerifier struct {
	plan     *pattern.Plan
	automata []*ahocorasick.Automaton // automata[i] is nil if Slices[i] contains '_'
}

// NewMultiSliceVerifier builds a verifier for p, constructing one
// Aho-Corasick automaton per literal (no '_') slice.
func NewMultiSliceVerifier(p *pattern.Plan) *MultiSliceVerifier {
	v := &MultiSliceVerifier{plan: p, automata: make([]*ahocorasick.Automaton, len(p.Slices))}
	for i, s := range p.Slices {
		if hasUnderscore(s.Bytes) {
			continue
		}
		builder := ahocorasick.NewBuilder()
		builder.AddPattern(s.Bytes)
		auto, err := builder.Build()
		if err != nil {
			// Fall back to the manual scan; correctness does not depend
			// on the automaton, only performance does.
			continue
		}
		v.automata[i] = auto
	}
	return v
}

func hasUnderscore(b []byte) bool {
	for _, c := range b {
		if c == '_' {
			return true
		}
	}
	return false
}

// Verify reports whether value satisfies every slice of the plan in
// order, with the plan's start/end anchors honored: the first slice must
// sit at offset 0 when the pattern is not start-anchored with '%', and
// the last slice must sit flush against the end when the pattern is not
// end-anchored with '%'.
func (v *MultiSliceVerifier) Verify(value []byte) bool {
	pos := 0
	last := len(v.plan.Slices) - 1

	for i, s := range v.plan.Slices {
		switch {
		case i == 0 && !v.plan.StartsWithPercent:
			if !matchAt(value, pos, s.Bytes) {
				return false
			}
			pos += len(s.Bytes)

		case i == last && !v.plan.EndsWithPercent:
			start := len(value) - len(s.Bytes)
			if start < pos || !matchAt(value, start, s.Bytes) {
				return false
			}
			pos = len(value)

		default:
			idx := v.find(value, pos, i, s.Bytes)
			if idx < 0 {
				return false
			}
			pos = idx + len(s.Bytes)
		}
	}
	return true
}

// find locates slice (Slices[sliceIdx]) at or after offset at in value,
// returning its start offset or -1 if absent.
func (v *MultiSliceVerifier) find(value []byte, at, sliceIdx int, slice []byte) int {
	if auto := v.automata[sliceIdx]; auto != nil {
		m := auto.Find(value, at)
		if m == nil {
			return -1
		}
		return m.Start
	}
	for start := at; start+len(slice) <= len(value); start++ {
		if matchAt(value, start, slice) {
			return start
		}
	}
	return -1
}

// matchAt reports whether slice occurs at exactly offset pos in value,
// treating '_' in slice as matching any byte.
func matchAt(value []byte, pos int, slice []byte) bool {
	if pos < 0 || pos+len(slice) > len(value) {
		return false
	}
	for i, b := range slice {
		if b != '_' && value[pos+i] != b {
			return false
		}
	}
	return true
}
