package index

// StatusReport is a read-only, lock-free status snapshot of an Index.
type StatusReport struct {
	// RecordCount is the number of indexed records.
	RecordCount int
	// MaxLength is the longest value length, not clamped to MaxPositions.
	MaxLength int
	// MemoryBytes is the approximate memory held by every bitmap plus
	// the value arena, in bytes.
	MemoryBytes int64
	// Backend names the bitmap representation family in use.
	Backend string
}

// Status computes a StatusReport for ix. It touches no mutable state and
// takes no lock.
func (ix *Index) Status() StatusReport {
	var mem int64
	mem += int64(len(ix.arena.data))
	mem += int64(len(ix.arena.offs)) * 4

	for _, bm := range ix.forward {
		mem += int64(bm.ByteSize())
	}
	for _, bm := range ix.reverse {
		mem += int64(bm.ByteSize())
	}
	for _, bm := range ix.charCache {
		mem += int64(bm.ByteSize())
	}
	for _, bm := range ix.length {
		if bm != nil {
			mem += int64(bm.ByteSize())
		}
	}
	// atLeast is a derived cache, not a primary index structure, but it
	// is real resident memory and status must report it.
	for _, bm := range ix.atLeast {
		if bm != nil {
			mem += int64(bm.ByteSize())
		}
	}

	return StatusReport{
		RecordCount: ix.n,
		MaxLength:   ix.maxLen,
		MemoryBytes: mem,
		Backend:     backendName(),
	}
}
