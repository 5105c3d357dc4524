// Package bitmap provides a compressed set of 32-bit record identifiers.
//
// Bitmap is the storage primitive beneath the positional index: every
// P⁺[c][i], P⁻[c][j], A[c], and L[k] in package index is one Bitmap. At the
// index's target scale (10⁶ records) a naive 10⁶-bit dense array per
// (byte, position) key would need gigabytes; most keys are sparse (only a
// handful of records have byte 'q' at position 7), so Bitmap splits the
// 32-bit id space into 65536-wide containers and keeps each container in
// whichever of two representations is smaller for its cardinality — a
// sorted array of low bits for sparse containers, a dense bitset for dense
// ones — the same array/dense duality as a roaring bitmap.
//
// Bitmap is not safe for concurrent writers; concurrent readers of a
// Bitmap that nobody is mutating are safe, matching the index's publish
// once, read-many lifecycle.
package bitmap

import "sort"

// Bitmap is a compressed, ordered set of record identifiers.
//
// The zero value is not usable; construct with New.
type Bitmap struct {
	// containers maps the high 16 bits of an id to the container holding
	// its low 16 bits. Absent key means no ids in that range.
	containers map[uint32]*container
}

// New returns an empty Bitmap.
func New() *Bitmap {
	return &Bitmap{containers: make(map[uint32]*container)}
}

// highLow splits a record id into its container key and within-container
// offset.
func highLow(id uint32) (high uint32, low uint16) {
	return id >> 16, uint16(id & 0xffff)
}

// Add inserts id into the set. Inserting an id already present is a no-op.
func (b *Bitmap) Add(id uint32) {
	high, low := highLow(id)
	c, ok := b.containers[high]
	if !ok {
		c = newArrayContainer()
		b.containers[high] = c
	}
	c.add(low)
}

// Contains reports whether id is a member of the set.
func (b *Bitmap) Contains(id uint32) bool {
	high, low := highLow(id)
	c, ok := b.containers[high]
	if !ok {
		return false
	}
	return c.contains(low)
}

// Count returns the number of distinct ids in the set.
func (b *Bitmap) Count() uint64 {
	var n uint64
	for _, c := range b.containers {
		n += uint64(c.cardinality())
	}
	return n
}

// IsEmpty reports whether the set has no members. It does not assume
// containers are pruned on removal, so it checks cardinality rather than
// just the container map's length.
func (b *Bitmap) IsEmpty() bool {
	for _, c := range b.containers {
		if c.cardinality() > 0 {
			return false
		}
	}
	return true
}

// sortedKeys returns the container keys of b in ascending order.
func (b *Bitmap) sortedKeys() []uint32 {
	keys := make([]uint32, 0, len(b.containers))
	for k := range b.containers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// ToArray returns every member id in ascending order.
//
// The returned slice is owned by the caller.
func (b *Bitmap) ToArray() []uint32 {
	out := make([]uint32, 0, b.Count())
	for _, high := range b.sortedKeys() {
		out = b.containers[high].appendTo(out, high)
	}
	return out
}

// Iterate calls f for every member id in ascending order. Iteration stops
// early if f returns false.
func (b *Bitmap) Iterate(f func(id uint32) bool) {
	for _, high := range b.sortedKeys() {
		c := b.containers[high]
		if !c.iterate(high, f) {
			return
		}
	}
}

// Copy returns an independent Bitmap with the same members as b.
func (b *Bitmap) Copy() *Bitmap {
	out := New()
	for high, c := range b.containers {
		out.containers[high] = c.clone()
	}
	return out
}

// And returns a new Bitmap holding the intersection of a and b.
func And(a, b *Bitmap) *Bitmap {
	out := New()
	// Iterate the smaller container map to bound the work.
	small, large := a, b
	if len(large.containers) < len(small.containers) {
		small, large = large, small
	}
	for high, sc := range small.containers {
		lc, ok := large.containers[high]
		if !ok {
			continue
		}
		if ic := intersectContainers(sc, lc); ic != nil && ic.cardinality() > 0 {
			out.containers[high] = ic
		}
	}
	return out
}

// Or returns a new Bitmap holding the union of a and b.
func Or(a, b *Bitmap) *Bitmap {
	out := a.Copy()
	out.OrInto(b)
	return out
}

// AndInto intersects b in place with other; afterward b holds exactly the
// ids present in both.
func (b *Bitmap) AndInto(other *Bitmap) {
	for high, c := range b.containers {
		oc, ok := other.containers[high]
		if !ok {
			delete(b.containers, high)
			continue
		}
		ic := intersectContainers(c, oc)
		if ic == nil || ic.cardinality() == 0 {
			delete(b.containers, high)
			continue
		}
		b.containers[high] = ic
	}
}

// OrInto unions other into b in place.
func (b *Bitmap) OrInto(other *Bitmap) {
	for high, oc := range other.containers {
		c, ok := b.containers[high]
		if !ok {
			b.containers[high] = oc.clone()
			continue
		}
		b.containers[high] = unionContainers(c, oc)
	}
}

// ByteSize estimates the memory footprint of the set in bytes, used by the
// index status reporter (index.StatusReport.MemoryBytes). The estimate
// counts backing array lengths, not struct overhead or map bucket
// bookkeeping, so it is a lower bound rather than an exact accounting.
func (b *Bitmap) ByteSize() int {
	size := 0
	for _, c := range b.containers {
		size += c.byteSize()
	}
	return size
}
