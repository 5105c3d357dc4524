package bitmap

import (
	"math/rand"
	"testing"
)

func TestAddContains(t *testing.T) {
	b := New()
	if !b.IsEmpty() {
		t.Fatal("new bitmap should be empty")
	}
	b.Add(5)
	b.Add(5)
	b.Add(70000)
	if b.Count() != 2 {
		t.Fatalf("count = %d, want 2", b.Count())
	}
	if !b.Contains(5) || !b.Contains(70000) {
		t.Fatal("missing expected member")
	}
	if b.Contains(6) {
		t.Fatal("unexpected member")
	}
}

func TestToArrayAscending(t *testing.T) {
	b := New()
	ids := []uint32{500000, 1, 70000, 2, 0, 131072 + 5}
	for _, id := range ids {
		b.Add(id)
	}
	arr := b.ToArray()
	for i := 1; i < len(arr); i++ {
		if arr[i-1] >= arr[i] {
			t.Fatalf("not strictly ascending at %d: %v", i, arr)
		}
	}
	if len(arr) != len(ids) {
		t.Fatalf("len = %d, want %d", len(arr), len(ids))
	}
}

func TestDenseConversion(t *testing.T) {
	b := New()
	for i := uint32(0); i < arrayToBitmapThreshold+10; i++ {
		b.Add(i)
	}
	c := b.containers[0]
	if c.dense == nil {
		t.Fatal("expected conversion to dense container")
	}
	if b.Count() != uint64(arrayToBitmapThreshold+10) {
		t.Fatalf("count = %d", b.Count())
	}
	for i := uint32(0); i < arrayToBitmapThreshold+10; i++ {
		if !b.Contains(i) {
			t.Fatalf("missing %d after conversion", i)
		}
	}
}

func buildRandom(n int, universe uint32, seed int64) *Bitmap {
	r := rand.New(rand.NewSource(seed))
	b := New()
	for i := 0; i < n; i++ {
		b.Add(uint32(r.Int63n(int64(universe))))
	}
	return b
}

func referenceSet(b *Bitmap) map[uint32]bool {
	m := make(map[uint32]bool)
	for _, id := range b.ToArray() {
		m[id] = true
	}
	return m
}

func TestAndOrAgainstReference(t *testing.T) {
	a := buildRandom(3000, 200000, 1)
	b := buildRandom(3000, 200000, 2)

	refA, refB := referenceSet(a), referenceSet(b)

	and := And(a, b)
	for _, id := range and.ToArray() {
		if !refA[id] || !refB[id] {
			t.Fatalf("AND produced id %d not in both inputs", id)
		}
	}
	for id := range refA {
		if refB[id] && !and.Contains(id) {
			t.Fatalf("AND missing id %d present in both inputs", id)
		}
	}

	or := Or(a, b)
	orSet := referenceSet(or)
	for id := range refA {
		if !orSet[id] {
			t.Fatalf("OR missing id %d from a", id)
		}
	}
	for id := range refB {
		if !orSet[id] {
			t.Fatalf("OR missing id %d from b", id)
		}
	}
	for id := range orSet {
		if !refA[id] && !refB[id] {
			t.Fatalf("OR produced spurious id %d", id)
		}
	}
}

func TestAndIntoOrIntoMatchAndOr(t *testing.T) {
	a := buildRandom(2000, 100000, 3)
	b := buildRandom(2000, 100000, 4)

	wantAnd := And(a, b)
	gotAnd := a.Copy()
	gotAnd.AndInto(b)
	if gotAnd.Count() != wantAnd.Count() {
		t.Fatalf("AndInto count = %d, want %d", gotAnd.Count(), wantAnd.Count())
	}
	for _, id := range wantAnd.ToArray() {
		if !gotAnd.Contains(id) {
			t.Fatalf("AndInto missing id %d", id)
		}
	}

	wantOr := Or(a, b)
	gotOr := a.Copy()
	gotOr.OrInto(b)
	if gotOr.Count() != wantOr.Count() {
		t.Fatalf("OrInto count = %d, want %d", gotOr.Count(), wantOr.Count())
	}
}

func TestAndOrMixedDenseArray(t *testing.T) {
	dense := New()
	for i := uint32(0); i < arrayToBitmapThreshold+50; i++ {
		dense.Add(i)
	}
	sparse := New()
	sparse.Add(3)
	sparse.Add(arrayToBitmapThreshold + 60) // not in dense
	sparse.Add(10)

	and := And(dense, sparse)
	if and.Count() != 2 || !and.Contains(3) || !and.Contains(10) {
		t.Fatalf("unexpected AND result: %v", and.ToArray())
	}

	or := Or(dense, sparse)
	if !or.Contains(arrayToBitmapThreshold + 60) {
		t.Fatal("OR should contain sparse-only id")
	}
	if or.Count() != dense.Count()+1 {
		t.Fatalf("OR count = %d, want %d", or.Count(), dense.Count()+1)
	}
}

func TestEmptyOperands(t *testing.T) {
	empty := New()
	full := buildRandom(100, 1000, 5)

	if And(empty, full).Count() != 0 {
		t.Fatal("AND with empty should be empty")
	}
	if Or(empty, full).Count() != full.Count() {
		t.Fatal("OR with empty should equal the non-empty operand")
	}
}

func TestCopyIndependence(t *testing.T) {
	a := New()
	a.Add(1)
	a.Add(2)
	b := a.Copy()
	b.Add(3)
	if a.Contains(3) {
		t.Fatal("mutating copy affected original")
	}
}

func TestIterateStopsEarly(t *testing.T) {
	b := New()
	for i := uint32(0); i < 100; i++ {
		b.Add(i)
	}
	var seen int
	b.Iterate(func(id uint32) bool {
		seen++
		return seen < 10
	})
	if seen != 10 {
		t.Fatalf("seen = %d, want 10", seen)
	}
}
