package verify

import (
	"testing"

	"github.com/CrystallineCore/likematch/pattern"
)

func TestMultiSliceVerifierContains(t *testing.T) {
	v := NewMultiSliceVerifier(pattern.Compile([]byte("%abc%")))
	if !v.Verify([]byte("xxabcxx")) {
		t.Fatal("expected contains match")
	}
	if v.Verify([]byte("xxabxx")) {
		t.Fatal("expected no match")
	}
}

func TestMultiSliceVerifierOrderedSlices(t *testing.T) {
	v := NewMultiSliceVerifier(pattern.Compile([]byte("%a%b%c%")))
	if !v.Verify([]byte("xaxbxcx")) {
		t.Fatal("a,b,c occur in order, expected match")
	}
	if v.Verify([]byte("xcxbxax")) {
		t.Fatal("a,b,c occur out of order, expected no match")
	}
	if !v.Verify([]byte("abc")) {
		t.Fatal("contiguous occurrence should still match")
	}
}

func TestMultiSliceVerifierAnchors(t *testing.T) {
	v := NewMultiSliceVerifier(pattern.Compile([]byte("ab%cd")))
	if !v.Verify([]byte("abXXcd")) {
		t.Fatal("expected prefix ab, suffix cd to match")
	}
	if v.Verify([]byte("Xabcd")) {
		t.Fatal("prefix must start at offset 0")
	}
	if v.Verify([]byte("abcdX")) {
		t.Fatal("suffix must be flush against the end")
	}
}

func TestMultiSliceVerifierUnderscoreInSlice(t *testing.T) {
	v := NewMultiSliceVerifier(pattern.Compile([]byte("%a_c%")))
	if !v.Verify([]byte("xxabcxx")) {
		t.Fatal("a_c should match abc via wildcard middle byte")
	}
	if !v.Verify([]byte("xxaZcxx")) {
		t.Fatal("a_c should match aZc too")
	}
	if v.Verify([]byte("xxabxx")) {
		t.Fatal("a_c requires three bytes")
	}
}

func TestMultiSliceVerifierMixedAnchorsMultiSlice(t *testing.T) {
	v := NewMultiSliceVerifier(pattern.Compile([]byte("ab%cd%ef")))
	if !v.Verify([]byte("abXXcdYYef")) {
		t.Fatal("expected prefix ab ... cd ... suffix ef to match")
	}
	if v.Verify([]byte("abXXefYYcd")) {
		t.Fatal("cd must occur before ef")
	}
}
