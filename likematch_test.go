package likematch

import (
	"context"
	"testing"
)

type sliceDriver struct {
	values [][]byte
}

func (d *sliceDriver) Scan(table, column string) (RowIterator, error) {
	return &sliceRowIterator{values: d.values, pos: -1}, nil
}

type sliceRowIterator struct {
	values [][]byte
	pos    int
}

func (it *sliceRowIterator) Next() (bool, error) {
	it.pos++
	return it.pos < len(it.values), nil
}

func (it *sliceRowIterator) Value() []byte { return it.values[it.pos] }

func values(ss ...string) [][]byte {
	out := make([][]byte, len(ss))
	for i, s := range ss {
		out[i] = []byte(s)
	}
	return out
}

func TestIndexBuildAndCount(t *testing.T) {
	d := &sliceDriver{values: values("abc", "abcd", "xabc", "zzz")}
	ix := NewIndex(d)
	if err := ix.Build("t", "c"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	n, err := ix.Count([]byte("%abc%"))
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 3 {
		t.Fatalf("Count = %d, want 3", n)
	}
}

func TestIndexRows(t *testing.T) {
	d := &sliceDriver{values: values("abc", "abcd", "xabc", "zzz")}
	ix := NewIndex(d)
	if err := ix.Build("t", "c"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	cur, err := ix.Rows([]byte("ab%"))
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	var got []string
	for {
		_, v, ok := cur.Next()
		if !ok {
			break
		}
		got = append(got, string(v))
	}
	if len(got) != 2 || got[0] != "abc" || got[1] != "abcd" {
		t.Fatalf("Rows = %v, want [abc abcd]", got)
	}
}

func TestIndexQueryBeforeBuild(t *testing.T) {
	ix := NewIndex(&sliceDriver{})
	_, err := ix.Count([]byte("a"))
	var qe *QueryError
	if !asQueryError(err, &qe) || qe.Kind != ErrIndexNotBuilt {
		t.Fatalf("err = %v, want QueryError{ErrIndexNotBuilt}", err)
	}
}

func asQueryError(err error, out **QueryError) bool {
	qe, ok := err.(*QueryError)
	if ok {
		*out = qe
	}
	return ok
}

func TestIndexRebuildReplacesResults(t *testing.T) {
	d := &sliceDriver{values: values("abc")}
	ix := NewIndex(d)
	if err := ix.Build("t", "c"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	n, _ := ix.Count([]byte("abc"))
	if n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}

	d.values = values("abc", "abc", "xyz")
	if err := ix.Build("t", "c"); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	n, _ = ix.Count([]byte("abc"))
	if n != 2 {
		t.Fatalf("Count after rebuild = %d, want 2", n)
	}
}

func TestIndexStatusBeforeBuild(t *testing.T) {
	ix := NewIndex(&sliceDriver{})
	st := ix.Status()
	if st.RecordCount != 0 {
		t.Fatalf("Status before build = %+v, want zero value", st)
	}
}

func TestIndexStatsTracking(t *testing.T) {
	d := &sliceDriver{values: values("abc")}
	ix := NewIndex(d)
	if err := ix.Build("t", "c"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	ix.Count([]byte("abc"))
	ix.Count([]byte("xyz"))
	s := ix.Stats()
	if s.Builds != 1 || s.Queries != 2 {
		t.Fatalf("Stats = %+v, want {Builds:1 Queries:2}", s)
	}
	ix.ResetStats()
	s = ix.Stats()
	if s.Builds != 0 || s.Queries != 0 {
		t.Fatalf("Stats after reset = %+v", s)
	}
}

func TestIndexQueryContextCancelled(t *testing.T) {
	d := &sliceDriver{values: values("abc", "abd", "axc")}
	ix := NewIndex(d)
	if err := ix.Build("t", "c"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ix.QueryContext(ctx, []byte("%a%b%c%"))
	var qe *QueryError
	if !asQueryError(err, &qe) || qe.Kind != ErrCancelled {
		t.Fatalf("err = %v, want QueryError{ErrCancelled}", err)
	}
}

func TestMatchesStandalone(t *testing.T) {
	cases := []struct {
		value, pattern string
		want           bool
	}{
		{"hello", "h%o", true},
		{"hello", "h_llo", true},
		{"hello", "h_lo", false},
		{"", "%", true},
		{"", "", true},
		{"x", "", false},
	}
	for _, c := range cases {
		got := Matches([]byte(c.value), []byte(c.pattern))
		if got != c.want {
			t.Errorf("Matches(%q,%q) = %v, want %v", c.value, c.pattern, got, c.want)
		}
	}
}

func TestQueryCacheReturnsConsistentResults(t *testing.T) {
	d := &sliceDriver{values: values("abc", "abcd", "xabc", "zzz")}
	cfg := DefaultConfig()
	cfg.EnableQueryCache = true
	cfg.QueryCacheSize = 4
	ix := NewIndexWithConfig(d, cfg)
	if err := ix.Build("t", "c"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i := 0; i < 3; i++ {
		n, err := ix.Count([]byte("%abc%"))
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if n != 3 {
			t.Fatalf("Count = %d, want 3", n)
		}
	}
}

func TestVerifyAllConfigDoesNotChangeResults(t *testing.T) {
	d := &sliceDriver{values: values("abc", "abcd", "xabc", "zzz")}
	cfg := DefaultConfig()
	cfg.VerifyAll = true
	ix := NewIndexWithConfig(d, cfg)
	if err := ix.Build("t", "c"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	cur, err := ix.Rows([]byte("%abc%"))
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if cur.Len() != 3 {
		t.Fatalf("Len = %d, want 3", cur.Len())
	}
}
