// Package likematch accelerates SQL LIKE-style wildcard matching ('%' and
// '_') over a static, in-memory collection of short strings by building a
// positional bitmap index once and answering pattern queries against it.
//
// The public API mirrors the compile-once, query-many shape of a regex
// engine: build an Index from a host-supplied column scan, then query it
// repeatedly with Count, Rows, or the pattern-matching-only Matches.
//
// Basic usage:
//
//	ix := likematch.NewIndex(driver)
//	if err := ix.Build("users", "email"); err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := ix.Count([]byte("%@example.com"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(n, "matches")
//
//	cur, err := ix.Rows([]byte("a%b_c%"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    id, value, ok := cur.Next()
//	    if !ok {
//	        break
//	    }
//	    fmt.Println(id, string(value))
//	}
//
// Concurrency: an Index is safe for concurrent Count/Rows/Status calls
// from multiple goroutines. A Build runs under an internal mutex and
// publishes its result with a single atomic pointer swap, so readers
// always observe either the prior built state or the new one, never a
// partially constructed one.
package likematch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/CrystallineCore/likematch/bitmap"
	"github.com/CrystallineCore/likematch/index"
	"github.com/CrystallineCore/likematch/pattern"
	"github.com/CrystallineCore/likematch/query"
	"github.com/CrystallineCore/likematch/verify"
)

// Driver is the host's column-scan seam. likematch never touches storage,
// tuple iteration, or SQL directly; it only asks a Driver to scan one
// column and hands back a RowIterator.
type Driver = index.Driver

// RowIterator yields one column's values row by row.
type RowIterator = index.RowIterator

// RowCursor iterates a query's matching (RecordId, Value) pairs in
// ascending id order.
type RowCursor = query.Cursor

// StatusReport summarizes a built Index: record count, longest value
// length, approximate memory footprint, and the detected bitmap backend.
type StatusReport = index.StatusReport

// buildState is the immutable snapshot an Index publishes on a
// successful Build; queries read it through a single atomic load.
type buildState struct {
	ix    *index.Index
	cache *queryCache
}

// Index is the public façade: a compile-once, query-many handle over one
// built positional bitmap index.
//
// The zero value is not usable; construct with NewIndex.
type Index struct {
	driver Driver
	config Config

	state   atomic.Pointer[buildState]
	buildMu sync.Mutex

	stats Stats
}

// NewIndex returns an Index that will scan through driver on Build, using
// DefaultConfig. Use NewIndexWithConfig to override Config.
func NewIndex(driver Driver) *Index {
	return NewIndexWithConfig(driver, DefaultConfig())
}

// NewIndexWithConfig is like NewIndex but with an explicit Config.
//
// Example:
//
//	cfg := likematch.DefaultConfig()
//	cfg.VerifyAll = true
//	ix := likematch.NewIndexWithConfig(driver, cfg)
func NewIndexWithConfig(driver Driver, config Config) *Index {
	return &Index{driver: driver, config: config}
}

// Build scans table.column through the Index's Driver and publishes a
// freshly constructed index. A prior successfully-built index remains
// valid for concurrent readers until Build returns nil error and
// publishes its replacement; a failed Build leaves the prior state (if
// any) untouched.
//
// Only one Build may run at a time per Index; concurrent Build calls
// serialize on an internal mutex.
func (ix *Index) Build(table, column string) error {
	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	built, err := index.BuildWithLimit(ix.driver, table, column, ix.config.MaxPositions)
	if err != nil {
		return &BuildError{Cause: err}
	}

	var cache *queryCache
	if ix.config.EnableQueryCache {
		cache = newQueryCache(ix.config.QueryCacheSize)
	}
	ix.state.Store(&buildState{ix: built, cache: cache})
	atomic.AddUint64(&ix.stats.Builds, 1)
	return nil
}

// snapshot loads the current built state, or returns ErrIndexNotBuilt if
// Build has never succeeded.
func (ix *Index) snapshot() (*buildState, error) {
	st := ix.state.Load()
	if st == nil {
		return nil, &QueryError{Kind: ErrIndexNotBuilt}
	}
	return st, nil
}

// evaluateCached runs p against snap.ix, consulting and populating
// snap.cache when the Index was built with EnableQueryCache. Caching is
// skipped whenever cancel is non-nil: a cancelled partial result must
// never be reused as if it ran to completion.
func evaluateCached(snap *buildState, p *pattern.Plan, rawPattern []byte, cancel query.Canceller) (*bitmap.Bitmap, error) {
	if cancel == nil && snap.cache != nil {
		if bm, ok := snap.cache.get(string(rawPattern)); ok {
			return bm, nil
		}
	}
	bm, err := query.Evaluate(snap.ix, p, cancel)
	if err != nil {
		return nil, err
	}
	if cancel == nil && snap.cache != nil {
		snap.cache.put(string(rawPattern), bm)
	}
	return bm, nil
}

// Count returns the number of stored values matching pattern, without
// materializing the matching id set when the dispatch shape allows a
// direct count.
func (ix *Index) Count(rawPattern []byte) (uint64, error) {
	return ix.countWithCancel(rawPattern, nil)
}

// Rows evaluates pattern and returns a RowCursor over the matching
// records in ascending RecordId order.
func (ix *Index) Rows(rawPattern []byte) (*RowCursor, error) {
	return ix.rowsWithCancel(rawPattern, nil)
}

// QueryContext is like Count and Rows combined with cooperative
// cancellation: ctx is polled between bitmap operations and between
// verification iterations for the more expensive dispatch shapes, and a
// cancelled context surfaces as a *QueryError wrapping ErrCancelled.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
//	defer cancel()
//	cur, err := ix.QueryContext(ctx, []byte("%a%b%c%"))
func (ix *Index) QueryContext(ctx context.Context, rawPattern []byte) (*RowCursor, error) {
	cancel := func() bool {
		select {
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}
	return ix.rowsWithCancel(rawPattern, cancel)
}

func (ix *Index) countWithCancel(rawPattern []byte, cancel query.Canceller) (uint64, error) {
	snap, err := ix.snapshot()
	if err != nil {
		return 0, err
	}
	p := pattern.Compile(rawPattern)
	atomic.AddUint64(&ix.stats.Queries, 1)
	if p.Classify() == pattern.ShapeAllPercent {
		// allIDs is never materialized or cached for a bare count: N() is
		// already the answer.
		return uint64(snap.ix.N()), nil
	}
	bm, err := evaluateCached(snap, p, rawPattern, cancel)
	if err != nil {
		return 0, wrapQueryError(err)
	}
	return bm.Count(), nil
}

func (ix *Index) rowsWithCancel(rawPattern []byte, cancel query.Canceller) (*RowCursor, error) {
	snap, err := ix.snapshot()
	if err != nil {
		return nil, err
	}
	p := pattern.Compile(rawPattern)
	atomic.AddUint64(&ix.stats.Queries, 1)
	bm, err := evaluateCached(snap, p, rawPattern, cancel)
	if err != nil {
		return nil, wrapQueryError(err)
	}
	cur := query.NewCursor(snap.ix, bm.ToArray())
	if ix.config.VerifyAll {
		if err := verifyCursor(cur, rawPattern); err != nil {
			return nil, err
		}
		cur = query.NewCursor(snap.ix, bm.ToArray())
	}
	return cur, nil
}

// verifyCursor re-checks every row a cursor will yield against the
// backtracking verifier, for the VerifyAll debug knob. It does not
// consume the cursor: Rows builds cur fresh each call, so replaying it
// here does not affect the copy returned to the caller.
func verifyCursor(cur *RowCursor, rawPattern []byte) error {
	snapshot := *cur
	for {
		_, value, ok := snapshot.Next()
		if !ok {
			return nil
		}
		if !verify.Matches(value, rawPattern) {
			return &QueryError{Kind: ErrQueryFailed, Cause: errVerifyAllMismatch}
		}
	}
}

// wrapQueryError maps the query package's sentinel errors onto the
// façade's typed QueryError, preserving the underlying sentinel via
// Unwrap.
func wrapQueryError(err error) error {
	switch err {
	case query.ErrPatternTooLong:
		return &QueryError{Kind: ErrPatternTooLong, Cause: err}
	case query.ErrCancelled:
		return &QueryError{Kind: ErrCancelled, Cause: err}
	default:
		return &QueryError{Kind: ErrQueryFailed, Cause: err}
	}
}

// Status reports the current built index's record count, longest value
// length, approximate memory footprint, and detected bitmap backend. It
// returns the zero StatusReport if Build has never succeeded.
func (ix *Index) Status() StatusReport {
	st := ix.state.Load()
	if st == nil {
		return StatusReport{}
	}
	return st.ix.Status()
}

// Stats returns a copy of the index's accumulated execution statistics.
//
// Example:
//
//	s := ix.Stats()
//	fmt.Println("builds:", s.Builds, "queries:", s.Queries)
func (ix *Index) Stats() Stats {
	return Stats{
		Builds:  atomic.LoadUint64(&ix.stats.Builds),
		Queries: atomic.LoadUint64(&ix.stats.Queries),
	}
}

// ResetStats resets the index's execution statistics to zero.
func (ix *Index) ResetStats() {
	atomic.StoreUint64(&ix.stats.Builds, 0)
	atomic.StoreUint64(&ix.stats.Queries, 0)
}

// Matches reports whether value matches pattern directly, without an
// Index: a pure, allocation-light backtracking scan, useful for
// debugging an Index's results or for one-off matches too small to
// justify building an index.
//
// Example:
//
//	likematch.Matches([]byte("hello"), []byte("h%o")) // true
func Matches(value, rawPattern []byte) bool {
	return verify.Matches(value, rawPattern)
}

// BuildError wraps a failure that aborted Index.Build. The façade's
// BuildError simply forwards the underlying *index.BuildError's message
// and cause; it exists so callers depend on the likematch package's error
// type rather than reaching into index.
type BuildError struct {
	Cause error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("likematch: build failed: %v", e.Cause)
}

func (e *BuildError) Unwrap() error { return e.Cause }
