package likematch

// Stats tracks execution statistics for an Index, useful for debugging
// and performance analysis.
type Stats struct {
	// Builds counts successful Build calls.
	Builds uint64

	// Queries counts Count/Rows/QueryContext calls made once an index
	// has been built, successful or not; calls rejected with
	// ErrIndexNotBuilt are not counted.
	Queries uint64
}
