package index

import "golang.org/x/sys/cpu"

// backendName reports the bitmap container backend plus the CPU
// popcount capability available to the bitmap package. Dense-container
// intersection and union count their result words with
// math/bits.OnesCount64, which the Go compiler lowers to a hardware
// POPCNT instruction when the target CPU supports it (Bitmap.Count itself
// sums cardinalities kept per container); this function only reports
// that fact for Status, it does not change which code path runs.
func backendName() string {
	if cpu.X86.HasPOPCNT {
		return "roaring-lite+popcnt"
	}
	return "roaring-lite"
}
