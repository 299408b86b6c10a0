// Package diag holds non-contractual, opt-in instrumentation for the
// query traversal. The reference keeps two process-wide debug counters
// (withins, nwithins); this is the Go analogue, kept internal and disabled
// by default so it never becomes part of the observable API -- tests that
// want to assert the "enclosed subtree" fast path skips per-point filtering
// can opt in with Enable.
package diag

import "sync/atomic"

var (
	enabled       atomic.Bool
	pointInCalls  atomic.Int64
	leavesVisited atomic.Int64
)

// Enable turns instrumentation on or off. Tests should call Enable(true),
// Reset, run a query, then inspect PointInCalls.
func Enable(on bool) { enabled.Store(on) }

// Enabled reports whether instrumentation is currently active.
func Enabled() bool { return enabled.Load() }

// Reset zeroes the counters.
func Reset() {
	pointInCalls.Store(0)
	leavesVisited.Store(0)
}

// RecordPointInCall notes that the query traversal filtered a point with
// geom.PointIn rather than accepting it via the within-parent fast path.
func RecordPointInCall() {
	if enabled.Load() {
		pointInCalls.Add(1)
	}
}

// RecordLeafVisit notes that the traversal reached a leaf record.
func RecordLeafVisit() {
	if enabled.Load() {
		leavesVisited.Add(1)
	}
}

// PointInCalls returns the number of per-point filter calls made since the
// last Reset.
func PointInCalls() int64 { return pointInCalls.Load() }

// LeavesVisited returns the number of leaf records visited since the last
// Reset.
func LeavesVisited() int64 { return leavesVisited.Load() }
