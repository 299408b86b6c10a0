package query

import (
	"qtidx/internal/diag"
	"qtidx/pkg/geom"
	"qtidx/pkg/quadtree"
)

// CollectArray drains a point-by-point Iterator over t restricted to q into
// a slice, applying maxn as a cap on the result length when non-zero. The
// returned slice is owned by the caller.
func CollectArray(t *quadtree.FinalTree, q geom.Rect, maxn int) []geom.Point {
	it := New(t, q)
	out := make([]geom.Point, 0, initialCap(maxn))
	for {
		if maxn > 0 && len(out) >= maxn {
			break
		}
		p, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

// CollectArrayFast walks the same traversal as CollectArray but at leaf
// granularity: whenever a leaf's withinQuery flag is set, its entire point
// array is appended verbatim with no per-point test; otherwise the leaf's
// points are filtered with geom.PointIn. This is the "fast path" bulk
// collector -- it must return the same multiset as CollectArray for any
// tree and query rectangle.
func CollectArrayFast(t *quadtree.FinalTree, q geom.Rect, maxn int) []geom.Point {
	out := make([]geom.Point, 0, initialCap(maxn))
	walkLeaves(t, q, func(off uint64, within bool) bool {
		n := t.LeafLen(off)
		for i := 0; i < n; i++ {
			if maxn > 0 && len(out) >= maxn {
				return false
			}
			p := t.LeafPoint(off, i)
			if within {
				out = append(out, p)
				continue
			}
			diag.RecordPointInCall()
			if geom.PointIn(q, p.X, p.Y) {
				out = append(out, p)
			}
		}
		return maxn == 0 || len(out) < maxn
	})
	return out
}

// walkLeaves drives an Iterator's own descent stack but stops at leaf
// granularity instead of point granularity, calling visit once per leaf
// reached. visit returns false to stop the walk early (e.g. once maxn is
// reached).
func walkLeaves(t *quadtree.FinalTree, q geom.Rect, visit func(off uint64, within bool) bool) {
	it := New(t, q)
	for it.lpValid {
		if !visit(it.lpOff, it.lpWithin) {
			return
		}
		it.stack = it.stack[:len(it.stack)-1]
		if len(it.stack) == 0 {
			it.lpValid = false
			return
		}
		it.stack[len(it.stack)-1].quadrant++
		it.advanceToNextLeaf()
	}
}

func initialCap(maxn int) int {
	if maxn > 0 && maxn < 64 {
		return maxn
	}
	return 64
}
