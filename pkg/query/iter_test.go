package query

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"qtidx/internal/diag"
	"qtidx/pkg/geom"
	"qtidx/pkg/quadtree"
)

func r(swx, swy, nex, ney float64) geom.Rect {
	return geom.Rect{SW: geom.Point2D{X: swx, Y: swy}, NE: geom.Point2D{X: nex, Y: ney}}
}

// buildTree inserts pts into a builder over region with the given maxfill
// and finalises it.
func buildTree(t *testing.T, region geom.Rect, maxfill int, pts []geom.Point) *quadtree.FinalTree {
	t.Helper()
	b, err := quadtree.NewBuilder(region, maxfill)
	require.NoError(t, err)
	for _, p := range pts {
		require.NoError(t, b.Insert(p))
	}
	return quadtree.Finalize(b)
}

func byPayload(pts []geom.Point) []uint64 {
	out := make([]uint64, len(pts))
	for i, p := range pts {
		out[i] = p.Payload
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func drainIterator(it *Iterator) []geom.Point {
	var out []geom.Point
	for {
		p, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, p)
	}
	return out
}

// TestScenario1_EmptyQuery covers spec.md §8 scenario 1.
func TestScenario1_EmptyQuery(t *testing.T) {
	region := r(0, 0, 10, 10)
	pts := []geom.Point{
		{Payload: 1, X: 1, Y: 1},
		{Payload: 2, X: 9, Y: 9},
		{Payload: 3, X: 5, Y: 5},
	}
	ft := buildTree(t, region, 2, pts)

	got := drainIterator(New(ft, r(20, 20, 30, 30)))
	require.Empty(t, got)
}

// TestScenario2_BoundaryAssignment covers spec.md §8 scenario 2.
func TestScenario2_BoundaryAssignment(t *testing.T) {
	region := r(0, 0, 10, 10)
	pts := []geom.Point{
		{Payload: 1, X: 1, Y: 1},
		{Payload: 2, X: 9, Y: 9},
		{Payload: 3, X: 5, Y: 5},
		{Payload: 4, X: 5, Y: 5},
	}
	ft := buildTree(t, region, 2, pts)

	exact := drainIterator(New(ft, r(5, 5, 5, 5)))
	require.ElementsMatch(t, []uint64{3, 4}, byPayload(exact))

	corner := drainIterator(New(ft, r(0, 0, 5, 5)))
	require.ElementsMatch(t, []uint64{1, 3, 4}, byPayload(corner))
}

// TestScenario3_CoincidentOverflow covers spec.md §8 scenario 3.
func TestScenario3_CoincidentOverflow(t *testing.T) {
	region := r(0, 0, 1, 1)
	var pts []geom.Point
	for i := uint64(1); i <= 5; i++ {
		pts = append(pts, geom.Point{Payload: i, X: 0.3, Y: 0.3})
	}
	ft := buildTree(t, region, 2, pts)

	got := drainIterator(New(ft, region))
	require.Len(t, got, 5)
	for i, p := range got {
		require.Equal(t, uint64(i+1), p.Payload, "points within a leaf must be yielded in insertion order")
	}
}

// TestScenario4_FullRegionRandomPoints covers spec.md §8 scenario 4,
// asserting both Completeness and the fast-path's equivalence with the
// point-by-point path.
func TestScenario4_FullRegionRandomPoints(t *testing.T) {
	region := r(0, 0, 1, 1)
	rng := rand.New(rand.NewSource(42))
	pts := make([]geom.Point, 1000)
	for i := range pts {
		pts[i] = geom.Point{Payload: uint64(i), X: rng.Float64(), Y: rng.Float64()}
	}
	ft := buildTree(t, region, 8, pts)

	full := CollectArray(ft, region, 0)
	require.ElementsMatch(t, byPayload(pts), byPayload(full))

	fast := CollectArrayFast(ft, region, 0)
	require.ElementsMatch(t, byPayload(full), byPayload(fast))
}

// TestCompleteness_RandomRectangles is a broader completeness/uniqueness
// sweep across many query rectangles, not just the full region.
func TestCompleteness_RandomRectangles(t *testing.T) {
	region := r(0, 0, 100, 100)
	rng := rand.New(rand.NewSource(7))
	pts := make([]geom.Point, 500)
	for i := range pts {
		pts[i] = geom.Point{Payload: uint64(i), X: rng.Float64() * 100, Y: rng.Float64() * 100}
	}
	ft := buildTree(t, region, 6, pts)

	for q := 0; q < 20; q++ {
		x0, x1 := rng.Float64()*100, rng.Float64()*100
		y0, y1 := rng.Float64()*100, rng.Float64()*100
		if x0 > x1 {
			x0, x1 = x1, x0
		}
		if y0 > y1 {
			y0, y1 = y1, y0
		}
		if x0 == x1 || y0 == y1 {
			continue
		}
		query := r(x0, y0, x1, y1)

		var want []uint64
		for _, p := range pts {
			if geom.PointIn(query, p.X, p.Y) {
				want = append(want, p.Payload)
			}
		}
		got := byPayload(CollectArray(ft, query, 0))
		require.ElementsMatch(t, want, got, "query %v", query)

		// Uniqueness: no payload repeated.
		seen := map[uint64]bool{}
		for _, pl := range got {
			require.False(t, seen[pl], "payload %d yielded twice for query %v", pl, query)
			seen[pl] = true
		}
	}
}

// TestScenario6_EnclosedSubtreeOptimisation covers spec.md §8 scenario 6:
// for a full-region query, every leaf must be yielded via the
// within-parent fast path, never falling back to geom.PointIn.
func TestScenario6_EnclosedSubtreeOptimisation(t *testing.T) {
	region := r(0, 0, 1, 1)
	rng := rand.New(rand.NewSource(99))
	pts := make([]geom.Point, 300)
	for i := range pts {
		pts[i] = geom.Point{Payload: uint64(i), X: rng.Float64(), Y: rng.Float64()}
	}
	ft := buildTree(t, region, 4, pts)

	diag.Enable(true)
	defer diag.Enable(false)
	diag.Reset()

	got := drainIterator(New(ft, region))
	require.Len(t, got, len(pts))
	require.Zero(t, diag.PointInCalls(), "a full-region query must never fall back to per-point filtering")
	require.Positive(t, diag.LeavesVisited())
}

func TestMaxN_CapsResults(t *testing.T) {
	region := r(0, 0, 1, 1)
	var pts []geom.Point
	for i := uint64(0); i < 50; i++ {
		pts = append(pts, geom.Point{Payload: i, X: float64(i%10) / 10, Y: float64(i/10) / 10})
	}
	ft := buildTree(t, region, 4, pts)

	got := CollectArray(ft, region, 10)
	require.Len(t, got, 10)

	gotFast := CollectArrayFast(ft, region, 10)
	require.Len(t, gotFast, 10)
}
