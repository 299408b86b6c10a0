package quadtree

import (
	"errors"
	"testing"

	"qtidx/pkg/geom"
)

func rect(swx, swy, nex, ney float64) geom.Rect {
	return geom.Rect{SW: geom.Point2D{X: swx, Y: swy}, NE: geom.Point2D{X: nex, Y: ney}}
}

func TestNewBuilder_RejectsDegenerateRegion(t *testing.T) {
	_, err := NewBuilder(rect(10, 10, 0, 0), 4)
	if !errors.Is(err, ErrInvalidRegion) {
		t.Fatalf("expected ErrInvalidRegion, got %v", err)
	}
}

func TestInsert_RejectsOutOfRegion(t *testing.T) {
	b, err := NewBuilder(rect(0, 0, 10, 10), 4)
	if err != nil {
		t.Fatalf("NewBuilder: %v", err)
	}
	err = b.Insert(geom.Point{Payload: 1, X: 20, Y: 20})
	if !errors.Is(err, ErrOutOfRegion) {
		t.Fatalf("expected ErrOutOfRegion, got %v", err)
	}
}

func TestInsert_SingleLeafStaysUnderMaxfill(t *testing.T) {
	b, _ := NewBuilder(rect(0, 0, 10, 10), 4)
	for i := uint64(0); i < 4; i++ {
		// spread points so a split is never triggered
		if err := b.Insert(geom.Point{Payload: i, X: float64(i) + 0.1, Y: 0.1}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}
	if b.nleafs != 1 || b.ninners != 0 {
		t.Fatalf("expected single leaf, got nleafs=%d ninners=%d", b.nleafs, b.ninners)
	}
	if b.root.kind != nodeLeaf || len(b.root.points) != 4 {
		t.Fatalf("expected root leaf with 4 points, got kind=%v n=%d", b.root.kind, len(b.root.points))
	}
}

func TestInsert_SplitsWhenBucketOverflowsWithDistinctPoints(t *testing.T) {
	b, _ := NewBuilder(rect(0, 0, 10, 10), 2)
	pts := []geom.Point{
		{Payload: 1, X: 1, Y: 1},
		{Payload: 2, X: 9, Y: 9},
		{Payload: 3, X: 5, Y: 5},
	}
	for _, p := range pts {
		if err := b.Insert(p); err != nil {
			t.Fatalf("insert %v: %v", p, err)
		}
	}
	if b.root.kind != nodeInner {
		t.Fatalf("expected root to have split into an inner node")
	}
	if b.ninners != 1 {
		t.Fatalf("expected exactly one inner node, got %d", b.ninners)
	}
	if b.size != 3 {
		t.Fatalf("expected size 3, got %d", b.size)
	}
}

func TestInsert_CoincidentPointsGrowBucketInsteadOfSplitting(t *testing.T) {
	b, _ := NewBuilder(rect(0, 0, 1, 1), 2)
	for i := uint64(1); i <= 5; i++ {
		if err := b.Insert(geom.Point{Payload: i, X: 0.3, Y: 0.3}); err != nil {
			t.Fatalf("insert #%d: %v", i, err)
		}
	}
	if b.root.kind != nodeLeaf {
		t.Fatalf("a bucket of coincident points must never split")
	}
	if len(b.root.points) != 5 {
		t.Fatalf("expected 5 points in the bucket, got %d", len(b.root.points))
	}
	if b.root.cap < 8 {
		t.Fatalf("expected capacity to have doubled at least twice from maxfill=2, got cap=%d", b.root.cap)
	}
	for i, p := range b.root.points {
		if p.Payload != uint64(i+1) {
			t.Fatalf("expected insertion order to be preserved, got payload %d at index %d", p.Payload, i)
		}
	}
}

func TestInsert_TracksMaxDepth(t *testing.T) {
	b, _ := NewBuilder(rect(0, 0, 1, 1), 1)
	// Four well-separated points force successive splits.
	pts := []geom.Point{
		{Payload: 1, X: 0.01, Y: 0.01},
		{Payload: 2, X: 0.02, Y: 0.02},
		{Payload: 3, X: 0.03, Y: 0.03},
		{Payload: 4, X: 0.04, Y: 0.04},
	}
	for _, p := range pts {
		if err := b.Insert(p); err != nil {
			t.Fatalf("insert %v: %v", p, err)
		}
	}
	if b.maxdepth < 2 {
		t.Fatalf("expected maxdepth to grow past the root level, got %d", b.maxdepth)
	}
}

func TestInsert_BoundaryAssignmentMatchesSpecScenario2(t *testing.T) {
	b, _ := NewBuilder(rect(0, 0, 10, 10), 2)
	for _, p := range []geom.Point{
		{Payload: 1, X: 1, Y: 1},
		{Payload: 2, X: 9, Y: 9},
		{Payload: 3, X: 5, Y: 5},
		{Payload: 4, X: 5, Y: 5},
	} {
		if err := b.Insert(p); err != nil {
			t.Fatalf("insert %v: %v", p, err)
		}
	}
	if b.size != 4 {
		t.Fatalf("expected 4 points inserted, got %d", b.size)
	}
	// (5,5) lies on the root midpoint, so it goes to the NE child; inside
	// NE's rectangle (5,5)-(10,10) it then falls in the SW grandchild.
	ne := b.root.children[geom.NE]
	if b.root.kind != nodeInner || ne == nil || ne.kind != nodeInner {
		t.Fatalf("expected the root and its NE child to be inner nodes")
	}
	onMid := ne.children[geom.SW]
	if onMid == nil || len(onMid.points) != 2 || onMid.points[0].Payload != 3 || onMid.points[1].Payload != 4 {
		t.Fatalf("expected #3 and #4 in the NE child's SW leaf")
	}
	if sw := b.root.children[geom.SW]; sw == nil || len(sw.points) != 1 || sw.points[0].Payload != 1 {
		t.Fatalf("expected #1 alone in the root's SW leaf")
	}
}
