// Package quadtree implements the transient build-time tree, its
// finalisation into a single packed buffer, and the read-only accessor over
// that buffer. Together these are the hardest parts of the index: the build
// determines tree shape, finalisation determines addressing, and the query
// layer (see package query) exploits both.
package quadtree

import (
	"github.com/pkg/errors"

	"qtidx/pkg/geom"
)

// Sentinel errors surfaced to callers of the build-time API. Traversal-time
// invariant violations (package query, once a tree is finalised) panic
// instead, per the reference's "crash on programmer error" policy; these
// two are the errors a caller can reasonably check for and recover from.
var (
	ErrInvalidRegion = errors.New("quadtree: region is degenerate (NE must be strictly greater than SW)")
	ErrOutOfRegion   = errors.New("quadtree: point lies outside the builder's region")
)

// Builder is a mutable, single-threaded, build-time quadtree. It accepts
// points one at a time via Insert and is consumed exactly once by
// Finalize. A Builder must not be shared across goroutines.
type Builder struct {
	region  geom.Rect
	maxfill int

	root *node

	maxdepth int
	ninners  int
	nleafs   int
	size     int
}

// NewBuilder creates an empty builder over region, accepting points one at
// a time with each leaf bucket sized maxfill before it must split or grow.
func NewBuilder(region geom.Rect, maxfill int) (*Builder, error) {
	if !region.Valid() {
		return nil, errors.Wrapf(ErrInvalidRegion, "region sw=%v ne=%v", region.SW, region.NE)
	}
	if maxfill < 1 {
		maxfill = 1
	}
	return &Builder{
		region:  region,
		maxfill: maxfill,
		root:    newLeaf(maxfill),
		nleafs:  1,
	}, nil
}

// Region returns the builder's bounding rectangle.
func (b *Builder) Region() geom.Rect { return b.region }

// Len returns the number of points inserted so far.
func (b *Builder) Len() int { return b.size }

// Insert copies p into the tree (the caller's storage is free to reuse or
// discard p once Insert returns) and descends from the root, splitting or
// growing buckets as required. It returns ErrOutOfRegion if p does not lie
// within the builder's region.
func (b *Builder) Insert(p geom.Point) error {
	if !geom.PointIn(b.region, p.X, p.Y) {
		return errors.Wrapf(ErrOutOfRegion, "point=%v region sw=%v ne=%v", p, b.region.SW, b.region.NE)
	}
	cp := p // the transient tree owns its own copy
	b.insert(b.root, b.region, 1, &cp)
	b.size++
	return nil
}

// insert descends from n (currently covering rect, at the given depth) and
// places pt, splitting or growing leaves as needed. depth is the number of
// nodes visited to reach n, counting the root as depth 1.
func (b *Builder) insert(n *node, rect geom.Rect, depth int, pt *geom.Point) {
	if n.kind == nodeInner {
		mid := geom.Mid(rect)
		q := geom.Quadrant(mid, pt.X, pt.Y)
		child := n.children[q]
		if child == nil {
			child = newLeaf(b.maxfill)
			n.children[q] = child
			b.nleafs++
		}
		childRect := geom.Split(rect, mid)[q]
		b.insert(child, childRect, depth+1, pt)
		return
	}

	// n is a leaf.
	if !n.full() {
		n.points = append(n.points, pt)
		b.recordDepth(depth)
		return
	}

	if n.allCoincident() {
		// Every point here shares a location: splitting would just recreate
		// this same leaf as an only child. Grow instead.
		n.cap *= 2
		n.points = append(n.points, pt)
		b.recordDepth(depth)
		return
	}

	// Convert this leaf into an inner node in place and re-home its
	// existing points before retrying the point that triggered the split.
	// Re-homing replays points Insert has already counted once, so this
	// recurses back through the leaf-append branches above purely to place
	// them (and track maxdepth) -- it must never bump b.size again.
	old := n.points
	n.kind = nodeInner
	n.points = nil
	n.cap = 0
	n.children = [4]*node{}
	b.ninners++
	b.nleafs--

	for _, op := range old {
		b.insert(n, rect, depth, op)
	}
	b.insert(n, rect, depth, pt)
}

// recordDepth tracks the deepest descent any insert (original or re-homed)
// has taken. Item-count bookkeeping lives solely in Insert: insert may
// revisit the same logical point multiple times while re-homing a split
// bucket, but each call to Insert must add exactly one to b.size.
func (b *Builder) recordDepth(depth int) {
	if depth > b.maxdepth {
		b.maxdepth = depth
	}
}
