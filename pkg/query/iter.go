// Package query implements range queries over a finalised quadtree: a
// cursor-style iterator with a hand-managed descent stack, and bulk
// collectors built on top of it.
package query

import (
	"qtidx/internal/diag"
	"qtidx/pkg/geom"
	"qtidx/pkg/quadtree"
)

// frame is one level of the iterator's manual descent stack. childRects is
// only meaningful when the frame's node is an inner record; it holds the
// four child rectangles precomputed on entry so they are never recomputed
// (and never accumulate floating-point drift) during the descent.
type frame struct {
	off         uint64
	isLeaf      bool
	childRects  [4]geom.Rect
	quadrant    int
	withinQuery bool
}

// Iterator yields every point of a finalised tree contained in a query
// rectangle exactly once, in DFS order of the containing leaves and in
// insertion order within each leaf. An Iterator owns its descent stack and
// a reference to the tree it was created from; it must not outlive the
// tree, and it does not own any point it yields (those live in the tree's
// buffer).
type Iterator struct {
	t *quadtree.FinalTree
	q geom.Rect

	stack []frame

	lpValid  bool
	lpOff    uint64
	lpWithin bool
	curItem  int
}

// New creates an iterator over t restricted to rectangle q. The descent
// stack is preallocated to exactly t.MaxDepth()+1 frames, the maximum
// depth any build-time insert observed.
func New(t *quadtree.FinalTree, q geom.Rect) *Iterator {
	it := &Iterator{
		t:     t,
		q:     q,
		stack: make([]frame, 0, t.MaxDepth()+1),
	}
	root := rootFrame(t, q)
	it.stack = append(it.stack, root)
	it.advanceToNextLeaf()
	return it
}

// rootFrame builds the initial stack frame. Its withinQuery flag always
// starts false, even when the query happens to cover the whole region: the
// flag only becomes true once a *child* rectangle is found to lie fully
// inside the query rectangle, per the descent rule in advanceToNextLeaf.
func rootFrame(t *quadtree.FinalTree, q geom.Rect) frame {
	off := t.RootOffset()
	isLeaf := t.IsLeaf(off)
	f := frame{off: off, isLeaf: isLeaf, withinQuery: false}
	if !isLeaf {
		mid := geom.Mid(t.Region())
		f.childRects = geom.Split(t.Region(), mid)
	}
	return f
}

// advanceToNextLeaf walks the stack until its top is a leaf frame (sets
// lpValid/lpOff/lpWithin and returns) or the stack is fully drained (clears
// lpValid).
func (it *Iterator) advanceToNextLeaf() {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]

		if top.isLeaf {
			it.lpValid = true
			it.lpOff = top.off
			it.lpWithin = top.withinQuery
			it.curItem = 0
			diag.RecordLeafVisit()
			return
		}

		offs := it.t.ChildOffsets(top.off)
		pushed := false
		for ; top.quadrant < 4; top.quadrant++ {
			childOff := offs[top.quadrant]
			if childOff == 0 {
				continue
			}
			childRect := top.childRects[top.quadrant]
			if !geom.Overlaps(childRect, it.q) {
				continue
			}

			within := top.withinQuery || geom.Contains(it.q, childRect)
			childIsLeaf := it.t.IsLeaf(childOff)
			child := frame{off: childOff, isLeaf: childIsLeaf, withinQuery: within}
			if !childIsLeaf {
				mid := geom.Mid(childRect)
				child.childRects = geom.Split(childRect, mid)
			}
			it.stack = append(it.stack, child)
			pushed = true
			break
		}
		if pushed {
			continue
		}

		// All four quadrants exhausted: pop and resume the parent one
		// quadrant further along.
		it.stack = it.stack[:len(it.stack)-1]
		if len(it.stack) == 0 {
			break
		}
		it.stack[len(it.stack)-1].quadrant++
	}
	it.lpValid = false
}

// Next returns the next matching point, or (zero, false) once the
// iteration is complete.
func (it *Iterator) Next() (geom.Point, bool) {
	for it.lpValid {
		n := it.t.LeafLen(it.lpOff)
		for it.curItem < n {
			p := it.t.LeafPoint(it.lpOff, it.curItem)
			it.curItem++
			if it.lpWithin {
				return p, true
			}
			diag.RecordPointInCall()
			if geom.PointIn(it.q, p.X, p.Y) {
				return p, true
			}
		}

		// This leaf is drained: pop it and resume its parent one quadrant
		// further along, then find the next leaf (if any).
		it.stack = it.stack[:len(it.stack)-1]
		if len(it.stack) == 0 {
			it.lpValid = false
			break
		}
		it.stack[len(it.stack)-1].quadrant++
		it.advanceToNextLeaf()
	}
	return geom.Point{}, false
}
