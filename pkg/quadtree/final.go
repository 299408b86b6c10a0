package quadtree

import "qtidx/pkg/geom"

// FinalTree is an immutable, finalised quadtree: a single contiguous byte
// buffer that can be queried directly, written to disk with pkg/persist,
// and reloaded later by a raw byte copy with no parsing step. The buffer
// layout is: header, then the inner-node region, then the leaf region (see
// record.go for the exact byte layout of each).
type FinalTree struct {
	buf []byte
	hdr header
}

// NewFinalTreeFromBuffer wraps a raw buffer (as produced by Finalize or
// read back by pkg/persist) as a FinalTree. No validation of the buffer's
// internal offsets is performed; the format is trusted, matching the
// reference's raw-copy persistence contract.
func NewFinalTreeFromBuffer(buf []byte) *FinalTree {
	return &FinalTree{buf: buf, hdr: decodeHeader(buf)}
}

// Bytes returns the tree's backing buffer, exactly as it would be written
// to disk by pkg/persist.Save.
func (t *FinalTree) Bytes() []byte { return t.buf }

// Region returns the bounding rectangle supplied when the tree was built.
func (t *FinalTree) Region() geom.Rect { return t.hdr.Region }

// Len returns the total number of points in the tree.
func (t *FinalTree) Len() int { return int(t.hdr.Size) }

// MaxDepth returns the maximum depth observed by any insert during the
// build, i.e. the exact descent-stack depth a query traversal needs.
func (t *FinalTree) MaxDepth() int { return int(t.hdr.MaxDepth) }

// NInners returns the number of inner (non-leaf) records in the tree.
func (t *FinalTree) NInners() int { return int(t.hdr.NInners) }

// NLeafs returns the number of leaf records in the tree.
func (t *FinalTree) NLeafs() int { return int(t.hdr.NLeafs) }

func (t *FinalTree) innerBase() uint64 { return uint64(HeaderSize) }
func (t *FinalTree) leafBase() uint64  { return t.innerBase() + t.hdr.NInners*InnerRecSize }

// RootOffset returns the child offset of the root record: always 0, the
// start of the inner-node region. Whether that record is itself an inner
// node or a (degenerate, single-leaf) tree is determined by IsLeaf, exactly
// as for any other child offset.
func (t *FinalTree) RootOffset() uint64 { return 0 }

// IsLeaf classifies a child offset as addressing a leaf record (true) or an
// inner record (false). This is the only mechanism the finalised format
// uses to distinguish node kinds -- there is no per-record tag -- so it
// must be applied consistently by every caller that walks the buffer.
func (t *FinalTree) IsLeaf(off uint64) bool {
	return t.innerBase()+off >= t.leafBase()
}

// ChildOffsets returns the four child offsets (NW, NE, SW, SE) of the inner
// record at offset off. Each is either 0 (no child) or a valid offset into
// the buffer, per the addressing invariant.
func (t *FinalTree) ChildOffsets(off uint64) [4]uint64 {
	return innerChildOffsets(t.buf, t.innerBase()+off)
}

// LeafLen returns the point count of the leaf record at offset off.
func (t *FinalTree) LeafLen(off uint64) int {
	return int(leafCount(t.buf, t.innerBase()+off))
}

// LeafPoint returns the i-th point (0-based, in original insertion order)
// of the leaf record at offset off.
func (t *FinalTree) LeafPoint(off uint64, i int) geom.Point {
	return leafPoint(t.buf, t.innerBase()+off, uint64(i))
}
