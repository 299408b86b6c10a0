package quadtree

import (
	"encoding/binary"
	"math"

	"qtidx/pkg/geom"
)

// Layout constants for the finalised, packed on-disk/on-buffer form. These
// mirror the constant block the teacher keeps alongside its own page node
// codec (nodeHdrSize/leafEntrySize/internalEntSize): the sizes are fixed so
// the loader can agree with the writer without any parsing step.
//
// All multi-byte fields use the host's native byte order and float
// representation (encoding/binary.NativeEndian), matching the spec's "raw
// copy" persistence contract: the persisted form is only portable between
// hosts of identical representation.
const (
	// HeaderSize is the fixed size of the header record at the start of
	// the buffer: four bounding-rectangle doubles, the item count, the
	// max depth, and the inner/leaf record counts, padded to a multiple
	// of 8 bytes.
	HeaderSize = 64

	// InnerRecSize is the size of one packed inner record: four 64-bit
	// child offsets, one per quadrant (NW, NE, SW, SE).
	InnerRecSize = 32

	// LeafRecHdrSize is the size of a leaf record's count field; the
	// record is followed by n PointRecSize-byte point records.
	LeafRecHdrSize = 8

	// PointRecSize is the size of one packed point record: an 8-byte
	// payload followed by two 8-byte coordinates.
	PointRecSize = 24

	headerOffSWX      = 0
	headerOffSWY      = 8
	headerOffNEX      = 16
	headerOffNEY      = 24
	headerOffSize     = 32
	headerOffMaxDepth = 40
	headerOffReserved = 44
	headerOffNInners  = 48
	headerOffNLeafs   = 56
)

var nativeEndian = binary.NativeEndian

// header is the decoded form of the fixed-size record at buffer offset 0.
type header struct {
	Region   geom.Rect
	Size     uint64
	MaxDepth uint32
	NInners  uint64
	NLeafs   uint64
}

func encodeHeader(buf []byte, h header) {
	nativeEndian.PutUint64(buf[headerOffSWX:], toBits(h.Region.SW.X))
	nativeEndian.PutUint64(buf[headerOffSWY:], toBits(h.Region.SW.Y))
	nativeEndian.PutUint64(buf[headerOffNEX:], toBits(h.Region.NE.X))
	nativeEndian.PutUint64(buf[headerOffNEY:], toBits(h.Region.NE.Y))
	nativeEndian.PutUint64(buf[headerOffSize:], h.Size)
	nativeEndian.PutUint32(buf[headerOffMaxDepth:], h.MaxDepth)
	nativeEndian.PutUint32(buf[headerOffReserved:], 0)
	nativeEndian.PutUint64(buf[headerOffNInners:], h.NInners)
	nativeEndian.PutUint64(buf[headerOffNLeafs:], h.NLeafs)
}

func decodeHeader(buf []byte) header {
	return header{
		Region: geom.Rect{
			SW: geom.Point2D{X: fromBits(nativeEndian.Uint64(buf[headerOffSWX:])), Y: fromBits(nativeEndian.Uint64(buf[headerOffSWY:]))},
			NE: geom.Point2D{X: fromBits(nativeEndian.Uint64(buf[headerOffNEX:])), Y: fromBits(nativeEndian.Uint64(buf[headerOffNEY:]))},
		},
		Size:     nativeEndian.Uint64(buf[headerOffSize:]),
		MaxDepth: nativeEndian.Uint32(buf[headerOffMaxDepth:]),
		NInners:  nativeEndian.Uint64(buf[headerOffNInners:]),
		NLeafs:   nativeEndian.Uint64(buf[headerOffNLeafs:]),
	}
}

// innerChildOffsets reads the four child offsets of the inner record at
// buf[off:], in NW,NE,SW,SE order.
func innerChildOffsets(buf []byte, off uint64) [4]uint64 {
	var out [4]uint64
	for q := 0; q < 4; q++ {
		out[q] = nativeEndian.Uint64(buf[off+uint64(q*8):])
	}
	return out
}

func encodeInner(buf []byte, off uint64, children [4]uint64) {
	for q := 0; q < 4; q++ {
		nativeEndian.PutUint64(buf[off+uint64(q*8):], children[q])
	}
}

// leafCount reads the item count of the leaf record at buf[off:].
func leafCount(buf []byte, off uint64) uint64 {
	return nativeEndian.Uint64(buf[off:])
}

// leafPoint decodes the i-th point (0-based) of the leaf record at
// buf[off:].
func leafPoint(buf []byte, off uint64, i uint64) geom.Point {
	base := off + LeafRecHdrSize + i*PointRecSize
	return geom.Point{
		Payload: nativeEndian.Uint64(buf[base:]),
		X:       fromBits(nativeEndian.Uint64(buf[base+8:])),
		Y:       fromBits(nativeEndian.Uint64(buf[base+16:])),
	}
}

func encodeLeaf(buf []byte, off uint64, points []*geom.Point) {
	nativeEndian.PutUint64(buf[off:], uint64(len(points)))
	base := off + LeafRecHdrSize
	for _, p := range points {
		nativeEndian.PutUint64(buf[base:], p.Payload)
		nativeEndian.PutUint64(buf[base+8:], toBits(p.X))
		nativeEndian.PutUint64(buf[base+16:], toBits(p.Y))
		base += PointRecSize
	}
}

func leafByteSize(n int) uint64 {
	return LeafRecHdrSize + uint64(n)*PointRecSize
}

func toBits(f float64) uint64   { return math.Float64bits(f) }
func fromBits(b uint64) float64 { return math.Float64frombits(b) }
