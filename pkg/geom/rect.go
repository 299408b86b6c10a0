// Package geom implements the two-dimensional geometry primitives the
// quadtree builds and queries on top of: points, axis-aligned rectangles,
// and the containment/overlap/midpoint tests shared by the build and query
// paths.
package geom

import "fmt"

// Point2D is a bare coordinate pair, used for rectangle corners and
// midpoints where no payload is carried.
type Point2D struct {
	X, Y float64
}

// Point is an inserted point: a coordinate pair plus the caller's opaque
// 64-bit payload. Its on-disk form is tightly packed: 8 bytes of payload
// followed by the two 8-byte coordinates, in that order (pkg/quadtree's
// record codec depends on this field order).
type Point struct {
	Payload uint64
	X, Y    float64
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g,#%d)", p.X, p.Y, p.Payload)
}

// Rect is an axis-aligned rectangle given by its south-west and north-east
// corners. A well-formed rectangle satisfies NE.X > SW.X and NE.Y > SW.Y.
type Rect struct {
	SW, NE Point2D
}

// Valid reports whether r satisfies the NE > SW invariant required of any
// region passed to NewBuilder.
func (r Rect) Valid() bool {
	return r.NE.X > r.SW.X && r.NE.Y > r.SW.Y
}

// Mid returns the midpoint of r. Callers on the build and query paths are
// expected to compute this once per level and carry it down the descent,
// rather than recompute it from the root at every step, so that a point
// landing exactly on a boundary is classified identically in both build
// and query.
func Mid(r Rect) Point2D {
	return Point2D{
		X: r.SW.X + (r.NE.X-r.SW.X)/2,
		Y: r.SW.Y + (r.NE.Y-r.SW.Y)/2,
	}
}

// Overlaps reports whether rectangles a and b share any area, inclusive of
// shared edges and corners.
func Overlaps(a, b Rect) bool {
	return a.SW.X <= b.NE.X && a.SW.Y <= b.NE.Y &&
		a.NE.X >= b.SW.X && a.NE.Y >= b.SW.Y
}

// Contains reports whether outer fully encloses inner, inclusive of shared
// boundaries.
func Contains(outer, inner Rect) bool {
	return outer.SW.X <= inner.SW.X && outer.SW.Y <= inner.SW.Y &&
		outer.NE.X >= inner.NE.X && outer.NE.Y >= inner.NE.Y
}

// PointIn reports whether (x, y) lies within r, closed on both sides of
// both axes.
func PointIn(r Rect, x, y float64) bool {
	return x >= r.SW.X && x <= r.NE.X && y >= r.SW.Y && y <= r.NE.Y
}

// Quad identifies one of the four child quadrants of a rectangle. The
// numeric ordering is fixed and shared by the split logic, the insertion
// engine, and the on-disk inner record: bit 1 is S(1)/N(0), bit 0 is
// E(1)/W(0).
type Quad uint8

const (
	NW Quad = 0
	NE Quad = 1
	SW Quad = 2
	SE Quad = 3
)

func (q Quad) String() string {
	switch q {
	case NW:
		return "NW"
	case NE:
		return "NE"
	case SW:
		return "SW"
	case SE:
		return "SE"
	default:
		return "?"
	}
}

// Quadrant picks the child quadrant (x, y) belongs to given the midpoint of
// the current rectangle. Boundary points are assigned to the north and
// east child: a coordinate exactly equal to the midpoint maps to the
// "greater" half on that axis. This rule must be applied identically
// during insertion and during query traversal, or a point inserted on a
// boundary becomes unreachable.
func Quadrant(mid Point2D, x, y float64) Quad {
	var q Quad
	if x >= mid.X {
		q |= 1 << 1 // east
	}
	if y >= mid.Y {
		q |= 1 << 0 // north
	}
	return quadLUT[q]
}

// quadLUT maps the (eastBit<<1 | northBit) combination computed above onto
// the NW/NE/SW/SE ordering: that combination puts east in the high bit and
// north in the low bit, which is not the Quad numbering, so the table
// translates it with a single lookup instead of a chain of ifs.
var quadLUT = [4]Quad{
	0b00: SW, // not east, not north -> south-west
	0b01: NW, // not east, north -> north-west
	0b10: SE, // east, not north -> south-east
	0b11: NE, // east, north -> north-east
}

// Split divides r into its four children around mid, indexed by Quad.
func Split(r Rect, mid Point2D) [4]Rect {
	var out [4]Rect
	out[NW] = Rect{SW: Point2D{X: r.SW.X, Y: mid.Y}, NE: Point2D{X: mid.X, Y: r.NE.Y}}
	out[NE] = Rect{SW: mid, NE: r.NE}
	out[SW] = Rect{SW: r.SW, NE: mid}
	out[SE] = Rect{SW: Point2D{X: mid.X, Y: r.SW.Y}, NE: Point2D{X: r.NE.X, Y: mid.Y}}
	return out
}
