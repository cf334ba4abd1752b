// Package geom provides exact integer 2D geometry for board coordinates.
//
// Coordinates are integers (nanometres for boards loaded from KiCad).
// Predicates used for topology decisions (Orient2D, InCircle, segment
// intersection tests) are exact for any int64 input. Segment
// measurements (nearest points, intersections, distances) are exact for
// coordinates in the int32 range. Point arithmetic (Add, Sub, Neg) is
// plain int arithmetic and expects operands within ±MaxCoord.
package geom

import "fmt"

// Point is an integer 2D coordinate.
type Point struct {
	X, Y int
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y int) Point {
	return Point{X: x, Y: y}
}

// Add returns p + q. Operands are expected within ±MaxCoord; the sum is
// not checked for overflow.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q. Like Add it expects operands within ±MaxCoord.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Neg returns -p. It expects p within ±MaxCoord.
func (p Point) Neg() Point {
	return Point{X: -p.X, Y: -p.Y}
}

// Cross returns the z component of the cross product p × q.
func (p Point) Cross(q Point) int64 {
	return int64(p.X)*int64(q.Y) - int64(p.Y)*int64(q.X)
}

// Dot returns the dot product p · q.
func (p Point) Dot(q Point) int64 {
	return int64(p.X)*int64(q.X) + int64(p.Y)*int64(q.Y)
}

// SquaredNorm returns x² + y², saturating to EcoordMax.
func (p Point) SquaredNorm() int64 {
	return squaredSum(int64(p.X), int64(p.Y))
}

// Norm returns the Euclidean length rounded down.
func (p Point) Norm() int64 {
	return ISqrt(p.SquaredNorm())
}

// SquaredDistance returns the squared distance between p and q.
func (p Point) SquaredDistance(q Point) int64 {
	return squaredSum(int64(p.X)-int64(q.X), int64(p.Y)-int64(q.Y))
}

// Distance returns the distance between p and q rounded down.
func (p Point) Distance(q Point) int64 {
	return ISqrt(p.SquaredDistance(q))
}

// Less orders points by X, then Y.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

func (p Point) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Box is an axis-aligned bounding box with inclusive bounds.
type Box struct {
	Min, Max Point
}

// BoxOf returns the bounding box of pts. The box of no points is empty.
func BoxOf(pts ...Point) Box {
	if len(pts) == 0 {
		return Box{Min: Pt(1, 1), Max: Pt(0, 0)}
	}
	b := Box{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		b = b.Expand(p)
	}
	return b
}

// IsEmpty reports whether the box contains no point.
func (b Box) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y
}

// Expand returns the box grown to include p.
func (b Box) Expand(p Point) Box {
	if b.IsEmpty() {
		return Box{Min: p, Max: p}
	}
	if p.X < b.Min.X {
		b.Min.X = p.X
	}
	if p.Y < b.Min.Y {
		b.Min.Y = p.Y
	}
	if p.X > b.Max.X {
		b.Max.X = p.X
	}
	if p.Y > b.Max.Y {
		b.Max.Y = p.Y
	}
	return b
}

// Contains reports whether p lies inside or on the box.
func (b Box) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Intersects reports whether two boxes share at least one point.
func (b Box) Intersects(o Box) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// Width returns the horizontal extent.
func (b Box) Width() int {
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent.
func (b Box) Height() int {
	return b.Max.Y - b.Min.Y
}
