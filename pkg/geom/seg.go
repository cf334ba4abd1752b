package geom

import (
	"fmt"
	"math/big"
)

// Seg is a line segment between two integer points. A segment whose
// endpoints coincide behaves as a single point in every operation.
type Seg struct {
	A, B Point
}

// NewSeg returns the segment a-b.
func NewSeg(a, b Point) Seg {
	return Seg{A: a, B: b}
}

// IsPoint reports whether the segment has zero length.
func (s Seg) IsPoint() bool {
	return s.A == s.B
}

// SquaredLength returns |B-A|².
func (s Seg) SquaredLength() int64 {
	return squaredSum(delta(s.B, s.A))
}

// Length returns |B-A| rounded down.
func (s Seg) Length() int64 {
	return ISqrt(s.SquaredLength())
}

// Center returns the midpoint, rounded toward A. The offset is taken in
// int64 so endpoints anywhere in the int32 range are fine.
func (s Seg) Center() Point {
	dx, dy := delta(s.B, s.A)
	return Point{X: s.A.X + int(dx/2), Y: s.A.Y + int(dy/2)}
}

// Reversed returns the segment B-A.
func (s Seg) Reversed() Seg {
	return Seg{A: s.B, B: s.A}
}

// BBox returns the segment's bounding box.
func (s Seg) BBox() Box {
	return BoxOf(s.A, s.B)
}

// Side returns the side of the carrying line p lies on: +1 left, -1
// right, 0 on the line.
func (s Seg) Side(p Point) int {
	return Orient2D(s.A, s.B, p)
}

// delta returns p - q in int64.
func delta(p, q Point) (int64, int64) {
	return int64(p.X) - int64(q.X), int64(p.Y) - int64(q.Y)
}

func (s Seg) String() string {
	return fmt.Sprintf("[%v - %v]", s.A, s.B)
}

// containsExact reports whether p lies exactly on the closed segment.
func (s Seg) containsExact(p Point) bool {
	if s.IsPoint() {
		return p == s.A
	}
	return Orient2D(s.A, s.B, p) == 0 && s.BBox().Contains(p)
}

func (s Seg) isEndpoint(p Point) bool {
	return p == s.A || p == s.B
}

// project returns the coordinate of p along the dominant axis of s.
func (s Seg) project(p Point, xAxis bool) int {
	if xAxis {
		return p.X
	}
	return p.Y
}

func (s Seg) dominantX() bool {
	dx, dy := delta(s.B, s.A)
	return abs64(dx) >= abs64(dy)
}

// collinearOverlap tests two segments on the same line through a 1-D
// overlap of their projections on the dominant axis.
func (s Seg) collinearOverlap(o Seg, ignoreEndpoints bool) bool {
	xAxis := s.dominantX()
	sa, sb := s.project(s.A, xAxis), s.project(s.B, xAxis)
	oa, ob := s.project(o.A, xAxis), s.project(o.B, xAxis)
	if sa > sb {
		sa, sb = sb, sa
	}
	if oa > ob {
		oa, ob = ob, oa
	}
	lo, hi := max(sa, oa), min(sb, ob)
	if ignoreEndpoints {
		return lo < hi
	}
	return lo <= hi
}

// Intersects reports whether the two segments share a point. With
// ignoreEndpoints, a contact made only by an endpoint of both segments
// (including collinear segments touching end to end) does not count.
// The test is exact and symmetric.
func (s Seg) Intersects(o Seg, ignoreEndpoints bool) bool {
	if s.IsPoint() || o.IsPoint() {
		p, other := s.A, o
		if !s.IsPoint() {
			p, other = o.A, s
		}
		if !other.containsExact(p) {
			return false
		}
		return !(ignoreEndpoints && other.isEndpoint(p))
	}

	o1 := Orient2D(s.A, s.B, o.A)
	o2 := Orient2D(s.A, s.B, o.B)
	if o1 == 0 && o2 == 0 {
		return s.collinearOverlap(o, ignoreEndpoints)
	}
	o3 := Orient2D(o.A, o.B, s.A)
	o4 := Orient2D(o.A, o.B, s.B)
	if o1*o2 > 0 || o3*o4 > 0 {
		return false
	}
	if ignoreEndpoints && (o1 == 0 || o2 == 0) && (o3 == 0 || o4 == 0) {
		return false
	}
	return true
}

// Intersect returns the intersection point of the two segments. With
// lines set, both segments are extended to infinite lines and only
// parallel lines fail. For overlapping collinear segments the overlap
// point nearest to A is returned.
func (s Seg) Intersect(o Seg, ignoreEndpoints, lines bool) (Point, bool) {
	if !lines {
		if !s.Intersects(o, ignoreEndpoints) {
			return Point{}, false
		}
		switch {
		case s.IsPoint():
			return s.A, true
		case o.IsPoint():
			return o.A, true
		}
		if Orient2D(s.A, s.B, o.A) == 0 && Orient2D(s.A, s.B, o.B) == 0 {
			return s.overlapStart(o), true
		}
	}

	ex, ey := delta(s.B, s.A)
	fx, fy := delta(o.B, o.A)
	acx, acy := delta(o.A, s.A)

	// o.A + f * (e × ac) / (f × e)
	var offX, offY int64
	if isNarrow(ex, ey, fx, fy, acx, acy) {
		d := fx*ey - fy*ex
		if d == 0 {
			return Point{}, false
		}
		q := ex*acy - ey*acx
		offX, offY = Rescale(q, fx, d), Rescale(q, fy, d)
	} else {
		d := bigMulSub(fx, ey, fy, ex)
		if d.Sign() == 0 {
			return Point{}, false
		}
		q := bigMulSub(ex, acy, ey, acx)
		offX = bigRound(new(big.Int).Mul(q, big.NewInt(fx)), d)
		offY = bigRound(new(big.Int).Mul(q, big.NewInt(fy)), d)
	}
	return Point{X: o.A.X + int(offX), Y: o.A.Y + int(offY)}, true
}

func (s Seg) overlapStart(o Seg) Point {
	if o.containsExact(s.A) {
		return s.A
	}
	best, found := Point{}, false
	for _, p := range [...]Point{o.A, o.B} {
		if !s.containsExact(p) {
			continue
		}
		if !found || p.SquaredDistance(s.A) < best.SquaredDistance(s.A) {
			best, found = p, true
		}
	}
	return best
}

// NearestPoint returns the point of the segment closest to p. The
// projection is exact for any coordinates in the int32 range.
func (s Seg) NearestPoint(p Point) Point {
	dx, dy := delta(s.B, s.A)
	if dx == 0 && dy == 0 {
		return s.A
	}
	px, py := delta(p, s.A)

	var offX, offY int64
	if isNarrow(dx, dy, px, py) {
		l2 := dx*dx + dy*dy
		t := dx*px + dy*py
		switch {
		case t <= 0:
			return s.A
		case t >= l2:
			return s.B
		}
		offX, offY = Rescale(t, dx, l2), Rescale(t, dy, l2)
	} else {
		l2 := bigDot(dx, dx, dy, dy)
		t := bigDot(dx, px, dy, py)
		switch {
		case t.Sign() <= 0:
			return s.A
		case t.Cmp(l2) >= 0:
			return s.B
		}
		offX = bigRound(new(big.Int).Mul(t, big.NewInt(dx)), l2)
		offY = bigRound(new(big.Int).Mul(t, big.NewInt(dy)), l2)
	}
	return Point{X: s.A.X + int(offX), Y: s.A.Y + int(offY)}
}

// SquaredDistancePoint returns the squared distance from p to the
// segment.
func (s Seg) SquaredDistancePoint(p Point) int64 {
	return s.NearestPoint(p).SquaredDistance(p)
}

// DistancePoint returns the distance from p to the segment rounded down.
func (s Seg) DistancePoint(p Point) int64 {
	return ISqrt(s.SquaredDistancePoint(p))
}

// SquaredDistance returns the squared distance between two segments,
// zero when they intersect.
func (s Seg) SquaredDistance(o Seg) int64 {
	_, _, d2 := s.NearestPoints(o)
	return d2
}

// Distance returns the distance between two segments rounded down.
func (s Seg) Distance(o Seg) int64 {
	return ISqrt(s.SquaredDistance(o))
}

// NearestPoints returns the closest pair of points, the first on s and
// the second on o, and their squared distance. Intersecting segments
// collapse to the intersection point at distance zero.
func (s Seg) NearestPoints(o Seg) (Point, Point, int64) {
	if ip, ok := s.Intersect(o, false, false); ok {
		return ip, ip, 0
	}

	candidates := [...][2]Point{
		{s.A, o.NearestPoint(s.A)},
		{s.B, o.NearestPoint(s.B)},
		{s.NearestPoint(o.A), o.A},
		{s.NearestPoint(o.B), o.B},
	}
	best := candidates[0]
	bestD2 := best[0].SquaredDistance(best[1])
	for _, c := range candidates[1:] {
		if d2 := c[0].SquaredDistance(c[1]); d2 < bestD2 {
			best, bestD2 = c, d2
		}
	}
	return best[0], best[1], bestD2
}

// Collide reports whether the segments are closer than clearance or
// touch. A zero clearance reports touching or intersecting segments
// only. actual is the measured distance.
func (s Seg) Collide(o Seg, clearance int) (actual int, ok bool) {
	d2 := s.SquaredDistance(o)
	return collide(d2, clearance)
}

// CollidePoint is Collide against a single point.
func (s Seg) CollidePoint(p Point, clearance int) (actual int, ok bool) {
	return collide(s.SquaredDistancePoint(p), clearance)
}

func collide(d2 int64, clearance int) (int, bool) {
	actual := int(ISqrt(d2))
	if d2 == 0 || d2 < squaredSum(int64(clearance), 0) {
		return actual, true
	}
	return actual, false
}

// Contains reports whether p lies within one unit of the segment.
func (s Seg) Contains(p Point) bool {
	return s.SquaredDistancePoint(p) <= 1
}

// LineDistance returns the perpendicular distance from p to the
// infinite line through the segment. When signed is set the result is
// negative for points on the right of A->B.
func (s Seg) LineDistance(p Point, signed bool) int {
	// (nx, ny) is the left normal of A->B
	nx := int64(s.A.Y) - int64(s.B.Y)
	ny := int64(s.B.X) - int64(s.A.X)
	px, py := delta(p, s.A)

	var d2 int64
	var side int
	if isNarrow(nx, ny, px, py) {
		l := nx*nx + ny*ny
		det := nx*px + ny*py
		side = sign64(det)
		if l > 0 {
			d2 = Rescale(det, det, l)
		}
	} else {
		l := bigDot(nx, nx, ny, ny)
		det := bigDot(nx, px, ny, py)
		side = det.Sign()
		if l.Sign() > 0 {
			d2 = bigRound(new(big.Int).Mul(det, det), l)
		}
	}

	dist := ISqrt(d2)
	if signed {
		dist *= int64(side)
	}
	return int(dist)
}

// Collinear reports whether both endpoints of o lie exactly on the line
// carrying s.
func (s Seg) Collinear(o Seg) bool {
	if s.IsPoint() {
		return o.IsPoint() && o.A == s.A ||
			!o.IsPoint() && Orient2D(o.A, o.B, s.A) == 0
	}
	return Orient2D(s.A, s.B, o.A) == 0 && Orient2D(s.A, s.B, o.B) == 0
}

// ApproxCollinear reports whether both endpoints of o lie within
// tolerance of the line carrying s.
func (s Seg) ApproxCollinear(o Seg, tolerance int) bool {
	return abs64(int64(s.LineDistance(o.A, false))) <= int64(tolerance) &&
		abs64(int64(s.LineDistance(o.B, false))) <= int64(tolerance)
}

// Parallel reports whether the two segments have exactly parallel
// directions. Zero-length segments are parallel to everything.
func (s Seg) Parallel(o Seg) bool {
	ex, ey := delta(s.B, s.A)
	fx, fy := delta(o.B, o.A)
	return crossSign(ex, fy, ey, fx) == 0
}

// ApproxParallel reports whether the signed distances of o's endpoints
// to the line carrying s differ by at most tolerance.
func (s Seg) ApproxParallel(o Seg, tolerance int) bool {
	d1 := s.LineDistance(o.A, true)
	d2 := s.LineDistance(o.B, true)
	return abs64(int64(d1-d2)) <= int64(tolerance)
}
