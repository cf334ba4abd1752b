package ratsnest

import (
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// ZoneSubpolygon is one filled area of a zone: an outline loop with its
// cutouts. Its first outline point is the representative node that
// stands for the whole area in the net.
type ZoneSubpolygon struct {
	outline []geom.Point
	holes   [][]geom.Point
	bbox    geom.Box
}

// NewZoneSubpolygon builds a subpolygon. Loops are implicitly closed.
func NewZoneSubpolygon(outline []geom.Point, holes [][]geom.Point) *ZoneSubpolygon {
	return &ZoneSubpolygon{
		outline: outline,
		holes:   holes,
		bbox:    geom.BoxOf(outline...),
	}
}

// Representative returns the coordinate of the area's node.
func (z *ZoneSubpolygon) Representative() geom.Point {
	return z.outline[0]
}

// BBox returns the outline's bounding box.
func (z *ZoneSubpolygon) BBox() geom.Box { return z.bbox }

// Outline returns the outline loop.
func (z *ZoneSubpolygon) Outline() []geom.Point { return z.outline }

// HitTest reports whether p lies on copper: inside or on the outline and
// not strictly inside a cutout.
func (z *ZoneSubpolygon) HitTest(p geom.Point) bool {
	if !z.bbox.Contains(p) {
		return false
	}
	if in, on := loopContains(z.outline, p); !in && !on {
		return false
	}
	for _, h := range z.holes {
		if in, on := loopContains(h, p); in && !on {
			return false
		}
	}
	return true
}

// loopContains runs an even-odd ray cast towards +x. Crossings are decided
// with exact orientation tests. on reports p lying on the boundary.
func loopContains(loop []geom.Point, p geom.Point) (in, on bool) {
	n := len(loop)
	for i := 0; i < n; i++ {
		a, b := loop[i], loop[(i+1)%n]
		o := geom.Orient2D(a, b, p)
		if o == 0 && geom.BoxOf(a, b).Contains(p) {
			return true, true
		}
		if (a.Y > p.Y) == (b.Y > p.Y) {
			continue
		}
		// an upward edge is crossed when p is on its left, a downward
		// edge when p is on its right
		if (b.Y > a.Y && o > 0) || (b.Y < a.Y && o < 0) {
			in = !in
		}
	}
	return in, false
}
