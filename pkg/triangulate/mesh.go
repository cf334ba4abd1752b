// Package triangulate builds Delaunay triangulations of integer points
// and inserts constrained edges into them.
//
// The mesh is an arena of half-edges. Triangle t owns half-edges 3t, 3t+1
// and 3t+2 in counter-clockwise order; tri holds the origin vertex of
// each half-edge and twin the opposite half-edge in the neighbouring
// triangle, or -1 on the outer hull. The input is enclosed in a frame of
// four extra vertices so every input vertex is interior. Frame vertices
// are numbered after the input and never reported by Edges.
package triangulate

import (
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// Mesh is a triangulation over a fixed vertex set.
type Mesh struct {
	pts         []geom.Point // input points followed by the frame corners
	n           int
	tri         []int32
	twin        []int32
	constrained []bool
	vedge       []int32 // one outgoing half-edge per vertex, -1 if not inserted
	last        int32   // walk start for point location
}

func next(e int32) int32 { return e - e%3 + (e+1)%3 }
func prev(e int32) int32 { return e - e%3 + (e+2)%3 }

// New triangulates points. Every point is inserted incrementally and the
// mesh is kept Delaunay with exact in-circle tests. A point equal to an
// earlier one is not inserted and stays isolated.
func New(points []geom.Point) *Mesh {
	n := len(points)
	m := &Mesh{
		pts:   make([]geom.Point, n, n+4),
		n:     n,
		vedge: make([]int32, n+4),
	}
	copy(m.pts, points)
	for i := range m.vedge {
		m.vedge[i] = -1
	}

	capacity := 3 * (2*n + 2)
	m.tri = make([]int32, 0, capacity)
	m.twin = make([]int32, 0, capacity)
	m.constrained = make([]bool, 0, capacity)

	m.seedFrame()
	for i := 0; i < n; i++ {
		m.insert(int32(i))
	}
	return m
}

// seedFrame adds four corners far enough from the input that no corner
// falls inside the diametral circle of any pair of input points. Gabriel
// edges of the input, and with them its minimum spanning tree, are then
// edges of the triangulation.
func (m *Mesh) seedFrame() {
	box := geom.BoxOf(m.pts...)
	if box.IsEmpty() {
		box = geom.BoxOf(geom.Point{})
	}
	margin := 2*max(box.Width(), box.Height()) + 16

	c0 := m.addVertex(geom.Pt(box.Min.X-margin, box.Min.Y-margin))
	c1 := m.addVertex(geom.Pt(box.Max.X+margin, box.Min.Y-margin))
	c2 := m.addVertex(geom.Pt(box.Max.X+margin, box.Max.Y+margin))
	c3 := m.addVertex(geom.Pt(box.Min.X-margin, box.Max.Y+margin))

	t0 := m.addTriangle(c0, c1, c2)
	t1 := m.addTriangle(c0, c2, c3)
	m.link(t0+2, t1)

	m.vedge[c0] = t0
	m.vedge[c1] = t0 + 1
	m.vedge[c2] = t0 + 2
	m.vedge[c3] = t1 + 2
	m.last = t0
}

func (m *Mesh) addVertex(p geom.Point) int32 {
	m.pts = append(m.pts, p)
	return int32(len(m.pts) - 1)
}

// addTriangle appends a triangle with no neighbours and returns its
// first half-edge.
func (m *Mesh) addTriangle(a, b, c int32) int32 {
	e := int32(len(m.tri))
	m.tri = append(m.tri, a, b, c)
	m.twin = append(m.twin, -1, -1, -1)
	m.constrained = append(m.constrained, false, false, false)
	return e
}

func (m *Mesh) link(a, b int32) {
	if a >= 0 {
		m.twin[a] = b
	}
	if b >= 0 {
		m.twin[b] = a
	}
}

func (m *Mesh) org(e int32) int32  { return m.tri[e] }
func (m *Mesh) dest(e int32) int32 { return m.tri[next(e)] }

func (m *Mesh) point(v int32) geom.Point { return m.pts[v] }

type location int

const (
	inTriangle location = iota
	onEdge
	onVertex
)

// locate finds the triangle containing p with a visibility walk from the
// last inserted triangle, falling back to a scan if the walk does not
// settle.
func (m *Mesh) locate(p geom.Point) (int32, location) {
	e := m.last
	for steps := len(m.tri); steps > 0; steps-- {
		base := e - e%3
		moved := false
		for i := int32(1); i <= 3; i++ {
			h := base + (e%3+i)%3
			if geom.Orient2D(m.point(m.org(h)), m.point(m.dest(h)), p) < 0 {
				if m.twin[h] < 0 {
					return m.scan(p)
				}
				e = m.twin[h]
				moved = true
				break
			}
		}
		if !moved {
			return m.classify(base, p)
		}
	}
	return m.scan(p)
}

func (m *Mesh) scan(p geom.Point) (int32, location) {
	for base := int32(0); base < int32(len(m.tri)); base += 3 {
		inside := true
		for i := int32(0); i < 3; i++ {
			h := base + i
			if geom.Orient2D(m.point(m.org(h)), m.point(m.dest(h)), p) < 0 {
				inside = false
				break
			}
		}
		if inside {
			return m.classify(base, p)
		}
	}
	// unreachable for points inside the frame
	return -1, onVertex
}

func (m *Mesh) classify(base int32, p geom.Point) (int32, location) {
	var zeros [3]int32
	nz := 0
	for i := int32(0); i < 3; i++ {
		h := base + i
		if geom.Orient2D(m.point(m.org(h)), m.point(m.dest(h)), p) == 0 {
			zeros[nz] = h
			nz++
		}
	}
	switch nz {
	case 0:
		return base, inTriangle
	case 1:
		return zeros[0], onEdge
	}
	return zeros[0], onVertex
}

func (m *Mesh) insert(v int32) {
	p := m.point(v)
	e, loc := m.locate(p)
	switch loc {
	case inTriangle:
		m.splitTriangle(e, v)
	case onEdge:
		m.splitEdge(e, v)
	}
}

// splitTriangle replaces triangle (a, b, c) by (a, b, p), (b, c, p) and
// (c, a, p).
func (m *Mesh) splitTriangle(base, p int32) {
	h0, h1, h2 := base, base+1, base+2
	a, b, c := m.tri[h0], m.tri[h1], m.tri[h2]
	o1, o2 := m.twin[h1], m.twin[h2]
	k1, k2 := m.constrained[h1], m.constrained[h2]

	m.tri[h2] = p
	m.tri[h1] = b
	m.constrained[h1], m.constrained[h2] = false, false

	u := m.addTriangle(b, c, p)
	v := m.addTriangle(c, a, p)

	m.link(u, o1)
	m.constrained[u] = k1
	m.link(v, o2)
	m.constrained[v] = k2

	m.link(h1, u+2)
	m.link(u+1, v+2)
	m.link(v+1, h2)

	m.vedge[a] = h0
	m.vedge[b] = u
	m.vedge[c] = v
	m.vedge[p] = h2
	m.last = h0

	m.legalize(h0, u, v)
}

// splitEdge splits the edge e = a->b, shared by triangles (a, b, c) and
// (b, a, d), at p into four triangles.
func (m *Mesh) splitEdge(e, p int32) {
	t := m.twin[e]
	e1, e2 := next(e), prev(e)
	t1, t2 := next(t), prev(t)

	a, b, c, d := m.tri[e], m.tri[e1], m.tri[e2], m.tri[t2]
	ke := m.constrained[e]
	oe1, ke1 := m.twin[e1], m.constrained[e1]
	oe2, ke2 := m.twin[e2], m.constrained[e2]
	ot1, kt1 := m.twin[t1], m.constrained[t1]
	ot2, kt2 := m.twin[t2], m.constrained[t2]

	// (a, p, c) in the slots of (a, b, c)
	tb := e - e%3
	m.tri[tb], m.tri[tb+1], m.tri[tb+2] = a, p, c
	// (b, p, d) in the slots of (b, a, d)
	sb := t - t%3
	m.tri[sb], m.tri[sb+1], m.tri[sb+2] = b, p, d
	u := m.addTriangle(p, b, c)
	w := m.addTriangle(p, a, d)

	m.link(tb+2, oe2)
	m.constrained[tb+2] = ke2
	m.link(u+1, oe1)
	m.constrained[u+1] = ke1
	m.link(sb+2, ot2)
	m.constrained[sb+2] = kt2
	m.link(w+1, ot1)
	m.constrained[w+1] = kt1

	m.link(tb+1, u+2)
	m.constrained[tb+1], m.constrained[u+2] = false, false
	m.link(sb+1, w+2)
	m.constrained[sb+1], m.constrained[w+2] = false, false

	m.link(tb, w)
	m.constrained[tb], m.constrained[w] = ke, ke
	m.link(u, sb)
	m.constrained[u], m.constrained[sb] = ke, ke

	m.vedge[a] = tb
	m.vedge[b] = sb
	m.vedge[c] = tb + 2
	m.vedge[d] = sb + 2
	m.vedge[p] = tb + 1
	m.last = tb

	m.legalize(tb+2, u+1, sb+2, w+1)
}

// legalize restores the Delaunay property after an insertion. Every
// queued half-edge has the new vertex opposite to it in its triangle.
func (m *Mesh) legalize(stack ...int32) {
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.constrained[e] || m.twin[e] < 0 || !m.illegal(e) {
			continue
		}
		m.flip(e)
		t := m.twin[e]
		stack = append(stack, prev(e), next(t))
	}
}

// illegal reports whether the vertex opposite e across its twin lies
// strictly inside the circumcircle of e's triangle.
func (m *Mesh) illegal(e int32) bool {
	t := m.twin[e]
	p0, p1 := m.point(m.org(e)), m.point(m.dest(e))
	pr := m.point(m.org(prev(e)))
	pl := m.point(m.org(prev(t)))
	return geom.InCircle(p0, p1, pr, pl) > 0
}

// convex reports whether the quad around e is strictly convex, so e can
// be flipped.
func (m *Mesh) convex(e int32) bool {
	t := m.twin[e]
	if t < 0 {
		return false
	}
	p0, p1 := m.point(m.org(e)), m.point(m.dest(e))
	pr := m.point(m.org(prev(e)))
	pl := m.point(m.org(prev(t)))
	return geom.Orient2D(pl, pr, p0)*geom.Orient2D(pl, pr, p1) < 0
}

// flip replaces edge e (p0->p1) shared by (p0, p1, pr) and (p1, p0, pl)
// with pl->pr. Afterwards e runs pl->pr and its twin pr->pl.
func (m *Mesh) flip(e int32) {
	t := m.twin[e]
	e1, e2 := next(e), prev(e)
	t1, t2 := next(t), prev(t)

	p0, p1, pr, pl := m.tri[e], m.tri[e1], m.tri[e2], m.tri[t2]
	oe1, ke1 := m.twin[e1], m.constrained[e1]
	oe2, ke2 := m.twin[e2], m.constrained[e2]
	ot1, kt1 := m.twin[t1], m.constrained[t1]
	ot2, kt2 := m.twin[t2], m.constrained[t2]

	m.tri[e], m.tri[e1], m.tri[e2] = pl, pr, p0
	m.tri[t], m.tri[t1], m.tri[t2] = pr, pl, p1

	m.link(e1, oe2)
	m.constrained[e1] = ke2
	m.link(e2, ot1)
	m.constrained[e2] = kt1
	m.link(t1, ot2)
	m.constrained[t1] = kt2
	m.link(t2, oe1)
	m.constrained[t2] = ke1
	m.constrained[e], m.constrained[t] = false, false

	m.vedge[p0] = e2
	m.vedge[p1] = t2
	m.vedge[pr] = e1
	m.vedge[pl] = e
}

// halfEdge returns the half-edge a->b if the mesh has it.
func (m *Mesh) halfEdge(a, b int32) (int32, bool) {
	start := m.vedge[a]
	if start < 0 {
		return -1, false
	}
	h := start
	for {
		if m.dest(h) == b {
			return h, true
		}
		h = m.twin[prev(h)]
		if h < 0 || h == start {
			break
		}
	}
	// a frame vertex sits on the hull, so also turn clockwise
	if h < 0 {
		for h = start; ; {
			t := m.twin[h]
			if t < 0 {
				break
			}
			h = next(t)
			if h == start {
				break
			}
			if m.dest(h) == b {
				return h, true
			}
		}
	}
	return -1, false
}

// NumVertices returns the number of input vertices.
func (m *Mesh) NumVertices() int { return m.n }

// NumTriangles returns the number of triangles, frame triangles included.
func (m *Mesh) NumTriangles() int { return len(m.tri) / 3 }

// Point returns the coordinate of vertex v.
func (m *Mesh) Point(v int) geom.Point { return m.pts[v] }

// Inserted reports whether vertex v is part of the mesh. Duplicate input
// points are not.
func (m *Mesh) Inserted(v int) bool {
	return v >= 0 && v < m.n && m.vedge[v] >= 0
}

// Edges yields every undirected edge between two input vertices once.
func (m *Mesh) Edges(yield func(a, b int) bool) {
	for e := int32(0); e < int32(len(m.tri)); e++ {
		if t := m.twin[e]; t >= 0 && t < e {
			continue
		}
		a, b := m.org(e), m.dest(e)
		if int(a) >= m.n || int(b) >= m.n {
			continue
		}
		if !yield(int(a), int(b)) {
			return
		}
	}
}

// Triangles yields every triangle in counter-clockwise order, including
// those touching the frame.
func (m *Mesh) Triangles(yield func(a, b, c int) bool) {
	for base := 0; base < len(m.tri); base += 3 {
		if !yield(int(m.tri[base]), int(m.tri[base+1]), int(m.tri[base+2])) {
			return
		}
	}
}

// FindEdge returns the dart a->b if the edge exists.
func (m *Mesh) FindEdge(a, b int) (Dart, bool) {
	if a < 0 || a >= len(m.pts) || b < 0 || b >= len(m.pts) {
		return Dart{}, false
	}
	h, ok := m.halfEdge(int32(a), int32(b))
	if !ok {
		return Dart{}, false
	}
	return Dart{m: m, e: h}, true
}

// DartFrom returns a dart leaving vertex v.
func (m *Mesh) DartFrom(v int) (Dart, bool) {
	if v < 0 || v >= len(m.pts) || m.vedge[v] < 0 {
		return Dart{}, false
	}
	return Dart{m: m, e: m.vedge[v]}, true
}

// Dart is a directed half-edge of a mesh.
type Dart struct {
	m *Mesh
	e int32
}

// Valid reports whether the dart refers to a half-edge. Twin and
// RotateCCW return an invalid dart on the outer hull.
func (d Dart) Valid() bool { return d.m != nil && d.e >= 0 }

// Org returns the origin vertex.
func (d Dart) Org() int { return int(d.m.org(d.e)) }

// Dest returns the destination vertex.
func (d Dart) Dest() int { return int(d.m.dest(d.e)) }

// Next returns the next dart of the same triangle.
func (d Dart) Next() Dart { return Dart{m: d.m, e: next(d.e)} }

// Prev returns the previous dart of the same triangle.
func (d Dart) Prev() Dart { return Dart{m: d.m, e: prev(d.e)} }

// Twin returns the opposite dart in the neighbouring triangle.
func (d Dart) Twin() Dart { return Dart{m: d.m, e: d.m.twin[d.e]} }

// RotateCCW returns the next dart leaving the same origin in
// counter-clockwise order.
func (d Dart) RotateCCW() Dart { return d.Prev().Twin() }

// Constrained reports whether the edge is a constraint.
func (d Dart) Constrained() bool { return d.m.constrained[d.e] }
