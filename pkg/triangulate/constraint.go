package triangulate

import (
	"errors"
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

var (
	// ErrVertexRange is returned for constraint endpoints that are not
	// inserted input vertices.
	ErrVertexRange = errors.New("vertex is not an input vertex")
	// ErrConstraintCrossing is returned when the new constraint crosses
	// an existing one.
	ErrConstraintCrossing = errors.New("constraint crosses a constrained edge")
	// ErrConstraintStalled is returned when edge flipping stops making
	// progress.
	ErrConstraintStalled = errors.New("constraint insertion stalled")
)

// InsertConstraint forces the edge a-b into the mesh and marks it
// constrained. Triangles crossed by the segment are re-triangulated by
// edge flips. A vertex lying exactly on the open segment splits the
// constraint in two, and the returned dart is the first piece leaving a.
// With optimize set, the new edges are flipped back towards Delaunay
// where no constraint prevents it.
//
// A failed insertion leaves the mesh valid, but when the constraint was
// split the pieces inserted before the failure stay constrained.
func (m *Mesh) InsertConstraint(a, b int, optimize bool) (Dart, error) {
	if a == b || !m.Inserted(a) || !m.Inserted(b) {
		return Dart{}, fmt.Errorf("constraint %d-%d: %w", a, b, ErrVertexRange)
	}
	e, err := m.insertConstraint(int32(a), int32(b), optimize)
	if err != nil {
		return Dart{}, fmt.Errorf("constraint %d-%d: %w", a, b, err)
	}
	return Dart{m: m, e: e}, nil
}

type wedgeKind int

const (
	wedgeEdge   wedgeKind = iota // the edge already exists
	wedgeVertex                  // a neighbour lies on the segment
	wedgeCross                   // the segment leaves through the opposite edge
)

// wedge finds the half-edge h leaving a whose triangle contains the
// start of the segment a->b.
func (m *Mesh) wedge(a, b int32) (int32, wedgeKind) {
	pa, pb := m.point(a), m.point(b)
	dir := pb.Sub(pa)

	start := m.vedge[a]
	for h := start; ; {
		v1 := m.dest(h)
		if v1 == b {
			return h, wedgeEdge
		}
		p1 := m.point(v1)
		o1 := geom.Orient2D(pa, p1, pb)
		if o1 == 0 && p1.Sub(pa).Dot(dir) > 0 {
			return h, wedgeVertex
		}
		if o1 > 0 && geom.Orient2D(pa, m.point(m.org(prev(h))), pb) < 0 {
			return h, wedgeCross
		}
		h = m.twin[prev(h)]
		if h < 0 || h == start {
			return -1, wedgeCross
		}
	}
}

func (m *Mesh) insertConstraint(a, b int32, optimize bool) (int32, error) {
	h, kind := m.wedge(a, b)
	switch {
	case kind == wedgeEdge:
		m.setConstrained(h, true)
		return h, nil
	case kind == wedgeVertex:
		return m.splitConstraint(a, m.dest(h), b, optimize)
	case h < 0:
		return -1, ErrConstraintStalled
	}

	pa, pb := m.point(a), m.point(b)

	// Walk the channel. Every crossing half-edge x runs from the right
	// of a->b to its left.
	var crossing [][2]int32
	for x := next(h); ; {
		if m.constrained[x] {
			return -1, ErrConstraintCrossing
		}
		crossing = append(crossing, [2]int32{m.org(x), m.dest(x)})

		c := m.twin[x]
		w := m.org(prev(c))
		if w == b {
			break
		}
		switch o := geom.Orient2D(pa, pb, m.point(w)); {
		case o == 0:
			return m.splitConstraint(a, w, b, optimize)
		case o > 0:
			x = next(c)
		default:
			x = prev(c)
		}
	}

	created, err := m.flipCrossing(pa, pb, crossing)
	if err != nil {
		return -1, err
	}
	e, ok := m.halfEdge(a, b)
	if !ok {
		return -1, ErrConstraintStalled
	}
	m.setConstrained(e, true)

	if optimize {
		m.restoreDelaunay(a, b, created)
		// flips rewrite neighbouring slots, so look the edge up again
		e, _ = m.halfEdge(a, b)
	}
	return e, nil
}

func (m *Mesh) splitConstraint(a, v, b int32, optimize bool) (int32, error) {
	if _, err := m.insertConstraint(a, v, optimize); err != nil {
		return -1, err
	}
	if _, err := m.insertConstraint(v, b, optimize); err != nil {
		return -1, err
	}
	e, _ := m.halfEdge(a, v)
	return e, nil
}

func (m *Mesh) setConstrained(e int32, c bool) {
	m.constrained[e] = c
	if t := m.twin[e]; t >= 0 {
		m.constrained[t] = c
	}
}

// crossesAfterFlip reports whether the diagonal that would replace e
// still crosses the segment pa-pb.
func (m *Mesh) crossesAfterFlip(e int32, pa, pb geom.Point) bool {
	pr := m.point(m.org(prev(e)))
	pl := m.point(m.org(prev(m.twin[e])))
	return geom.Orient2D(pa, pb, pl)*geom.Orient2D(pa, pb, pr) < 0
}

// flipCrossing removes the crossing edges by flipping. A regular pass
// only flips edges whose replacement clears the segment. When a pass
// flips nothing, one convex edge is flipped regardless and stays queued.
// It returns the edges created by the final flips.
func (m *Mesh) flipCrossing(pa, pb geom.Point, queue [][2]int32) ([][2]int32, error) {
	var created [][2]int32
	limit := 4*len(queue)*len(queue) + 16

	for flips := 0; len(queue) > 0; {
		if flips > limit {
			return nil, ErrConstraintStalled
		}

		progress := false
		rest := queue[:0]
		for _, q := range queue {
			e, ok := m.halfEdge(q[0], q[1])
			if !ok {
				return nil, ErrConstraintStalled
			}
			if !m.convex(e) || m.crossesAfterFlip(e, pa, pb) {
				rest = append(rest, q)
				continue
			}
			m.flip(e)
			flips++
			created = append(created, [2]int32{m.org(e), m.dest(e)})
			progress = true
		}
		queue = rest
		if progress || len(queue) == 0 {
			continue
		}

		locked := false
		for i, q := range queue {
			e, _ := m.halfEdge(q[0], q[1])
			if !m.convex(e) {
				continue
			}
			m.flip(e)
			flips++
			queue[i] = [2]int32{m.org(e), m.dest(e)}
			locked = true
			break
		}
		if !locked {
			return nil, ErrConstraintStalled
		}
	}
	return created, nil
}

// restoreDelaunay flips illegal edges among those created by a
// constraint insertion until none is left. Constrained edges stay.
func (m *Mesh) restoreDelaunay(a, b int32, created [][2]int32) {
	limit := 4*len(created)*len(created) + 16
	for swapped, pass := true, 0; swapped && pass < limit; pass++ {
		swapped = false
		for i, q := range created {
			if q == [2]int32{a, b} || q == [2]int32{b, a} {
				continue
			}
			e, ok := m.halfEdge(q[0], q[1])
			if !ok || m.constrained[e] || m.twin[e] < 0 {
				continue
			}
			if !m.illegal(e) || !m.convex(e) {
				continue
			}
			m.flip(e)
			created[i] = [2]int32{m.org(e), m.dest(e)}
			swapped = true
		}
	}
}
