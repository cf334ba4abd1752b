package triangulate

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// validate checks the structural invariants of the half-edge arena.
func validate(t *testing.T, m *Mesh) {
	t.Helper()

	hull := 0
	for e := int32(0); e < int32(len(m.tri)); e++ {
		tw := m.twin[e]
		if tw < 0 {
			hull++
			continue
		}
		if m.twin[tw] != e {
			t.Fatalf("twin of %d is %d, whose twin is %d", e, tw, m.twin[tw])
		}
		if m.org(tw) != m.dest(e) || m.dest(tw) != m.org(e) {
			t.Fatalf("half-edges %d and %d are not opposite", e, tw)
		}
		if m.constrained[tw] != m.constrained[e] {
			t.Fatalf("constraint flag differs between %d and %d", e, tw)
		}
	}
	if hull != 4 {
		t.Fatalf("found %d hull half-edges, want 4", hull)
	}

	for base := 0; base < len(m.tri); base += 3 {
		a, b, c := m.pts[m.tri[base]], m.pts[m.tri[base+1]], m.pts[m.tri[base+2]]
		if geom.Orient2D(a, b, c) <= 0 {
			t.Fatalf("triangle %d (%v, %v, %v) is not counter-clockwise", base/3, a, b, c)
		}
	}

	for v, h := range m.vedge {
		if h >= 0 && int(m.org(h)) != v {
			t.Fatalf("vertex %d points at half-edge %d leaving %d", v, h, m.org(h))
		}
	}
}

func checkDelaunay(t *testing.T, m *Mesh) {
	t.Helper()
	for e := int32(0); e < int32(len(m.tri)); e++ {
		if m.twin[e] < 0 || m.constrained[e] {
			continue
		}
		if m.illegal(e) {
			t.Fatalf("edge %v-%v is not locally Delaunay", m.pts[m.org(e)], m.pts[m.dest(e)])
		}
	}
}

func randomPoints(r *rand.Rand, n, span int) []geom.Point {
	seen := make(map[geom.Point]bool)
	var pts []geom.Point
	for len(pts) < n {
		p := geom.Pt(r.IntN(span), r.IntN(span))
		if seen[p] {
			continue
		}
		seen[p] = true
		pts = append(pts, p)
	}
	return pts
}

func edgeSet(m *Mesh) map[[2]int]bool {
	set := make(map[[2]int]bool)
	for a, b := range m.Edges {
		set[[2]int{min(a, b), max(a, b)}] = true
	}
	return set
}

func TestNewEmpty(t *testing.T) {
	m := New(nil)
	validate(t, m)
	if m.NumTriangles() != 2 {
		t.Errorf("empty mesh has %d triangles, want 2", m.NumTriangles())
	}
	if len(edgeSet(m)) != 0 {
		t.Error("empty mesh should report no edges")
	}
}

func TestNewSquareWithCentre(t *testing.T) {
	pts := []geom.Point{
		geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10), geom.Pt(5, 5),
	}
	m := New(pts)
	validate(t, m)
	checkDelaunay(t, m)

	edges := edgeSet(m)
	want := [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}, {0, 4}, {1, 4}, {2, 4}, {3, 4}}
	if len(edges) != len(want) {
		t.Errorf("got %d edges, want %d: %v", len(edges), len(want), edges)
	}
	for _, e := range want {
		if !edges[e] {
			t.Errorf("missing edge %v", e)
		}
	}
}

func TestCollinearPoints(t *testing.T) {
	pts := []geom.Point{geom.Pt(0, 0), geom.Pt(20, 0), geom.Pt(10, 0), geom.Pt(30, 0)}
	m := New(pts)
	validate(t, m)

	edges := edgeSet(m)
	for _, e := range [][2]int{{0, 2}, {1, 2}, {1, 3}} {
		if !edges[e] {
			t.Errorf("missing edge %v", e)
		}
	}
	if edges[[2]int{0, 1}] {
		t.Error("edge 0-1 passes through vertex 2")
	}
	if len(edges) != 3 {
		t.Errorf("got %d edges, want 3", len(edges))
	}
}

func TestDuplicatePointIsSkipped(t *testing.T) {
	pts := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(0, 0), geom.Pt(5, 8)}
	m := New(pts)
	validate(t, m)

	if m.Inserted(2) {
		t.Error("duplicate vertex should not be inserted")
	}
	if !m.Inserted(0) || !m.Inserted(3) {
		t.Error("distinct vertices should be inserted")
	}
	for a, b := range m.Edges {
		if a == 2 || b == 2 {
			t.Errorf("duplicate vertex has edge %d-%d", a, b)
		}
	}
}

func TestGridTriangulation(t *testing.T) {
	var pts []geom.Point
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			pts = append(pts, geom.Pt(x*100, y*100))
		}
	}
	m := New(pts)
	validate(t, m)
	checkDelaunay(t, m)

	// 3n - 3 - h edges for n points with h on the hull
	if got := len(edgeSet(m)); got != 261 {
		t.Errorf("grid has %d edges, want 261", got)
	}
}

func TestRandomDelaunay(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 5; round++ {
		pts := randomPoints(r, 300, 5000)
		m := New(pts)
		validate(t, m)
		checkDelaunay(t, m)
		if got, want := m.NumTriangles(), 2*len(pts)+2; got != want {
			t.Errorf("round %d: %d triangles, want %d", round, got, want)
		}
	}
}

// mstWeight returns the total squared length of a minimum spanning tree
// over the candidate edges using Kruskal.
func mstWeight(pts []geom.Point, edges [][2]int) (int64, int) {
	slices.SortFunc(edges, func(a, b [2]int) int {
		da := pts[a[0]].SquaredDistance(pts[a[1]])
		db := pts[b[0]].SquaredDistance(pts[b[1]])
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		}
		return 0
	})

	parent := make([]int, len(pts))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}

	var total int64
	used := 0
	for _, e := range edges {
		ra, rb := find(e[0]), find(e[1])
		if ra == rb {
			continue
		}
		parent[ra] = rb
		total += pts[e[0]].SquaredDistance(pts[e[1]])
		used++
	}
	return total, used
}

func TestMinimumSpanningTreeSurvives(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 5; round++ {
		pts := randomPoints(r, 80, 2000)
		m := New(pts)

		var meshEdges [][2]int
		for a, b := range m.Edges {
			meshEdges = append(meshEdges, [2]int{a, b})
		}
		var allEdges [][2]int
		for i := range pts {
			for j := i + 1; j < len(pts); j++ {
				allEdges = append(allEdges, [2]int{i, j})
			}
		}

		got, gotUsed := mstWeight(pts, meshEdges)
		want, _ := mstWeight(pts, allEdges)
		if gotUsed != len(pts)-1 {
			t.Fatalf("round %d: mesh edges span %d of %d points", round, gotUsed+1, len(pts))
		}
		if got != want {
			t.Errorf("round %d: mesh MST weight %d, complete graph MST weight %d", round, got, want)
		}
	}
}

func TestDartNavigation(t *testing.T) {
	pts := []geom.Point{
		geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10), geom.Pt(5, 5),
	}
	m := New(pts)

	d, ok := m.DartFrom(4)
	if !ok {
		t.Fatal("centre vertex has no dart")
	}
	seen := map[int]bool{}
	cur := d
	for i := 0; i < 4; i++ {
		if cur.Org() != 4 {
			t.Fatalf("rotation left the origin: %d", cur.Org())
		}
		seen[cur.Dest()] = true
		if cur.Next().Next().Next() != cur {
			t.Fatal("three Next steps must return to the dart")
		}
		if cur.Prev() != cur.Next().Next() {
			t.Fatal("Prev must equal Next twice")
		}
		if tw := cur.Twin(); !tw.Valid() || tw.Twin() != cur || tw.Org() != cur.Dest() {
			t.Fatal("twin mismatch")
		}
		cur = cur.RotateCCW()
	}
	if cur != d {
		t.Error("four rotations around the centre should return to the start")
	}
	if len(seen) != 4 {
		t.Errorf("centre has %d neighbours, want 4", len(seen))
	}

	// the rotation is counter-clockwise
	next := d.RotateCCW()
	if geom.Orient2D(m.Point(4), m.Point(d.Dest()), m.Point(next.Dest())) <= 0 {
		t.Error("RotateCCW turned clockwise")
	}
}
