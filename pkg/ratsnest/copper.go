package ratsnest

import (
	"slices"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// zeroConnections returns every pair of nodes joined by copper: track
// edges, nodes covered by a zone area, overlapping zone areas and, when
// enabled, nodes lying on a track.
func (n *Net) zeroConnections(refs []NodeRef) [][2]NodeRef {
	seen := make(map[[2]NodeRef]bool)
	var out [][2]NodeRef
	add := func(a, b NodeRef) {
		if a == b {
			return
		}
		key := [2]NodeRef{min(a, b), max(a, b)}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, key)
	}

	for _, ref := range n.graph.Edges() {
		e := n.graph.Edge(ref)
		add(e.A, e.B)
	}

	var areas []zoneArea
	for _, it := range n.sortedItems() {
		areas = append(areas, n.items[it].zones...)
	}
	for i, za := range areas {
		box := za.poly.BBox()
		for _, ref := range refs {
			if ref != za.node && za.poly.HitTest(n.graph.Node(ref).Pos) {
				add(za.node, ref)
			}
		}
		for _, other := range areas[i+1:] {
			if box.Intersects(other.poly.BBox()) && areasOverlap(za.poly, other.poly) {
				add(za.node, other.node)
			}
		}
	}

	if n.opts.TJunctions {
		n.tJunctions(refs, add)
	}
	return out
}

// areasOverlap reports whether an outline vertex of either area lies on
// the other's copper.
func areasOverlap(a, b *ZoneSubpolygon) bool {
	for _, p := range a.Outline() {
		if b.HitTest(p) {
			return true
		}
	}
	for _, p := range b.Outline() {
		if a.HitTest(p) {
			return true
		}
	}
	return false
}

// tJunctions joins nodes lying on a track, other than its endpoints, to
// the track. Nodes are swept in x order so each track only tests the
// nodes inside its horizontal extent.
func (n *Net) tJunctions(refs []NodeRef, add func(a, b NodeRef)) {
	if n.graph.EdgeCount() == 0 {
		return
	}
	byX := slices.Clone(refs)
	slices.SortFunc(byX, func(a, b NodeRef) int {
		return n.graph.Node(a).Pos.X - n.graph.Node(b).Pos.X
	})

	for _, ref := range n.graph.Edges() {
		e := n.graph.Edge(ref)
		seg := geom.NewSeg(n.graph.Node(e.A).Pos, n.graph.Node(e.B).Pos)
		box := seg.BBox()

		// one unit of slack matches the tolerance of Seg.Contains
		start := sort.Search(len(byX), func(i int) bool {
			return n.graph.Node(byX[i]).Pos.X >= box.Min.X-1
		})
		for _, cand := range byX[start:] {
			p := n.graph.Node(cand).Pos
			if p.X > box.Max.X+1 {
				break
			}
			if cand == e.A || cand == e.B || p.Y < box.Min.Y-1 || p.Y > box.Max.Y+1 {
				continue
			}
			if seg.Contains(p) {
				add(e.A, cand)
			}
		}
	}
}

// copperComponents groups the nodes joined by zero connections. Members
// are sorted and components ordered by their first member, so tags are
// stable between recomputes of the same registry.
func copperComponents(refs []NodeRef, zero [][2]NodeRef) [][]NodeRef {
	g := simple.NewUndirectedGraph()
	for _, ref := range refs {
		g.AddNode(simple.Node(ref))
	}
	for _, z := range zero {
		g.SetEdge(simple.Edge{F: simple.Node(z[0]), T: simple.Node(z[1])})
	}

	var comps [][]NodeRef
	for _, cc := range topo.ConnectedComponents(g) {
		comp := make([]NodeRef, len(cc))
		for i, node := range cc {
			comp[i] = NodeRef(node.ID())
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	slices.SortFunc(comps, func(a, b []NodeRef) int {
		return int(a[0]) - int(b[0])
	})
	return comps
}
