// Package ratsnest computes the missing copper connections ("ratsnest")
// of a board.
//
// Items of one net register nodes and copper edges in the net's graph.
// When queried, a dirty net triangulates its nodes, inserts the copper
// connections as constraints and reduces the mesh to a minimum spanning
// set of links between copper components. The engine is single-threaded
// and recomputes lazily.
package ratsnest

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/triangulate"
)

// binding records what one item contributed to the graph.
type binding struct {
	seq   int
	nodes []NodeRef
	edges []EdgeRef
	zones []zoneArea
}

type zoneArea struct {
	poly *ZoneSubpolygon
	node NodeRef
}

// Link is a missing connection resolved to coordinates.
type Link struct {
	Net      int
	A, B     geom.Point
	Distance int
}

// Stats summarises a net. The last-compute fields describe the most
// recent recompute and are stale while the net is dirty.
type Stats struct {
	Items, Nodes, Edges int

	Components      int
	ZeroConnections int
	Unconnected     int
}

// Net holds the items of one net code and their ratsnest.
type Net struct {
	code  int
	opts  Options
	graph *Graph
	items map[*Item]*binding
	seq   int

	dirty   bool
	visible bool

	unconnected []Edge
	component   map[NodeRef]int
	last        Stats

	tree    *kdtree.Tree
	preview preview
}

// NewNet returns an empty, clean and visible net.
func NewNet(code int, opts ...Option) *Net {
	return &Net{
		code:      code,
		opts:      newOptions(opts),
		graph:     NewGraph(),
		items:     make(map[*Item]*binding),
		visible:   true,
		component: make(map[NodeRef]int),
	}
}

// Code returns the net code.
func (n *Net) Code() int { return n.code }

// Graph exposes the node registry for inspection.
func (n *Net) Graph() *Graph { return n.graph }

// IsDirty reports whether the ratsnest is out of date.
func (n *Net) IsDirty() bool { return n.dirty }

// IsVisible reports the display flag.
func (n *Net) IsVisible() bool { return n.visible }

// SetVisible sets the display flag. It does not affect connectivity.
func (n *Net) SetVisible(v bool) { n.visible = v }

// HasItem reports whether it was added to the net.
func (n *Net) HasItem(it *Item) bool {
	_, ok := n.items[it]
	return ok
}

func (n *Net) touch() {
	n.dirty = true
	n.tree = nil
}

// AddItem registers the item's nodes and copper edges.
func (n *Net) AddItem(it *Item) error {
	if _, ok := n.items[it]; ok {
		return fmt.Errorf("net %d: %v: %w", n.code, it, ErrItemExists)
	}

	n.seq++
	b := &binding{seq: n.seq}
	switch it.Kind {
	case Pad, Via:
		b.nodes = append(b.nodes, n.graph.InternNode(it.Pos))

	case Track:
		a := n.graph.InternNode(it.Start)
		b.nodes = append(b.nodes, a)
		if it.Start != it.End {
			e := n.graph.InternNode(it.End)
			b.nodes = append(b.nodes, e)
			b.edges = append(b.edges, n.graph.Connect(a, e, 0))
		}

	case Zone:
		for _, poly := range it.Polygons {
			if len(poly.Outline) < 3 {
				continue
			}
			sub := NewZoneSubpolygon(poly.Outline, poly.Holes)
			ref := n.graph.InternNode(sub.Representative())
			b.nodes = append(b.nodes, ref)
			b.zones = append(b.zones, zoneArea{poly: sub, node: ref})
		}

	default:
		return fmt.Errorf("net %d: %v: %w", n.code, it.Kind, ErrUnknownKind)
	}

	n.items[it] = b
	n.touch()
	return nil
}

// RemoveItem drops everything the item contributed.
func (n *Net) RemoveItem(it *Item) error {
	b, ok := n.items[it]
	if !ok {
		return fmt.Errorf("net %d: %v: %w", n.code, it, ErrItemNotFound)
	}
	for _, e := range b.edges {
		n.graph.Disconnect(e)
	}
	for _, ref := range b.nodes {
		if n.graph.ReleaseNode(ref) {
			n.preview.forget(ref)
			delete(n.component, ref)
		}
	}
	delete(n.items, it)
	n.touch()
	return nil
}

// Update recomputes the ratsnest if the net is dirty.
func (n *Net) Update() {
	if n.dirty {
		n.compute()
	}
}

// GetUnconnected returns the missing links, recomputing first if needed.
func (n *Net) GetUnconnected() []Edge {
	n.Update()
	return slices.Clone(n.unconnected)
}

// Links returns the missing links resolved to coordinates.
func (n *Net) Links() []Link {
	edges := n.GetUnconnected()
	links := make([]Link, len(edges))
	for i, e := range edges {
		links[i] = Link{
			Net:      n.code,
			A:        n.graph.Node(e.A).Pos,
			B:        n.graph.Node(e.B).Pos,
			Distance: e.Distance,
		}
	}
	return links
}

// Node returns the node behind ref.
func (n *Net) Node(ref NodeRef) *Node { return n.graph.Node(ref) }

// GetNodes returns the live nodes.
func (n *Net) GetNodes() []NodeRef { return n.graph.Nodes() }

// GetItemNodes returns the nodes the item claims.
func (n *Net) GetItemNodes(it *Item) []NodeRef {
	b, ok := n.items[it]
	if !ok {
		return nil
	}
	return slices.Clone(b.nodes)
}

// sortedItems returns the items in insertion order.
func (n *Net) sortedItems() []*Item {
	items := make([]*Item, 0, len(n.items))
	for it := range n.items {
		items = append(items, it)
	}
	slices.SortFunc(items, func(a, b *Item) int {
		return n.items[a].seq - n.items[b].seq
	})
	return items
}

// GetItems returns the items of the given kinds in insertion order.
func (n *Net) GetItems(kinds Kind) []*Item {
	var out []*Item
	for _, it := range n.sortedItems() {
		if it.Kind&kinds != 0 {
			out = append(out, it)
		}
	}
	return out
}

// GetConnectedItems returns the items of the given kinds joined to it by
// copper, excluding it.
func (n *Net) GetConnectedItems(it *Item, kinds Kind) []*Item {
	b, ok := n.items[it]
	if !ok {
		return nil
	}
	n.Update()

	tags := make(map[int]bool)
	for _, ref := range b.nodes {
		tags[n.component[ref]] = true
	}

	var out []*Item
	for _, other := range n.sortedItems() {
		if other == it || other.Kind&kinds == 0 {
			continue
		}
		for _, ref := range n.items[other].nodes {
			if tags[n.component[ref]] {
				out = append(out, other)
				break
			}
		}
	}
	return out
}

// connected reports whether two items of the net share a copper
// component.
func (n *Net) connected(a, b *Item) bool {
	ba, okA := n.items[a]
	bb, okB := n.items[b]
	if !okA || !okB {
		return false
	}
	n.Update()
	for _, ra := range ba.nodes {
		for _, rb := range bb.nodes {
			if n.component[ra] == n.component[rb] {
				return true
			}
		}
	}
	return false
}

// Stats returns registry counts and the figures of the last recompute.
func (n *Net) Stats() Stats {
	s := n.last
	s.Items = len(n.items)
	s.Nodes = n.graph.NodeCount()
	s.Edges = n.graph.EdgeCount()
	return s
}

// compute rebuilds the ratsnest from the registry.
func (n *Net) compute() {
	refs := n.graph.Nodes()
	index := make(map[NodeRef]int, len(refs))
	pts := make([]geom.Point, len(refs))
	for i, ref := range refs {
		index[ref] = i
		pts[i] = n.graph.Node(ref).Pos
	}

	zero := n.zeroConnections(refs)
	comps := copperComponents(refs, zero)

	uf := newUnionFind(len(refs))
	clear(n.component)
	for tag, comp := range comps {
		for _, ref := range comp {
			n.component[ref] = tag
			n.graph.Node(ref).Tag = tag
			uf.union(index[comp[0]], index[ref])
		}
	}

	var links []Edge
	if len(comps) > 1 {
		mesh := triangulate.New(pts)
		if n.opts.Constraints {
			for _, z := range zero {
				if _, err := mesh.InsertConstraint(index[z[0]], index[z[1]], true); err != nil {
					Logger().Debug("ratsnest: constraint rejected",
						"net", n.code, "from", pts[index[z[0]]], "to", pts[index[z[1]]], "err", err)
				}
			}
		}
		links = spanningLinks(mesh, refs, pts, uf)
		if uf.sets > 1 {
			Logger().Debug("ratsnest: mesh left components apart", "net", n.code, "sets", uf.sets)
			links = append(links, n.joinRemaining(refs, index, uf)...)
		}
	}

	n.unconnected = links
	n.dirty = false
	n.last = Stats{
		Components:      len(comps),
		ZeroConnections: len(zero),
		Unconnected:     len(links),
	}
	Logger().Debug("ratsnest: net recomputed",
		"net", n.code, "nodes", len(refs), "zero", len(zero),
		"components", len(comps), "unconnected", len(links))
}

type candidate struct {
	a, b int // vertex indices, a before b in point order
	d2   int64
}

func orderedCandidate(pts []geom.Point, i, j int) candidate {
	if pts[j].Less(pts[i]) {
		i, j = j, i
	}
	return candidate{a: i, b: j, d2: pts[i].SquaredDistance(pts[j])}
}

func compareCandidates(pts []geom.Point) func(x, y candidate) int {
	cmpPoint := func(p, q geom.Point) int {
		switch {
		case p.Less(q):
			return -1
		case q.Less(p):
			return 1
		}
		return 0
	}
	return func(x, y candidate) int {
		switch {
		case x.d2 < y.d2:
			return -1
		case x.d2 > y.d2:
			return 1
		}
		if c := cmpPoint(pts[x.a], pts[y.a]); c != 0 {
			return c
		}
		return cmpPoint(pts[x.b], pts[y.b])
	}
}

// spanningLinks runs Kruskal over the mesh edges. uf starts with the
// copper components merged, so only links between components are kept.
func spanningLinks(mesh *triangulate.Mesh, refs []NodeRef, pts []geom.Point, uf *unionFind) []Edge {
	var cands []candidate
	for a, b := range mesh.Edges {
		if uf.find(a) != uf.find(b) {
			cands = append(cands, orderedCandidate(pts, a, b))
		}
	}
	slices.SortFunc(cands, compareCandidates(pts))

	var links []Edge
	for _, c := range cands {
		if uf.sets == 1 {
			break
		}
		if uf.union(c.a, c.b) {
			links = append(links, Edge{A: refs[c.a], B: refs[c.b], Distance: int(geom.ISqrt(c.d2))})
		}
	}
	return links
}

// joinRemaining links components the mesh could not join. Each round
// every component picks its closest foreign node (Borůvka) until one set
// is left.
func (n *Net) joinRemaining(refs []NodeRef, index map[NodeRef]int, uf *unionFind) []Edge {
	pts := make([]geom.Point, len(refs))
	for i, ref := range refs {
		pts[i] = n.graph.Node(ref).Pos
	}
	cmp := compareCandidates(pts)

	var links []Edge
	for uf.sets > 1 {
		best := make(map[int]candidate)
		for i, ref := range refs {
			root := uf.find(i)
			found := n.nearest(ref, 1, func(o NodeRef) bool {
				return uf.find(index[o]) != root
			})
			if len(found) == 0 {
				continue
			}
			c := orderedCandidate(pts, i, index[found[0]])
			if cur, ok := best[root]; !ok || cmp(c, cur) < 0 {
				best[root] = c
			}
		}

		cands := make([]candidate, 0, len(best))
		for _, c := range best {
			cands = append(cands, c)
		}
		slices.SortFunc(cands, cmp)

		merged := false
		for _, c := range cands {
			if uf.union(c.a, c.b) {
				links = append(links, Edge{A: refs[c.a], B: refs[c.b], Distance: int(geom.ISqrt(c.d2))})
				merged = true
			}
		}
		if !merged {
			break
		}
	}
	return links
}
