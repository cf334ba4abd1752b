package ratsnest

import (
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// Filter selects candidate nodes for closest-node queries.
type Filter func(n *Net, ref NodeRef) bool

// All accepts every node.
func All(*Net, NodeRef) bool { return true }

// WithoutFlag accepts nodes whose Flag is clear.
func WithoutFlag(n *Net, ref NodeRef) bool { return !n.graph.Node(ref).Flag }

// LineTarget accepts nodes that preview mode has not blocked.
func LineTarget(n *Net, ref NodeRef) bool { return !n.preview.blocked[ref] }

// DifferentTag accepts nodes outside copper component tag.
func DifferentTag(tag int) Filter {
	return func(n *Net, ref NodeRef) bool { return n.graph.Node(ref).Tag != tag }
}

// And accepts nodes accepted by every filter.
func And(fs ...Filter) Filter {
	return func(n *Net, ref NodeRef) bool {
		for _, f := range fs {
			if !f(n, ref) {
				return false
			}
		}
		return true
	}
}

// Or accepts nodes accepted by any filter.
func Or(fs ...Filter) Filter {
	return func(n *Net, ref NodeRef) bool {
		for _, f := range fs {
			if f(n, ref) {
				return true
			}
		}
		return false
	}
}

// Not inverts a filter.
func Not(f Filter) Filter {
	return func(n *Net, ref NodeRef) bool { return !f(n, ref) }
}

// nodeKeeper passes the nodes accepted by accept on to a kd-tree keeper.
type nodeKeeper struct {
	kdtree.Keeper
	accept func(kdtree.Comparable) bool
}

func (k nodeKeeper) Keep(c kdtree.ComparableDist) {
	if k.accept(c.Comparable) {
		k.Keeper.Keep(c)
	}
}

func toKD(p geom.Point) kdtree.Point {
	return kdtree.Point{float64(p.X), float64(p.Y)}
}

// nodeTree returns the kd-tree over the live nodes, building it after
// registry changes.
func (n *Net) nodeTree() *kdtree.Tree {
	if n.tree == nil {
		refs := n.graph.Nodes()
		pts := make(kdtree.Points, len(refs))
		for i, ref := range refs {
			pts[i] = toKD(n.graph.Node(ref).Pos)
		}
		n.tree = kdtree.New(pts, false)
	}
	return n.tree
}

func (n *Net) refOf(c kdtree.Comparable) (NodeRef, bool) {
	p, ok := c.(kdtree.Point)
	if !ok {
		return NoNode, false
	}
	return n.graph.NodeAt(geom.Pt(int(p[0]), int(p[1])))
}

// nearest returns up to count nodes other than ref accepted by accept,
// closest first. Equal distances are ordered by coordinate.
//
// The kd-tree ranks in float64, which cannot separate squared distances
// near 2^62. Its count-th hit only fixes a search radius: every node
// within that radius plus a relative margin is collected and ranked on
// exact integer distances.
func (n *Net) nearest(ref NodeRef, count int, accept func(NodeRef) bool) []NodeRef {
	if count <= 0 || n.graph.NodeCount() < 2 {
		return nil
	}
	origin := n.graph.Node(ref).Pos
	filter := func(c kdtree.Comparable) bool {
		r, ok := n.refOf(c)
		return ok && r != ref && accept(r)
	}
	tree := n.nodeTree()

	nk := kdtree.NewNKeeper(count)
	tree.NearestSet(nodeKeeper{Keeper: nk, accept: filter}, toKD(origin))
	hits := nk.Heap
	// fewer hits than asked for means every accepted node was seen
	if len(hits) == count {
		radius := 0.0
		for _, c := range hits {
			if c.Comparable != nil {
				radius = max(radius, c.Dist)
			}
		}
		dk := kdtree.NewDistKeeper(radius*(1+1e-9) + 1)
		tree.NearestSet(nodeKeeper{Keeper: dk, accept: filter}, toKD(origin))
		hits = dk.Heap
	}

	found := make([]NodeRef, 0, len(hits))
	for _, c := range hits {
		if c.Comparable == nil {
			continue
		}
		if r, ok := n.refOf(c.Comparable); ok {
			found = append(found, r)
		}
	}
	slices.SortFunc(found, func(a, b NodeRef) int {
		pa, pb := n.graph.Node(a).Pos, n.graph.Node(b).Pos
		da, db := origin.SquaredDistance(pa), origin.SquaredDistance(pb)
		switch {
		case da < db:
			return -1
		case da > db:
			return 1
		case pa.Less(pb):
			return -1
		case pb.Less(pa):
			return 1
		}
		return 0
	})
	if len(found) > count {
		found = found[:count]
	}
	return found
}

// GetClosestNode returns the node nearest to ref accepted by filter. A
// nil filter accepts everything.
func (n *Net) GetClosestNode(ref NodeRef, filter Filter) (NodeRef, bool) {
	found := n.GetClosestNodes(ref, 1, filter)
	if len(found) == 0 {
		return NoNode, false
	}
	return found[0], true
}

// GetClosestNodes returns up to count nodes nearest to ref accepted by
// filter, closest first. A dirty net is recomputed first so that node
// tags are current.
func (n *Net) GetClosestNodes(ref NodeRef, count int, filter Filter) []NodeRef {
	n.Update()
	if filter == nil {
		filter = All
	}
	return n.nearest(ref, count, func(o NodeRef) bool { return filter(n, o) })
}
