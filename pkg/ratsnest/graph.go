package ratsnest

import (
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// Graph is the node and copper-edge registry of one net. Nodes are
// interned by coordinate and reference counted; freed slots are reused.
type Graph struct {
	nodes     []Node
	freeNodes []NodeRef
	byPos     map[geom.Point]NodeRef

	edges     []Edge
	edgeAlive []bool
	freeEdges []EdgeRef
	liveEdges int
}

// NewGraph returns an empty registry.
func NewGraph() *Graph {
	return &Graph{byPos: make(map[geom.Point]NodeRef)}
}

// InternNode returns the node at p, creating it if needed, and takes a
// reference on it.
func (g *Graph) InternNode(p geom.Point) NodeRef {
	if ref, ok := g.byPos[p]; ok {
		g.nodes[ref].refs++
		return ref
	}

	var ref NodeRef
	if n := len(g.freeNodes); n > 0 {
		ref = g.freeNodes[n-1]
		g.freeNodes = g.freeNodes[:n-1]
		g.nodes[ref] = Node{Pos: p, refs: 1}
	} else {
		ref = NodeRef(len(g.nodes))
		g.nodes = append(g.nodes, Node{Pos: p, refs: 1})
	}
	g.byPos[p] = ref
	return ref
}

// ReleaseNode drops a reference. It reports true when that was the last
// one and the node was removed.
func (g *Graph) ReleaseNode(ref NodeRef) bool {
	n := &g.nodes[ref]
	if n.refs <= 0 {
		return false
	}
	n.refs--
	if n.refs > 0 {
		return false
	}
	delete(g.byPos, n.Pos)
	g.freeNodes = append(g.freeNodes, ref)
	return true
}

// Connect records an edge between two nodes.
func (g *Graph) Connect(a, b NodeRef, distance int) EdgeRef {
	e := Edge{A: a, B: b, Distance: distance}
	g.liveEdges++
	if n := len(g.freeEdges); n > 0 {
		ref := g.freeEdges[n-1]
		g.freeEdges = g.freeEdges[:n-1]
		g.edges[ref] = e
		g.edgeAlive[ref] = true
		return ref
	}
	g.edges = append(g.edges, e)
	g.edgeAlive = append(g.edgeAlive, true)
	return EdgeRef(len(g.edges) - 1)
}

// Disconnect removes an edge.
func (g *Graph) Disconnect(ref EdgeRef) {
	if !g.edgeAlive[ref] {
		return
	}
	g.edgeAlive[ref] = false
	g.liveEdges--
	g.freeEdges = append(g.freeEdges, ref)
}

// Node returns the node behind ref.
func (g *Graph) Node(ref NodeRef) *Node { return &g.nodes[ref] }

// Edge returns the edge behind ref.
func (g *Graph) Edge(ref EdgeRef) Edge { return g.edges[ref] }

// NodeAt returns the live node at p.
func (g *Graph) NodeAt(p geom.Point) (NodeRef, bool) {
	ref, ok := g.byPos[p]
	return ref, ok
}

// Nodes returns the live nodes in ascending order.
func (g *Graph) Nodes() []NodeRef {
	refs := make([]NodeRef, 0, len(g.byPos))
	for i := range g.nodes {
		if g.nodes[i].refs > 0 {
			refs = append(refs, NodeRef(i))
		}
	}
	return refs
}

// Edges returns the live edges in ascending order.
func (g *Graph) Edges() []EdgeRef {
	refs := make([]EdgeRef, 0, g.liveEdges)
	for i, alive := range g.edgeAlive {
		if alive {
			refs = append(refs, EdgeRef(i))
		}
	}
	return refs
}

// NodeCount returns the number of live nodes.
func (g *Graph) NodeCount() int { return len(g.byPos) }

// EdgeCount returns the number of live edges.
func (g *Graph) EdgeCount() int { return g.liveEdges }
