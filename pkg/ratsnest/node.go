package ratsnest

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// NodeRef addresses a node in its net's graph.
type NodeRef int32

// NoNode is the zero value for a missing node.
const NoNode NodeRef = -1

// Node is a connection point. Nodes are identified by coordinate and
// live while at least one item claims them.
type Node struct {
	Pos geom.Point
	// Tag is the copper component the node belonged to at the last
	// recompute.
	Tag  int
	Flag bool

	refs int
}

// Refs returns the number of items claiming the node.
func (n *Node) Refs() int { return n.refs }

func (n *Node) String() string {
	return fmt.Sprintf("node %v (tag %d, refs %d)", n.Pos, n.Tag, n.refs)
}

// EdgeRef addresses an edge in its net's graph.
type EdgeRef int32

// Edge joins two nodes. Distance 0 is existing copper; a positive
// distance is a missing link weighted by its length.
type Edge struct {
	A, B     NodeRef
	Distance int
}
