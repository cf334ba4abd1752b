package ratsnest

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// preview is the state of the simplified ratsnest drawn while items are
// being dragged. It never touches the registry.
type preview struct {
	nodes   []NodeRef
	simple  map[NodeRef]bool
	blocked map[NodeRef]bool
}

func (p *preview) block(ref NodeRef) {
	if p.blocked == nil {
		p.blocked = make(map[NodeRef]bool)
	}
	p.blocked[ref] = true
}

func (p *preview) addSimple(ref NodeRef) {
	if p.simple == nil {
		p.simple = make(map[NodeRef]bool)
	}
	if !p.simple[ref] {
		p.simple[ref] = true
		p.nodes = append(p.nodes, ref)
	}
}

// forget drops a node whose slot was freed.
func (p *preview) forget(ref NodeRef) {
	delete(p.blocked, ref)
	if p.simple[ref] {
		delete(p.simple, ref)
		for i, r := range p.nodes {
			if r == ref {
				p.nodes = append(p.nodes[:i], p.nodes[i+1:]...)
				break
			}
		}
	}
}

// AddSimple puts the item in preview mode: all its nodes stop being line
// targets and those claimed by no other item get a preview line.
func (n *Net) AddSimple(it *Item) error {
	b, ok := n.items[it]
	if !ok {
		return fmt.Errorf("net %d: %v: %w", n.code, it, ErrItemNotFound)
	}
	for _, ref := range b.nodes {
		n.preview.block(ref)
		// junctions shared with other items are not drawn
		if n.graph.Node(ref).refs == 1 {
			n.preview.addSimple(ref)
		}
	}
	return nil
}

// AddBlockedNode excludes a node from being a line target.
func (n *Net) AddBlockedNode(ref NodeRef) {
	n.preview.block(ref)
}

// IsBlocked reports whether preview mode blocks the node.
func (n *Net) IsBlocked(ref NodeRef) bool {
	return n.preview.blocked[ref]
}

// GetSimple returns one line from every preview node to its closest line
// target.
func (n *Net) GetSimple() []Edge {
	var edges []Edge
	for _, ref := range n.preview.nodes {
		// LineTarget ignores tags, so a dirty net is not recomputed here
		found := n.nearest(ref, 1, func(o NodeRef) bool { return LineTarget(n, o) })
		if len(found) == 0 {
			continue
		}
		target := found[0]
		d2 := n.graph.Node(ref).Pos.SquaredDistance(n.graph.Node(target).Pos)
		edges = append(edges, Edge{A: ref, B: target, Distance: int(geom.ISqrt(d2))})
	}
	return edges
}

// ClearSimple leaves preview mode.
func (n *Net) ClearSimple() {
	n.preview = preview{}
}
