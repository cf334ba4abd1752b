package ratsnest

import (
	"bytes"
	"errors"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

func pad(net, x, y int) *Item {
	return &Item{Kind: Pad, Net: net, Pos: geom.Pt(x, y)}
}

func track(net, x0, y0, x1, y1 int) *Item {
	return &Item{Kind: Track, Net: net, Start: geom.Pt(x0, y0), End: geom.Pt(x1, y1)}
}

func zone(net int, outline []geom.Point, holes ...[]geom.Point) *Item {
	return &Item{Kind: Zone, Net: net, Polygons: []Polygon{{Outline: outline, Holes: holes}}}
}

func newNetWith(t *testing.T, items []*Item, opts ...Option) *Net {
	t.Helper()
	n := NewNet(1, opts...)
	for _, it := range items {
		if err := n.AddItem(it); err != nil {
			t.Fatalf("AddItem(%v): %v", it, err)
		}
	}
	return n
}

func TestNetScenarios(t *testing.T) {
	tests := []struct {
		name  string
		items []*Item
		want  []Link
	}{
		{
			name:  "two isolated pads",
			items: []*Item{pad(1, 0, 0), pad(1, 1000, 0)},
			want:  []Link{{Net: 1, A: geom.Pt(0, 0), B: geom.Pt(1000, 0), Distance: 1000}},
		},
		{
			name:  "pads joined by a track",
			items: []*Item{pad(1, 0, 0), pad(1, 1000, 0), track(1, 0, 0, 1000, 0)},
		},
		{
			name:  "zone covers both pads",
			items: []*Item{pad(1, 0, 0), pad(1, 1000, 0), zone(1, square(-100, -100, 1100, 100))},
		},
		{
			name:  "three collinear pads",
			items: []*Item{pad(1, 0, 0), pad(1, 500, 0), pad(1, 1000, 0)},
			want: []Link{
				{Net: 1, A: geom.Pt(0, 0), B: geom.Pt(500, 0), Distance: 500},
				{Net: 1, A: geom.Pt(500, 0), B: geom.Pt(1000, 0), Distance: 500},
			},
		},
		{
			name:  "single pad",
			items: []*Item{pad(1, 7, 7)},
		},
		{
			name:  "zero-length track on a pad",
			items: []*Item{pad(1, 0, 0), track(1, 0, 0, 0, 0)},
		},
		{
			name:  "pad on a track interior",
			items: []*Item{track(1, 0, 0, 1000, 0), pad(1, 400, 0)},
		},
		{
			name:  "pad inside a zone cutout",
			items: []*Item{zone(1, square(0, 0, 1000, 1000), square(400, 400, 600, 600)), pad(1, 500, 500)},
			want:  []Link{{Net: 1, A: geom.Pt(0, 0), B: geom.Pt(500, 500), Distance: 707}},
		},
		{
			name: "overlapping zones",
			items: []*Item{
				zone(1, square(0, 0, 100, 100)), zone(1, square(50, 50, 200, 200)),
				pad(1, 10, 10), pad(1, 190, 190),
			},
		},
		{
			name: "disjoint zones",
			items: []*Item{
				zone(1, square(0, 0, 100, 100)), zone(1, square(300, 0, 400, 100)),
			},
			want: []Link{{Net: 1, A: geom.Pt(0, 0), B: geom.Pt(300, 0), Distance: 300}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := newNetWith(t, tt.items)
			got := n.Links()
			if !slices.Equal(got, tt.want) {
				t.Errorf("Links = %v, want %v", got, tt.want)
			}
			if n.IsDirty() {
				t.Error("net still dirty after query")
			}
		})
	}
}

func TestNetItemErrors(t *testing.T) {
	n := NewNet(1)
	a := pad(1, 0, 0)
	if err := n.AddItem(a); err != nil {
		t.Fatal(err)
	}
	if err := n.AddItem(a); !errors.Is(err, ErrItemExists) {
		t.Errorf("second AddItem: %v, want ErrItemExists", err)
	}
	if err := n.AddItem(&Item{Net: 1}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("AddItem without kind: %v, want ErrUnknownKind", err)
	}
	if err := n.RemoveItem(pad(1, 0, 0)); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("RemoveItem of a stranger: %v, want ErrItemNotFound", err)
	}
	if n.Graph().NodeCount() != 1 {
		t.Error("failed operations changed the registry")
	}
}

type registrySnapshot struct {
	nodes map[geom.Point]int
	edges map[[2]geom.Point]int
}

func snapshot(n *Net) registrySnapshot {
	s := registrySnapshot{nodes: map[geom.Point]int{}, edges: map[[2]geom.Point]int{}}
	for _, ref := range n.GetNodes() {
		node := n.Node(ref)
		s.nodes[node.Pos] = node.Refs()
	}
	for _, ref := range n.Graph().Edges() {
		e := n.Graph().Edge(ref)
		a, b := n.Node(e.A).Pos, n.Node(e.B).Pos
		if b.Less(a) {
			a, b = b, a
		}
		s.edges[[2]geom.Point{a, b}]++
	}
	return s
}

func (s registrySnapshot) equal(o registrySnapshot) bool {
	return maps.Equal(s.nodes, o.nodes) && maps.Equal(s.edges, o.edges)
}

func TestAddRemoveRestoresRegistry(t *testing.T) {
	base := []*Item{pad(1, 0, 0), pad(1, 1000, 0), track(1, 0, 0, 500, 500)}
	extras := []*Item{
		pad(1, 0, 0),
		pad(1, 300, 300),
		track(1, 0, 0, 1000, 0),
		track(1, 500, 500, 500, 500),
		zone(1, square(-50, -50, 50, 50)),
		zone(1, square(0, 0, 10, 10)),
	}

	for _, extra := range extras {
		t.Run(extra.String(), func(t *testing.T) {
			n := newNetWith(t, base)
			before := snapshot(n)
			linksBefore := n.Links()

			if err := n.AddItem(extra); err != nil {
				t.Fatal(err)
			}
			n.Update()
			if err := n.RemoveItem(extra); err != nil {
				t.Fatal(err)
			}

			if after := snapshot(n); !before.equal(after) {
				t.Errorf("registry changed: before %v, after %v", before, after)
			}
			if got := n.Links(); !slices.Equal(got, linksBefore) {
				t.Errorf("links changed: before %v, after %v", linksBefore, got)
			}
		})
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	r := rand.New(rand.NewPCG(4, 9))
	items := randomBoard(r, 1, 60, 10, 5000)
	n := newNetWith(t, items)

	first := n.GetUnconnected()
	tags := make(map[NodeRef]int)
	for _, ref := range n.GetNodes() {
		tags[ref] = n.Node(ref).Tag
	}

	n.compute()
	if second := n.GetUnconnected(); !slices.Equal(first, second) {
		t.Errorf("recompute changed the ratsnest:\n%v\n%v", first, second)
	}
	for _, ref := range n.GetNodes() {
		if n.Node(ref).Tag != tags[ref] {
			t.Errorf("node %d changed tag from %d to %d", ref, tags[ref], n.Node(ref).Tag)
		}
	}
}

// randomBoard returns pads at distinct random positions and tracks
// joining some of them.
func randomBoard(r *rand.Rand, net, pads, tracks, span int) []*Item {
	seen := map[geom.Point]bool{}
	var items []*Item
	for len(items) < pads {
		p := geom.Pt(r.IntN(span), r.IntN(span))
		if seen[p] {
			continue
		}
		seen[p] = true
		items = append(items, &Item{Kind: Pad, Net: net, Pos: p})
	}
	for i := 0; i < tracks; i++ {
		a, b := items[r.IntN(pads)], items[r.IntN(pads)]
		if a == b {
			continue
		}
		items = append(items, &Item{Kind: Track, Net: net, Start: a.Pos, End: b.Pos})
	}
	return items
}

// bruteForceMST contracts the tracks and runs Kruskal over every pair of
// pads, returning the total squared length and number of links.
func bruteForceMST(items []*Item) (int64, int) {
	var pts []geom.Point
	index := map[geom.Point]int{}
	for _, it := range items {
		if it.Kind == Pad {
			index[it.Pos] = len(pts)
			pts = append(pts, it.Pos)
		}
	}
	uf := newUnionFind(len(pts))
	for _, it := range items {
		if it.Kind == Track {
			uf.union(index[it.Start], index[it.End])
		}
	}

	var pairs [][2]int
	for i := range pts {
		for j := i + 1; j < len(pts); j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	slices.SortFunc(pairs, func(a, b [2]int) int {
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

	var total int64
	count := 0
	for _, p := range pairs {
		if uf.union(p[0], p[1]) {
			total += pts[p[0]].SquaredDistance(pts[p[1]])
			count++
		}
	}
	return total, count
}

func TestLinksFormMinimumSpanningTree(t *testing.T) {
	r := rand.New(rand.NewPCG(12, 34))
	for round := 0; round < 8; round++ {
		items := randomBoard(r, 1, 50, 15, 3000)
		want, wantCount := bruteForceMST(items)

		n := newNetWith(t, items, WithConstraints(false), WithTJunctions(false))
		links := n.Links()

		var got int64
		for _, l := range links {
			got += l.A.SquaredDistance(l.B)
		}
		if len(links) != wantCount {
			t.Errorf("round %d: %d links, want %d", round, len(links), wantCount)
		}
		if got != want {
			t.Errorf("round %d: total squared length %d, minimum is %d", round, got, want)
		}
	}
}

// checkSpanning verifies that the links join every copper component of
// the net exactly once.
func checkSpanning(t *testing.T, n *Net) {
	t.Helper()
	// tags are only assigned by a recompute
	n.Update()
	refs := n.GetNodes()
	index := map[NodeRef]int{}
	for i, ref := range refs {
		index[ref] = i
	}

	comps := map[int]bool{}
	for _, ref := range refs {
		comps[n.Node(ref).Tag] = true
	}
	edges := n.GetUnconnected()
	if len(edges) != len(comps)-1 {
		t.Fatalf("%d links for %d components", len(edges), len(comps))
	}

	uf := newUnionFind(len(comps))
	for _, e := range edges {
		ta, tb := n.Node(e.A).Tag, n.Node(e.B).Tag
		if ta == tb {
			t.Fatalf("link %v joins component %d to itself", e, ta)
		}
		if !uf.union(ta, tb) {
			t.Fatalf("link %v closes a cycle", e)
		}
		d2 := n.Node(e.A).Pos.SquaredDistance(n.Node(e.B).Pos)
		if e.Distance != int(geom.ISqrt(d2)) {
			t.Fatalf("link %v has distance %d, want %d", e, e.Distance, geom.ISqrt(d2))
		}
	}
}

func TestLinksSpanWithConstraints(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 6))
	for round := 0; round < 8; round++ {
		n := newNetWith(t, randomBoard(r, 1, 60, 20, 4000))
		checkSpanning(t, n)
	}
}

func TestJoinRemainingMatchesKruskal(t *testing.T) {
	r := rand.New(rand.NewPCG(8, 1))
	items := randomBoard(r, 1, 40, 0, 2000)
	want, wantCount := bruteForceMST(items)

	n := newNetWith(t, items)
	refs := n.GetNodes()
	index := map[NodeRef]int{}
	for i, ref := range refs {
		index[ref] = i
	}
	edges := n.joinRemaining(refs, index, newUnionFind(len(refs)))

	var got int64
	for _, e := range edges {
		got += n.Node(e.A).Pos.SquaredDistance(n.Node(e.B).Pos)
	}
	if len(edges) != wantCount || got != want {
		t.Errorf("fallback gave %d links of total %d, want %d of %d", len(edges), got, wantCount, want)
	}
}

func TestCrossingTracksStillSpan(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	defer SetLogger(nil)

	n := newNetWith(t, []*Item{
		track(1, 0, 0, 1000, 1000),
		track(1, 0, 1000, 1000, 0),
	})
	links := n.Links()
	if len(links) != 1 || links[0].Distance != 1000 {
		t.Errorf("Links = %v, want one link of 1000", links)
	}
	if !strings.Contains(buf.String(), "constraint rejected") {
		t.Errorf("crossing constraint not logged:\n%s", buf.String())
	}
	checkSpanning(t, n)
}

func TestTJunctionOption(t *testing.T) {
	items := []*Item{track(1, 0, 0, 1000, 0), pad(1, 400, 0)}

	if links := newNetWith(t, items).Links(); len(links) != 0 {
		t.Errorf("with T-junctions: %v", links)
	}
	links := newNetWith(t, items, WithTJunctions(false)).Links()
	want := []Link{{Net: 1, A: geom.Pt(0, 0), B: geom.Pt(400, 0), Distance: 400}}
	if !slices.Equal(links, want) {
		t.Errorf("without T-junctions: %v, want %v", links, want)
	}
}

func TestGetConnectedItems(t *testing.T) {
	a, b, c := pad(1, 0, 0), pad(1, 1000, 0), pad(1, 0, 5000)
	tr := track(1, 0, 0, 1000, 0)
	n := newNetWith(t, []*Item{a, b, c, tr})

	tests := []struct {
		name  string
		it    *Item
		kinds Kind
		want  []*Item
	}{
		{"all kinds", a, AnyKind, []*Item{b, tr}},
		{"pads only", a, Pad, []*Item{b}},
		{"from the track", tr, Pad | Via, []*Item{a, b}},
		{"isolated pad", c, AnyKind, nil},
		{"unknown item", pad(1, 0, 0), AnyKind, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.GetConnectedItems(tt.it, tt.kinds); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if got := n.GetItems(Track); !slices.Equal(got, []*Item{tr}) {
		t.Errorf("GetItems(Track) = %v", got)
	}
	if got := n.GetItemNodes(tr); len(got) != 2 {
		t.Errorf("track claims %d nodes, want 2", len(got))
	}
}

func TestStats(t *testing.T) {
	n := newNetWith(t, []*Item{pad(1, 0, 0), pad(1, 1000, 0), pad(1, 0, 1000), track(1, 0, 0, 1000, 0)})
	n.Update()

	want := Stats{Items: 4, Nodes: 3, Edges: 1, Components: 2, ZeroConnections: 1, Unconnected: 1}
	if got := n.Stats(); got != want {
		t.Errorf("Stats = %+v, want %+v", got, want)
	}
}

func TestVisibilityDoesNotDirty(t *testing.T) {
	n := newNetWith(t, []*Item{pad(1, 0, 0), pad(1, 10, 0)})
	n.Update()
	n.SetVisible(false)
	if n.IsVisible() || n.IsDirty() {
		t.Errorf("visible=%v dirty=%v", n.IsVisible(), n.IsDirty())
	}
}
