package script

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/ratsnest"
)

var (
	// ErrExpectation is returned when an expect statement does not hold.
	ErrExpectation = errors.New("expectation failed")
	// ErrUnknownItem is returned for names no statement has defined.
	ErrUnknownItem = errors.New("unknown item")
	// ErrDuplicateItem is returned when a name is defined twice.
	ErrDuplicateItem = errors.New("item name already used")
)

type runner struct {
	board *ratsnest.Board
	w     io.Writer
	items map[string]*ratsnest.Item
}

// Run replays prog against board, writing print output to w. Named items
// already on the board can be referenced by the script. Run stops at the
// first failing statement and reports its position.
func Run(ctx context.Context, prog *Program, board *ratsnest.Board, w io.Writer) error {
	r := &runner{board: board, w: w, items: make(map[string]*ratsnest.Item)}
	for _, code := range board.NetCodes() {
		for _, it := range board.GetNetItems(code, ratsnest.AnyKind) {
			if it.Name != "" {
				r.items[it.Name] = it
			}
		}
	}

	for _, st := range prog.Statements {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.exec(st); err != nil {
			return fmt.Errorf("%s: %w", st.Pos, err)
		}
	}
	return nil
}

func (r *runner) exec(st *Statement) error {
	switch {
	case st.Place != nil:
		kind := ratsnest.Pad
		if st.Place.Kind == "via" {
			kind = ratsnest.Via
		}
		return r.add(&ratsnest.Item{
			Kind: kind,
			Net:  st.Place.Net,
			Pos:  st.Place.At.point(),
			Name: st.Place.Name,
		})

	case st.Track != nil:
		return r.add(&ratsnest.Item{
			Kind:  ratsnest.Track,
			Net:   st.Track.Net,
			Start: st.Track.From.point(),
			End:   st.Track.To.point(),
			Name:  st.Track.Name,
		})

	case st.Zone != nil:
		poly := ratsnest.Polygon{Outline: vertices(st.Zone.Outline)}
		for _, h := range st.Zone.Holes {
			poly.Holes = append(poly.Holes, vertices(h.Points))
		}
		return r.add(&ratsnest.Item{
			Kind:     ratsnest.Zone,
			Net:      st.Zone.Net,
			Polygons: []ratsnest.Polygon{poly},
			Name:     st.Zone.Name,
		})

	case st.Move != nil:
		it, err := r.lookup(st.Move.Name)
		if err != nil {
			return err
		}
		if it.Kind != ratsnest.Pad && it.Kind != ratsnest.Via {
			return fmt.Errorf("move %s: only pads and vias can be moved", st.Move.Name)
		}
		it.Pos = st.Move.To.point()
		return r.board.Update(it)

	case st.Remove != nil:
		it, err := r.lookup(st.Remove.Name)
		if err != nil {
			return err
		}
		if err := r.board.Remove(it); err != nil {
			return err
		}
		delete(r.items, st.Remove.Name)
		return nil

	case st.Recalc != nil:
		code := ratsnest.AllNets
		if st.Recalc.Net != nil {
			code = *st.Recalc.Net
		}
		r.board.Recalculate(code)
		return nil

	case st.Expect != nil:
		return r.expect(st.Expect)

	case st.Print != nil:
		return r.print(st.Print)
	}
	return errors.New("empty statement")
}

func (r *runner) add(it *ratsnest.Item) error {
	if _, ok := r.items[it.Name]; ok {
		return fmt.Errorf("%q: %w", it.Name, ErrDuplicateItem)
	}
	if err := r.board.Add(it); err != nil {
		return err
	}
	r.items[it.Name] = it
	return nil
}

func (r *runner) lookup(name string) (*ratsnest.Item, error) {
	it, ok := r.items[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownItem)
	}
	return it, nil
}

func (r *runner) expect(e *Expect) error {
	if c := e.Count; c != nil {
		var got int
		scope := "board"
		if c.Net != nil {
			scope = fmt.Sprintf("net %d", *c.Net)
			if net, ok := r.board.GetNet(*c.Net); ok {
				got = len(net.GetUnconnected())
			}
		} else {
			got = r.board.UnconnectedCount()
		}
		if got != c.Want {
			return fmt.Errorf("%w: %s has %d unconnected, want %d", ErrExpectation, scope, got, c.Want)
		}
		return nil
	}

	p := e.Pair
	a, err := r.lookup(p.A)
	if err != nil {
		return err
	}
	b, err := r.lookup(p.B)
	if err != nil {
		return err
	}
	want := p.Mode == "connected"
	if r.board.AreConnected(a, b) != want {
		return fmt.Errorf("%w: %s and %s are not %s", ErrExpectation, p.A, p.B, p.Mode)
	}
	return nil
}

func (r *runner) print(p *Print) error {
	codes := r.board.NetCodes()
	if p.Net != nil {
		codes = []int{*p.Net}
	}

	for _, code := range codes {
		net, ok := r.board.GetNet(code)
		if !ok {
			continue
		}
		switch p.What {
		case "unconnected":
			for _, l := range net.Links() {
				if _, err := fmt.Fprintf(r.w, "net %d: %v - %v length %d\n", l.Net, l.A, l.B, l.Distance); err != nil {
					return err
				}
			}
		case "stats":
			net.Update()
			s := net.Stats()
			if _, err := fmt.Fprintf(r.w, "net %d: items %d nodes %d edges %d components %d unconnected %d\n",
				code, s.Items, s.Nodes, s.Edges, s.Components, s.Unconnected); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c Coord) point() geom.Point { return geom.Pt(c.X, c.Y) }

func vertices(vs []*Vertex) []geom.Point {
	pts := make([]geom.Point, len(vs))
	for i, v := range vs {
		pts[i] = geom.Pt(v.X, v.Y)
	}
	return pts
}
