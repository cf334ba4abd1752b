package ratsnest

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
)

// Kind identifies the copper item variants. Kinds are bit flags so a set
// of kinds can be passed as a filter, e.g. Pad|Via.
type Kind uint8

const (
	Pad Kind = 1 << iota
	Via
	Track
	Zone

	// AnyKind matches every item.
	AnyKind = Pad | Via | Track | Zone
)

func (k Kind) String() string {
	var names []string
	for _, v := range []struct {
		k    Kind
		name string
	}{{Pad, "pad"}, {Via, "via"}, {Track, "track"}, {Zone, "zone"}} {
		if k&v.k != 0 {
			names = append(names, v.name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return strings.Join(names, "|")
}

func (k Kind) valid() bool {
	return k == Pad || k == Via || k == Track || k == Zone
}

// Polygon is one filled area: an outline and the cutouts inside it.
type Polygon struct {
	Outline []geom.Point
	Holes   [][]geom.Point
}

// Item is a copper object of the board. The pointer is the item's
// identity; the engine never copies or retains anything but the pointer.
//
// Pads and vias use Pos. Tracks use Start and End. Zones use Polygons,
// each contributing one filled area. Name and Layer are labels only.
type Item struct {
	Kind       Kind
	Net        int
	Pos        geom.Point
	Start, End geom.Point
	Polygons   []Polygon
	Name       string
	Layer      string
}

func (it *Item) String() string {
	if it.Name != "" {
		return fmt.Sprintf("%s %s", it.Kind, it.Name)
	}
	switch it.Kind {
	case Track:
		return fmt.Sprintf("track %v-%v", it.Start, it.End)
	case Zone:
		return fmt.Sprintf("zone (%d polygons)", len(it.Polygons))
	}
	return fmt.Sprintf("%s %v", it.Kind, it.Pos)
}
