package pcb

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/ratsnest"
)

// Items converts the copper of the board into ratsnest items: pads, then
// vias, tracks and zones, each in file order. Coordinates become integer
// nanometres and pads take the placement of their footprint. Every fill
// polygon of a zone becomes one zone polygon.
//
// Items without a net or on net 0 are skipped, as are items with a
// coordinate beyond geom.MaxCoord.
func (b *Board) Items() []*ratsnest.Item {
	var items []*ratsnest.Item
	log := ratsnest.Logger()

	for i := range b.Footprints {
		fp := &b.Footprints[i]
		for _, pad := range fp.Pads {
			if !onNet(pad.Net) {
				continue
			}
			pos, ok := toPoint(fp.TransformPosition(pad.Position))
			if !ok {
				log.Warn("pcb: pad outside coordinate range", "footprint", fp.Reference, "pad", pad.Number)
				continue
			}
			items = append(items, &ratsnest.Item{
				Kind:  ratsnest.Pad,
				Net:   pad.Net.Number,
				Pos:   pos,
				Name:  padName(fp, &pad),
				Layer: firstLayer(pad.Layers),
			})
		}
	}

	for _, via := range b.Vias {
		if !onNet(via.Net) {
			continue
		}
		pos, ok := toPoint(via.Position)
		if !ok {
			log.Warn("pcb: via outside coordinate range", "at", via.Position)
			continue
		}
		items = append(items, &ratsnest.Item{
			Kind:  ratsnest.Via,
			Net:   via.Net.Number,
			Pos:   pos,
			Layer: firstLayer(via.Layers),
		})
	}

	for _, track := range b.Tracks {
		if !onNet(track.Net) {
			continue
		}
		start, okStart := toPoint(track.Start)
		end, okEnd := toPoint(track.End)
		if !okStart || !okEnd {
			log.Warn("pcb: track outside coordinate range", "start", track.Start, "end", track.End)
			continue
		}
		items = append(items, &ratsnest.Item{
			Kind:  ratsnest.Track,
			Net:   track.Net.Number,
			Start: start,
			End:   end,
			Layer: track.Layer,
		})
	}

	for _, zone := range b.Zones {
		if !onNet(zone.Net) {
			continue
		}
		it := &ratsnest.Item{
			Kind:  ratsnest.Zone,
			Net:   zone.Net.Number,
			Name:  zone.Name,
			Layer: zone.Layer,
		}
		for _, fill := range zone.Fills {
			if outline, ok := toPoints(fill); ok && len(outline) >= 3 {
				it.Polygons = append(it.Polygons, ratsnest.Polygon{Outline: outline})
			} else if !ok {
				log.Warn("pcb: zone fill outside coordinate range", "zone", zone.Name, "layer", zone.Layer)
			}
		}
		if len(it.Polygons) > 0 {
			items = append(items, it)
		}
	}

	return items
}

// NetCode returns the number of the named net.
func (b *Board) NetCode(name string) (int, bool) {
	if net := b.GetNet(name); net != nil {
		return net.Number, true
	}
	return 0, false
}

func onNet(n *Net) bool {
	return n != nil && n.Number > 0
}

func padName(fp *Footprint, pad *Pad) string {
	if fp.Reference == "" {
		return "pad " + pad.Number
	}
	return fp.Reference + "-" + pad.Number
}

func firstLayer(layers LayerSet) string {
	if len(layers) == 0 {
		return ""
	}
	return layers[0]
}

// toNanometers rounds a millimetre value to the nanometre grid.
func toNanometers(mm float64) (int, bool) {
	nm := math.Round(mm * MMToNanometers)
	if math.IsNaN(nm) || math.Abs(nm) > geom.MaxCoord {
		return 0, false
	}
	return int(nm), true
}

func toPoint(p Position) (geom.Point, bool) {
	x, okX := toNanometers(p.X)
	y, okY := toNanometers(p.Y)
	return geom.Pt(x, y), okX && okY
}

func toPoints(ps []Position) ([]geom.Point, bool) {
	out := make([]geom.Point, 0, len(ps))
	for _, p := range ps {
		q, ok := toPoint(p)
		if !ok {
			return nil, false
		}
		out = append(out, q)
	}
	return out, true
}
