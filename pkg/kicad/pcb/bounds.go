package pcb

// BoundingBox represents a rectangular boundary in millimetres
type BoundingBox struct {
	Min Position // Minimum (top-left) corner
	Max Position // Maximum (bottom-right) corner
}

// NewBoundingBox creates an empty bounding box
func NewBoundingBox() BoundingBox {
	return BoundingBox{
		Min: Position{X: 1e9, Y: 1e9},
		Max: Position{X: -1e9, Y: -1e9},
	}
}

// IsEmpty checks if the bounding box is empty
func (bb BoundingBox) IsEmpty() bool {
	return bb.Min.X > bb.Max.X || bb.Min.Y > bb.Max.Y
}

// Expand expands the bounding box to include a position
func (bb *BoundingBox) Expand(pos Position) {
	bb.Min.X = min(bb.Min.X, pos.X)
	bb.Min.Y = min(bb.Min.Y, pos.Y)
	bb.Max.X = max(bb.Max.X, pos.X)
	bb.Max.Y = max(bb.Max.Y, pos.Y)
}

// Width returns the width of the bounding box
func (bb BoundingBox) Width() float64 {
	return bb.Max.X - bb.Min.X
}

// Height returns the height of the bounding box
func (bb BoundingBox) Height() float64 {
	return bb.Max.Y - bb.Min.Y
}

// CopperBounds calculates the bounding box of every coordinate that
// becomes a ratsnest node: pad and via centres, track ends and zone fill
// vertices.
func (b *Board) CopperBounds() BoundingBox {
	bbox := NewBoundingBox()

	for _, track := range b.Tracks {
		bbox.Expand(track.Start)
		bbox.Expand(track.End)
	}
	for _, via := range b.Vias {
		bbox.Expand(via.Position)
	}
	for i := range b.Footprints {
		fp := &b.Footprints[i]
		for _, pad := range fp.Pads {
			bbox.Expand(fp.TransformPosition(pad.Position))
		}
	}
	for _, zone := range b.Zones {
		for _, fill := range zone.Fills {
			for _, p := range fill {
				bbox.Expand(p)
			}
		}
	}

	return bbox
}
