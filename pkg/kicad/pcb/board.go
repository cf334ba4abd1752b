package pcb

import "math"

// Board holds the copper of a KiCad PCB
type Board struct {
	Version    int         // File format version
	Generator  string      // Generator info (e.g., "pcbnew")
	General    General     // General board properties
	Layers     []Layer     // Layer definitions
	Nets       []Net       // Electrical nets
	Footprints []Footprint // Component footprints
	Tracks     []Track     // Track segments and arcs
	Vias       []Via       // Vias
	Zones      []Zone      // Filled zones, one per layer
}

// General contains general board properties
type General struct {
	Thickness float64 // Board thickness in mm
	Title     string  // Board title
	Date      string  // Design date
	Revision  string  // Board revision
	Company   string  // Company name
}

// Footprint represents a component footprint
type Footprint struct {
	Library   string        // Library name
	Name      string        // Footprint name
	Layer     string        // Layer (F.Cu or B.Cu typically)
	Position  PositionAngle // Position and rotation
	Pads      []Pad         // Pads
	Reference string        // Reference designator (e.g., "R1")
	Value     string        // Component value
}

// Pad represents a footprint pad. Its position is relative to the
// footprint.
type Pad struct {
	Number   string        // Pad number/name
	Type     string        // Pad type (thru_hole, smd, etc.)
	Shape    string        // Pad shape (circle, rect, oval, etc.)
	Position PositionAngle // Position and rotation
	Size     Size          // Pad size
	Drill    float64       // Drill diameter (0 for SMD)
	Layers   LayerSet      // Layers the pad appears on
	Net      *Net          // Connected net (if any)
}

// Track represents a copper track segment. Arc tracks keep only their
// endpoints.
type Track struct {
	Start  Position // Start point
	End    Position // End point
	Width  float64  // Track width in mm
	Layer  string   // Layer name
	Net    *Net     // Connected net
	Locked bool     // Whether track is locked
	Arc    bool     // Parsed from an (arc ...) track
}

// Via represents a via
type Via struct {
	Position Position // Via position
	Size     float64  // Via diameter
	Drill    float64  // Drill diameter
	Layers   LayerSet // Layer pair
	Net      *Net     // Connected net
	Locked   bool     // Whether via is locked
}

// Zone represents a filled copper zone on one layer
type Zone struct {
	Name    string       // Zone name, often empty
	Net     *Net         // Connected net
	Layer   string       // Layer name
	Outline []Position   // Zone outline polygon
	Fills   [][]Position // Filled polygons, one per connected area
}

// GetNet returns a net by name, or nil if not found
func (b *Board) GetNet(name string) *Net {
	for i := range b.Nets {
		if b.Nets[i].Name == name {
			return &b.Nets[i]
		}
	}
	return nil
}

// NetName returns the name of the net with the given number.
func (b *Board) NetName(number int) string {
	for _, n := range b.Nets {
		if n.Number == number {
			return n.Name
		}
	}
	return ""
}

// GetNetPads returns all pads connected to a specific net
func (b *Board) GetNetPads(netName string) []Pad {
	var pads []Pad
	for _, fp := range b.Footprints {
		for _, pad := range fp.Pads {
			if pad.Net != nil && pad.Net.Name == netName {
				pads = append(pads, pad)
			}
		}
	}
	return pads
}

// TransformPosition transforms a relative position by footprint position and rotation
func (fp *Footprint) TransformPosition(relPos PositionAngle) Position {
	x, y := relPos.X, relPos.Y

	// y points down, so a positive angle turns clockwise in these axes
	if fp.Position.Angle != 0 {
		angleRad := -float64(fp.Position.Angle) * math.Pi / 180.0
		cos := math.Cos(angleRad)
		sin := math.Sin(angleRad)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	x += fp.Position.X
	y += fp.Position.Y

	return Position{X: x, Y: y}
}
