package pcb

import (
	"fmt"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/kicad/kicadsexp"
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/ratsnest"
)

// parsePad extracts a pad definition from a footprint
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n) ...)
func parsePad(node kicadsexp.Sexp, netMap *NetMap) (*Pad, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected pad list, got leaf")
	}

	pad := &Pad{}

	number, err := getString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	pad.Number = number

	// thru_hole, smd, connect, np_thru_hole
	padType, err := getString(node, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}
	pad.Type = padType

	// circle, rect, oval, roundrect, trapezoid, custom
	shape, err := getString(node, 3)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}
	pad.Shape = shape

	if atNode, found := findNode(node, "at"); found {
		pos, err := getPosition(atNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pad position: %w", err)
		}
		pad.Position = pos
	} else {
		return nil, fmt.Errorf("missing required 'at' position")
	}

	if sizeNode, found := findNode(node, "size"); found {
		width, err := getFloat(sizeNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pad width: %w", err)
		}
		height, err := getFloat(sizeNode, 2)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pad height: %w", err)
		}
		pad.Size = Size{Width: width, Height: height}
	} else {
		return nil, fmt.Errorf("missing required 'size' field")
	}

	// Drill can be just a number or (drill oval w h)
	if drillNode, found := findNode(node, "drill"); found {
		if drill, err := getFloat(drillNode, 1); err == nil {
			pad.Drill = drill
		} else if drill, err := getFloat(drillNode, 2); err == nil {
			pad.Drill = drill
		}
	}

	if layersNode, found := findNode(node, "layers"); found {
		pad.Layers = getLayerNames(layersNode)
	} else {
		return nil, fmt.Errorf("missing required 'layers' field")
	}

	pad.Net = getNet(node, netMap)

	return pad, nil
}

// parseFootprint extracts a footprint (component) definition
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func parseFootprint(node kicadsexp.Sexp, netMap *NetMap) (*Footprint, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected footprint list, got leaf")
	}

	footprint := &Footprint{}

	fpName, err := getString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}

	// Example: "Resistor_SMD:R_0603_1608Metric"
	if lib, name, ok := strings.Cut(fpName, ":"); ok && lib != "" {
		footprint.Library = lib
		footprint.Name = name
	} else {
		footprint.Name = fpName
	}

	if layerNode, found := findNode(node, "layer"); found {
		layer, err := getString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer: %w", err)
		}
		footprint.Layer = layer
	} else {
		return nil, fmt.Errorf("missing required 'layer' field")
	}

	if atNode, found := findNode(node, "at"); found {
		pos, err := getPosition(atNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse position: %w", err)
		}
		footprint.Position = pos
	} else {
		return nil, fmt.Errorf("missing required 'at' position")
	}

	// KiCad 8 stores Reference and Value as properties, older files as fp_text
	for _, propNode := range findAllNodes(node, "property") {
		propName, err := getString(propNode, 1)
		if err != nil {
			continue
		}
		propValue, err := getString(propNode, 2)
		if err != nil {
			continue
		}

		switch propName {
		case "Reference":
			footprint.Reference = propValue
		case "Value":
			footprint.Value = propValue
		}
	}
	for _, textNode := range findAllNodes(node, "fp_text") {
		kind, err := getString(textNode, 1)
		if err != nil {
			continue
		}
		text, err := getString(textNode, 2)
		if err != nil {
			continue
		}
		switch {
		case kind == "reference" && footprint.Reference == "":
			footprint.Reference = text
		case kind == "value" && footprint.Value == "":
			footprint.Value = text
		}
	}

	for _, padNode := range findAllNodes(node, "pad") {
		pad, err := parsePad(padNode, netMap)
		if err != nil {
			ratsnest.Logger().Warn("pcb: skipping pad", "footprint", fpName, "err", err)
			continue
		}
		footprint.Pads = append(footprint.Pads, *pad)
	}

	return footprint, nil
}

// parseFootprints extracts all footprint definitions from the root node.
// Footprints that fail to parse are logged and skipped.
func parseFootprints(root kicadsexp.Sexp, netMap *NetMap) []Footprint {
	var footprints []Footprint

	for _, fpNode := range findAllNodes(root, "footprint") {
		footprint, err := parseFootprint(fpNode, netMap)
		if err != nil {
			ratsnest.Logger().Warn("pcb: skipping footprint", "err", err)
			continue
		}
		footprints = append(footprints, *footprint)
	}

	return footprints
}
