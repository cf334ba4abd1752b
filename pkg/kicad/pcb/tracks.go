package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/kicad/kicadsexp"
)

// parseSegment extracts a track segment (copper trace). Arc tracks share
// the format with an extra (mid x y) that connectivity does not need.
// Expected format: (segment (start x y) (end x y) (width w) (layer "layer") (net n) ...)
func parseSegment(node kicadsexp.Sexp, netMap *NetMap) (*Track, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected segment list, got leaf")
	}

	track := &Track{
		Width: 0.15, // Default width
	}

	if startNode, found := findNode(node, "start"); found {
		start, err := getPositionXY(startNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse start position: %w", err)
		}
		track.Start = start
	} else {
		return nil, fmt.Errorf("missing required 'start' position")
	}

	if endNode, found := findNode(node, "end"); found {
		end, err := getPositionXY(endNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse end position: %w", err)
		}
		track.End = end
	} else {
		return nil, fmt.Errorf("missing required 'end' position")
	}

	if widthNode, found := findNode(node, "width"); found {
		width, err := getFloat(widthNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse width: %w", err)
		}
		track.Width = width
	}

	if layerNode, found := findNode(node, "layer"); found {
		layer, err := getString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer: %w", err)
		}
		track.Layer = layer
	} else {
		return nil, fmt.Errorf("missing required 'layer' field")
	}

	track.Net = getNet(node, netMap)

	// KiCad 6 writes a bare "locked" flag, KiCad 7 writes (locked yes)
	if _, found := findNode(node, "locked"); found || hasSymbol(node, "locked") {
		track.Locked = true
	}

	return track, nil
}

// parseVia extracts a via definition
// Expected format: (via (at x y) (size diameter) (drill diameter) (layers "L1" "L2") (net n) ...)
func parseVia(node kicadsexp.Sexp, netMap *NetMap) (*Via, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected via list, got leaf")
	}

	via := &Via{}

	if atNode, found := findNode(node, "at"); found {
		pos, err := getPositionXY(atNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse position: %w", err)
		}
		via.Position = pos
	} else {
		return nil, fmt.Errorf("missing required 'at' position")
	}

	if sizeNode, found := findNode(node, "size"); found {
		size, err := getFloat(sizeNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse size: %w", err)
		}
		via.Size = size
	} else {
		return nil, fmt.Errorf("missing required 'size' field")
	}

	if drillNode, found := findNode(node, "drill"); found {
		drill, err := getFloat(drillNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse drill: %w", err)
		}
		via.Drill = drill
	}

	if layersNode, found := findNode(node, "layers"); found {
		via.Layers = getLayerNames(layersNode)
	} else {
		return nil, fmt.Errorf("missing required 'layers' field")
	}

	via.Net = getNet(node, netMap)

	if _, found := findNode(node, "locked"); found || hasSymbol(node, "locked") {
		via.Locked = true
	}

	return via, nil
}

// parseTracks extracts all (segment ...) and (arc ...) tracks from the
// root node
func parseTracks(root kicadsexp.Sexp, netMap *NetMap) ([]Track, error) {
	var tracks []Track

	for _, key := range []string{"segment", "arc"} {
		for _, node := range findAllNodes(root, key) {
			track, err := parseSegment(node, netMap)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", key, err)
			}
			track.Arc = key == "arc"
			tracks = append(tracks, *track)
		}
	}

	return tracks, nil
}

// parseVias extracts all via definitions from the root node
func parseVias(root kicadsexp.Sexp, netMap *NetMap) ([]Via, error) {
	var vias []Via

	for _, viaNode := range findAllNodes(root, "via") {
		via, err := parseVia(viaNode, netMap)
		if err != nil {
			return nil, fmt.Errorf("failed to parse via: %w", err)
		}
		vias = append(vias, *via)
	}

	return vias, nil
}
