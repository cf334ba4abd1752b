package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/kicad/kicadsexp"
	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/ratsnest"
)

// parseZone extracts a zone (copper fill) definition
// Returns a slice because multi-layer zones create one zone per layer
func parseZone(node kicadsexp.Sexp, netMap *NetMap) ([]Zone, error) {
	if node.IsLeaf() {
		return nil, fmt.Errorf("expected zone list, got leaf")
	}

	base := Zone{Net: getNet(node, netMap)}

	if nameNode, found := findNode(node, "name"); found {
		base.Name, _ = getString(nameNode, 1)
	}

	if polyNode, found := findNode(node, "polygon"); found {
		if ptsNode, found := findNode(polyNode, "pts"); found {
			base.Outline = parsePoints(ptsNode)
		}
	}

	var zoneLayers []string
	if layerNode, found := findNode(node, "layer"); found {
		if layer, err := getString(layerNode, 1); err == nil {
			zoneLayers = append(zoneLayers, layer)
		}
	}
	// (layers ...) overrides a single layer
	multiLayer := false
	if layersNode, found := findNode(node, "layers"); found {
		zoneLayers = getLayerNames(layersNode)
		multiLayer = true
	}
	if len(zoneLayers) == 0 {
		return nil, fmt.Errorf("zone has no layer")
	}

	// A filled_polygon names its own layer on multi-layer zones
	fillsByLayer := make(map[string][][]Position)
	for _, fpNode := range findAllNodes(node, "filled_polygon") {
		fillLayer := zoneLayers[0]
		if layerNode, found := findNode(fpNode, "layer"); found {
			if layer, err := getString(layerNode, 1); err == nil {
				fillLayer = layer
			}
		} else if multiLayer {
			continue
		}

		if ptsNode, found := findNode(fpNode, "pts"); found {
			fillsByLayer[fillLayer] = append(fillsByLayer[fillLayer], parsePoints(ptsNode))
		}
	}

	zones := make([]Zone, 0, len(zoneLayers))
	for _, layer := range zoneLayers {
		zone := base
		zone.Layer = layer
		zone.Fills = fillsByLayer[layer]
		zones = append(zones, zone)
	}
	return zones, nil
}

// parsePoints extracts xy coordinate pairs from a pts node. Arc entries
// of the outline are not copper fill and are skipped.
func parsePoints(ptsNode kicadsexp.Sexp) []Position {
	var points []Position

	for _, item := range getListItems(ptsNode) {
		if item.IsLeaf() {
			continue
		}
		if first, err := getString(item, 0); err != nil || first != "xy" {
			continue
		}
		if p, err := getPositionXY(item); err == nil {
			points = append(points, p)
		}
	}

	return points
}

// parseZones extracts all zone definitions. Zones that fail to parse are
// logged and skipped.
func parseZones(root kicadsexp.Sexp, netMap *NetMap) []Zone {
	zoneNodes := findAllNodes(root, "zone")
	zones := make([]Zone, 0, len(zoneNodes))

	for i, zoneNode := range zoneNodes {
		parsed, err := parseZone(zoneNode, netMap)
		if err != nil {
			ratsnest.Logger().Warn("pcb: skipping zone", "index", i, "err", err)
			continue
		}
		for _, zone := range parsed {
			if len(zone.Fills) == 0 {
				ratsnest.Logger().Debug("pcb: zone is not filled", "index", i, "layer", zone.Layer)
			}
		}
		zones = append(zones, parsed...)
	}

	return zones
}
