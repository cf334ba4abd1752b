package pcb

import (
	"fmt"
	"strconv"

	"github.com/OpenTraceLab/OpenTraceRatsnest/pkg/kicad/kicadsexp"
)

// S-expression navigation helpers

// sexpToSlice returns the elements of a list, or nil for atoms
func sexpToSlice(s kicadsexp.Sexp) []kicadsexp.Sexp {
	if l, ok := s.(*kicadsexp.List); ok {
		return l.Items()
	}
	return nil
}

// findNode searches for a child list with the given key (first symbol)
// Example: findNode(sexp, "at") finds (at 100 50) in a list
func findNode(s kicadsexp.Sexp, key string) (kicadsexp.Sexp, bool) {
	for _, item := range sexpToSlice(s) {
		if sub := sexpToSlice(item); len(sub) > 0 {
			if sym, ok := sub[0].(kicadsexp.Symbol); ok && string(sym) == key {
				return item, true
			}
		}
	}
	return nil, false
}

// findAllNodes finds all child lists with the given key
func findAllNodes(s kicadsexp.Sexp, key string) []kicadsexp.Sexp {
	var results []kicadsexp.Sexp
	for _, item := range sexpToSlice(s) {
		if sub := sexpToSlice(item); len(sub) > 0 {
			if sym, ok := sub[0].(kicadsexp.Symbol); ok && string(sym) == key {
				results = append(results, item)
			}
		}
	}
	return results
}

// getListItems returns all items in a list (excluding the first symbol/key)
// Example: getListItems((layers "F.Cu" "B.Cu")) returns ["F.Cu", "B.Cu"]
func getListItems(s kicadsexp.Sexp) []kicadsexp.Sexp {
	items := sexpToSlice(s)
	if len(items) <= 1 {
		return nil
	}
	return items[1:]
}

// Typed value extraction helpers

// getString extracts a string value at the given index in a list
// Index 0 is the key, 1 is first value, etc.
func getString(s kicadsexp.Sexp, index int) (string, error) {
	if s.IsLeaf() {
		return "", fmt.Errorf("expected list, got leaf")
	}

	items := sexpToSlice(s)
	if index < 0 || index >= len(items) {
		return "", fmt.Errorf("index %d out of bounds (length %d)", index, len(items))
	}

	if sym, ok := items[index].(kicadsexp.Symbol); ok {
		return string(sym), nil
	}

	return "", fmt.Errorf("expected symbol at index %d, got %T", index, items[index])
}

// getFloat extracts a float64 value at the given index
func getFloat(s kicadsexp.Sexp, index int) (float64, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", str, err)
	}

	return val, nil
}

// getInt extracts an int value at the given index
func getInt(s kicadsexp.Sexp, index int) (int, error) {
	str, err := getString(s, index)
	if err != nil {
		return 0, err
	}

	val, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("failed to parse int %q: %w", str, err)
	}

	return val, nil
}

// Domain-specific extraction helpers

// getPositionXY extracts the coordinates of (keyword X Y [angle]).
// Board files store millimetres.
func getPositionXY(s kicadsexp.Sexp) (Position, error) {
	x, err := getFloat(s, 1)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse X: %w", err)
	}

	y, err := getFloat(s, 2)
	if err != nil {
		return Position{}, fmt.Errorf("failed to parse Y: %w", err)
	}

	return Position{X: x, Y: y}, nil
}

// getPosition extracts a PositionAngle from an (at X Y [angle]) node.
// The angle is in degrees.
func getPosition(s kicadsexp.Sexp) (PositionAngle, error) {
	pos, err := getPositionXY(s)
	if err != nil {
		return PositionAngle{}, err
	}

	result := PositionAngle{Position: pos}
	if angle, err := getFloat(s, 3); err == nil {
		result.Angle = Angle(angle)
	}
	return result, nil
}

// getLayerNames extracts the names of a (layers ...) node
func getLayerNames(s kicadsexp.Sexp) LayerSet {
	var layers LayerSet
	for _, item := range getListItems(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && sym != "" {
			layers = append(layers, string(sym))
		}
	}
	return layers
}

// getNet resolves a (net N ...) child against the net map
func getNet(s kicadsexp.Sexp, netMap *NetMap) *Net {
	netNode, found := findNode(s, "net")
	if !found || netMap == nil {
		return nil
	}
	netNum, err := getInt(netNode, 1)
	if err != nil {
		return nil
	}
	net, _ := netMap.GetByNumber(netNum)
	return net
}

// hasSymbol checks if a list contains a specific symbol
func hasSymbol(s kicadsexp.Sexp, symbol string) bool {
	for _, item := range sexpToSlice(s) {
		if sym, ok := item.(kicadsexp.Symbol); ok && string(sym) == symbol {
			return true
		}
	}
	return false
}

// getNodeName returns the first symbol of a list (the node type/name)
func getNodeName(s kicadsexp.Sexp) (string, error) {
	if s.IsLeaf() {
		if sym, ok := s.(kicadsexp.Symbol); ok {
			return string(sym), nil
		}
		return "", fmt.Errorf("expected symbol leaf")
	}

	head := s.Head()
	if sym, ok := head.(kicadsexp.Symbol); ok {
		return string(sym), nil
	}

	return "", fmt.Errorf("expected symbol at head of list")
}
