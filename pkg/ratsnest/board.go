package ratsnest

import (
	"fmt"
	"maps"
	"slices"
)

// AllNets selects every net in Recalculate.
const AllNets = -1

// Board routes item edits to per-net ratsnests. Nets are created on the
// first item that references them.
type Board struct {
	opts  []Option
	nets  map[int]*Net
	owner map[*Item]int // net code each item was added under
}

// NewBoard returns an empty board. The options apply to every net.
func NewBoard(opts ...Option) *Board {
	return &Board{
		opts:  opts,
		nets:  make(map[int]*Net),
		owner: make(map[*Item]int),
	}
}

// Add registers an item with the net named by its net code.
func (b *Board) Add(it *Item) error {
	if it.Net <= 0 {
		return fmt.Errorf("add %v: %w", it, ErrNoNet)
	}
	if _, ok := b.owner[it]; ok {
		return fmt.Errorf("add %v: %w", it, ErrItemExists)
	}
	if !it.Kind.valid() {
		return fmt.Errorf("add %v: %w", it, ErrUnknownKind)
	}

	net, ok := b.nets[it.Net]
	if !ok {
		net = NewNet(it.Net, b.opts...)
		b.nets[it.Net] = net
	}
	if err := net.AddItem(it); err != nil {
		return err
	}
	b.owner[it] = it.Net
	return nil
}

// Remove unregisters an item from the net it was added to.
func (b *Board) Remove(it *Item) error {
	code, ok := b.owner[it]
	if !ok {
		return fmt.Errorf("remove %v: %w", it, ErrItemNotFound)
	}
	if err := b.nets[code].RemoveItem(it); err != nil {
		return err
	}
	delete(b.owner, it)
	return nil
}

// Update re-registers an item after its geometry or net changed. An item
// moved to a code that is not positive leaves the ratsnest.
func (b *Board) Update(it *Item) error {
	if err := b.Remove(it); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	if it.Net <= 0 {
		return nil
	}
	return b.Add(it)
}

// Recalculate recomputes one net, or every dirty net for AllNets.
func (b *Board) Recalculate(code int) {
	if code == AllNets {
		for _, c := range b.NetCodes() {
			b.nets[c].Update()
		}
		return
	}
	if net, ok := b.GetNet(code); ok {
		net.Update()
	}
}

// GetNet returns the net with the given code. Code 0 is the unconnected
// net and is never tracked.
func (b *Board) GetNet(code int) (*Net, bool) {
	if code <= 0 {
		return nil, false
	}
	net, ok := b.nets[code]
	return net, ok
}

// NetCodes returns the codes of all tracked nets in ascending order.
func (b *Board) NetCodes() []int {
	return slices.Sorted(maps.Keys(b.nets))
}

// AreConnected reports whether two items are joined by copper.
func (b *Board) AreConnected(x, y *Item) bool {
	cx, okX := b.owner[x]
	cy, okY := b.owner[y]
	if !okX || !okY || cx != cy {
		return false
	}
	return b.nets[cx].connected(x, y)
}

// GetNetItems returns the items of the given kinds on a net.
func (b *Board) GetNetItems(code int, kinds Kind) []*Item {
	net, ok := b.GetNet(code)
	if !ok {
		return nil
	}
	return net.GetItems(kinds)
}

// GetConnectedItems returns the items of the given kinds joined to it by
// copper.
func (b *Board) GetConnectedItems(it *Item, kinds Kind) []*Item {
	code, ok := b.owner[it]
	if !ok {
		return nil
	}
	return b.nets[code].GetConnectedItems(it, kinds)
}

// GetUnconnected returns the missing links of every net ordered by net
// code, recomputing dirty nets.
func (b *Board) GetUnconnected() []Link {
	var links []Link
	for _, code := range b.NetCodes() {
		links = append(links, b.nets[code].Links()...)
	}
	return links
}

// UnconnectedCount returns the number of missing links on the board.
func (b *Board) UnconnectedCount() int {
	count := 0
	for _, code := range b.NetCodes() {
		count += len(b.nets[code].GetUnconnected())
	}
	return count
}
