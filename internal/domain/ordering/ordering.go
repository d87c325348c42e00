// Package ordering implements order_index maintenance for sibling records:
// trailing-index append and pairwise swap with a neighbour.
package ordering

import (
	"fmt"
	"sort"
	"strings"
)

// Item is a record ordered by an integer index among its siblings.
type Item interface {
	GetID() string
	GetOrderIndex() int
	SetOrderIndex(int)
}

// Direction is the way a reorder moves an item.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection accepts "up" or "down" case-insensitively.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	}
	return "", fmt.Errorf("direction must be %q or %q", Up, Down)
}

// ErrItemNotFound is returned when the id is not among the items.
var ErrItemNotFound = fmt.Errorf("item not found")

// Sort orders items by index ascending. Items sharing an index keep their
// relative order.
func Sort[T Item](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].GetOrderIndex() < items[j].GetOrderIndex()
	})
}

// NextIndex is the index a new trailing item receives: max+1, or 0 when empty.
func NextIndex[T Item](items []T) int {
	if len(items) == 0 {
		return 0
	}
	max := items[0].GetOrderIndex()
	for _, it := range items[1:] {
		if it.GetOrderIndex() > max {
			max = it.GetOrderIndex()
		}
	}
	return max + 1
}

// Swap is the outcome of a reorder.
type Swap[T Item] struct {
	Moved    T
	Neighbor T
	// Changed is false when the item was already at the boundary.
	Changed bool
}

// Move sorts items, then swaps the index of the item with id and its
// immediate neighbour in direction dir. Moving the first item up or the last
// item down changes nothing. items is re-sorted before returning.
func Move[T Item](items []T, id string, dir Direction) (Swap[T], error) {
	var result Swap[T]
	Sort(items)

	pos := -1
	for i, it := range items {
		if it.GetID() == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return result, ErrItemNotFound
	}
	result.Moved = items[pos]

	target := pos - 1
	if dir == Down {
		target = pos + 1
	}
	if target < 0 || target >= len(items) {
		return result, nil
	}

	neighbor := items[target]
	a, b := result.Moved.GetOrderIndex(), neighbor.GetOrderIndex()
	result.Moved.SetOrderIndex(b)
	neighbor.SetOrderIndex(a)
	result.Neighbor = neighbor
	result.Changed = true

	// A swap between equal indexes leaves the sort unchanged; swap positions
	// so the move is still visible.
	if a == b {
		items[pos], items[target] = items[target], items[pos]
		return result, nil
	}
	Sort(items)
	return result, nil
}
