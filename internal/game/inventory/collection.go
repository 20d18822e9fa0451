package inventory

import (
	"errors"
	"fmt"
	"sort"
)

// ErrItemNotFound is returned when an item ID is not in the collection.
var ErrItemNotFound = errors.New("item not found")

// ErrDuplicateItem is returned when adding an item whose ID is already present.
var ErrDuplicateItem = errors.New("duplicate item")

// Collection is a character's items keyed by item ID.
//
// Invariant: item IDs are unique. Not safe for concurrent use.
type Collection struct {
	items map[int64]Item
}

// NewCollection builds a Collection from items.
//
// Postcondition: returns ErrDuplicateItem if two items share an ID.
func NewCollection(items []Item) (*Collection, error) {
	c := &Collection{items: make(map[int64]Item, len(items))}
	for _, it := range items {
		if err := c.Add(it); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add inserts it.
//
// Postcondition: Get(it.ID) returns it; returns ErrDuplicateItem if the ID exists.
func (c *Collection) Add(it Item) error {
	if _, exists := c.items[it.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateItem, it.ID)
	}
	c.items[it.ID] = it
	return nil
}

// Remove deletes the item with the given ID.
func (c *Collection) Remove(id int64) error {
	if _, ok := c.items[id]; !ok {
		return fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	delete(c.items, id)
	return nil
}

// Get returns the item with the given ID.
func (c *Collection) Get(id int64) (Item, bool) {
	it, ok := c.items[id]
	return it, ok
}

// Len returns the number of items.
func (c *Collection) Len() int { return len(c.items) }

// ToggleEquip flips the equipped flag of the item with the given ID and returns
// the updated item.
func (c *Collection) ToggleEquip(id int64) (Item, error) {
	it, ok := c.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %d", ErrItemNotFound, id)
	}
	it.Equipped = !it.Equipped
	c.items[id] = it
	return it, nil
}

// All returns every item ordered by ID.
func (c *Collection) All() []Item {
	return c.filter(func(Item) bool { return true })
}

// Equipped returns the equipped items ordered by ID.
func (c *Collection) Equipped() []Item {
	return c.filter(func(it Item) bool { return it.Equipped })
}

// Unequipped returns the carried but unequipped items ordered by ID.
func (c *Collection) Unequipped() []Item {
	return c.filter(func(it Item) bool { return !it.Equipped })
}

// TotalWeight sums weight times quantity over all items.
func (c *Collection) TotalWeight() float64 {
	var w float64
	for _, it := range c.items {
		w += it.Weight * float64(it.Quantity)
	}
	return w
}

// TotalValue sums the total value of all items.
func (c *Collection) TotalValue() int {
	var v int
	for _, it := range c.items {
		v += it.TotalValue
	}
	return v
}

// ArmorClassBonus sums the armor class bonus of equipped items.
func (c *Collection) ArmorClassBonus() int {
	var b int
	for _, it := range c.items {
		if it.Equipped {
			b += it.ArmorClassBonus
		}
	}
	return b
}

func (c *Collection) filter(keep func(Item) bool) []Item {
	out := make([]Item, 0, len(c.items))
	for _, it := range c.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
