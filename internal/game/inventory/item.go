// Package inventory models a character's items and the equip/unequip toggle.
package inventory

import (
	"errors"
	"fmt"
)

// Type constants for Item.Type.
const (
	TypeConsumable = "consumable"
	TypeWeapon     = "weapon"
	TypeArmor      = "armor"
	TypeAccessory  = "accessory"
	TypeTool       = "tool"
	TypeMisc       = "misc"
)

// validTypes is the set of valid item types.
var validTypes = map[string]bool{
	TypeConsumable: true,
	TypeWeapon:     true,
	TypeArmor:      true,
	TypeAccessory:  true,
	TypeTool:       true,
	TypeMisc:       true,
}

// ErrInvalidItem is returned when an item violates its invariants.
var ErrInvalidItem = errors.New("invalid item")

// Item is a single inventory entry owned by a character.
type Item struct {
	ID          int64  `json:"id"`
	CharacterID int64  `json:"character_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"item_type"`

	Quantity   int     `json:"quantity"`
	UnitPrice  int     `json:"unit_price"`
	TotalValue int     `json:"total_value"`
	Weight     float64 `json:"weight"`

	Equipped        bool   `json:"is_equipped"`
	ArmorClassBonus int    `json:"armor_class_bonus"`
	DamageDice      string `json:"damage_dice"`
	MagicalEffects  string `json:"magical_effects"`
}

// Normalize applies creation defaults: consumable type, quantity 1, and a total
// value recomputed from quantity and unit price.
func (i *Item) Normalize() {
	if i.Type == "" {
		i.Type = TypeConsumable
	}
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	i.TotalValue = i.Quantity * i.UnitPrice
}

// Validate checks that the Item satisfies its invariants.
//
// Postcondition: returns nil iff all fields are valid; otherwise the error wraps
// ErrInvalidItem.
func (i *Item) Validate() error {
	var errs []error
	if i.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !validTypes[i.Type] {
		errs = append(errs, fmt.Errorf("item_type must be one of consumable, weapon, armor, accessory, tool, misc; got %q", i.Type))
	}
	if i.Quantity < 1 {
		errs = append(errs, fmt.Errorf("quantity must be >= 1, got %d", i.Quantity))
	}
	if i.UnitPrice < 0 {
		errs = append(errs, fmt.Errorf("unit_price must be >= 0, got %d", i.UnitPrice))
	}
	if i.Weight < 0 {
		errs = append(errs, fmt.Errorf("weight must be >= 0, got %g", i.Weight))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %v", ErrInvalidItem, i.Name, errs)
	}
	return nil
}
