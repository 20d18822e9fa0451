// Package sheet applies the resource, spell and rest rules to stored characters.
//
// The rules themselves are pure; this package loads the current state from a
// Store, evaluates a rule, and asks the Store to persist the result.
package sheet

import (
	"context"
	"errors"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
)

// Lookup errors returned by Store implementations.
var (
	ErrCharacterNotFound = errors.New("character not found")
	ErrSpellNotFound     = errors.New("spell not found")
	ErrItemNotFound      = errors.New("item not found")
)

// ErrPersistence wraps any failure of the Store to accept a write. The caller's
// view of the pool is unchanged when it is returned.
var ErrPersistence = errors.New("persistence failure")

// Sheet is the full read model of one character.
type Sheet struct {
	Character *character.Character `json:"character"`
	Spells    []*spell.Spell       `json:"spells"`
	Items     []*inventory.Item    `json:"items"`
}

// Store persists and retrieves characters and their spells and items. It holds no
// rules; every decision is made before a write is requested.
type Store interface {
	// GetCharacter returns the character with its spells and items, or
	// ErrCharacterNotFound.
	GetCharacter(ctx context.Context, id int64) (*Sheet, error)
	// UpdateResources replaces the six pool fields and returns the updated
	// character, or ErrCharacterNotFound.
	UpdateResources(ctx context.Context, id int64, pool resource.Pool) (*character.Character, error)
	// GetSpell returns a spell by ID, or ErrSpellNotFound.
	GetSpell(ctx context.Context, id int64) (*spell.Spell, error)
	// GetItem returns an item by ID, or ErrItemNotFound.
	GetItem(ctx context.Context, id int64) (*inventory.Item, error)
	// SetEquipped sets the equipped flag of an item, or returns ErrItemNotFound.
	SetEquipped(ctx context.Context, id int64, equipped bool) (*inventory.Item, error)
}
