// Package memory provides an in-memory character store for development and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

// Store keeps characters, spells and items in maps. Values are copied on the way
// in and out so callers never share memory with the store. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	nextID     int64
	characters map[int64]*character.Character
	spells     map[int64]*spell.Spell
	items      map[int64]*inventory.Item
	now        func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		characters: make(map[int64]*character.Character),
		spells:     make(map[int64]*spell.Spell),
		items:      make(map[int64]*inventory.Item),
		now:        time.Now,
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// CreateCharacter stores a copy of c with a new ID and timestamps.
func (s *Store) CreateCharacter(_ context.Context, c *character.Character) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	cp.ID = s.id()
	cp.CreatedAt = s.now()
	cp.UpdatedAt = cp.CreatedAt
	s.characters[cp.ID] = &cp
	out := cp
	return &out, nil
}

// ListCharacters returns every character ordered by ID.
func (s *Store) ListCharacters(_ context.Context) ([]*character.Character, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*character.Character, 0, len(s.characters))
	for _, c := range s.characters {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCharacter returns the character with its spells and items.
func (s *Store) GetCharacter(_ context.Context, id int64) (*sheet.Sheet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.characters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, id)
	}
	cp := *c
	sh := &sheet.Sheet{
		Character: &cp,
		Spells:    make([]*spell.Spell, 0),
		Items:     make([]*inventory.Item, 0),
	}
	for _, sp := range s.spells {
		if sp.CharacterID == id {
			spc := *sp
			sh.Spells = append(sh.Spells, &spc)
		}
	}
	for _, it := range s.items {
		if it.CharacterID == id {
			itc := *it
			sh.Items = append(sh.Items, &itc)
		}
	}
	sort.Slice(sh.Spells, func(i, j int) bool { return sh.Spells[i].ID < sh.Spells[j].ID })
	sort.Slice(sh.Items, func(i, j int) bool { return sh.Items[i].ID < sh.Items[j].ID })
	return sh, nil
}

// UpdateCharacter replaces the descriptive fields of the stored character. ID,
// CreatedAt and the resource pool are kept; the pool changes only through
// UpdateResources.
func (s *Store) UpdateCharacter(_ context.Context, c *character.Character) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.characters[c.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, c.ID)
	}
	cp := *c
	cp.CreatedAt = old.CreatedAt
	cp.Pool = old.Pool
	cp.UpdatedAt = s.now()
	s.characters[cp.ID] = &cp
	out := cp
	return &out, nil
}

// UpdateResources replaces the pool of the character.
func (s *Store) UpdateResources(_ context.Context, id int64, p resource.Pool) (*character.Character, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.characters[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, id)
	}
	c.Pool = p
	c.UpdatedAt = s.now()
	out := *c
	return &out, nil
}

// DeleteCharacter removes the character and everything it owns.
func (s *Store) DeleteCharacter(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[id]; !ok {
		return fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, id)
	}
	delete(s.characters, id)
	for sid, sp := range s.spells {
		if sp.CharacterID == id {
			delete(s.spells, sid)
		}
	}
	for iid, it := range s.items {
		if it.CharacterID == id {
			delete(s.items, iid)
		}
	}
	return nil
}

// CreateSpell stores a copy of sp with a new ID.
//
// Precondition: sp.CharacterID must reference a stored character.
func (s *Store) CreateSpell(_ context.Context, sp *spell.Spell) (*spell.Spell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[sp.CharacterID]; !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, sp.CharacterID)
	}
	cp := *sp
	cp.ID = s.id()
	s.spells[cp.ID] = &cp
	out := cp
	return &out, nil
}

// GetSpell returns a spell by ID.
func (s *Store) GetSpell(_ context.Context, id int64) (*spell.Spell, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sp, ok := s.spells[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrSpellNotFound, id)
	}
	out := *sp
	return &out, nil
}

// UpdateSpell replaces a spell, keeping its owner.
func (s *Store) UpdateSpell(_ context.Context, sp *spell.Spell) (*spell.Spell, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.spells[sp.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrSpellNotFound, sp.ID)
	}
	cp := *sp
	cp.CharacterID = old.CharacterID
	s.spells[cp.ID] = &cp
	out := cp
	return &out, nil
}

// DeleteSpell removes a spell.
func (s *Store) DeleteSpell(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spells[id]; !ok {
		return fmt.Errorf("%w: %d", sheet.ErrSpellNotFound, id)
	}
	delete(s.spells, id)
	return nil
}

// CreateItem stores a copy of it with a new ID.
//
// Precondition: it.CharacterID must reference a stored character.
func (s *Store) CreateItem(_ context.Context, it *inventory.Item) (*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.characters[it.CharacterID]; !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, it.CharacterID)
	}
	cp := *it
	cp.ID = s.id()
	s.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

// GetItem returns an item by ID.
func (s *Store) GetItem(_ context.Context, id int64) (*inventory.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrItemNotFound, id)
	}
	out := *it
	return &out, nil
}

// UpdateItem replaces an item, keeping its owner.
func (s *Store) UpdateItem(_ context.Context, it *inventory.Item) (*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.items[it.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrItemNotFound, it.ID)
	}
	cp := *it
	cp.CharacterID = old.CharacterID
	s.items[cp.ID] = &cp
	out := cp
	return &out, nil
}

// SetEquipped sets the equipped flag of an item.
func (s *Store) SetEquipped(_ context.Context, id int64, equipped bool) (*inventory.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", sheet.ErrItemNotFound, id)
	}
	it.Equipped = equipped
	out := *it
	return &out, nil
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return fmt.Errorf("%w: %d", sheet.ErrItemNotFound, id)
	}
	delete(s.items, id)
	return nil
}
