package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

// Store composes the character, spell and item repositories into the surface
// used by the sheet service and the HTTP API.
type Store struct {
	db *pgxpool.Pool

	Characters *CharacterRepository
	Spells     *SpellRepository
	Items      *ItemRepository
}

// NewStore builds a Store over one connection pool.
//
// Precondition: db must be a valid, open connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		db:         db,
		Characters: NewCharacterRepository(db),
		Spells:     NewSpellRepository(db),
		Items:      NewItemRepository(db),
	}
}

// GetCharacter loads the character together with its spells and items.
//
// Postcondition: Returns the Sheet or sheet.ErrCharacterNotFound.
func (s *Store) GetCharacter(ctx context.Context, id int64) (*sheet.Sheet, error) {
	c, err := s.Characters.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	spells, err := s.Spells.ListByCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.Items.ListByCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sheet.Sheet{Character: c, Spells: spells, Items: items}, nil
}

func (s *Store) CreateCharacter(ctx context.Context, c *character.Character) (*character.Character, error) {
	return s.Characters.Create(ctx, c)
}

func (s *Store) ListCharacters(ctx context.Context) ([]*character.Character, error) {
	return s.Characters.List(ctx)
}

func (s *Store) UpdateCharacter(ctx context.Context, c *character.Character) (*character.Character, error) {
	return s.Characters.Update(ctx, c)
}

func (s *Store) UpdateResources(ctx context.Context, id int64, p resource.Pool) (*character.Character, error) {
	return s.Characters.UpdateResources(ctx, id, p)
}

func (s *Store) DeleteCharacter(ctx context.Context, id int64) error {
	return s.Characters.Delete(ctx, id)
}

func (s *Store) CreateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error) {
	return s.Spells.Create(ctx, sp)
}

func (s *Store) GetSpell(ctx context.Context, id int64) (*spell.Spell, error) {
	return s.Spells.GetByID(ctx, id)
}

func (s *Store) UpdateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error) {
	return s.Spells.Update(ctx, sp)
}

func (s *Store) DeleteSpell(ctx context.Context, id int64) error {
	return s.Spells.Delete(ctx, id)
}

func (s *Store) CreateItem(ctx context.Context, it *inventory.Item) (*inventory.Item, error) {
	return s.Items.Create(ctx, it)
}

func (s *Store) GetItem(ctx context.Context, id int64) (*inventory.Item, error) {
	return s.Items.GetByID(ctx, id)
}

func (s *Store) UpdateItem(ctx context.Context, it *inventory.Item) (*inventory.Item, error) {
	return s.Items.Update(ctx, it)
}

func (s *Store) SetEquipped(ctx context.Context, id int64, equipped bool) (*inventory.Item, error) {
	return s.Items.SetEquipped(ctx, id, equipped)
}

func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	return s.Items.Delete(ctx, id)
}
