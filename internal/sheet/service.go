package sheet

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/dice"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
)

// Service runs sheet operations against a Store. At most one mutation per
// character is in flight at a time. All methods are safe for concurrent use.
type Service struct {
	store  Store
	rules  rest.Rules
	logger *zap.Logger
	locks  *keyedMutex
	dice   dice.Source
}

// Option configures a Service.
type Option func(*Service)

// WithDiceSource sets the randomness used for damage rolls. The default is
// crypto/rand.
func WithDiceSource(src dice.Source) Option {
	return func(s *Service) { s.dice = src }
}

// NewService creates a Service.
//
// Precondition: store and logger must be non-nil; rules must be valid.
func NewService(store Store, rules rest.Rules, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		rules:  rules,
		logger: logger,
		locks:  newKeyedMutex(),
		dice:   dice.NewCryptoSource(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CastOutcome is the result of a cast request. Character is the post-cast
// snapshot on success and the unchanged character otherwise. Damage is set only
// for a successful cast of a spell whose damage dice parse.
type CastOutcome struct {
	Character *character.Character
	Spell     *spell.Spell
	Result    spell.CastResult
	Damage    *dice.Result
}

// ResourceUpdate is a partial update of the pool; nil fields are left alone.
type ResourceUpdate struct {
	CurrentAP  *int
	MaxAP      *int
	CurrentMP  *int
	MaxMP      *int
	CurrentHEX *int
	MaxHEX     *int
}

// Empty reports whether the update names no field.
func (u ResourceUpdate) Empty() bool {
	return u.CurrentAP == nil && u.MaxAP == nil &&
		u.CurrentMP == nil && u.MaxMP == nil &&
		u.CurrentHEX == nil && u.MaxHEX == nil
}

// Sheet returns the character with its spells and items.
func (s *Service) Sheet(ctx context.Context, id int64) (*Sheet, error) {
	return s.store.GetCharacter(ctx, id)
}

// CastSpell casts the spell with the given ID for the character that owns it.
//
// Postcondition: an unaffordable spell yields a non-nil outcome with
// Result.Success false and nothing persisted; lookup failures and ErrPersistence
// are returned as errors.
func (s *Service) CastSpell(ctx context.Context, spellID int64) (*CastOutcome, error) {
	sp, err := s.store.GetSpell(ctx, spellID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(sp.CharacterID)
	defer unlock()

	sh, err := s.store.GetCharacter(ctx, sp.CharacterID)
	if err != nil {
		return nil, err
	}
	c := sh.Character

	next, res := spell.Cast(c.Pool, *sp)
	if !res.Success {
		s.logger.Info("cast rejected",
			zap.Int64("character_id", c.ID),
			zap.Int64("spell_id", sp.ID),
			zap.String("spell", sp.Name),
			zap.Error(res.Reason),
		)
		return &CastOutcome{Character: c, Spell: sp, Result: res}, nil
	}

	updated, err := s.persist(ctx, c.ID, next)
	if err != nil {
		return nil, err
	}
	out := &CastOutcome{Character: updated, Spell: sp, Result: res, Damage: s.rollDamage(sp)}
	s.logger.Info("spell cast",
		zap.Int64("character_id", c.ID),
		zap.Int64("spell_id", sp.ID),
		zap.String("spell", sp.Name),
		zap.Int("ap_spent", res.APSpent),
		zap.Int("mp_spent", res.MPSpent),
		zap.Int("hex_gained", res.HexGained),
		zap.Bool("hex_overflow", res.HexOverflow),
	)
	return out, nil
}

// rollDamage rolls the spell's damage dice. Free-text dice such as "see notes"
// are not rolled.
func (s *Service) rollDamage(sp *spell.Spell) *dice.Result {
	if sp.DamageDice == "" {
		return nil
	}
	res, err := dice.NewRoller(s.dice, s.logger).RollExpr(sp.DamageDice)
	if err != nil {
		s.logger.Debug("damage dice not rolled", zap.Int64("spell_id", sp.ID), zap.Error(err))
		return nil
	}
	return &res
}

// Rest applies a rest of type t to the character.
func (s *Service) Rest(ctx context.Context, id int64, t rest.Type) (*character.Character, error) {
	return s.mutate(ctx, id, "rest", func(p resource.Pool) (resource.Pool, error) {
		return rest.Apply(p, t, s.rules)
	})
}

// SetResource sets one current value from raw user input. Non-numeric input is
// treated as 0 and logged.
func (s *Service) SetResource(ctx context.Context, id int64, f resource.Field, raw string) (*character.Character, error) {
	if _, ok := resource.ParseValue(raw); !ok {
		s.logger.Warn("invalid numeric input treated as 0",
			zap.Int64("character_id", id),
			zap.String("field", string(f)),
			zap.String("raw", raw),
		)
	}
	return s.mutate(ctx, id, "set_resource", func(p resource.Pool) (resource.Pool, error) {
		return resource.SetResource(p, f, raw)
	})
}

// AdjustResource increments or decrements one current value, clamped.
func (s *Service) AdjustResource(ctx context.Context, id int64, f resource.Field, delta int) (*character.Character, error) {
	return s.mutate(ctx, id, "adjust_resource", func(p resource.Pool) (resource.Pool, error) {
		return resource.Adjust(p, f, delta)
	})
}

// UpdateResources applies a partial pool update. Maxima are applied first so
// that current values are clamped against the new range.
func (s *Service) UpdateResources(ctx context.Context, id int64, u ResourceUpdate) (*character.Character, error) {
	return s.mutate(ctx, id, "update_resources", func(p resource.Pool) (resource.Pool, error) {
		return ApplyUpdate(p, u)
	})
}

// ApplyUpdate applies u to p without persisting it.
func ApplyUpdate(p resource.Pool, u ResourceUpdate) (resource.Pool, error) {
	var err error
	maxima := []struct {
		key string
		v   *int
	}{{"max_ap", u.MaxAP}, {"max_mp", u.MaxMP}, {"max_hex", u.MaxHEX}}
	for _, m := range maxima {
		if m.v == nil {
			continue
		}
		if p, err = character.SetMax(p, m.key, *m.v); err != nil {
			return p, err
		}
	}
	currents := []struct {
		f resource.Field
		v *int
	}{{resource.CurrentAP, u.CurrentAP}, {resource.CurrentMP, u.CurrentMP}, {resource.CurrentHEX, u.CurrentHEX}}
	for _, c := range currents {
		if c.v == nil {
			continue
		}
		if p, err = resource.Set(p, c.f, *c.v); err != nil {
			return p, err
		}
	}
	return p, nil
}

// ToggleEquip flips the equipped flag of an item.
func (s *Service) ToggleEquip(ctx context.Context, itemID int64) (*inventory.Item, error) {
	it, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(it.CharacterID)
	defer unlock()

	sh, err := s.store.GetCharacter(ctx, it.CharacterID)
	if err != nil {
		return nil, err
	}
	items := make([]inventory.Item, 0, len(sh.Items))
	for _, i := range sh.Items {
		items = append(items, *i)
	}
	coll, err := inventory.NewCollection(items)
	if err != nil {
		return nil, err
	}
	toggled, err := coll.ToggleEquip(itemID)
	if err != nil {
		if errors.Is(err, inventory.ErrItemNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrItemNotFound, itemID)
		}
		return nil, err
	}

	updated, err := s.store.SetEquipped(ctx, itemID, toggled.Equipped)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, err
		}
		s.logger.Error("persisting equip toggle", zap.Int64("item_id", itemID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	s.logger.Info("equip toggled",
		zap.Int64("character_id", it.CharacterID),
		zap.Int64("item_id", itemID),
		zap.Bool("equipped", updated.Equipped),
	)
	return updated, nil
}

// mutate loads the pool of character id under its lock, applies fn and persists
// the result.
func (s *Service) mutate(ctx context.Context, id int64, op string, fn func(resource.Pool) (resource.Pool, error)) (*character.Character, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sh, err := s.store.GetCharacter(ctx, id)
	if err != nil {
		return nil, err
	}
	before := sh.Character.Pool
	next, err := fn(before)
	if err != nil {
		return nil, err
	}
	updated, err := s.persist(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("resources updated",
		zap.Int64("character_id", id),
		zap.String("op", op),
		zap.Any("before", before),
		zap.Any("after", updated.Pool),
	)
	return updated, nil
}

func (s *Service) persist(ctx context.Context, id int64, p resource.Pool) (*character.Character, error) {
	updated, err := s.store.UpdateResources(ctx, id, p)
	if err != nil {
		if errors.Is(err, ErrCharacterNotFound) {
			return nil, err
		}
		s.logger.Error("persisting resources", zap.Int64("character_id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return updated, nil
}
