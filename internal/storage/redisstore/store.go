// Package redisstore keeps characters, spells and items in Redis as JSON
// documents. Writes to an existing document use optimistic WATCH/MULTI
// transactions, so concurrent servers sharing one Redis never lose an update.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/hexsheet/internal/config"
	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

// maxTxRetries bounds the optimistic transaction retries of one update.
const maxTxRetries = 5

// ErrContention is returned when an update lost its WATCH race maxTxRetries times.
var ErrContention = errors.New("too many concurrent updates")

// Store implements the character store over a Redis client.
type Store struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// New wraps client. Every key is namespaced under prefix.
//
// Precondition: client must be non-nil.
func New(client redis.UniversalClient, prefix string) *Store {
	return &Store{client: client, prefix: prefix, now: time.Now}
}

// Open connects to the Redis server described by cfg and verifies it answers.
//
// Postcondition: Returns a Store and the client it owns (the caller closes it),
// or a non-nil error with nothing left open.
func Open(ctx context.Context, cfg config.RedisConfig) (*Store, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("pinging redis at %s: %w", cfg.Addr, err)
	}
	return New(client, cfg.KeyPrefix), client, nil
}

func (s *Store) key(parts ...string) string {
	k := s.prefix
	for _, p := range parts {
		if k == "" {
			k = p
			continue
		}
		k += ":" + p
	}
	return k
}

func id(n int64) string { return strconv.FormatInt(n, 10) }

func (s *Store) characterKey(n int64) string { return s.key("character", id(n)) }
func (s *Store) spellKey(n int64) string     { return s.key("spell", id(n)) }
func (s *Store) itemKey(n int64) string      { return s.key("item", id(n)) }
func (s *Store) spellSetKey(n int64) string  { return s.key("character", id(n), "spells") }
func (s *Store) itemSetKey(n int64) string   { return s.key("character", id(n), "items") }
func (s *Store) indexKey() string            { return s.key("characters") }
func (s *Store) sequenceKey() string         { return s.key("next_id") }

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// load decodes the JSON document at key. A missing key yields redis.Nil.
func load[T any](ctx context.Context, c getter, key string) (*T, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return &v, nil
}

// loadMany decodes the documents at keys, skipping keys that vanished between
// listing and reading.
func loadMany[T any](ctx context.Context, c redis.UniversalClient, keys []string) ([]*T, error) {
	out := make([]*T, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %d documents: %w", len(keys), err)
	}
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var doc T
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", keys[i], err)
		}
		out = append(out, &doc)
	}
	return out, nil
}

// modify applies fn to the document at key inside a WATCH transaction and
// writes the result back. notFound is returned when the key does not exist.
func modify[T any](ctx context.Context, s *Store, key string, notFound error, fn func(*T)) (*T, error) {
	var out *T
	txf := func(tx *redis.Tx) error {
		doc, err := load[T](ctx, tx, key)
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		if err != nil {
			return err
		}
		fn(doc)
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		if err != nil {
			return err
		}
		out = doc
		return nil
	}
	for range maxTxRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, fmt.Errorf("updating %s: %w", key, ErrContention)
}

func (s *Store) nextID(ctx context.Context) (int64, error) {
	n, err := s.client.Incr(ctx, s.sequenceKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("allocating id: %w", err)
	}
	return n, nil
}

func (s *Store) requireCharacter(ctx context.Context, characterID int64) error {
	n, err := s.client.Exists(ctx, s.characterKey(characterID)).Result()
	if err != nil {
		return fmt.Errorf("checking character %d: %w", characterID, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, characterID)
	}
	return nil
}

// CreateCharacter stores c under a new ID and adds it to the character index.
func (s *Store) CreateCharacter(ctx context.Context, c *character.Character) (*character.Character, error) {
	n, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}
	cp := *c
	cp.ID = n
	cp.CreatedAt = s.now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	raw, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("encoding character: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.characterKey(n), raw, 0)
		pipe.ZAdd(ctx, s.indexKey(), redis.Z{Score: float64(n), Member: id(n)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing character: %w", err)
	}
	return &cp, nil
}

// ListCharacters returns every character ordered by ID.
func (s *Store) ListCharacters(ctx context.Context) ([]*character.Character, error) {
	ids, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	keys := make([]string, len(ids))
	for i, member := range ids {
		keys[i] = s.key("character", member)
	}
	return loadMany[character.Character](ctx, s.client, keys)
}

// GetCharacter loads the character with its spells and items.
//
// Postcondition: Returns the Sheet or sheet.ErrCharacterNotFound.
func (s *Store) GetCharacter(ctx context.Context, characterID int64) (*sheet.Sheet, error) {
	c, err := load[character.Character](ctx, s.client, s.characterKey(characterID))
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, characterID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading character %d: %w", characterID, err)
	}

	sh := &sheet.Sheet{Character: c}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.client.SMembers(gctx, s.spellSetKey(characterID)).Result()
		if err != nil {
			return fmt.Errorf("listing spells: %w", err)
		}
		keys := make([]string, len(ids))
		for i, member := range ids {
			keys[i] = s.key("spell", member)
		}
		spells, err := loadMany[spell.Spell](gctx, s.client, keys)
		if err != nil {
			return err
		}
		sort.Slice(spells, func(i, j int) bool { return spells[i].ID < spells[j].ID })
		sh.Spells = spells
		return nil
	})
	g.Go(func() error {
		ids, err := s.client.SMembers(gctx, s.itemSetKey(characterID)).Result()
		if err != nil {
			return fmt.Errorf("listing items: %w", err)
		}
		keys := make([]string, len(ids))
		for i, member := range ids {
			keys[i] = s.key("item", member)
		}
		items, err := loadMany[inventory.Item](gctx, s.client, keys)
		if err != nil {
			return err
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
		sh.Items = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sh, nil
}

// UpdateCharacter replaces the descriptive fields. ID, CreatedAt and the pool
// are kept.
func (s *Store) UpdateCharacter(ctx context.Context, c *character.Character) (*character.Character, error) {
	notFound := fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, c.ID)
	return modify(ctx, s, s.characterKey(c.ID), notFound, func(cur *character.Character) {
		created, pool := cur.CreatedAt, cur.Pool
		*cur = *c
		cur.CreatedAt = created
		cur.Pool = pool
		cur.UpdatedAt = s.now().UTC()
	})
}

// UpdateResources replaces the pool of the character.
func (s *Store) UpdateResources(ctx context.Context, characterID int64, p resource.Pool) (*character.Character, error) {
	notFound := fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, characterID)
	return modify(ctx, s, s.characterKey(characterID), notFound, func(cur *character.Character) {
		cur.Pool = p
		cur.UpdatedAt = s.now().UTC()
	})
}

// DeleteCharacter removes the character together with its spells and items.
func (s *Store) DeleteCharacter(ctx context.Context, characterID int64) error {
	if err := s.requireCharacter(ctx, characterID); err != nil {
		return err
	}
	spellIDs, err := s.client.SMembers(ctx, s.spellSetKey(characterID)).Result()
	if err != nil {
		return fmt.Errorf("listing spells: %w", err)
	}
	itemIDs, err := s.client.SMembers(ctx, s.itemSetKey(characterID)).Result()
	if err != nil {
		return fmt.Errorf("listing items: %w", err)
	}
	keys := []string{s.characterKey(characterID), s.spellSetKey(characterID), s.itemSetKey(characterID)}
	for _, member := range spellIDs {
		keys = append(keys, s.key("spell", member))
	}
	for _, member := range itemIDs {
		keys = append(keys, s.key("item", member))
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.indexKey(), id(characterID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting character %d: %w", characterID, err)
	}
	return nil
}

// CreateSpell stores sp under a new ID for its owning character.
//
// Precondition: sp.CharacterID must reference a stored character.
func (s *Store) CreateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error) {
	if err := s.requireCharacter(ctx, sp.CharacterID); err != nil {
		return nil, err
	}
	n, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}
	cp := *sp
	cp.ID = n
	raw, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("encoding spell: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.spellKey(n), raw, 0)
		pipe.SAdd(ctx, s.spellSetKey(cp.CharacterID), id(n))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing spell: %w", err)
	}
	return &cp, nil
}

// GetSpell returns a spell or sheet.ErrSpellNotFound.
func (s *Store) GetSpell(ctx context.Context, spellID int64) (*spell.Spell, error) {
	sp, err := load[spell.Spell](ctx, s.client, s.spellKey(spellID))
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", sheet.ErrSpellNotFound, spellID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading spell %d: %w", spellID, err)
	}
	return sp, nil
}

// UpdateSpell replaces the editable fields of a spell; the owner is kept.
func (s *Store) UpdateSpell(ctx context.Context, sp *spell.Spell) (*spell.Spell, error) {
	notFound := fmt.Errorf("%w: %d", sheet.ErrSpellNotFound, sp.ID)
	return modify(ctx, s, s.spellKey(sp.ID), notFound, func(cur *spell.Spell) {
		owner := cur.CharacterID
		*cur = *sp
		cur.CharacterID = owner
	})
}

// DeleteSpell removes a spell from the store and from its owner's spell set.
func (s *Store) DeleteSpell(ctx context.Context, spellID int64) error {
	sp, err := s.GetSpell(ctx, spellID)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.spellKey(spellID))
		pipe.SRem(ctx, s.spellSetKey(sp.CharacterID), id(spellID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting spell %d: %w", spellID, err)
	}
	return nil
}

// CreateItem stores it under a new ID for its owning character.
//
// Precondition: it.CharacterID must reference a stored character.
func (s *Store) CreateItem(ctx context.Context, it *inventory.Item) (*inventory.Item, error) {
	if err := s.requireCharacter(ctx, it.CharacterID); err != nil {
		return nil, err
	}
	n, err := s.nextID(ctx)
	if err != nil {
		return nil, err
	}
	cp := *it
	cp.ID = n
	raw, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("encoding item: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.itemKey(n), raw, 0)
		pipe.SAdd(ctx, s.itemSetKey(cp.CharacterID), id(n))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing item: %w", err)
	}
	return &cp, nil
}

// GetItem returns an item or sheet.ErrItemNotFound.
func (s *Store) GetItem(ctx context.Context, itemID int64) (*inventory.Item, error) {
	it, err := load[inventory.Item](ctx, s.client, s.itemKey(itemID))
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %d", sheet.ErrItemNotFound, itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading item %d: %w", itemID, err)
	}
	return it, nil
}

// UpdateItem replaces the editable fields of an item; the owner is kept.
func (s *Store) UpdateItem(ctx context.Context, it *inventory.Item) (*inventory.Item, error) {
	notFound := fmt.Errorf("%w: %d", sheet.ErrItemNotFound, it.ID)
	return modify(ctx, s, s.itemKey(it.ID), notFound, func(cur *inventory.Item) {
		owner := cur.CharacterID
		*cur = *it
		cur.CharacterID = owner
	})
}

// SetEquipped sets the equipped flag of an item.
func (s *Store) SetEquipped(ctx context.Context, itemID int64, equipped bool) (*inventory.Item, error) {
	notFound := fmt.Errorf("%w: %d", sheet.ErrItemNotFound, itemID)
	return modify(ctx, s, s.itemKey(itemID), notFound, func(cur *inventory.Item) {
		cur.Equipped = equipped
	})
}

// DeleteItem removes an item from the store and from its owner's item set.
func (s *Store) DeleteItem(ctx context.Context, itemID int64) error {
	it, err := s.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.itemKey(itemID))
		pipe.SRem(ctx, s.itemSetKey(it.CharacterID), id(itemID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("deleting item %d: %w", itemID, err)
	}
	return nil
}
