package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
	"github.com/cory-johannsen/hexsheet/internal/storage/postgres"
	"github.com/cory-johannsen/hexsheet/internal/testutil"
)

var _ sheet.Store = (*postgres.Store)(nil)

func newCharacter(t *testing.T, name string) *character.Character {
	t.Helper()
	c, err := character.New(name, "Elf", "Hexblade")
	require.NoError(t, err)
	return c
}

func TestOpen_HealthAndClose(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	require.NoError(t, pc.Store.Health(ctx, 2*time.Second))

	var app string
	require.NoError(t, pc.Store.DB().QueryRow(ctx, "SELECT current_setting('application_name')").Scan(&app))
	assert.Equal(t, "hexsheet", app)

	pc.Store.Close()
	assert.Error(t, pc.Store.Health(ctx, time.Second))
}

func TestOpen_UnreachableDatabase(t *testing.T) {
	pc := testutil.NewPostgresContainer(t)
	cfg := pc.Config
	cfg.Name = "no_such_database"

	_, err := postgres.Open(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no_such_database")
}

func TestStore_CharacterLifecycle(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	created, err := store.CreateCharacter(ctx, newCharacter(t, "Vex"))
	require.NoError(t, err)
	assert.Greater(t, created.ID, int64(0))
	assert.Equal(t, resource.NewPool(), created.Pool)
	assert.Equal(t, character.DefaultAbility, created.Strength)
	assert.False(t, created.CreatedAt.IsZero())

	t.Run("get returns empty spell and item lists", func(t *testing.T) {
		sh, err := store.GetCharacter(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Vex", sh.Character.Name)
		assert.Empty(t, sh.Spells)
		assert.Empty(t, sh.Items)
	})

	t.Run("update replaces descriptive fields and keeps the pool", func(t *testing.T) {
		c := *created
		c.Notes = "owes the guild 40 gold"
		c.Level = 3
		c.CurrentAP = 0
		updated, err := store.UpdateCharacter(ctx, &c)
		require.NoError(t, err)
		assert.Equal(t, 3, updated.Level)
		assert.Equal(t, "owes the guild 40 gold", updated.Notes)
		assert.Equal(t, created.CurrentAP, updated.CurrentAP)
	})

	t.Run("update resources persists the pool", func(t *testing.T) {
		p := resource.Pool{CurrentAP: 10, MaxAP: 45, CurrentMP: 50, MaxMP: 121, CurrentHEX: 7, MaxHEX: 20}
		updated, err := store.UpdateResources(ctx, created.ID, p)
		require.NoError(t, err)
		assert.Equal(t, p, updated.Pool)

		sh, err := store.GetCharacter(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, p, sh.Character.Pool)
	})

	t.Run("schema rejects a current above its maximum", func(t *testing.T) {
		p := resource.Pool{CurrentAP: 46, MaxAP: 45, MaxMP: 121, MaxHEX: 20}
		_, err := store.UpdateResources(ctx, created.ID, p)
		require.Error(t, err)
	})

	t.Run("schema rejects abilities out of range", func(t *testing.T) {
		c := *created
		c.Wisdom = 101
		_, err := store.UpdateCharacter(ctx, &c)
		assert.ErrorIs(t, err, character.ErrInvalidCharacter)
	})

	t.Run("list includes the character", func(t *testing.T) {
		all, err := store.ListCharacters(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, all)
		assert.Equal(t, created.ID, all[0].ID)
	})

	t.Run("missing character is not found", func(t *testing.T) {
		_, err := store.GetCharacter(ctx, created.ID+1000)
		assert.ErrorIs(t, err, sheet.ErrCharacterNotFound)
		_, err = store.UpdateResources(ctx, created.ID+1000, resource.NewPool())
		assert.ErrorIs(t, err, sheet.ErrCharacterNotFound)
		assert.ErrorIs(t, store.DeleteCharacter(ctx, created.ID+1000), sheet.ErrCharacterNotFound)
	})
}

func TestStore_SpellsAndItems(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()

	owner, err := store.CreateCharacter(ctx, newCharacter(t, "Moss"))
	require.NoError(t, err)

	sp := &spell.Spell{CharacterID: owner.ID, Name: "Firebolt", APCost: 3, MPCost: 10, HexIncrement: 2}
	sp.ApplyDefaults()
	createdSpell, err := store.CreateSpell(ctx, sp)
	require.NoError(t, err)
	assert.Equal(t, "30m", createdSpell.Range)

	it := &inventory.Item{CharacterID: owner.ID, Name: "Chain Shirt", Type: inventory.TypeArmor, ArmorClassBonus: 3}
	it.Normalize()
	createdItem, err := store.CreateItem(ctx, it)
	require.NoError(t, err)
	assert.False(t, createdItem.Equipped)

	t.Run("sheet includes spells and items", func(t *testing.T) {
		sh, err := store.GetCharacter(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, sh.Spells, 1)
		require.Len(t, sh.Items, 1)
		assert.Equal(t, "Firebolt", sh.Spells[0].Name)
		assert.Equal(t, "Chain Shirt", sh.Items[0].Name)
	})

	t.Run("update spell costs", func(t *testing.T) {
		s := *createdSpell
		s.MPCost = 12
		updated, err := store.UpdateSpell(ctx, &s)
		require.NoError(t, err)
		assert.Equal(t, 12, updated.MPCost)
	})

	t.Run("set equipped", func(t *testing.T) {
		updated, err := store.SetEquipped(ctx, createdItem.ID, true)
		require.NoError(t, err)
		assert.True(t, updated.Equipped)
		got, err := store.GetItem(ctx, createdItem.ID)
		require.NoError(t, err)
		assert.True(t, got.Equipped)
	})

	t.Run("orphan spell is rejected", func(t *testing.T) {
		orphan := *sp
		orphan.CharacterID = owner.ID + 1000
		_, err := store.CreateSpell(ctx, &orphan)
		assert.ErrorIs(t, err, sheet.ErrCharacterNotFound)
	})

	t.Run("deleting the character cascades", func(t *testing.T) {
		require.NoError(t, store.DeleteCharacter(ctx, owner.ID))
		_, err := store.GetSpell(ctx, createdSpell.ID)
		assert.ErrorIs(t, err, sheet.ErrSpellNotFound)
		_, err = store.GetItem(ctx, createdItem.ID)
		assert.ErrorIs(t, err, sheet.ErrItemNotFound)
	})
}

func TestProperty_UpdateResourcesRoundTrip(t *testing.T) {
	store := testutil.NewStore(t)
	ctx := context.Background()
	owner, err := store.CreateCharacter(ctx, newCharacter(t, "Rook"))
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		maxAP := rapid.IntRange(0, 200).Draw(rt, "maxAP")
		maxMP := rapid.IntRange(0, 200).Draw(rt, "maxMP")
		maxHEX := rapid.IntRange(0, 50).Draw(rt, "maxHEX")
		p := resource.Pool{
			CurrentAP:  rapid.IntRange(0, maxAP).Draw(rt, "ap"),
			MaxAP:      maxAP,
			CurrentMP:  rapid.IntRange(0, maxMP).Draw(rt, "mp"),
			MaxMP:      maxMP,
			CurrentHEX: rapid.IntRange(0, maxHEX).Draw(rt, "hex"),
			MaxHEX:     maxHEX,
		}
		updated, err := store.UpdateResources(ctx, owner.ID, p)
		if err != nil {
			rt.Fatalf("update resources: %v", err)
		}
		if updated.Pool != p {
			rt.Fatalf("round trip: got %+v, want %+v", updated.Pool, p)
		}
	})
}
