package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
)

func TestNew_Defaults(t *testing.T) {
	c, err := character.New("Ysolde", "elf", "hexblade")
	require.NoError(t, err)

	assert.Equal(t, 1, c.Level)
	assert.Equal(t, character.DefaultAbilities(), c.AbilityScores)
	assert.Equal(t, resource.NewPool(), c.Pool)
	assert.NoError(t, c.Validate())
}

func TestNew_RequiresName(t *testing.T) {
	_, err := character.New("  ", "elf", "hexblade")
	assert.ErrorIs(t, err, character.ErrInvalidCharacter)
}

func TestValidate_AbilityRange(t *testing.T) {
	c, err := character.New("Ysolde", "", "")
	require.NoError(t, err)

	c.Wisdom = 0
	c.Charisma = 101
	err = c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, character.ErrInvalidCharacter)
	assert.Contains(t, err.Error(), "wisdom")
	assert.Contains(t, err.Error(), "charisma")
}

func TestValidate_Pool(t *testing.T) {
	c, err := character.New("Ysolde", "", "")
	require.NoError(t, err)
	c.CurrentMP = c.MaxMP + 1
	assert.ErrorIs(t, c.Validate(), character.ErrInvalidCharacter)
}

func TestNormalize_FillsDefaults(t *testing.T) {
	c := &character.Character{Name: "Bare", Pool: resource.Pool{CurrentAP: 80}}
	c.Normalize()

	assert.Equal(t, 1, c.Level)
	assert.Equal(t, character.DefaultAbility, c.Strength)
	assert.Equal(t, resource.DefaultMaxAP, c.MaxAP)
	assert.Equal(t, resource.DefaultMaxAP, c.CurrentAP)
	assert.NoError(t, c.Validate())
}

func TestSetMax_ReclampsCurrent(t *testing.T) {
	p := resource.NewPool()
	p.CurrentHEX = 18

	p, err := character.SetMax(p, "max_hex", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, p.MaxHEX)
	assert.Equal(t, 10, p.CurrentHEX)

	p, err = character.SetMax(p, "max_ap", -4)
	require.NoError(t, err)
	assert.Equal(t, 0, p.MaxAP)
	assert.Equal(t, 0, p.CurrentAP)

	_, err = character.SetMax(p, "current_ap", 3)
	assert.ErrorIs(t, err, character.ErrUnknownMax)
}

func TestProperty_SetMax_PreservesInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := resource.NewPool()
		key := rapid.SampledFrom([]string{"max_ap", "max_mp", "max_hex"}).Draw(t, "key")
		v := rapid.IntRange(-50, 500).Draw(t, "value")
		got, err := character.SetMax(p, key, v)
		if err != nil {
			t.Fatalf("SetMax: %v", err)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("invalid pool: %v", err)
		}
	})
}

func TestAbilityName(t *testing.T) {
	assert.Equal(t, "STR", character.AbilityName("strength"))
	assert.Equal(t, "CHA", character.AbilityName("charisma"))
	assert.Equal(t, "<luck>", character.AbilityName("luck"))
}
