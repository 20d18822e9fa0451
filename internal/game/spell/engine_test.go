package spell_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/spell"
)

func fullPool() resource.Pool {
	return resource.Pool{
		CurrentAP: 45, MaxAP: 45,
		CurrentMP: 121, MaxMP: 121,
		CurrentHEX: 0, MaxHEX: 20,
	}
}

func TestCast_Success(t *testing.T) {
	s := spell.Spell{Name: "Firebolt", APCost: 10, MPCost: 20, HexIncrement: 5}

	got, res := spell.Cast(fullPool(), s)

	assert.Equal(t, 35, got.CurrentAP)
	assert.Equal(t, 101, got.CurrentMP)
	assert.Equal(t, 5, got.CurrentHEX)
	assert.Equal(t, spell.CastResult{
		Success: true, APSpent: 10, MPSpent: 20, HexGained: 5, HexOverflow: false,
	}, res)
}

func TestCast_InsufficientAP(t *testing.T) {
	p := fullPool()
	p.CurrentAP = 5
	s := spell.Spell{Name: "Heavy", APCost: 10}

	got, res := spell.Cast(p, s)

	assert.Equal(t, p, got)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Reason, spell.ErrInsufficientAP)
}

func TestCast_InsufficientMP(t *testing.T) {
	p := fullPool()
	p.CurrentMP = 19
	s := spell.Spell{Name: "Drain", APCost: 1, MPCost: 20}

	got, res := spell.Cast(p, s)

	assert.Equal(t, p, got)
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Reason, spell.ErrInsufficientMP)
}

func TestCast_APCheckedBeforeMP(t *testing.T) {
	p := fullPool()
	p.CurrentAP, p.CurrentMP = 0, 0
	_, res := spell.Cast(p, spell.Spell{Name: "Both", APCost: 1, MPCost: 1})
	assert.ErrorIs(t, res.Reason, spell.ErrInsufficientAP)
}

func TestCast_HexOverflowResetsToZero(t *testing.T) {
	p := fullPool()
	p.CurrentHEX = 18

	got, res := spell.Cast(p, spell.Spell{Name: "Rift", HexIncrement: 5})

	assert.True(t, res.Success)
	assert.True(t, res.HexOverflow)
	assert.Equal(t, 0, got.CurrentHEX)
	assert.Equal(t, 5, res.HexGained)
}

func TestCast_HexExactBoundaryIsNotOverflow(t *testing.T) {
	p := fullPool()
	p.CurrentHEX = 15

	got, res := spell.Cast(p, spell.Spell{Name: "Edge", HexIncrement: 5})

	assert.True(t, res.Success)
	assert.False(t, res.HexOverflow)
	assert.Equal(t, 20, got.CurrentHEX)
}

func TestCast_SpendsExactlyToZero(t *testing.T) {
	p := fullPool()
	got, res := spell.Cast(p, spell.Spell{Name: "All In", APCost: 45, MPCost: 121})
	assert.True(t, res.Success)
	assert.Equal(t, 0, got.CurrentAP)
	assert.Equal(t, 0, got.CurrentMP)
}

func TestCast_NegativeCostRejected(t *testing.T) {
	p := fullPool()
	got, res := spell.Cast(p, spell.Spell{Name: "Refund", APCost: -5})
	assert.Equal(t, p, got)
	assert.ErrorIs(t, res.Reason, spell.ErrInvalidSpell)
}

func TestCast_RepeatedUnaffordableFailsIdentically(t *testing.T) {
	p := fullPool()
	p.CurrentAP = 5
	s := spell.Spell{Name: "Heavy", APCost: 10}

	p1, r1 := spell.Cast(p, s)
	p2, r2 := spell.Cast(p1, s)

	assert.Equal(t, p, p2)
	assert.Equal(t, r1, r2)
}

func genPool(t *rapid.T) resource.Pool {
	maxAP := rapid.IntRange(0, 100).Draw(t, "maxAP")
	maxMP := rapid.IntRange(0, 300).Draw(t, "maxMP")
	maxHEX := rapid.IntRange(0, 50).Draw(t, "maxHEX")
	return resource.Pool{
		MaxAP: maxAP, CurrentAP: rapid.IntRange(0, maxAP).Draw(t, "curAP"),
		MaxMP: maxMP, CurrentMP: rapid.IntRange(0, maxMP).Draw(t, "curMP"),
		MaxHEX: maxHEX, CurrentHEX: rapid.IntRange(0, maxHEX).Draw(t, "curHEX"),
	}
}

func genSpell(t *rapid.T) spell.Spell {
	return spell.Spell{
		Name:         "generated",
		APCost:       rapid.IntRange(0, 120).Draw(t, "apCost"),
		MPCost:       rapid.IntRange(0, 350).Draw(t, "mpCost"),
		HexIncrement: rapid.IntRange(0, 60).Draw(t, "hex"),
	}
}

func TestProperty_Cast_PreservesInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPool(t)
		s := genSpell(t)

		got, res := spell.Cast(p, s)
		if err := got.Validate(); err != nil {
			t.Fatalf("pool invalid after cast: %v", err)
		}
		if !res.Success {
			if got != p {
				t.Fatalf("failed cast mutated pool: %+v -> %+v", p, got)
			}
			return
		}
		if got.CurrentAP != p.CurrentAP-s.APCost || got.CurrentMP != p.CurrentMP-s.MPCost {
			t.Fatalf("costs not applied: %+v -> %+v for %+v", p, got, s)
		}
		raw := p.CurrentHEX + s.HexIncrement
		if res.HexOverflow != (raw > p.MaxHEX) {
			t.Fatalf("overflow flag %v for raw %d max %d", res.HexOverflow, raw, p.MaxHEX)
		}
		if res.HexOverflow && got.CurrentHEX != 0 {
			t.Fatalf("overflow must reset HEX to 0, got %d", got.CurrentHEX)
		}
	})
}

func TestProperty_Cast_AffordabilityMatchesCanCast(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPool(t)
		s := genSpell(t)
		_, res := spell.Cast(p, s)
		err := spell.CanCast(p, s)
		if (err == nil) != res.Success {
			t.Fatalf("CanCast=%v but Cast success=%v", err, res.Success)
		}
	})
}

func TestCast_HugeHexIncrementOverflows(t *testing.T) {
	p := fullPool()
	p.CurrentHEX = 5
	got, res := spell.Cast(p, spell.Spell{Name: "Cataclysm", HexIncrement: math.MaxInt})
	assert.True(t, res.Success)
	assert.True(t, res.HexOverflow)
	assert.Equal(t, 0, got.CurrentHEX)
	assert.NoError(t, got.Validate())
}

func TestProperty_Cast_ExtremeHexIncrementPreservesInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxHEX := rapid.IntRange(0, math.MaxInt).Draw(t, "maxHEX")
		p := fullPool()
		p.MaxHEX = maxHEX
		p.CurrentHEX = rapid.IntRange(0, maxHEX).Draw(t, "curHEX")
		inc := rapid.OneOf(
			rapid.IntRange(math.MaxInt-1000, math.MaxInt),
			rapid.IntRange(0, math.MaxInt),
		).Draw(t, "inc")

		got, res := spell.Cast(p, spell.Spell{Name: "Surge", HexIncrement: inc})
		if !res.Success {
			t.Fatalf("free spell rejected: %v", res.Reason)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("pool invalid after cast: %v", err)
		}
		if res.HexOverflow != (inc > maxHEX-p.CurrentHEX) {
			t.Fatalf("overflow flag %v for cur %d inc %d max %d", res.HexOverflow, p.CurrentHEX, inc, maxHEX)
		}
	})
}
