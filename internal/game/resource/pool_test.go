package resource_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hexsheet/internal/game/resource"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, resource.Clamp(-5, 20))
	assert.Equal(t, 20, resource.Clamp(25, 20))
	assert.Equal(t, 10, resource.Clamp(10, 20))
	assert.Equal(t, 0, resource.Clamp(0, 0))
}

func TestProperty_Clamp_WithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		limit := rapid.IntRange(0, 10_000).Draw(t, "limit")
		v := rapid.Int().Draw(t, "v")
		got := resource.Clamp(v, limit)
		if got < 0 || got > limit {
			t.Fatalf("Clamp(%d, %d) = %d, outside [0, %d]", v, limit, got, limit)
		}
		if v >= 0 && v <= limit && got != v {
			t.Fatalf("Clamp(%d, %d) = %d, want identity inside range", v, limit, got)
		}
	})
}

func TestNewPool_Defaults(t *testing.T) {
	p := resource.NewPool()
	assert.Equal(t, resource.Pool{
		CurrentAP: 45, MaxAP: 45,
		CurrentMP: 121, MaxMP: 121,
		CurrentHEX: 0, MaxHEX: 20,
	}, p)
	assert.NoError(t, p.Validate())
}

func TestPool_WithDefaults(t *testing.T) {
	p := resource.Pool{CurrentAP: 3, MaxAP: 10}.WithDefaults()
	assert.Equal(t, 10, p.MaxAP)
	assert.Equal(t, resource.DefaultMaxMP, p.MaxMP)
	assert.Equal(t, resource.DefaultMaxHEX, p.MaxHEX)
}

func TestPool_Validate(t *testing.T) {
	p := resource.NewPool()
	p.CurrentHEX = 21
	p.CurrentAP = -1
	err := p.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, resource.ErrInvalidPool)
	assert.Contains(t, err.Error(), "current_hex")
	assert.Contains(t, err.Error(), "current_ap")

	p = resource.NewPool()
	p.MaxMP = -3
	assert.ErrorIs(t, p.Validate(), resource.ErrInvalidPool)
}

func TestPool_Normalize(t *testing.T) {
	p := resource.Pool{CurrentAP: 99, MaxAP: 45, CurrentMP: -4, MaxMP: 121, CurrentHEX: 7, MaxHEX: 20}
	n := p.Normalize()
	assert.Equal(t, 45, n.CurrentAP)
	assert.Equal(t, 0, n.CurrentMP)
	assert.Equal(t, 7, n.CurrentHEX)
	assert.NoError(t, n.Validate())
}

func TestSetResource(t *testing.T) {
	p := resource.NewPool()

	tests := []struct {
		name  string
		field resource.Field
		raw   string
		want  int
	}{
		{"numeric in range", resource.CurrentAP, "30", 30},
		{"above max clamps", resource.CurrentAP, "100", 45},
		{"negative clamps", resource.CurrentMP, "-12", 0},
		{"whitespace trimmed", resource.CurrentHEX, " 7 ", 7},
		{"non-numeric is zero", resource.CurrentMP, "lots", 0},
		{"empty is zero", resource.CurrentAP, "", 0},
		{"huge saturates to max", resource.CurrentAP, "99999999999999999999", 45},
		{"huge negative clamps to zero", resource.CurrentMP, "-99999999999999999999", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resource.SetResource(p, tt.field, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Current(tt.field))
		})
	}
}

func TestSetResource_LeavesOtherFields(t *testing.T) {
	p := resource.NewPool()
	got, err := resource.SetResource(p, resource.CurrentHEX, "12")
	require.NoError(t, err)
	want := p
	want.CurrentHEX = 12
	assert.Equal(t, want, got)
	assert.Equal(t, 0, p.CurrentHEX, "input pool must not be mutated")
}

func TestSetResource_UnknownField(t *testing.T) {
	_, err := resource.SetResource(resource.NewPool(), resource.Field("max_ap"), "3")
	assert.ErrorIs(t, err, resource.ErrUnknownField)
}

func TestAdjust(t *testing.T) {
	p := resource.NewPool()

	p, err := resource.Adjust(p, resource.CurrentAP, 1)
	require.NoError(t, err)
	assert.Equal(t, 45, p.CurrentAP, "increment at max stays at max")

	p, err = resource.Adjust(p, resource.CurrentAP, -1)
	require.NoError(t, err)
	assert.Equal(t, 44, p.CurrentAP)

	p, err = resource.Adjust(p, resource.CurrentHEX, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, p.CurrentHEX, "decrement at zero stays at zero")
}

func TestProperty_Adjust_PreservesInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := resource.Pool{
			MaxAP:  rapid.IntRange(0, 200).Draw(t, "maxAP"),
			MaxMP:  rapid.IntRange(0, 500).Draw(t, "maxMP"),
			MaxHEX: rapid.IntRange(0, 100).Draw(t, "maxHEX"),
		}
		field := rapid.SampledFrom(resource.Fields()).Draw(t, "field")
		deltas := rapid.SliceOfN(rapid.IntRange(-1000, 1000), 1, 20).Draw(t, "deltas")
		for _, d := range deltas {
			var err error
			p, err = resource.Adjust(p, field, d)
			if err != nil {
				t.Fatalf("Adjust: %v", err)
			}
			if err := p.Validate(); err != nil {
				t.Fatalf("invariant broken after delta %d: %v", d, err)
			}
		}
	})
}

func TestParseField(t *testing.T) {
	for in, want := range map[string]resource.Field{
		"current_ap": resource.CurrentAP,
		"AP":         resource.CurrentAP,
		"mp":         resource.CurrentMP,
		"Hex":        resource.CurrentHEX,
	} {
		got, err := resource.ParseField(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := resource.ParseField("hp")
	assert.ErrorIs(t, err, resource.ErrUnknownField)
}

func TestParseValue_OutOfRangeSaturates(t *testing.T) {
	v, ok := resource.ParseValue("99999999999999999999")
	assert.True(t, ok)
	assert.Equal(t, math.MaxInt, v)

	v, ok = resource.ParseValue("-99999999999999999999")
	assert.True(t, ok)
	assert.Equal(t, math.MinInt, v)

	_, ok = resource.ParseValue("3.5")
	assert.False(t, ok)
}

func TestAdjust_ExtremeDeltas(t *testing.T) {
	p := resource.NewPool()
	p.CurrentHEX = 5

	got, err := resource.Adjust(p, resource.CurrentHEX, math.MaxInt)
	require.NoError(t, err)
	assert.Equal(t, 20, got.CurrentHEX)

	got, err = resource.Adjust(p, resource.CurrentAP, math.MinInt)
	require.NoError(t, err)
	assert.Equal(t, 0, got.CurrentAP)
}

func TestProperty_Adjust_ExtremeDeltasPreserveInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxAP := rapid.IntRange(0, math.MaxInt).Draw(t, "maxAP")
		p := resource.Pool{
			MaxAP: maxAP, CurrentAP: rapid.IntRange(0, maxAP).Draw(t, "curAP"),
			MaxMP: 121, MaxHEX: 20,
		}
		delta := rapid.OneOf(
			rapid.IntRange(math.MaxInt-1000, math.MaxInt),
			rapid.IntRange(math.MinInt, math.MinInt+1000),
			rapid.Int(),
		).Draw(t, "delta")
		got, err := resource.Adjust(p, resource.CurrentAP, delta)
		if err != nil {
			t.Fatalf("Adjust: %v", err)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("invariant broken after delta %d: %v", delta, err)
		}
		if delta > 0 && got.CurrentAP < p.CurrentAP {
			t.Fatalf("positive delta %d lowered AP from %d to %d", delta, p.CurrentAP, got.CurrentAP)
		}
	})
}
