package rest_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/game/rest"
)

func TestParseType(t *testing.T) {
	got, err := rest.ParseType("short")
	require.NoError(t, err)
	assert.Equal(t, rest.Short, got)

	got, err = rest.ParseType(" LONG ")
	require.NoError(t, err)
	assert.Equal(t, rest.Long, got)

	_, err = rest.ParseType("nap")
	assert.ErrorIs(t, err, rest.ErrUnknownRestType)

	assert.Equal(t, "short", rest.Short.String())
	assert.Equal(t, "long", rest.Long.String())
}

func TestApply_LongRestRestoresEverything(t *testing.T) {
	p := resource.Pool{CurrentAP: 3, MaxAP: 45, CurrentMP: 0, MaxMP: 121, CurrentHEX: 17, MaxHEX: 20}

	got, err := rest.Apply(p, rest.Long, rest.DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, resource.Pool{CurrentAP: 45, MaxAP: 45, CurrentMP: 121, MaxMP: 121, CurrentHEX: 0, MaxHEX: 20}, got)
}

func TestApply_ShortRestIsPartial(t *testing.T) {
	p := resource.Pool{CurrentAP: 10, MaxAP: 45, CurrentMP: 10, MaxMP: 121, CurrentHEX: 12, MaxHEX: 20}

	got, err := rest.Apply(p, rest.Short, rest.DefaultRules())
	require.NoError(t, err)

	assert.Equal(t, 33, got.CurrentAP, "10 + ceil(45/2)")
	assert.Equal(t, 71, got.CurrentMP, "10 + ceil(121/2)")
	assert.Equal(t, 7, got.CurrentHEX, "12 - ceil(20/4)")
}

func TestApply_ZeroPercentLeavesValues(t *testing.T) {
	p := resource.Pool{CurrentAP: 10, MaxAP: 45, CurrentMP: 10, MaxMP: 121, CurrentHEX: 12, MaxHEX: 20}
	rules := rest.Rules{Short: rest.Recovery{}, Long: rest.Recovery{}}

	got, err := rest.Apply(p, rest.Short, rules)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestApply_UnknownType(t *testing.T) {
	p := resource.NewPool()
	got, err := rest.Apply(p, rest.Type(9), rest.DefaultRules())
	assert.ErrorIs(t, err, rest.ErrUnknownRestType)
	assert.Equal(t, p, got)
}

func TestRules_Validate(t *testing.T) {
	assert.NoError(t, rest.DefaultRules().Validate())

	r := rest.DefaultRules()
	r.Short.MPPercent = 101
	assert.Error(t, r.Validate())

	r = rest.DefaultRules()
	r.Long.HEXPercent = -1
	assert.Error(t, r.Validate())
}

func TestProperty_Apply_NeverDecreasesAPOrMP(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxAP := rapid.IntRange(0, 200).Draw(t, "maxAP")
		maxMP := rapid.IntRange(0, 400).Draw(t, "maxMP")
		maxHEX := rapid.IntRange(0, 60).Draw(t, "maxHEX")
		p := resource.Pool{
			MaxAP: maxAP, CurrentAP: rapid.IntRange(0, maxAP).Draw(t, "curAP"),
			MaxMP: maxMP, CurrentMP: rapid.IntRange(0, maxMP).Draw(t, "curMP"),
			MaxHEX: maxHEX, CurrentHEX: rapid.IntRange(0, maxHEX).Draw(t, "curHEX"),
		}
		pct := rapid.IntRange(0, 100)
		rules := rest.Rules{
			Short: rest.Recovery{APPercent: pct.Draw(t, "sAP"), MPPercent: pct.Draw(t, "sMP"), HEXPercent: pct.Draw(t, "sHEX")},
			Long:  rest.Recovery{APPercent: pct.Draw(t, "lAP"), MPPercent: pct.Draw(t, "lMP"), HEXPercent: pct.Draw(t, "lHEX")},
		}
		typ := rapid.SampledFrom([]rest.Type{rest.Short, rest.Long}).Draw(t, "type")

		got, err := rest.Apply(p, typ, rules)
		if err != nil {
			t.Fatalf("Apply: %v", err)
		}
		if err := got.Validate(); err != nil {
			t.Fatalf("invalid pool after rest: %v", err)
		}
		if got.CurrentAP < p.CurrentAP || got.CurrentMP < p.CurrentMP {
			t.Fatalf("rest decreased AP/MP: %+v -> %+v", p, got)
		}
		if got.CurrentHEX > p.CurrentHEX {
			t.Fatalf("rest increased HEX: %+v -> %+v", p, got)
		}
	})
}

func TestRecovery_ValidateReportsInFieldOrder(t *testing.T) {
	err := rest.Recovery{APPercent: -1, MPPercent: 101, HEXPercent: 200}.Validate()
	require.Error(t, err)
	assert.Equal(t,
		"ap percent must be 0-100, got -1; mp percent must be 0-100, got 101; hex percent must be 0-100, got 200",
		err.Error())
}

func TestApply_HugeMaximaDoNotWrap(t *testing.T) {
	p := resource.Pool{
		CurrentAP: math.MaxInt - 10, MaxAP: math.MaxInt,
		CurrentMP: 0, MaxMP: math.MaxInt,
		CurrentHEX: math.MaxInt, MaxHEX: math.MaxInt,
	}
	got, err := rest.Apply(p, rest.Short, rest.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got.CurrentAP)
	assert.Equal(t, math.MaxInt/100*50+(math.MaxInt%100*50+99)/100, got.CurrentMP)
	assert.Greater(t, got.CurrentMP, 0)
	assert.NoError(t, got.Validate())

	got, err = rest.Apply(p, rest.Long, rest.DefaultRules())
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got.CurrentMP)
	assert.Equal(t, 0, got.CurrentHEX)
}
