// Package resource implements the AP/MP/HEX resource pool and its clamping rules.
package resource

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Default maxima applied to a pool whose maximum is unset (zero).
const (
	DefaultMaxAP  = 45
	DefaultMaxMP  = 121
	DefaultMaxHEX = 20
)

// ErrUnknownField is returned when a resource field name is not recognised.
var ErrUnknownField = errors.New("unknown resource field")

// ErrInvalidPool is returned when a pool violates 0 <= current <= max.
var ErrInvalidPool = errors.New("invalid resource pool")

// Pool holds a character's current and maximum AP, MP and HEX.
//
// Invariant: at rest, 0 <= Current* <= Max* for all three resources.
type Pool struct {
	CurrentAP  int `json:"current_ap"`
	MaxAP      int `json:"max_ap"`
	CurrentMP  int `json:"current_mp"`
	MaxMP      int `json:"max_mp"`
	CurrentHEX int `json:"current_hex"`
	MaxHEX     int `json:"max_hex"`
}

// NewPool returns a pool at the default maxima with full AP/MP and empty HEX.
func NewPool() Pool {
	return Pool{
		CurrentAP:  DefaultMaxAP,
		MaxAP:      DefaultMaxAP,
		CurrentMP:  DefaultMaxMP,
		MaxMP:      DefaultMaxMP,
		CurrentHEX: 0,
		MaxHEX:     DefaultMaxHEX,
	}
}

// WithDefaults returns a copy of p with every unset (zero or negative) maximum
// replaced by its default.
func (p Pool) WithDefaults() Pool {
	if p.MaxAP <= 0 {
		p.MaxAP = DefaultMaxAP
	}
	if p.MaxMP <= 0 {
		p.MaxMP = DefaultMaxMP
	}
	if p.MaxHEX <= 0 {
		p.MaxHEX = DefaultMaxHEX
	}
	return p
}

// Normalize returns a copy of p with every current value clamped into [0, max].
func (p Pool) Normalize() Pool {
	p.CurrentAP = Clamp(p.CurrentAP, p.MaxAP)
	p.CurrentMP = Clamp(p.CurrentMP, p.MaxMP)
	p.CurrentHEX = Clamp(p.CurrentHEX, p.MaxHEX)
	return p
}

// Validate checks the pool invariant.
//
// Postcondition: returns nil iff all maxima are >= 0 and every current value lies
// in [0, max]; otherwise the error wraps ErrInvalidPool and names every violation.
func (p Pool) Validate() error {
	var errs []string
	for _, f := range Fields() {
		cur, limit := p.Current(f), p.Max(f)
		if limit < 0 {
			errs = append(errs, fmt.Sprintf("%s must be >= 0, got %d", f.MaxKey(), limit))
			continue
		}
		if cur < 0 || cur > limit {
			errs = append(errs, fmt.Sprintf("%s must be in [0, %d], got %d", f, limit, cur))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPool, strings.Join(errs, "; "))
	}
	return nil
}

// Current returns the current value of f.
func (p Pool) Current(f Field) int {
	switch f {
	case CurrentAP:
		return p.CurrentAP
	case CurrentMP:
		return p.CurrentMP
	case CurrentHEX:
		return p.CurrentHEX
	}
	return 0
}

// Max returns the maximum bounding f.
func (p Pool) Max(f Field) int {
	switch f {
	case CurrentAP:
		return p.MaxAP
	case CurrentMP:
		return p.MaxMP
	case CurrentHEX:
		return p.MaxHEX
	}
	return 0
}

// Clamp returns value bounded to [0, limit].
//
// Postcondition: 0 <= result <= limit when limit >= 0; result is 0 when limit < 0.
func Clamp(value, limit int) int {
	if value > limit {
		value = limit
	}
	if value < 0 {
		return 0
	}
	return value
}

// ParseValue parses raw as a base-10 integer after trimming whitespace.
// Out-of-range integers saturate to math.MaxInt or math.MinInt. Malformed input
// yields (0, false); it is never an error.
func ParseValue(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) {
		return v, true
	}
	if err != nil {
		return 0, false
	}
	return v, true
}

// addSat returns a+b saturated to [math.MinInt, math.MaxInt].
func addSat(a, b int) int {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return math.MaxInt
	case b < 0 && a < math.MinInt-b:
		return math.MinInt
	}
	return a + b
}

// Set returns a copy of p with field f set to value clamped into [0, max(f)].
//
// Postcondition: returns ErrUnknownField iff f is not a current-value field.
func Set(p Pool, f Field, value int) (Pool, error) {
	switch f {
	case CurrentAP:
		p.CurrentAP = Clamp(value, p.MaxAP)
	case CurrentMP:
		p.CurrentMP = Clamp(value, p.MaxMP)
	case CurrentHEX:
		p.CurrentHEX = Clamp(value, p.MaxHEX)
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	return p, nil
}

// SetResource parses raw and sets field f to the clamped result.
// Non-numeric input is treated as 0.
//
// Precondition: f is one of CurrentAP, CurrentMP, CurrentHEX.
// Postcondition: the returned pool differs from p in at most field f.
func SetResource(p Pool, f Field, raw string) (Pool, error) {
	v, _ := ParseValue(raw)
	return Set(p, f, v)
}

// Adjust increments (delta > 0) or decrements (delta < 0) field f, clamped.
func Adjust(p Pool, f Field, delta int) (Pool, error) {
	return Set(p, f, addSat(p.Current(f), delta))
}
