// Package rest implements the short and long rest recovery transformation.
package rest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/hexsheet/internal/game/resource"
)

// ErrUnknownRestType is returned when a rest type string is not recognised.
var ErrUnknownRestType = errors.New("unknown rest type")

// Type selects the recovery magnitude of a rest.
type Type int

// Rest types.
const (
	Short Type = iota + 1
	Long
)

// String returns the wire form: "short" or "long".
func (t Type) String() string {
	switch t {
	case Short:
		return "short"
	case Long:
		return "long"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses "short" or "long" (case-insensitive).
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short":
		return Short, nil
	case "long":
		return Long, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownRestType, s)
}

// Recovery is the share of each maximum restored (AP, MP) or removed (HEX) by a
// rest, in whole percent.
type Recovery struct {
	APPercent  int
	MPPercent  int
	HEXPercent int
}

// Validate checks every percentage lies in [0, 100].
func (r Recovery) Validate() error {
	var errs []string
	checks := []struct {
		name string
		v    int
	}{{"ap", r.APPercent}, {"mp", r.MPPercent}, {"hex", r.HEXPercent}}
	for _, c := range checks {
		if c.v < 0 || c.v > 100 {
			errs = append(errs, fmt.Sprintf("%s percent must be 0-100, got %d", c.name, c.v))
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Rules holds the recovery configuration for both rest types.
type Rules struct {
	Short Recovery
	Long  Recovery
}

// DefaultRules restores half of AP and MP and a quarter of HEX on a short rest,
// and everything on a long rest.
func DefaultRules() Rules {
	return Rules{
		Short: Recovery{APPercent: 50, MPPercent: 50, HEXPercent: 25},
		Long:  Recovery{APPercent: 100, MPPercent: 100, HEXPercent: 100},
	}
}

// Validate checks both recoveries.
func (r Rules) Validate() error {
	if err := r.Short.Validate(); err != nil {
		return fmt.Errorf("short rest: %w", err)
	}
	if err := r.Long.Validate(); err != nil {
		return fmt.Errorf("long rest: %w", err)
	}
	return nil
}

// For returns the recovery for t.
func (r Rules) For(t Type) (Recovery, error) {
	switch t {
	case Short:
		return r.Short, nil
	case Long:
		return r.Long, nil
	}
	return Recovery{}, fmt.Errorf("%w: %v", ErrUnknownRestType, t)
}

// Apply returns the pool after a rest of type t under rules.
//
// Precondition: rules are valid.
// Postcondition: the result satisfies the pool invariant; AP and MP are never
// lower than in the (normalized) input; HEX is never higher.
func Apply(p resource.Pool, t Type, rules Rules) (resource.Pool, error) {
	rec, err := rules.For(t)
	if err != nil {
		return p, err
	}
	next := p.Normalize()
	next.CurrentAP = restore(next.CurrentAP, next.MaxAP, rec.APPercent)
	next.CurrentMP = restore(next.CurrentMP, next.MaxMP, rec.MPPercent)
	next.CurrentHEX = resource.Clamp(next.CurrentHEX-share(next.MaxHEX, rec.HEXPercent), next.MaxHEX)
	return next, nil
}

func restore(cur, limit, pct int) int {
	s := share(limit, pct)
	if s >= limit-cur {
		return max(cur, limit)
	}
	return cur + s
}

// share returns pct percent of limit, rounded up so that any non-zero
// percentage recovers at least one point. Computed in two parts so that
// limit*pct cannot overflow.
func share(limit, pct int) int {
	if limit <= 0 || pct <= 0 {
		return 0
	}
	return limit/100*pct + (limit%100*pct+99)/100
}
