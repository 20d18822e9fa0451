// Package spell defines spell records and the cast resolution engine.
package spell

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for descriptive fields left empty on creation.
const (
	DefaultCastingTime = "1 action"
	DefaultDuration    = "instantaneous"
	DefaultRange       = "30m"
	DefaultSchool      = "evocation"
)

// ErrInvalidSpell is returned when a spell definition violates its invariants.
var ErrInvalidSpell = errors.New("invalid spell")

// Spell is a castable spell owned by a character. Only the three cost fields are
// interpreted by the engine.
type Spell struct {
	ID          int64  `json:"id" yaml:"-"`
	CharacterID int64  `json:"character_id" yaml:"-"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	DamageDice  string `json:"damage_dice" yaml:"damage_dice"`
	DamageType  string `json:"damage_type" yaml:"damage_type"`

	APCost       int `json:"ap_cost" yaml:"ap_cost"`
	MPCost       int `json:"mp_cost" yaml:"mp_cost"`
	HexIncrement int `json:"hex_increment" yaml:"hex_increment"`

	CastingTime string `json:"casting_time" yaml:"casting_time"`
	Duration    string `json:"duration" yaml:"duration"`
	Range       string `json:"range_distance" yaml:"range_distance"`
	School      string `json:"school" yaml:"school"`
}

// ApplyDefaults fills empty descriptive fields with their defaults.
func (s *Spell) ApplyDefaults() {
	if s.CastingTime == "" {
		s.CastingTime = DefaultCastingTime
	}
	if s.Duration == "" {
		s.Duration = DefaultDuration
	}
	if s.Range == "" {
		s.Range = DefaultRange
	}
	if s.School == "" {
		s.School = DefaultSchool
	}
}

// Validate checks that the spell has a name and non-negative costs.
//
// Postcondition: returns nil iff all fields are valid; otherwise the error wraps
// ErrInvalidSpell.
func (s Spell) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if s.APCost < 0 {
		errs = append(errs, fmt.Errorf("ap_cost must be >= 0, got %d", s.APCost))
	}
	if s.MPCost < 0 {
		errs = append(errs, fmt.Errorf("mp_cost must be >= 0, got %d", s.MPCost))
	}
	if s.HexIncrement < 0 {
		errs = append(errs, fmt.Errorf("hex_increment must be >= 0, got %d", s.HexIncrement))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w %q: %v", ErrInvalidSpell, s.Name, errs)
	}
	return nil
}

type catalog struct {
	Spells []*Spell `yaml:"spells"`
}

// LoadSpells reads a YAML spell catalog of the form `spells: [...]`, applies
// defaults and validates every entry.
//
// Precondition: path names a readable YAML file.
// Postcondition: returns all spells in file order, or the first error encountered.
func LoadSpells(path string) ([]*Spell, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spell catalog %s: %w", path, err)
	}
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing spell catalog %s: %w", path, err)
	}
	seen := make(map[string]bool, len(c.Spells))
	for i, s := range c.Spells {
		if s == nil {
			return nil, fmt.Errorf("spell catalog %s: entry %d is empty", path, i)
		}
		s.ApplyDefaults()
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("spell catalog %s: entry %d: %w", path, i, err)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("spell catalog %s: duplicate spell %q", path, s.Name)
		}
		seen[s.Name] = true
	}
	return c.Spells, nil
}
