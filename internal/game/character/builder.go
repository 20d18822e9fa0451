package character

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/hexsheet/internal/game/resource"
)

// ErrInvalidCharacter is returned when a character violates its invariants.
var ErrInvalidCharacter = errors.New("invalid character")

// ErrUnknownMax is returned by SetMax for a field other than max_ap, max_mp, max_hex.
var ErrUnknownMax = errors.New("unknown maximum")

// New constructs a level 1 character with default abilities and a full default pool.
//
// Precondition: name must be non-empty.
// Postcondition: Returns a Character ready for persistence, or a non-nil error.
func New(name, race, class string) (*Character, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidCharacter)
	}
	return &Character{
		Name:          name,
		Race:          race,
		Class:         class,
		Level:         1,
		AbilityScores: DefaultAbilities(),
		Pool:          resource.NewPool(),
	}, nil
}

// Normalize fills unset maxima and ability scores with defaults and clamps the
// pool. Creation paths call it before Validate.
func (c *Character) Normalize() {
	if c.Level < 1 {
		c.Level = 1
	}
	scores := []*int{
		&c.Strength, &c.Dexterity, &c.Constitution,
		&c.Intelligence, &c.Wisdom, &c.Charisma,
	}
	for _, s := range scores {
		if *s == 0 {
			*s = DefaultAbility
		}
	}
	c.Pool = c.Pool.WithDefaults().Normalize()
}

// Validate checks every character invariant.
//
// Postcondition: returns nil iff the name is set, level >= 1, every ability is in
// [MinAbility, MaxAbility] and the pool is valid; otherwise the error wraps
// ErrInvalidCharacter.
func (c *Character) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if c.Level < 1 {
		errs = append(errs, fmt.Sprintf("level must be >= 1, got %d", c.Level))
	}
	if c.Experience < 0 {
		errs = append(errs, fmt.Sprintf("experience must be >= 0, got %d", c.Experience))
	}
	for _, s := range c.AbilityScores.Named() {
		if s.Value < MinAbility || s.Value > MaxAbility {
			errs = append(errs, fmt.Sprintf("%s must be %d-%d, got %d", s.Name, MinAbility, MaxAbility, s.Value))
		}
	}
	if err := c.Pool.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidCharacter, strings.Join(errs, "; "))
	}
	return nil
}

// SetMax changes one resource maximum and re-clamps the matching current value
// into the new range. Negative maxima are raised to 0.
func SetMax(p resource.Pool, key string, value int) (resource.Pool, error) {
	if value < 0 {
		value = 0
	}
	switch key {
	case "max_ap":
		p.MaxAP = value
	case "max_mp":
		p.MaxMP = value
	case "max_hex":
		p.MaxHEX = value
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownMax, key)
	}
	return p.Normalize(), nil
}

// AbilityName returns the short display label for an ability score.
func AbilityName(field string) string {
	names := map[string]string{
		"strength":     "STR",
		"dexterity":    "DEX",
		"constitution": "CON",
		"intelligence": "INT",
		"wisdom":       "WIS",
		"charisma":     "CHA",
	}
	if n, ok := names[field]; ok {
		return n
	}
	return fmt.Sprintf("<%s>", field)
}
