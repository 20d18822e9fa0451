// Package character defines the character sheet record and its pure update rules.
package character

import (
	"time"

	"github.com/cory-johannsen/hexsheet/internal/game/resource"
)

// Ability score bounds and the score a new character starts with.
const (
	MinAbility     = 1
	MaxAbility     = 100
	DefaultAbility = 50
)

// AbilityScores holds the six 1-100 ability scores.
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// DefaultAbilities returns every score at DefaultAbility.
func DefaultAbilities() AbilityScores {
	return AbilityScores{
		Strength: DefaultAbility, Dexterity: DefaultAbility, Constitution: DefaultAbility,
		Intelligence: DefaultAbility, Wisdom: DefaultAbility, Charisma: DefaultAbility,
	}
}

// Named returns the scores keyed by their snake_case names, in sheet order.
func (a AbilityScores) Named() []NamedScore {
	return []NamedScore{
		{"strength", a.Strength},
		{"dexterity", a.Dexterity},
		{"constitution", a.Constitution},
		{"intelligence", a.Intelligence},
		{"wisdom", a.Wisdom},
		{"charisma", a.Charisma},
	}
}

// NamedScore pairs an ability name with its value.
type NamedScore struct {
	Name  string
	Value int
}

// Character is a player's character sheet.
//
// ID is set by the persistence layer; zero indicates an unsaved character. The
// embedded Pool is exclusively owned by the character and is mutated only through
// the resource, spell and rest packages.
type Character struct {
	ID int64 `json:"id"`

	Name       string `json:"name"`
	Race       string `json:"race"`
	Class      string `json:"class"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`

	AbilityScores
	resource.Pool

	HitPoints    int     `json:"hit_points"`
	ArmorClass   int     `json:"armor_class"`
	Initiative   int     `json:"initiative"`
	SpeedMeters  float64 `json:"speed_meters"`
	SpeedSquares int     `json:"speed_squares"`
	Gold         int     `json:"gold"`

	Background        string `json:"background"`
	PersonalityTraits string `json:"personality_traits"`
	Ideals            string `json:"ideals"`
	Bonds             string `json:"bonds"`
	Flaws             string `json:"flaws"`
	Notes             string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
