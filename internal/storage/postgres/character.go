package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hexsheet/internal/game/character"
	"github.com/cory-johannsen/hexsheet/internal/game/resource"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

const characterColumns = `id, name, race, class, level, experience,
	strength, dexterity, constitution, intelligence, wisdom, charisma,
	current_ap, max_ap, current_mp, max_mp, current_hex, max_hex,
	hit_points, armor_class, initiative, speed_meters, speed_squares, gold,
	background, personality_traits, ideals, bonds, flaws, notes,
	created_at, updated_at`

// CharacterRepository provides character persistence operations.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	var c character.Character
	err := row.Scan(
		&c.ID, &c.Name, &c.Race, &c.Class, &c.Level, &c.Experience,
		&c.Strength, &c.Dexterity, &c.Constitution, &c.Intelligence, &c.Wisdom, &c.Charisma,
		&c.CurrentAP, &c.MaxAP, &c.CurrentMP, &c.MaxMP, &c.CurrentHEX, &c.MaxHEX,
		&c.HitPoints, &c.ArmorClass, &c.Initiative, &c.SpeedMeters, &c.SpeedSquares, &c.Gold,
		&c.Background, &c.PersonalityTraits, &c.Ideals, &c.Bonds, &c.Flaws, &c.Notes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new character and returns it with ID and timestamps set.
//
// Precondition: c must satisfy character.Validate.
// Postcondition: Returns the created character with ID set.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		INSERT INTO characters
			(name, race, class, level, experience,
			 strength, dexterity, constitution, intelligence, wisdom, charisma,
			 current_ap, max_ap, current_mp, max_mp, current_hex, max_hex,
			 hit_points, armor_class, initiative, speed_meters, speed_squares, gold,
			 background, personality_traits, ideals, bonds, flaws, notes)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,
		        $18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29)
		RETURNING `+characterColumns,
		c.Name, c.Race, c.Class, c.Level, c.Experience,
		c.Strength, c.Dexterity, c.Constitution, c.Intelligence, c.Wisdom, c.Charisma,
		c.CurrentAP, c.MaxAP, c.CurrentMP, c.MaxMP, c.CurrentHEX, c.MaxHEX,
		c.HitPoints, c.ArmorClass, c.Initiative, c.SpeedMeters, c.SpeedSquares, c.Gold,
		c.Background, c.PersonalityTraits, c.Ideals, c.Bonds, c.Flaws, c.Notes,
	))
	if err != nil {
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", character.ErrInvalidCharacter, err)
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// List returns all characters ordered by created_at.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) List(ctx context.Context) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx, `SELECT `+characterColumns+` FROM characters ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// GetByID retrieves a character by its primary key.
//
// Precondition: id must be > 0.
// Postcondition: Returns the Character or sheet.ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx, `SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, id)
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// Update replaces the descriptive fields of a character. The pool columns are
// written only by UpdateResources.
//
// Precondition: c.ID must be > 0 and c must satisfy character.Validate.
// Postcondition: Returns the updated Character or sheet.ErrCharacterNotFound.
func (r *CharacterRepository) Update(ctx context.Context, c *character.Character) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		UPDATE characters SET
			name = $2, race = $3, class = $4, level = $5, experience = $6,
			strength = $7, dexterity = $8, constitution = $9,
			intelligence = $10, wisdom = $11, charisma = $12,
			hit_points = $13, armor_class = $14, initiative = $15,
			speed_meters = $16, speed_squares = $17, gold = $18,
			background = $19, personality_traits = $20, ideals = $21,
			bonds = $22, flaws = $23, notes = $24,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+characterColumns,
		c.ID, c.Name, c.Race, c.Class, c.Level, c.Experience,
		c.Strength, c.Dexterity, c.Constitution, c.Intelligence, c.Wisdom, c.Charisma,
		c.HitPoints, c.ArmorClass, c.Initiative, c.SpeedMeters, c.SpeedSquares, c.Gold,
		c.Background, c.PersonalityTraits, c.Ideals, c.Bonds, c.Flaws, c.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, c.ID)
		}
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", character.ErrInvalidCharacter, err)
		}
		return nil, fmt.Errorf("updating character: %w", err)
	}
	return out, nil
}

// UpdateResources replaces the six pool columns in a single statement.
//
// Precondition: p must satisfy the pool invariant.
// Postcondition: Returns the updated Character or sheet.ErrCharacterNotFound.
func (r *CharacterRepository) UpdateResources(ctx context.Context, id int64, p resource.Pool) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		UPDATE characters SET
			current_ap = $2, max_ap = $3,
			current_mp = $4, max_mp = $5,
			current_hex = $6, max_hex = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+characterColumns,
		id, p.CurrentAP, p.MaxAP, p.CurrentMP, p.MaxMP, p.CurrentHEX, p.MaxHEX,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, id)
		}
		return nil, fmt.Errorf("updating resources: %w", err)
	}
	return out, nil
}

// Delete removes a character; its spells and items cascade.
//
// Postcondition: Returns nil on success, sheet.ErrCharacterNotFound if no row deleted.
func (r *CharacterRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, id)
	}
	return nil
}
