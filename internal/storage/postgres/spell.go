package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hexsheet/internal/game/spell"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

const spellColumns = `id, character_id, name, description, damage_dice, damage_type,
	ap_cost, mp_cost, hex_increment, casting_time, duration, range_distance, school`

// SpellRepository provides spell persistence operations.
type SpellRepository struct {
	db *pgxpool.Pool
}

// NewSpellRepository creates a SpellRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSpellRepository(db *pgxpool.Pool) *SpellRepository {
	return &SpellRepository{db: db}
}

func scanSpell(row pgx.Row) (*spell.Spell, error) {
	var s spell.Spell
	err := row.Scan(
		&s.ID, &s.CharacterID, &s.Name, &s.Description, &s.DamageDice, &s.DamageType,
		&s.APCost, &s.MPCost, &s.HexIncrement, &s.CastingTime, &s.Duration, &s.Range, &s.School,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a spell for s.CharacterID.
//
// Precondition: s must satisfy spell.Validate.
// Postcondition: Returns the created spell with ID set, or sheet.ErrCharacterNotFound
// if the owner does not exist.
func (r *SpellRepository) Create(ctx context.Context, s *spell.Spell) (*spell.Spell, error) {
	out, err := scanSpell(r.db.QueryRow(ctx, `
		INSERT INTO spells
			(character_id, name, description, damage_dice, damage_type,
			 ap_cost, mp_cost, hex_increment, casting_time, duration, range_distance, school)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+spellColumns,
		s.CharacterID, s.Name, s.Description, s.DamageDice, s.DamageType,
		s.APCost, s.MPCost, s.HexIncrement, s.CastingTime, s.Duration, s.Range, s.School,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, s.CharacterID)
		}
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", spell.ErrInvalidSpell, err)
		}
		return nil, fmt.Errorf("inserting spell: %w", err)
	}
	return out, nil
}

// ListByCharacter returns the spells of a character ordered by ID.
func (r *SpellRepository) ListByCharacter(ctx context.Context, characterID int64) ([]*spell.Spell, error) {
	rows, err := r.db.Query(ctx, `SELECT `+spellColumns+` FROM spells WHERE character_id = $1 ORDER BY id ASC`, characterID)
	if err != nil {
		return nil, fmt.Errorf("listing spells: %w", err)
	}
	defer rows.Close()

	spells := make([]*spell.Spell, 0)
	for rows.Next() {
		s, err := scanSpell(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning spell row: %w", err)
		}
		spells = append(spells, s)
	}
	return spells, rows.Err()
}

// GetByID retrieves a spell by its primary key.
//
// Postcondition: Returns the Spell or sheet.ErrSpellNotFound.
func (r *SpellRepository) GetByID(ctx context.Context, id int64) (*spell.Spell, error) {
	s, err := scanSpell(r.db.QueryRow(ctx, `SELECT `+spellColumns+` FROM spells WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrSpellNotFound, id)
		}
		return nil, fmt.Errorf("querying spell: %w", err)
	}
	return s, nil
}

// Update replaces the editable fields of a spell; its owner never changes.
//
// Postcondition: Returns the updated Spell or sheet.ErrSpellNotFound.
func (r *SpellRepository) Update(ctx context.Context, s *spell.Spell) (*spell.Spell, error) {
	out, err := scanSpell(r.db.QueryRow(ctx, `
		UPDATE spells SET
			name = $2, description = $3, damage_dice = $4, damage_type = $5,
			ap_cost = $6, mp_cost = $7, hex_increment = $8,
			casting_time = $9, duration = $10, range_distance = $11, school = $12
		WHERE id = $1
		RETURNING `+spellColumns,
		s.ID, s.Name, s.Description, s.DamageDice, s.DamageType,
		s.APCost, s.MPCost, s.HexIncrement, s.CastingTime, s.Duration, s.Range, s.School,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrSpellNotFound, s.ID)
		}
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", spell.ErrInvalidSpell, err)
		}
		return nil, fmt.Errorf("updating spell: %w", err)
	}
	return out, nil
}

// Delete removes a spell.
//
// Postcondition: Returns nil on success, sheet.ErrSpellNotFound if no row deleted.
func (r *SpellRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM spells WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting spell: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", sheet.ErrSpellNotFound, id)
	}
	return nil
}
