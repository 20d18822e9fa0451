package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/hexsheet/internal/game/inventory"
	"github.com/cory-johannsen/hexsheet/internal/sheet"
)

const itemColumns = `id, character_id, name, description, item_type,
	quantity, unit_price, total_value, weight,
	is_equipped, armor_class_bonus, damage_dice, magical_effects`

// ItemRepository provides inventory persistence operations.
type ItemRepository struct {
	db *pgxpool.Pool
}

// NewItemRepository creates an ItemRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewItemRepository(db *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{db: db}
}

func scanItem(row pgx.Row) (*inventory.Item, error) {
	var it inventory.Item
	err := row.Scan(
		&it.ID, &it.CharacterID, &it.Name, &it.Description, &it.Type,
		&it.Quantity, &it.UnitPrice, &it.TotalValue, &it.Weight,
		&it.Equipped, &it.ArmorClassBonus, &it.DamageDice, &it.MagicalEffects,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Create inserts an item for it.CharacterID.
//
// Precondition: it must satisfy inventory.Item.Validate.
// Postcondition: Returns the created item with ID set, or sheet.ErrCharacterNotFound
// if the owner does not exist.
func (r *ItemRepository) Create(ctx context.Context, it *inventory.Item) (*inventory.Item, error) {
	out, err := scanItem(r.db.QueryRow(ctx, `
		INSERT INTO items
			(character_id, name, description, item_type, quantity, unit_price, total_value,
			 weight, is_equipped, armor_class_bonus, damage_dice, magical_effects)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING `+itemColumns,
		it.CharacterID, it.Name, it.Description, it.Type, it.Quantity, it.UnitPrice, it.TotalValue,
		it.Weight, it.Equipped, it.ArmorClassBonus, it.DamageDice, it.MagicalEffects,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrCharacterNotFound, it.CharacterID)
		}
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", inventory.ErrInvalidItem, err)
		}
		return nil, fmt.Errorf("inserting item: %w", err)
	}
	return out, nil
}

// ListByCharacter returns the items of a character ordered by ID.
func (r *ItemRepository) ListByCharacter(ctx context.Context, characterID int64) ([]*inventory.Item, error) {
	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE character_id = $1 ORDER BY id ASC`, characterID)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	items := make([]*inventory.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// GetByID retrieves an item by its primary key.
//
// Postcondition: Returns the Item or sheet.ErrItemNotFound.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*inventory.Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrItemNotFound, id)
		}
		return nil, fmt.Errorf("querying item: %w", err)
	}
	return it, nil
}

// Update replaces the editable fields of an item; its owner never changes.
//
// Postcondition: Returns the updated Item or sheet.ErrItemNotFound.
func (r *ItemRepository) Update(ctx context.Context, it *inventory.Item) (*inventory.Item, error) {
	out, err := scanItem(r.db.QueryRow(ctx, `
		UPDATE items SET
			name = $2, description = $3, item_type = $4, quantity = $5,
			unit_price = $6, total_value = $7, weight = $8, is_equipped = $9,
			armor_class_bonus = $10, damage_dice = $11, magical_effects = $12
		WHERE id = $1
		RETURNING `+itemColumns,
		it.ID, it.Name, it.Description, it.Type, it.Quantity,
		it.UnitPrice, it.TotalValue, it.Weight, it.Equipped,
		it.ArmorClassBonus, it.DamageDice, it.MagicalEffects,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrItemNotFound, it.ID)
		}
		if isCheckViolation(err) {
			return nil, fmt.Errorf("%w: %v", inventory.ErrInvalidItem, err)
		}
		return nil, fmt.Errorf("updating item: %w", err)
	}
	return out, nil
}

// SetEquipped sets the equipped flag of an item.
//
// Postcondition: Returns the updated Item or sheet.ErrItemNotFound.
func (r *ItemRepository) SetEquipped(ctx context.Context, id int64, equipped bool) (*inventory.Item, error) {
	out, err := scanItem(r.db.QueryRow(ctx,
		`UPDATE items SET is_equipped = $2 WHERE id = $1 RETURNING `+itemColumns,
		id, equipped,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %d", sheet.ErrItemNotFound, id)
		}
		return nil, fmt.Errorf("setting equipped: %w", err)
	}
	return out, nil
}

// Delete removes an item.
//
// Postcondition: Returns nil on success, sheet.ErrItemNotFound if no row deleted.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", sheet.ErrItemNotFound, id)
	}
	return nil
}
