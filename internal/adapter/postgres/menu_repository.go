package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

// menuRepository is the read-only MenuCatalog collaborator. Catalog writes
// belong to the admin surface, not this pipeline.
type menuRepository struct {
	db DB
}

func NewMenuRepository(db DB) interfaces.MenuCatalog {
	return &menuRepository{db: db}
}

func (r *menuRepository) FindItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	query := `SELECT id, name, base_price, category, variations, add_ons FROM menu_items WHERE id = $1`

	item, err := scanMenuItem(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("menu item not found: %s", id)
		}
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	return item, nil
}

func (r *menuRepository) ListItems(ctx context.Context) ([]*domain.MenuItem, error) {
	query := `SELECT id, name, base_price, category, variations, add_ons FROM menu_items ORDER BY category, name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []*domain.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanMenuItem(row Row) (*domain.MenuItem, error) {
	var item domain.MenuItem
	var variations, addOns []byte
	if err := row.Scan(&item.ID, &item.Name, &item.BasePrice, &item.Category, &variations, &addOns); err != nil {
		return nil, err
	}
	if len(variations) > 0 {
		if err := json.Unmarshal(variations, &item.Variations); err != nil {
			return nil, fmt.Errorf("failed to decode variations: %w", err)
		}
	}
	if len(addOns) > 0 {
		if err := json.Unmarshal(addOns, &item.AddOns); err != nil {
			return nil, fmt.Errorf("failed to decode add-ons: %w", err)
		}
	}
	return &item, nil
}
