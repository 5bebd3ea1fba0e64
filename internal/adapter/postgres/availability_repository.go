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

type availabilityRepository struct {
	db DB
}

func NewAvailabilityRepository(db DB) interfaces.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

// FindByDate loads the single rule for a date. Absence of a rule is not an
// error; the resolver treats it as an unrestricted date.
func (r *availabilityRepository) FindByDate(ctx context.Context, date string) (*domain.AvailabilityRule, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM-DD'), legacy_item_ids, entries, fees
		FROM availability_rules
		WHERE date = $1::date
	`

	var legacyIDs, entries, fees []byte
	rule := &domain.AvailabilityRule{Date: date}
	err := r.db.QueryRow(ctx, query, date).Scan(&rule.Date, &legacyIDs, &entries, &fees)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load availability rule: %w", err)
	}

	if len(legacyIDs) > 0 {
		if err := json.Unmarshal(legacyIDs, &rule.LegacyItemIDs); err != nil {
			return nil, fmt.Errorf("failed to decode legacy item ids: %w", err)
		}
	}
	if len(entries) > 0 {
		if err := json.Unmarshal(entries, &rule.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode availability entries: %w", err)
		}
	}
	if len(fees) > 0 {
		if err := json.Unmarshal(fees, &rule.Fees); err != nil {
			return nil, fmt.Errorf("failed to decode delivery fees: %w", err)
		}
	}

	return rule, nil
}
