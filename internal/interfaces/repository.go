package interfaces

import (
	"context"

	"github.com/YammiGb/lechon-orders/internal/domain"
)

type OrderRepository interface {
	// Create inserts the order row first and the line items after it. When a
	// line insert fails after the order row is committed, Create returns an
	// error wrapping domain.ErrPartialWrite and leaves the order in place.
	Create(ctx context.Context, order *domain.Order) error

	FindByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders newest first, optionally filtered by status.
	List(ctx context.Context, status *domain.Status) ([]*domain.Order, error)

	// ListForDay returns the orders created on a calendar day (YYYY-MM-DD),
	// oldest first. Display numbers are derived from this ordering.
	ListForDay(ctx context.Context, day string) ([]*domain.Order, error)

	// UpdateStatus persists the only mutable order fields: status, verifier
	// identity/time and the sync flag/time.
	UpdateStatus(ctx context.Context, order *domain.Order) error
}

type AvailabilityRepository interface {
	// FindByDate returns the rule for a date, or (nil, nil) when no rule
	// exists for it.
	FindByDate(ctx context.Context, date string) (*domain.AvailabilityRule, error)
}

// MenuCatalog is the read-only catalog collaborator.
type MenuCatalog interface {
	FindItem(ctx context.Context, id string) (*domain.MenuItem, error)
	ListItems(ctx context.Context) ([]*domain.MenuItem, error)
}
