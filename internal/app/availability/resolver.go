// Package availability resolves what may be ordered for an arbitrary date
// and the per-destination delivery fees for that date.
package availability

import (
	"context"
	"sync"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

// Resolver answers date-scoped availability questions. Lookups are read-only
// and cached per date; any lookup error fails open so a broken rules table
// never blocks ordering.
type Resolver struct {
	repo   interfaces.AvailabilityRepository
	logger logger.Logger

	mu    sync.Mutex
	cache map[string]*cacheEntry
}

type cacheEntry struct {
	rule *domain.AvailabilityRule // nil means no rule exists for the date
}

func NewResolver(repo interfaces.AvailabilityRepository, lgr logger.Logger) *Resolver {
	return &Resolver{
		repo:   repo,
		logger: lgr,
		cache:  make(map[string]*cacheEntry),
	}
}

// ResolveForDate returns the rule governing a date, or nil when the date is
// unrestricted. No rule means fail-open: everything is available. A rule
// with an empty entry set means everything is unavailable.
func (r *Resolver) ResolveForDate(ctx context.Context, date string) (*domain.AvailabilityRule, error) {
	r.mu.Lock()
	if entry, ok := r.cache[date]; ok {
		r.mu.Unlock()
		return entry.rule, nil
	}
	r.mu.Unlock()

	rule, err := r.repo.FindByDate(ctx, date)
	if err != nil {
		// Fail open: treat a broken lookup as an unrestricted date, but do
		// not cache the failure.
		r.logger.Error("availability_lookup_failed", "Failed to load availability rule, failing open", "", map[string]interface{}{
			"date": date,
		}, err)
		return nil, nil
	}

	r.mu.Lock()
	r.cache[date] = &cacheEntry{rule: rule}
	r.mu.Unlock()

	return rule, nil
}

// CheckCart returns descriptions of the cart lines that may not be ordered
// for the date. An empty result means the whole cart is available.
func (r *Resolver) CheckCart(ctx context.Context, date string, lines []domain.CartLine) []string {
	rule, _ := r.ResolveForDate(ctx, date)
	if rule == nil {
		return nil
	}

	var unavailable []string
	for _, line := range lines {
		if rule.Empty() || !rule.AllowsLine(line) {
			unavailable = append(unavailable, domain.DescribeLine(line))
		}
	}
	return unavailable
}

// FeesForDate returns the destination→fee table for a date. A date without
// a rule has no fees.
func (r *Resolver) FeesForDate(ctx context.Context, date string) map[string]float64 {
	rule, _ := r.ResolveForDate(ctx, date)
	if rule == nil {
		return map[string]float64{}
	}
	fees := make(map[string]float64, len(rule.Fees))
	for dest, fee := range rule.Fees {
		fees[dest] = fee
	}
	return fees
}

// FeeFor returns the delivery fee for one destination; a missing date or
// destination costs 0.
func (r *Resolver) FeeFor(ctx context.Context, date, destination string) float64 {
	rule, _ := r.ResolveForDate(ctx, date)
	return rule.FeeFor(destination)
}
