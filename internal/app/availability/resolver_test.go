package availability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/domain"
)

type stubAvailabilityRepo struct {
	rules map[string]*domain.AvailabilityRule
	err   error
	calls int
}

func (s *stubAvailabilityRepo) FindByDate(ctx context.Context, date string) (*domain.AvailabilityRule, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rules[date], nil
}

func cartLine(itemID string) domain.CartLine {
	return domain.CartLine{MenuItemID: itemID, Name: itemID, UnitPrice: 100, Quantity: 1, Selection: domain.NoSelection()}
}

func TestResolveForDateUnrestricted(t *testing.T) {
	repo := &stubAvailabilityRepo{rules: map[string]*domain.AvailabilityRule{}}
	r := NewResolver(repo, logger.NewNop())

	rule, err := r.ResolveForDate(context.Background(), "2025-12-24")
	require.NoError(t, err)
	assert.Nil(t, rule)

	assert.Nil(t, r.CheckCart(context.Background(), "2025-12-24", []domain.CartLine{cartLine("anything")}),
		"no rule means everything is available")
}

func TestResolveForDateFailsOpenOnLookupError(t *testing.T) {
	repo := &stubAvailabilityRepo{err: errors.New("connection refused")}
	r := NewResolver(repo, logger.NewNop())

	rule, err := r.ResolveForDate(context.Background(), "2025-12-24")
	require.NoError(t, err)
	assert.Nil(t, rule)

	assert.Empty(t, r.CheckCart(context.Background(), "2025-12-24", []domain.CartLine{cartLine("lechon-belly")}))

	// Failures are not cached; the next resolve hits the repo again.
	_, _ = r.ResolveForDate(context.Background(), "2025-12-24")
	assert.Equal(t, 3, repo.calls)
}

func TestResolveForDateCachesResults(t *testing.T) {
	repo := &stubAvailabilityRepo{rules: map[string]*domain.AvailabilityRule{
		"2025-12-24": {Date: "2025-12-24", LegacyItemIDs: []string{"lechon-belly"}},
	}}
	r := NewResolver(repo, logger.NewNop())

	for i := 0; i < 3; i++ {
		rule, err := r.ResolveForDate(context.Background(), "2025-12-24")
		require.NoError(t, err)
		require.NotNil(t, rule)
	}
	assert.Equal(t, 1, repo.calls)

	// Absence of a rule is cached too.
	_, _ = r.ResolveForDate(context.Background(), "2025-12-25")
	_, _ = r.ResolveForDate(context.Background(), "2025-12-25")
	assert.Equal(t, 2, repo.calls)
}

func TestCheckCartAgainstRule(t *testing.T) {
	repo := &stubAvailabilityRepo{rules: map[string]*domain.AvailabilityRule{
		"2025-12-24": {
			Date:    "2025-12-24",
			Entries: []domain.AvailableEntry{{ItemID: "lechon-belly", Scope: domain.ScopeBase}},
		},
	}}
	r := NewResolver(repo, logger.NewNop())

	unavailable := r.CheckCart(context.Background(), "2025-12-24", []domain.CartLine{
		cartLine("lechon-belly"),
		cartLine("whole-lechon"),
	})
	assert.Equal(t, []string{"whole-lechon"}, unavailable)
}

func TestCheckCartEmptyRuleBlocksEverything(t *testing.T) {
	repo := &stubAvailabilityRepo{rules: map[string]*domain.AvailabilityRule{
		"2025-12-24": {Date: "2025-12-24"},
	}}
	r := NewResolver(repo, logger.NewNop())

	unavailable := r.CheckCart(context.Background(), "2025-12-24", []domain.CartLine{
		cartLine("lechon-belly"),
		cartLine("whole-lechon"),
	})
	assert.Len(t, unavailable, 2)
}

func TestFees(t *testing.T) {
	repo := &stubAvailabilityRepo{rules: map[string]*domain.AvailabilityRule{
		"2025-12-24": {
			Date:          "2025-12-24",
			LegacyItemIDs: []string{"lechon-belly"},
			Fees:          map[string]float64{"Talisay": 50},
		},
	}}
	r := NewResolver(repo, logger.NewNop())

	fees := r.FeesForDate(context.Background(), "2025-12-24")
	assert.Equal(t, map[string]float64{"Talisay": 50}, fees)

	// The returned map is a copy; mutating it does not poison the cache.
	fees["Talisay"] = 9999
	assert.Equal(t, 50.0, r.FeeFor(context.Background(), "2025-12-24", "Talisay"))

	assert.Equal(t, 0.0, r.FeeFor(context.Background(), "2025-12-24", "Mandaue"))
	assert.Empty(t, r.FeesForDate(context.Background(), "2025-12-25"))
}
