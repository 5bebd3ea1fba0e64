package verification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

type stubOrderRepo struct {
	orders  map[string]*domain.Order
	byDay   map[string][]*domain.Order
	dayErr  error
	updated int
}

func newStubOrderRepo(orders ...*domain.Order) *stubOrderRepo {
	s := &stubOrderRepo{
		orders: make(map[string]*domain.Order),
		byDay:  make(map[string][]*domain.Order),
	}
	for _, o := range orders {
		s.orders[o.ID] = o
		day := o.CreatedAt.UTC().Format("2006-01-02")
		s.byDay[day] = append(s.byDay[day], o)
	}
	return s
}

func (s *stubOrderRepo) Create(ctx context.Context, order *domain.Order) error { return nil }

func (s *stubOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *stubOrderRepo) List(ctx context.Context, status *domain.Status) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range s.orders {
		if status == nil || o.Status == *status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) ListForDay(ctx context.Context, day string) ([]*domain.Order, error) {
	if s.dayErr != nil {
		return nil, s.dayErr
	}
	return s.byDay[day], nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, order *domain.Order) error {
	if _, ok := s.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	s.orders[order.ID] = order
	s.updated++
	return nil
}

type stubLedger struct {
	exports []interfaces.LedgerExport
	err     error
}

func (s *stubLedger) Push(ctx context.Context, export interfaces.LedgerExport) error {
	if s.err != nil {
		return s.err
	}
	s.exports = append(s.exports, export)
	return nil
}

func pendingOrder(id string, created time.Time) *domain.Order {
	date, clock := "2025-12-24", "10:00"
	return &domain.Order{
		ID:            id,
		CustomerName:  "Maria Santos",
		ContactNumber: "09171234567",
		ServiceType:   domain.ServicePickup,
		PickupDate:    &date,
		PickupTime:    &clock,
		PaymentMethod: "gcash",
		PaymentType:   domain.PaymentFull,
		Total:         5400,
		Status:        domain.StatusPending,
		CreatedAt:     created,
		UpdatedAt:     created,
		Lines: []domain.OrderLine{
			{OrderID: id, MenuItemID: "lechon-belly", Name: "Lechon Belly", Selection: domain.NoSelection(), UnitPrice: 2700, Quantity: 2, Subtotal: 5400},
		},
	}
}

func newTestWorkflow(repo *stubOrderRepo, ledger *stubLedger) *Workflow {
	return NewWorkflow(repo, ledger, logger.NewNop())
}

func TestApprove(t *testing.T) {
	created := time.Date(2025, 12, 20, 9, 0, 0, 0, time.UTC)
	repo := newStubOrderRepo(pendingOrder("order-1", created))
	w := newTestWorkflow(repo, &stubLedger{})

	order, err := w.Approve(context.Background(), "order-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, order.Status)
	require.NotNil(t, order.VerifiedBy)
	assert.Equal(t, "admin", *order.VerifiedBy)
	assert.Equal(t, 1, repo.updated)
}

func TestApproveIdempotent(t *testing.T) {
	o := pendingOrder("order-1", time.Now().UTC())
	o.Status = domain.StatusApproved
	repo := newStubOrderRepo(o)
	w := newTestWorkflow(repo, &stubLedger{})

	order, err := w.Approve(context.Background(), "order-1", "admin")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, order.Status)
	assert.Zero(t, repo.updated, "no write for an already-approved order")
}

func TestApproveRejectedFails(t *testing.T) {
	o := pendingOrder("order-1", time.Now().UTC())
	o.Status = domain.StatusRejected
	w := newTestWorkflow(newStubOrderRepo(o), &stubLedger{})

	_, err := w.Approve(context.Background(), "order-1", "admin")
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
}

func TestApproveNotFound(t *testing.T) {
	w := newTestWorkflow(newStubOrderRepo(), &stubLedger{})

	_, err := w.Approve(context.Background(), "missing", "admin")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestRejectRequiresConfirmation(t *testing.T) {
	repo := newStubOrderRepo(pendingOrder("order-1", time.Now().UTC()))
	w := newTestWorkflow(repo, &stubLedger{})

	_, err := w.Reject(context.Background(), "order-1", "admin", false)
	assert.ErrorIs(t, err, domain.ErrConfirmationRequired)
	assert.Zero(t, repo.updated)

	order, err := w.Reject(context.Background(), "order-1", "admin", true)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, order.Status)
}

func TestSyncApprovedOrder(t *testing.T) {
	o := pendingOrder("order-1", time.Now().UTC())
	o.Status = domain.StatusApproved
	repo := newStubOrderRepo(o)
	ledger := &stubLedger{}
	w := newTestWorkflow(repo, ledger)

	order, err := w.Sync(context.Background(), "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSynced, order.Status)
	assert.True(t, order.SyncedToLedger)
	require.NotNil(t, order.SyncedAt)

	require.Len(t, ledger.exports, 1)
	assert.Equal(t, "order-1", ledger.exports[0].OrderID)
}

func TestSyncPendingFailsPrecondition(t *testing.T) {
	repo := newStubOrderRepo(pendingOrder("order-1", time.Now().UTC()))
	ledger := &stubLedger{}
	w := newTestWorkflow(repo, ledger)

	_, err := w.Sync(context.Background(), "order-1")
	assert.ErrorIs(t, err, domain.ErrPreconditionFailed)
	assert.Empty(t, ledger.exports, "nothing is pushed before the precondition check")
}

func TestSyncDispatchFailureLeavesOrderApproved(t *testing.T) {
	o := pendingOrder("order-1", time.Now().UTC())
	o.Status = domain.StatusApproved
	repo := newStubOrderRepo(o)
	w := newTestWorkflow(repo, &stubLedger{err: errors.New("webhook unreachable")})

	_, err := w.Sync(context.Background(), "order-1")
	require.ErrorIs(t, err, domain.ErrSyncFailed)

	stored, _ := repo.FindByID(context.Background(), "order-1")
	assert.Equal(t, domain.StatusApproved, stored.Status, "order stays approved for a manual retry")
	assert.False(t, stored.SyncedToLedger)
	assert.Zero(t, repo.updated)
}

func TestListCarriesDisplayNumbers(t *testing.T) {
	created := time.Date(2025, 12, 29, 9, 0, 0, 0, time.UTC)
	first := pendingOrder("order-1", created)
	second := pendingOrder("order-2", created.Add(time.Hour))
	repo := newStubOrderRepo(first, second)
	w := newTestWorkflow(repo, &stubLedger{})

	views, err := w.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, views, 2)

	numbers := make(map[string]string)
	for _, v := range views {
		numbers[v.Order.ID] = v.DisplayNumber
	}
	assert.Equal(t, "12m29d-1", numbers["order-1"])
	assert.Equal(t, "12m29d-2", numbers["order-2"])
}

func TestListDegradesNumbersOnDayQueryFailure(t *testing.T) {
	created := time.Date(2025, 12, 29, 9, 0, 0, 0, time.UTC)
	repo := newStubOrderRepo(pendingOrder("01HV3EXAMPLEULID0000000000", created))
	repo.dayErr = errors.New("query failed")
	w := newTestWorkflow(repo, &stubLedger{})

	views, err := w.List(context.Background(), nil)
	require.NoError(t, err, "a failing day query never fails the listing")
	require.Len(t, views, 1)
	assert.Equal(t, "01HV3EXA", views[0].DisplayNumber, "falls back to the truncated id")
}

func TestListFiltersByStatus(t *testing.T) {
	first := pendingOrder("order-1", time.Now().UTC())
	second := pendingOrder("order-2", time.Now().UTC())
	second.Status = domain.StatusApproved
	repo := newStubOrderRepo(first, second)
	w := newTestWorkflow(repo, &stubLedger{})

	status := domain.StatusApproved
	views, err := w.List(context.Background(), &status)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "order-2", views[0].Order.ID)
}
