package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/app/session"
	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

type stubOrderRepo struct {
	orders    map[string]*domain.Order
	createErr error
	dayErr    error
	created   []*domain.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]*domain.Order)}
}

func (s *stubOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.orders[order.ID] = order
	s.created = append(s.created, order)
	return nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (s *stubOrderRepo) List(ctx context.Context, status *domain.Status) ([]*domain.Order, error) {
	var out []*domain.Order
	for i := len(s.created) - 1; i >= 0; i-- {
		o := s.created[i]
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
	var out []*domain.Order
	for _, o := range s.created {
		if o.CreatedAt.UTC().Format("2006-01-02") == day {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, order *domain.Order) error {
	if _, ok := s.orders[order.ID]; !ok {
		return domain.ErrOrderNotFound
	}
	s.orders[order.ID] = order
	return nil
}

type stubAvailability struct {
	unavailable []string
	fees        map[string]float64
	feeCalls    int
}

func (s *stubAvailability) ResolveForDate(ctx context.Context, date string) (*domain.AvailabilityRule, error) {
	return nil, nil
}

func (s *stubAvailability) CheckCart(ctx context.Context, date string, lines []domain.CartLine) []string {
	return s.unavailable
}

func (s *stubAvailability) FeesForDate(ctx context.Context, date string) map[string]float64 {
	return s.fees
}

func (s *stubAvailability) FeeFor(ctx context.Context, date, destination string) float64 {
	s.feeCalls++
	return s.fees[destination]
}

type stubPublisher struct {
	messages []interfaces.OrderCreatedMessage
	err      error
}

func (s *stubPublisher) PublishOrderCreated(ctx context.Context, msg interfaces.OrderCreatedMessage) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

type stubGuard struct {
	duplicate bool
	recorded  int
	submitted bool
}

func (s *stubGuard) IsDuplicate(now time.Time, draft domain.OrderDraft) bool { return s.duplicate }
func (s *stubGuard) Record(now time.Time, draft domain.OrderDraft)           { s.recorded++ }
func (s *stubGuard) MarkSubmitted(now time.Time)                             { s.submitted = true }

func strPtr(s string) *string { return &s }

func validCommand() interfaces.CreateOrderCommand {
	return interfaces.CreateOrderCommand{
		CustomerName:  "Maria Santos",
		ContactNumber: "09171234567",
		ServiceType:   "pickup",
		ScheduleDate:  "2025-12-24",
		ScheduleTime:  "10:00",
		PaymentMethod: "gcash",
		PaymentType:   "full_payment",
		Lines: []interfaces.CreateOrderLineCommand{
			{MenuItemID: "lechon-belly", Name: "Lechon Belly", UnitPrice: 2700, Quantity: 2},
		},
	}
}

func newTestService(repo *stubOrderRepo, avail *stubAvailability, pub *stubPublisher) *Service {
	return NewService(repo, avail, pub, logger.NewNop())
}

func TestCreateOrderHappyPath(t *testing.T) {
	repo := newStubOrderRepo()
	pub := &stubPublisher{}
	svc := newTestService(repo, &stubAvailability{}, pub)
	guard := &stubGuard{}

	result, err := svc.CreateOrder(context.Background(), guard, validCommand())
	require.NoError(t, err)

	assert.Equal(t, 5400.0, result.Order.Total)
	assert.Equal(t, domain.StatusPending, result.Order.Status)
	assert.NotEmpty(t, result.Order.ID)
	assert.NotEmpty(t, result.DisplayNumber)

	assert.Equal(t, 1, guard.recorded)
	assert.True(t, guard.submitted)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, result.Order.ID, pub.messages[0].OrderID)
}

func TestCreateOrderDuplicateFastFail(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newTestService(repo, &stubAvailability{}, &stubPublisher{})

	_, err := svc.CreateOrder(context.Background(), &stubGuard{duplicate: true}, validCommand())
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)
	assert.Empty(t, repo.created, "nothing is persisted for a duplicate")
}

func TestCreateOrderUnavailableCart(t *testing.T) {
	repo := newStubOrderRepo()
	avail := &stubAvailability{unavailable: []string{"Whole Lechon (30kg)"}}
	svc := newTestService(repo, avail, &stubPublisher{})
	guard := &stubGuard{}

	_, err := svc.CreateOrder(context.Background(), guard, validCommand())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "Whole Lechon (30kg)")
	assert.Empty(t, repo.created)
	assert.Zero(t, guard.recorded, "a failed submission is never recorded")
}

func TestCreateOrderResolvesDeliveryFeeServerSide(t *testing.T) {
	repo := newStubOrderRepo()
	avail := &stubAvailability{fees: map[string]float64{"Talisay": 50}}
	svc := newTestService(repo, avail, &stubPublisher{})

	cmd := validCommand()
	cmd.ServiceType = "delivery"
	cmd.Address = strPtr("123 Mango St")
	cmd.City = strPtr("Talisay")

	result, err := svc.CreateOrder(context.Background(), &stubGuard{}, cmd)
	require.NoError(t, err)
	assert.Equal(t, 50.0, result.Order.DeliveryFee)
	assert.Equal(t, 5450.0, result.Order.Total)
	assert.Equal(t, 1, avail.feeCalls)
}

func TestCreateOrderPickupSkipsFeeLookup(t *testing.T) {
	repo := newStubOrderRepo()
	avail := &stubAvailability{fees: map[string]float64{"Talisay": 50}}
	svc := newTestService(repo, avail, &stubPublisher{})

	result, err := svc.CreateOrder(context.Background(), &stubGuard{}, validCommand())
	require.NoError(t, err)
	assert.Zero(t, result.Order.DeliveryFee)
	assert.Zero(t, avail.feeCalls)
}

func TestCreateOrderPartialWriteSurfacesOrderID(t *testing.T) {
	repo := newStubOrderRepo()
	repo.createErr = fmt.Errorf("line 2 of 3: %w", domain.ErrPartialWrite)
	svc := newTestService(repo, &stubAvailability{}, &stubPublisher{})
	guard := &stubGuard{}

	_, err := svc.CreateOrder(context.Background(), guard, validCommand())
	require.ErrorIs(t, err, domain.ErrPartialWrite)
	assert.Contains(t, err.Error(), "order ", "message names the committed order")
	assert.False(t, guard.submitted, "a partial write does not latch the guard")
}

func TestCreateOrderPublishFailureDoesNotFail(t *testing.T) {
	repo := newStubOrderRepo()
	pub := &stubPublisher{err: errors.New("broker down")}
	svc := newTestService(repo, &stubAvailability{}, pub)

	result, err := svc.CreateOrder(context.Background(), &stubGuard{}, validCommand())
	require.NoError(t, err)
	assert.NotNil(t, result)
	require.Len(t, repo.created, 1)
}

func TestCreateOrderLatchDoesNotOutliveCheckout(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newTestService(repo, &stubAvailability{}, &stubPublisher{})

	// Sessions keyed by address outlive a single customer; the manager
	// hands back the same session for every request from that address.
	sessions := session.NewManager(10)
	now := time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return now })

	guard := sessions.Get("203.0.113.7", now)
	_, err := svc.CreateOrder(context.Background(), guard, validCommand())
	require.NoError(t, err)

	// Immediate resubmission of anything from the same session is blocked.
	blocked := validCommand()
	blocked.CustomerName = "Jose Rizal"
	_, err = svc.CreateOrder(context.Background(), sessions.Get("203.0.113.7", now), blocked)
	require.ErrorIs(t, err, domain.ErrDuplicateSubmission)

	// A distinct order from the same address well past the window is a new
	// checkout and must go through.
	now = now.Add(7 * 24 * time.Hour)
	later := validCommand()
	later.CustomerName = "Jose Rizal"
	later.Lines[0].Quantity = 1

	result, err := svc.CreateOrder(context.Background(), sessions.Get("203.0.113.7", now), later)
	require.NoError(t, err)
	assert.Equal(t, "Jose Rizal", result.Order.CustomerName)
	assert.Len(t, repo.created, 2)
}

func TestCreateOrderNilGuard(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newTestService(repo, &stubAvailability{}, &stubPublisher{})

	_, err := svc.CreateOrder(context.Background(), nil, validCommand())
	assert.NoError(t, err)
}

func TestDisplayNumberSequencesWithinDay(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newTestService(repo, &stubAvailability{}, &stubPublisher{})

	created := time.Date(2025, 12, 29, 9, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return created })

	var last *interfaces.CreateOrderResult
	for i := 0; i < 3; i++ {
		cmd := validCommand()
		cmd.CustomerName = fmt.Sprintf("Customer %d", i)

		result, err := svc.CreateOrder(context.Background(), &stubGuard{}, cmd)
		require.NoError(t, err)
		last = result

		created = created.Add(time.Minute)
	}

	assert.Equal(t, "12m29d-3", last.DisplayNumber)
}

func TestDisplayNumberFallsBackOnDayQueryFailure(t *testing.T) {
	repo := newStubOrderRepo()
	repo.dayErr = errors.New("query failed")
	svc := newTestService(repo, &stubAvailability{}, &stubPublisher{})

	result, err := svc.CreateOrder(context.Background(), &stubGuard{}, validCommand())
	require.NoError(t, err)
	assert.Len(t, result.DisplayNumber, 8, "falls back to the truncated id")
	assert.Equal(t, result.Order.ID[:8], result.DisplayNumber)
}

func TestReceiptRendersOrder(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newTestService(repo, &stubAvailability{}, &stubPublisher{})

	result, err := svc.CreateOrder(context.Background(), &stubGuard{}, validCommand())
	require.NoError(t, err)

	text, err := svc.Receipt(context.Background(), result.Order.ID)
	require.NoError(t, err)
	assert.Contains(t, text, "Maria Santos")
	assert.Contains(t, text, "2x Lechon Belly")
	assert.Contains(t, text, "Total: 5400.00")
}

func TestReceiptNotFound(t *testing.T) {
	repo := newStubOrderRepo()
	svc := newTestService(repo, &stubAvailability{}, &stubPublisher{})

	_, err := svc.Receipt(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}
