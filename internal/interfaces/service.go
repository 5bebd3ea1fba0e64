package interfaces

import (
	"context"
	"time"

	"github.com/YammiGb/lechon-orders/internal/domain"
)

// SubmissionGuard is the session-scoped duplicate-submission safeguard the
// checkout layer passes into order creation. It is best-effort: it protects
// against double taps and retry storms within one session, not across
// devices or sessions.
type SubmissionGuard interface {
	IsDuplicate(now time.Time, draft domain.OrderDraft) bool
	Record(now time.Time, draft domain.OrderDraft)
	MarkSubmitted(now time.Time)
}

type OrderService interface {
	CreateOrder(ctx context.Context, guard SubmissionGuard, cmd CreateOrderCommand) (*CreateOrderResult, error)
	Receipt(ctx context.Context, orderID string) (string, error)
}

type VerificationService interface {
	List(ctx context.Context, status *domain.Status) ([]*OrderView, error)
	Approve(ctx context.Context, orderID, actor string) (*domain.Order, error)
	Reject(ctx context.Context, orderID, actor string, confirmed bool) (*domain.Order, error)
	Sync(ctx context.Context, orderID string) (*domain.Order, error)
}

type AvailabilityService interface {
	ResolveForDate(ctx context.Context, date string) (*domain.AvailabilityRule, error)
	CheckCart(ctx context.Context, date string, lines []domain.CartLine) []string
	FeesForDate(ctx context.Context, date string) map[string]float64
	FeeFor(ctx context.Context, date, destination string) float64
}

// Commands for order creation

type CreateOrderCommand struct {
	CustomerName      string
	ContactNumber     string
	ContactNumber2    *string
	ServiceType       string
	Address           *string
	Landmark          *string
	City              *string
	ScheduleDate      string
	ScheduleTime      string
	PaymentMethod     string
	PaymentType       string
	DownPaymentAmount *float64
	ReferenceNumber   *string
	Notes             *string
	Lines             []CreateOrderLineCommand
	IPAddress         *string
}

type CreateOrderLineCommand struct {
	MenuItemID string
	Name       string
	UnitPrice  float64
	Quantity   int
	Variation  *domain.Variation
	AddOns     []domain.AddOn
}

type CreateOrderResult struct {
	Order         *domain.Order
	DisplayNumber string
}

// OrderView pairs an order with its on-demand display number for staff
// listings.
type OrderView struct {
	Order         *domain.Order
	DisplayNumber string
}
