package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
	"github.com/YammiGb/lechon-orders/internal/receipt"
)

// Service owns order intake: validation, the availability gate, duplicate
// fast-fail, server-side total recomputation and persistence.
type Service struct {
	repo         interfaces.OrderRepository
	availability interfaces.AvailabilityService
	publisher    interfaces.MessagePublisher
	logger       logger.Logger
	now          func() time.Time
}

func NewService(repo interfaces.OrderRepository, availability interfaces.AvailabilityService, publisher interfaces.MessagePublisher, lgr logger.Logger) *Service {
	return &Service{
		repo:         repo,
		availability: availability,
		publisher:    publisher,
		logger:       lgr,
		now:          time.Now,
	}
}

// WithClock overrides the service clock; used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateOrder runs a checkout submission through the intake pipeline. The
// guard is this session's duplicate safeguard; it is consulted before
// anything touches the database and updated only after a successful write.
func (s *Service) CreateOrder(ctx context.Context, guard interfaces.SubmissionGuard, cmd interfaces.CreateOrderCommand) (*interfaces.CreateOrderResult, error) {
	draft := toDraft(cmd)
	now := s.now().UTC()

	if guard != nil && guard.IsDuplicate(now, draft) {
		s.logger.Debug("duplicate_submission_blocked", "Duplicate draft blocked before persistence", "", map[string]interface{}{
			"customer": draft.CustomerName,
		})
		return nil, domain.ErrDuplicateSubmission
	}

	if unavailable := s.availability.CheckCart(ctx, draft.ScheduleDate, draft.Lines); len(unavailable) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnavailable, strings.Join(unavailable, ", "))
	}

	// The delivery fee is resolved server-side from the date's rule; the
	// order total is recomputed from line prices plus that fee.
	var deliveryFee float64
	if draft.ServiceType == domain.ServiceDelivery {
		deliveryFee = s.availability.FeeFor(ctx, draft.ScheduleDate, draft.Destination())
	}

	order, err := domain.NewOrder(ulid.Make().String(), draft, deliveryFee, now)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, order); err != nil {
		if errors.Is(err, domain.ErrPartialWrite) {
			// The order row is committed; surface the id so the failure is
			// visible and manually reconcilable instead of rolling back.
			s.logger.Error("order_partial_write", "Order committed without all line items", "", map[string]interface{}{
				"order_id": order.ID,
			}, err)
			return nil, fmt.Errorf("order %s: %w", order.ID, err)
		}
		s.logger.Error("order_create_failed", "Failed to persist order", "", nil, err)
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if guard != nil {
		guard.Record(now, draft)
		guard.MarkSubmitted(now)
	}

	displayNumber := s.displayNumber(ctx, order)

	s.logger.Info("order_created", "Order created", "", map[string]interface{}{
		"order_id":       order.ID,
		"display_number": displayNumber,
		"total":          order.Total,
	})

	// Notification delivery is best-effort and never blocks creation.
	msg := interfaces.OrderCreatedMessage{
		OrderID:       order.ID,
		DisplayNumber: displayNumber,
		CustomerName:  order.CustomerName,
		ServiceType:   order.ServiceType,
		ScheduleDate:  order.ScheduleDate(),
		Total:         order.Total,
		CreatedAt:     order.CreatedAt,
	}
	if err := s.publisher.PublishOrderCreated(ctx, msg); err != nil {
		s.logger.Error("notify_failed", "Failed to publish order-created event", "", map[string]interface{}{
			"order_id": order.ID,
		}, err)
	}

	return &interfaces.CreateOrderResult{Order: order, DisplayNumber: displayNumber}, nil
}

// Receipt renders the plain-text receipt for an order.
func (s *Service) Receipt(ctx context.Context, orderID string) (string, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	return receipt.Render(order, s.displayNumber(ctx, order)), nil
}

// displayNumber recomputes the customer-facing number from the day's orders.
// When the day query fails the truncated id is shown instead of failing the
// whole request.
func (s *Service) displayNumber(ctx context.Context, order *domain.Order) string {
	day := order.CreatedAt.UTC().Format("2006-01-02")
	dayOrders, err := s.repo.ListForDay(ctx, day)
	if err != nil {
		s.logger.Error("display_number_failed", "Failed to load day's orders for numbering", "", map[string]interface{}{
			"order_id": order.ID,
		}, err)
		dayOrders = nil
	}
	return receipt.DisplayNumber(order, receipt.Ordinal(dayOrders, order.ID))
}

func toDraft(cmd interfaces.CreateOrderCommand) domain.OrderDraft {
	lines := make([]domain.CartLine, len(cmd.Lines))
	for i, l := range cmd.Lines {
		selection := domain.NoSelection()
		switch {
		case l.Variation != nil:
			selection = domain.SelectVariation(*l.Variation)
		case len(l.AddOns) > 0:
			selection = domain.SelectAddOns(l.AddOns)
		}
		lines[i] = domain.CartLine{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
			Selection:  selection,
		}
	}

	return domain.OrderDraft{
		CustomerName:      cmd.CustomerName,
		ContactNumber:     cmd.ContactNumber,
		ContactNumber2:    cmd.ContactNumber2,
		ServiceType:       domain.ServiceType(cmd.ServiceType),
		Address:           cmd.Address,
		Landmark:          cmd.Landmark,
		City:              cmd.City,
		ScheduleDate:      cmd.ScheduleDate,
		ScheduleTime:      cmd.ScheduleTime,
		PaymentMethod:     cmd.PaymentMethod,
		PaymentType:       domain.PaymentType(cmd.PaymentType),
		DownPaymentAmount: cmd.DownPaymentAmount,
		ReferenceNumber:   cmd.ReferenceNumber,
		Notes:             cmd.Notes,
		Lines:             lines,
		IPAddress:         cmd.IPAddress,
	}
}
