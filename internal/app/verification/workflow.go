// Package verification drives the staff-facing order state machine:
// pending orders are approved or rejected, approved orders are pushed to the
// external ledger and become synced.
package verification

import (
	"context"
	"fmt"
	"time"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
	"github.com/YammiGb/lechon-orders/internal/receipt"
)

// Status transitions use last-write-wins at the persistence layer. There is
// no distributed lock: two operators racing on the same order are not
// serialized, which is acceptable for a single-operator workflow.
type Workflow struct {
	repo   interfaces.OrderRepository
	ledger interfaces.LedgerClient
	logger logger.Logger
	now    func() time.Time
}

func NewWorkflow(repo interfaces.OrderRepository, ledger interfaces.LedgerClient, lgr logger.Logger) *Workflow {
	return &Workflow{
		repo:   repo,
		ledger: ledger,
		logger: lgr,
		now:    time.Now,
	}
}

// WithClock overrides the workflow clock; used by tests.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// List returns orders newest first with their display numbers, optionally
// filtered by status.
func (w *Workflow) List(ctx context.Context, status *domain.Status) ([]*interfaces.OrderView, error) {
	orders, err := w.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	// Display numbers need each order's same-day siblings; query each day
	// once per request. A failing day query degrades those orders to the
	// truncated-id number instead of failing the listing.
	days := make(map[string][]*domain.Order)
	views := make([]*interfaces.OrderView, len(orders))
	for i, o := range orders {
		day := o.CreatedAt.UTC().Format("2006-01-02")
		dayOrders, ok := days[day]
		if !ok {
			dayOrders, err = w.repo.ListForDay(ctx, day)
			if err != nil {
				w.logger.Error("display_number_failed", "Failed to load day's orders for numbering", "", map[string]interface{}{
					"day": day,
				}, err)
				dayOrders = nil
			}
			days[day] = dayOrders
		}
		views[i] = &interfaces.OrderView{
			Order:         o,
			DisplayNumber: receipt.DisplayNumber(o, receipt.Ordinal(dayOrders, o.ID)),
		}
	}
	return views, nil
}

// Approve moves a pending order to approved. Approving an already-approved
// order is a no-op returning the current state; rejected and synced orders
// fail the precondition.
func (w *Workflow) Approve(ctx context.Context, orderID, actor string) (*domain.Order, error) {
	order, err := w.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == domain.StatusApproved {
		return order, nil
	}

	if err := order.TransitionTo(domain.StatusApproved, actor, w.now().UTC()); err != nil {
		return nil, err
	}
	if err := w.repo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	w.logger.Info("order_approved", "Order approved", "", map[string]interface{}{
		"order_id": order.ID,
		"actor":    actor,
	})
	return order, nil
}

// Reject moves a pending order to rejected. The explicit confirmation step
// is mandatory; rejection is terminal and excluded from export.
func (w *Workflow) Reject(ctx context.Context, orderID, actor string, confirmed bool) (*domain.Order, error) {
	if !confirmed {
		return nil, domain.ErrConfirmationRequired
	}

	order, err := w.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := order.TransitionTo(domain.StatusRejected, actor, w.now().UTC()); err != nil {
		return nil, err
	}
	if err := w.repo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	w.logger.Info("order_rejected", "Order rejected", "", map[string]interface{}{
		"order_id": order.ID,
		"actor":    actor,
	})
	return order, nil
}

// Sync exports an approved order to the ledger. On dispatch failure the
// order stays approved and unsynced so the operator can re-invoke Sync; it
// never reverts to pending and is never retried automatically.
func (w *Workflow) Sync(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := w.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanTransitionTo(domain.StatusSynced) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrPreconditionFailed, order.Status, domain.StatusSynced)
	}

	if err := w.ledger.Push(ctx, BuildExport(order)); err != nil {
		w.logger.Error("sync_failed", "Ledger export dispatch failed, order stays approved", "", map[string]interface{}{
			"order_id": order.ID,
		}, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrSyncFailed, err)
	}

	if err := order.TransitionTo(domain.StatusSynced, "", w.now().UTC()); err != nil {
		return nil, err
	}
	if err := w.repo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to record sync state: %w", err)
	}

	w.logger.Info("order_synced", "Order exported to ledger", "", map[string]interface{}{
		"order_id": order.ID,
	})
	return order, nil
}
