package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/YammiGb/lechon-orders/internal/adapter/logger"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

// NotificationHandler is the order-created event consumer side of the
// Notifier contract.
type NotificationHandler struct {
	logger logger.Logger
}

func NewNotificationHandler(lgr logger.Logger) *NotificationHandler {
	return &NotificationHandler{logger: lgr}
}

func (h *NotificationHandler) HandleOrderCreated(ctx context.Context, body []byte) error {
	var msg interfaces.OrderCreatedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse order-created event", "", nil, err)
		return err
	}

	h.logger.Info("order_created_received", fmt.Sprintf("New order %s", msg.DisplayNumber), msg.OrderID, map[string]interface{}{
		"order_id":       msg.OrderID,
		"display_number": msg.DisplayNumber,
		"service_type":   msg.ServiceType,
		"total":          msg.Total,
	})

	fmt.Printf("New order %s from %s (%s on %s), total %.2f\n",
		msg.DisplayNumber, msg.CustomerName, msg.ServiceType, msg.ScheduleDate, msg.Total)

	return nil
}
