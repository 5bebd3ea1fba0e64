package interfaces

import (
	"context"
	"time"

	"github.com/YammiGb/lechon-orders/internal/domain"
)

// OrderCreatedMessage is published after a successful order submission. The
// notifier contract is best-effort; publish failures never block creation.
type OrderCreatedMessage struct {
	OrderID       string             `json:"order_id"`
	DisplayNumber string             `json:"display_number"`
	CustomerName  string             `json:"customer_name"`
	ServiceType   domain.ServiceType `json:"service_type"`
	ScheduleDate  string             `json:"schedule_date"`
	Total         float64            `json:"total"`
	CreatedAt     time.Time          `json:"created_at"`
}

type MessagePublisher interface {
	PublishOrderCreated(ctx context.Context, msg OrderCreatedMessage) error
}

type MessageConsumer interface {
	ConsumeOrderCreated(ctx context.Context, handler OrderCreatedHandler) error
}

type OrderCreatedHandler func(ctx context.Context, body []byte) error
