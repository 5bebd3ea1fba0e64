// Package receipt renders customer-facing order numbers and plain-text
// receipts.
package receipt

import (
	"fmt"
	"strings"
	"time"

	"github.com/YammiGb/lechon-orders/internal/domain"
)

// numberCutover is the date the human-readable numbering scheme went live.
// Orders created before it keep showing a truncated id.
var numberCutover = time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

// truncatedIDLength is how much of the raw order id the legacy display shows.
const truncatedIDLength = 8

// Ordinal returns the 1-based position of the order among the day's orders,
// which must be sorted by creation time ascending. Zero means the order is
// not in the list.
//
// The ordinal is recomputed from the day's orders on every render, so
// deleting an earlier same-day order shifts the displayed number of later
// ones. That is a documented property of the scheme, not a defect.
func Ordinal(dayOrders []*domain.Order, orderID string) int {
	for i, o := range dayOrders {
		if o.ID == orderID {
			return i + 1
		}
	}
	return 0
}

// DisplayNumber renders the customer-facing order number: `<m>m<d>d-<n>` for
// orders created after the cutover, a truncated id before it.
func DisplayNumber(order *domain.Order, ordinal int) string {
	if order.CreatedAt.Before(numberCutover) || ordinal < 1 {
		return truncateID(order.ID)
	}
	created := order.CreatedAt.UTC()
	return fmt.Sprintf("%dm%dd-%d", int(created.Month()), created.Day(), ordinal)
}

func truncateID(id string) string {
	if len(id) <= truncatedIDLength {
		return strings.ToUpper(id)
	}
	return strings.ToUpper(id[:truncatedIDLength])
}

// Render builds the plain-text receipt for an order.
func Render(order *domain.Order, displayNumber string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Order %s\n", displayNumber)
	fmt.Fprintf(&b, "Customer: %s\n", order.CustomerName)
	fmt.Fprintf(&b, "Contact: %s\n", order.ContactNumber)
	if order.ContactNumber2 != nil && *order.ContactNumber2 != "" {
		fmt.Fprintf(&b, "Alt. contact: %s\n", *order.ContactNumber2)
	}

	switch order.ServiceType {
	case domain.ServiceDelivery:
		fmt.Fprintf(&b, "Delivery: %s %s\n", order.ScheduleDate(), order.ScheduleTime())
		if order.Address != nil {
			fmt.Fprintf(&b, "Address: %s\n", *order.Address)
		}
		if order.Landmark != nil && *order.Landmark != "" {
			fmt.Fprintf(&b, "Landmark: %s\n", *order.Landmark)
		}
		if order.City != nil {
			fmt.Fprintf(&b, "City: %s\n", *order.City)
		}
	default:
		fmt.Fprintf(&b, "Pickup: %s %s\n", order.ScheduleDate(), order.ScheduleTime())
	}

	b.WriteString("\n")
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "%dx %s", line.Quantity, line.Name)
		if label := line.Selection.Label(); label != "" {
			fmt.Fprintf(&b, " (%s)", label)
		}
		fmt.Fprintf(&b, " - %.2f\n", line.Subtotal)
	}

	b.WriteString("\n")
	if order.ServiceType == domain.ServiceDelivery {
		fmt.Fprintf(&b, "Delivery fee: %.2f\n", order.DeliveryFee)
	}
	fmt.Fprintf(&b, "Total: %.2f\n", order.Total)

	fmt.Fprintf(&b, "Payment: %s", order.PaymentMethod)
	if order.PaymentType == domain.PaymentDownPayment && order.DownPaymentAmount != nil {
		fmt.Fprintf(&b, " (down payment %.2f)", *order.DownPaymentAmount)
	}
	b.WriteString("\n")

	return b.String()
}
