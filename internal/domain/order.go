package domain

import (
	"fmt"
	"strings"
	"time"
)

// downPaymentBase is the fixed floor for down payments; the delivery fee is
// added on top for delivery orders.
const downPaymentBase = 500.0

// DownPaymentFloor returns the minimum accepted down payment for an order
// carrying the given delivery fee.
func DownPaymentFloor(deliveryFee float64) float64 {
	return downPaymentBase + deliveryFee
}

// CartLine is one entry of an in-flight cart. The unit price is captured at
// selection time and already includes the chosen variation and add-ons.
type CartLine struct {
	MenuItemID string
	Name       string
	UnitPrice  float64
	Quantity   int
	Selection  LineSelection
}

func (l CartLine) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// OrderDraft is the not-yet-persisted submission: cart lines plus customer
// identity, service type, schedule and payment intent. This is the object
// the submission guard fingerprints.
type OrderDraft struct {
	CustomerName      string
	ContactNumber     string
	ContactNumber2    *string
	ServiceType       ServiceType
	Address           *string
	Landmark          *string
	City              *string
	ScheduleDate      string // YYYY-MM-DD
	ScheduleTime      string // HH:MM
	PaymentMethod     string
	PaymentType       PaymentType
	DownPaymentAmount *float64
	ReferenceNumber   *string
	Notes             *string
	Lines             []CartLine
	IPAddress         *string
}

// LinesTotal sums the line subtotals; the delivery fee is not included.
func (d OrderDraft) LinesTotal() float64 {
	var total float64
	for _, l := range d.Lines {
		total += l.Subtotal()
	}
	return total
}

// Destination is the fee-lookup key for delivery drafts.
func (d OrderDraft) Destination() string {
	if d.City == nil {
		return ""
	}
	return strings.TrimSpace(*d.City)
}

// Order is a persisted submission. Once created it is immutable except for
// status, verifier and sync fields, and it is never deleted.
type Order struct {
	ID                string
	CustomerName      string
	ContactNumber     string
	ContactNumber2    *string
	ServiceType       ServiceType
	Address           *string
	Landmark          *string
	City              *string
	PickupDate        *string
	PickupTime        *string
	DeliveryDate      *string
	DeliveryTime      *string
	PaymentMethod     string
	PaymentType       PaymentType
	DownPaymentAmount *float64
	ReferenceNumber   *string
	Notes             *string
	DeliveryFee       float64
	Total             float64
	Status            Status
	VerifiedBy        *string
	VerifiedAt        *time.Time
	SyncedToLedger    bool
	SyncedAt          *time.Time
	IPAddress         *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Lines             []OrderLine
}

// OrderLine is an immutable snapshot of what was ordered, decoupled from
// later catalog edits.
type OrderLine struct {
	ID         int
	OrderID    string
	MenuItemID string
	Name       string
	Selection  LineSelection
	UnitPrice  float64
	Quantity   int
	Subtotal   float64
}

// NewOrder validates a draft and builds the order to persist. The total is
// always recomputed from line prices plus the resolved delivery fee; a
// client-supplied total is never trusted. A down payment below the floor is
// corrected up to the floor rather than refused.
func NewOrder(id string, draft OrderDraft, deliveryFee float64, now time.Time) (*Order, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	order := &Order{
		ID:              id,
		CustomerName:    strings.TrimSpace(draft.CustomerName),
		ContactNumber:   strings.TrimSpace(draft.ContactNumber),
		ContactNumber2:  draft.ContactNumber2,
		ServiceType:     draft.ServiceType,
		Address:         draft.Address,
		Landmark:        draft.Landmark,
		City:            draft.City,
		PaymentMethod:   draft.PaymentMethod,
		PaymentType:     draft.PaymentType,
		ReferenceNumber: draft.ReferenceNumber,
		Notes:           draft.Notes,
		DeliveryFee:     deliveryFee,
		Total:           draft.LinesTotal() + deliveryFee,
		Status:          StatusPending,
		IPAddress:       draft.IPAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	date, clock := draft.ScheduleDate, draft.ScheduleTime
	switch draft.ServiceType {
	case ServicePickup:
		order.PickupDate, order.PickupTime = &date, &clock
	case ServiceDelivery:
		order.DeliveryDate, order.DeliveryTime = &date, &clock
	}

	if draft.PaymentType == PaymentDownPayment {
		amount := *draft.DownPaymentAmount
		if floor := DownPaymentFloor(deliveryFee); amount < floor {
			amount = floor
		}
		order.DownPaymentAmount = &amount
	}

	order.Lines = make([]OrderLine, len(draft.Lines))
	for i, l := range draft.Lines {
		order.Lines[i] = OrderLine{
			OrderID:    id,
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Selection:  l.Selection,
			UnitPrice:  l.UnitPrice,
			Quantity:   l.Quantity,
			Subtotal:   l.Subtotal(),
		}
	}

	return order, nil
}

// Validate applies the required-field rules for the draft's service type.
func (d OrderDraft) Validate() error {
	if strings.TrimSpace(d.CustomerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if strings.TrimSpace(d.ContactNumber) == "" {
		return fmt.Errorf("%w: contact number is required", ErrValidation)
	}

	switch d.ServiceType {
	case ServicePickup:
	case ServiceDelivery:
		if d.Address == nil || strings.TrimSpace(*d.Address) == "" {
			return fmt.Errorf("%w: address is required for delivery orders", ErrValidation)
		}
		if d.Destination() == "" {
			return fmt.Errorf("%w: city is required for delivery orders", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: service type must be pickup or delivery", ErrValidation)
	}

	if d.ScheduleDate == "" {
		return fmt.Errorf("%w: %s date is required", ErrValidation, d.ServiceType)
	}
	if _, err := time.Parse("2006-01-02", d.ScheduleDate); err != nil {
		return fmt.Errorf("%w: %s date must be YYYY-MM-DD", ErrValidation, d.ServiceType)
	}
	if d.ScheduleTime == "" {
		return fmt.Errorf("%w: %s time is required", ErrValidation, d.ServiceType)
	}

	if len(d.Lines) == 0 {
		return fmt.Errorf("%w: order must contain at least one item", ErrValidation)
	}
	for _, l := range d.Lines {
		if l.MenuItemID == "" || strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("%w: every line needs a menu item", ErrValidation)
		}
		if l.Quantity < 1 {
			return fmt.Errorf("%w: item quantity must be at least 1", ErrValidation)
		}
		if l.UnitPrice <= 0 {
			return fmt.Errorf("%w: item price must be positive", ErrValidation)
		}
	}

	if strings.TrimSpace(d.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment method is required", ErrValidation)
	}
	switch d.PaymentType {
	case PaymentFull:
	case PaymentDownPayment:
		if d.DownPaymentAmount == nil {
			return fmt.Errorf("%w: down payment amount is required", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: payment type must be down_payment or full_payment", ErrValidation)
	}

	return nil
}

// ScheduleDate returns the pickup or delivery date depending on service type.
func (o *Order) ScheduleDate() string {
	if o.ServiceType == ServiceDelivery && o.DeliveryDate != nil {
		return *o.DeliveryDate
	}
	if o.PickupDate != nil {
		return *o.PickupDate
	}
	return ""
}

// ScheduleTime returns the pickup or delivery time depending on service type.
func (o *Order) ScheduleTime() string {
	if o.ServiceType == ServiceDelivery && o.DeliveryTime != nil {
		return *o.DeliveryTime
	}
	if o.PickupTime != nil {
		return *o.PickupTime
	}
	return ""
}

// CanTransitionTo checks the verification state machine: pending may be
// approved or rejected, approved may be synced, rejected and synced are
// terminal.
func (o *Order) CanTransitionTo(newStatus Status) bool {
	validTransitions := map[Status][]Status{
		StatusPending:  {StatusApproved, StatusRejected},
		StatusApproved: {StatusSynced},
		StatusRejected: {},
		StatusSynced:   {},
	}

	for _, s := range validTransitions[o.Status] {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo moves the order to a new status and stamps the verifier or
// sync fields that go with it.
func (o *Order) TransitionTo(newStatus Status, actor string, now time.Time) error {
	if !o.CanTransitionTo(newStatus) {
		return fmt.Errorf("%w: %s -> %s", ErrPreconditionFailed, o.Status, newStatus)
	}

	o.Status = newStatus
	o.UpdatedAt = now

	switch newStatus {
	case StatusApproved, StatusRejected:
		o.VerifiedBy = &actor
		o.VerifiedAt = &now
	case StatusSynced:
		o.SyncedToLedger = true
		o.SyncedAt = &now
	}

	return nil
}
