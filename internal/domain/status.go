package domain

type ServiceType string

const (
	ServicePickup   ServiceType = "pickup"
	ServiceDelivery ServiceType = "delivery"
)

type PaymentType string

const (
	PaymentDownPayment PaymentType = "down_payment"
	PaymentFull        PaymentType = "full_payment"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusSynced   Status = "synced"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusSynced:
		return true
	}
	return false
}
