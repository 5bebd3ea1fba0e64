package interfaces

import "context"

// LedgerExport is one row appended to the external ledger. The receiving
// endpoint writes its own header row on first use; every push after that
// appends.
type LedgerExport struct {
	OrderID         string             `json:"orderId"`
	Date            string             `json:"date"`
	CustomerName    string             `json:"customerName"`
	ContactNumber   string             `json:"contactNumber"`
	ContactNumber2  string             `json:"contactNumber2"`
	ServiceType     string             `json:"serviceType"`
	Address         string             `json:"address"`
	Landmark        string             `json:"landmark"`
	City            string             `json:"city"`
	PickupDate      string             `json:"pickupDate"`
	PickupTime      string             `json:"pickupTime"`
	DeliveryDate    string             `json:"deliveryDate"`
	DeliveryTime    string             `json:"deliveryTime"`
	PaymentMethod   string             `json:"paymentMethod"`
	ReferenceNumber string             `json:"referenceNumber"`
	Notes           string             `json:"notes"`
	Total           float64            `json:"total"`
	DeliveryFee     float64            `json:"deliveryFee"`
	Items           []LedgerExportItem `json:"items"`
}

type LedgerExportItem struct {
	Name      string  `json:"name"`
	Variation string  `json:"variation"`
	AddOns    string  `json:"addOns"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
}

// LedgerClient dispatches exports to the external ledger. The transport is
// fire-and-forget: a dispatch without a transport-level error counts as
// success even though the endpoint's acceptance cannot be confirmed, and no
// automatic retry exists. Retrying is an explicit operator action.
type LedgerClient interface {
	Push(ctx context.Context, export LedgerExport) error
}
