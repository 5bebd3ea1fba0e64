package verification

import (
	"encoding/json"
	"time"

	"github.com/YammiGb/lechon-orders/internal/domain"
	"github.com/YammiGb/lechon-orders/internal/interfaces"
)

// exportZone localizes the export date string for the ledger readers.
var exportZone = time.FixedZone("PHT", 8*60*60)

// BuildExport flattens an order into the ledger row payload. Variation and
// add-on structures are serialized with the line-selection JSON contract so
// the ledger stores the same shape the database does.
func BuildExport(order *domain.Order) interfaces.LedgerExport {
	export := interfaces.LedgerExport{
		OrderID:         order.ID,
		Date:            order.CreatedAt.In(exportZone).Format("Jan 2, 2006 3:04 PM"),
		CustomerName:    order.CustomerName,
		ContactNumber:   order.ContactNumber,
		ContactNumber2:  deref(order.ContactNumber2),
		ServiceType:     string(order.ServiceType),
		Address:         deref(order.Address),
		Landmark:        deref(order.Landmark),
		City:            deref(order.City),
		PickupDate:      deref(order.PickupDate),
		PickupTime:      deref(order.PickupTime),
		DeliveryDate:    deref(order.DeliveryDate),
		DeliveryTime:    deref(order.DeliveryTime),
		PaymentMethod:   order.PaymentMethod,
		ReferenceNumber: deref(order.ReferenceNumber),
		Notes:           deref(order.Notes),
		Total:           order.Total,
		DeliveryFee:     order.DeliveryFee,
		Items:           make([]interfaces.LedgerExportItem, len(order.Lines)),
	}

	for i, line := range order.Lines {
		export.Items[i] = interfaces.LedgerExportItem{
			Name:      line.Name,
			Variation: serializeVariation(line.Selection),
			AddOns:    serializeAddOns(line.Selection),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Subtotal:  line.Subtotal,
		}
	}

	return export
}

func serializeVariation(s domain.LineSelection) string {
	if s.Kind != domain.SelectionVariation || s.Variation == nil {
		return ""
	}
	data, err := json.Marshal(s.Variation)
	if err != nil {
		return s.Variation.Name
	}
	return string(data)
}

func serializeAddOns(s domain.LineSelection) string {
	if s.Kind != domain.SelectionAddOns || len(s.AddOns) == 0 {
		return ""
	}
	data, err := json.Marshal(s.AddOns)
	if err != nil {
		return s.Label()
	}
	return string(data)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
