package domain

// MenuItem is a read-only catalog entry owned by the menu collaborator. The
// order pipeline consumes it for availability filtering and receipt
// formatting; it never writes catalog rows.
type MenuItem struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	BasePrice  float64         `json:"base_price"`
	Category   string          `json:"category"`
	Variations []MenuVariation `json:"variations,omitempty"`
	AddOns     []MenuAddOn     `json:"add_ons,omitempty"`
}

// MenuVariation is a named price delta on top of the item's base price.
type MenuVariation struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	PriceDelta float64 `json:"price_delta"`
}

type MenuAddOn struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}
