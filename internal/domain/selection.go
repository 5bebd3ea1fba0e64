package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type SelectionKind string

const (
	SelectionNone      SelectionKind = "none"
	SelectionVariation SelectionKind = "variation"
	SelectionAddOns    SelectionKind = "add_ons"
)

// Variation is a snapshot of the chosen variation at order time.
type Variation struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// AddOn is a snapshot of a chosen add-on at order time.
type AddOn struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity,omitempty"`
}

// LineSelection is the tagged variant attached to a cart line: no selection,
// a single chosen variation, or a list of chosen add-ons. It has exactly one
// serialization contract, used both for the order_lines column and the ledger
// export payload.
type LineSelection struct {
	Kind      SelectionKind
	Variation *Variation
	AddOns    []AddOn
}

func NoSelection() LineSelection {
	return LineSelection{Kind: SelectionNone}
}

func SelectVariation(v Variation) LineSelection {
	return LineSelection{Kind: SelectionVariation, Variation: &v}
}

func SelectAddOns(addOns []AddOn) LineSelection {
	return LineSelection{Kind: SelectionAddOns, AddOns: addOns}
}

type selectionJSON struct {
	Kind      SelectionKind `json:"kind"`
	Variation *Variation    `json:"variation,omitempty"`
	AddOns    []AddOn       `json:"add_ons,omitempty"`
}

func (s LineSelection) MarshalJSON() ([]byte, error) {
	kind := s.Kind
	if kind == "" {
		kind = SelectionNone
	}
	return json.Marshal(selectionJSON{Kind: kind, Variation: s.Variation, AddOns: s.AddOns})
}

func (s *LineSelection) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = NoSelection()
		return nil
	}

	var raw selectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode line selection: %w", err)
	}

	switch raw.Kind {
	case "", SelectionNone:
		*s = NoSelection()
	case SelectionVariation:
		if raw.Variation == nil {
			return fmt.Errorf("line selection kind %q without variation payload", raw.Kind)
		}
		*s = LineSelection{Kind: SelectionVariation, Variation: raw.Variation}
	case SelectionAddOns:
		*s = LineSelection{Kind: SelectionAddOns, AddOns: raw.AddOns}
	default:
		return fmt.Errorf("unknown line selection kind %q", raw.Kind)
	}
	return nil
}

// Label renders the selection for receipts and the ledger export.
func (s LineSelection) Label() string {
	switch s.Kind {
	case SelectionVariation:
		if s.Variation != nil {
			return s.Variation.Name
		}
	case SelectionAddOns:
		parts := make([]string, 0, len(s.AddOns))
		for _, a := range s.AddOns {
			if a.Quantity > 1 {
				parts = append(parts, fmt.Sprintf("%s x%d", a.Name, a.Quantity))
			} else {
				parts = append(parts, a.Name)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}
