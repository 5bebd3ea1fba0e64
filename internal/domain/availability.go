package domain

import "fmt"

type EntryScope string

const (
	ScopeBase      EntryScope = "base"
	ScopeVariation EntryScope = "variation"
	ScopeAddOn     EntryScope = "addon"
)

// AvailableEntry whitelists an item, one of its variations, or one of its
// add-ons for a given date.
type AvailableEntry struct {
	ItemID      string     `json:"item_id"`
	Scope       EntryScope `json:"type"`
	VariationID *string    `json:"variation_id,omitempty"`
	AddOnID     *string    `json:"add_on_id,omitempty"`
}

// AvailabilityRule restricts what may be ordered for a single calendar date
// and carries that date's per-destination delivery fees. At most one rule
// exists per date; absence of a rule means everything is available.
type AvailabilityRule struct {
	Date string

	// LegacyItemIDs is the flat item-id list written by older admin builds.
	// Each id is treated as a base-scope entry.
	LegacyItemIDs []string

	Entries []AvailableEntry
	Fees    map[string]float64
}

// Empty reports whether the rule whitelists nothing, which makes every cart
// line unavailable for the date.
func (r *AvailabilityRule) Empty() bool {
	return len(r.Entries) == 0 && len(r.LegacyItemIDs) == 0
}

func (r *AvailabilityRule) hasBase(itemID string) bool {
	for _, id := range r.LegacyItemIDs {
		if id == itemID {
			return true
		}
	}
	for _, e := range r.Entries {
		if e.Scope == ScopeBase && e.ItemID == itemID {
			return true
		}
	}
	return false
}

func (r *AvailabilityRule) allowsVariation(itemID, variationID string) bool {
	for _, e := range r.Entries {
		if e.Scope == ScopeVariation && e.ItemID == itemID &&
			e.VariationID != nil && *e.VariationID == variationID {
			return true
		}
	}
	return false
}

func (r *AvailabilityRule) allowsAddOn(itemID, addOnID string) bool {
	for _, e := range r.Entries {
		if e.Scope == ScopeAddOn && e.ItemID == itemID &&
			e.AddOnID != nil && *e.AddOnID == addOnID {
			return true
		}
	}
	return false
}

// AllowsLine applies the availability policy to a single cart line.
// A base-scope entry whitelists the item together with every variation and
// add-on combination; finer-grained entries are consulted only when the item
// has no base entry.
func (r *AvailabilityRule) AllowsLine(line CartLine) bool {
	if r.hasBase(line.MenuItemID) {
		return true
	}

	switch line.Selection.Kind {
	case SelectionVariation:
		if line.Selection.Variation == nil {
			return false
		}
		return r.allowsVariation(line.MenuItemID, line.Selection.Variation.ID)
	case SelectionAddOns:
		if len(line.Selection.AddOns) == 0 {
			return false
		}
		for _, a := range line.Selection.AddOns {
			if !r.allowsAddOn(line.MenuItemID, a.ID) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// FeeFor returns the delivery fee for a destination; unknown destinations
// cost nothing rather than failing.
func (r *AvailabilityRule) FeeFor(destination string) float64 {
	if r == nil || r.Fees == nil {
		return 0
	}
	return r.Fees[destination]
}

// DescribeLine renders a cart line for unavailable-item messages.
func DescribeLine(line CartLine) string {
	if label := line.Selection.Label(); label != "" {
		return fmt.Sprintf("%s (%s)", line.Name, label)
	}
	return line.Name
}
