package session

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/YammiGb/lechon-orders/internal/domain"
)

// Fingerprint derives the stable equality key for a draft: normalized line
// items (item id, quantity, variation id, sorted add-on ids), customer name,
// contact number, computed total and service type. Submission time is
// deliberately excluded so retries of the same content compare equal.
func Fingerprint(draft domain.OrderDraft) string {
	var b strings.Builder

	b.WriteString(strings.ToLower(strings.TrimSpace(draft.CustomerName)))
	b.WriteByte('|')
	b.WriteString(strings.TrimSpace(draft.ContactNumber))
	b.WriteByte('|')
	b.WriteString(string(draft.ServiceType))
	b.WriteByte('|')
	fmt.Fprintf(&b, "%.2f", draft.LinesTotal())

	for _, l := range draft.Lines {
		b.WriteByte('|')
		b.WriteString(l.MenuItemID)
		fmt.Fprintf(&b, ":%d", l.Quantity)

		if l.Selection.Kind == domain.SelectionVariation && l.Selection.Variation != nil {
			b.WriteByte(':')
			b.WriteString(l.Selection.Variation.ID)
		}

		if l.Selection.Kind == domain.SelectionAddOns && len(l.Selection.AddOns) > 0 {
			ids := make([]string, len(l.Selection.AddOns))
			for i, a := range l.Selection.AddOns {
				ids[i] = a.ID
			}
			sort.Strings(ids)
			b.WriteByte(':')
			b.WriteString(strings.Join(ids, ","))
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
