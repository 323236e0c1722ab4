// Package notify delivers change events as ntfy.sh push notifications:
// it formats each event into a title, body, priority, and tag set, and
// posts it to the configured topic. It also provides the own-change filter
// applied in front of delivery.
package notify

import (
	"fmt"
	"strings"

	"github.com/tonimelisma/anylist-notify/internal/reconcile"
)

// formatEvent renders a change event into a notification title and body.
func formatEvent(ev reconcile.ChangeEvent) (title, message string) {
	switch ev.Kind {
	case reconcile.ChangeItemAdded:
		return formatAdded(ev)
	case reconcile.ChangeItemRemoved:
		title = fmt.Sprintf("❌ %s removed from %s", ev.Item.Name, ev.ListName)
		message = withChangedBy(fmt.Sprintf("Removed from %s", ev.ListName), ev.Item.UserID)
	case reconcile.ChangeItemChecked:
		title = fmt.Sprintf("✅ %s checked off in %s", ev.Item.Name, ev.ListName)
		message = withChangedBy(fmt.Sprintf("Checked off in %s", ev.ListName), ev.Item.UserID)
	case reconcile.ChangeItemUnchecked:
		title = fmt.Sprintf("◀️ %s unchecked in %s", ev.Item.Name, ev.ListName)
		message = withChangedBy(fmt.Sprintf("Unchecked in %s", ev.ListName), ev.Item.UserID)
	case reconcile.ChangeItemModified:
		title = fmt.Sprintf("✏️ %s modified in %s", ev.Item.Name, ev.ListName)
		message = withChangedBy(formatFieldChanges(ev.Fields), ev.Item.UserID)
	}

	return title, message
}

// formatAdded renders an item_added notification with the item's known
// attributes as body lines.
func formatAdded(ev reconcile.ChangeEvent) (title, message string) {
	title = fmt.Sprintf("➕ %s added to %s", ev.Item.Name, ev.ListName)

	var parts []string

	if ev.Item.Quantity != nil {
		parts = append(parts, "Quantity: "+*ev.Item.Quantity)
	}

	if ev.Item.Details != nil && *ev.Item.Details != "" {
		parts = append(parts, "Details: "+*ev.Item.Details)
	}

	if ev.Item.Category != nil {
		parts = append(parts, "Category: "+*ev.Item.Category)
	}

	if len(parts) == 0 {
		parts = append(parts, "Added to "+ev.ListName)
	}

	return title, withChangedBy(strings.Join(parts, "\n"), ev.Item.UserID)
}

// formatFieldChanges renders one body line per changed field.
func formatFieldChanges(changes []reconcile.FieldChange) string {
	parts := make([]string, 0, len(changes))

	for _, fc := range changes {
		switch fc.Field {
		case reconcile.FieldName:
			parts = append(parts, fmt.Sprintf("Name: %s → %s", orNone(fc.Old), orNone(fc.New)))
		case reconcile.FieldDetails:
			parts = append(parts, formatDetailsChange(fc))
		case reconcile.FieldQuantity:
			parts = append(parts, fmt.Sprintf("Quantity: %s → %s", orNone(fc.Old), orNone(fc.New)))
		case reconcile.FieldCategory:
			parts = append(parts, fmt.Sprintf("Category: %s → %s", orNone(fc.Old), orNone(fc.New)))
		}
	}

	return strings.Join(parts, "\n")
}

// formatDetailsChange renders a details change, phrasing pure additions and
// removals more naturally than "none → x".
func formatDetailsChange(fc reconcile.FieldChange) string {
	oldEmpty := fc.Old == nil || *fc.Old == ""
	newEmpty := fc.New == nil || *fc.New == ""

	switch {
	case oldEmpty && !newEmpty:
		return "Details added: " + *fc.New
	case !oldEmpty && newEmpty:
		return "Details removed: " + *fc.Old
	default:
		return fmt.Sprintf("Details: %s → %s", orNone(fc.Old), orNone(fc.New))
	}
}

func withChangedBy(message string, userID *string) string {
	if userID == nil || *userID == "" {
		return message
	}

	return message + "\nChanged by: " + *userID
}

func orNone(s *string) string {
	if s == nil || *s == "" {
		return "none"
	}

	return *s
}
