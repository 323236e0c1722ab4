package reconcile

import (
	"sort"
)

// Diff compares two snapshots and returns the change events that transform
// old into new, in a fixed deterministic order:
//
//  1. item_added for every id present only in new, ascending by
//     (list_id, id) — grouped by list, stable within a group.
//  2. item_removed for every id present only in old, ordered the same way
//     using old's records.
//  3. For every surviving id in ascending id order: a check-state event if
//     is_checked flipped, then exactly one item_modified listing every
//     differing field among name, quantity, details, and category. A check
//     flip is never folded into a modification event and a pure check flip
//     produces no modification event.
//
// The fixed ordering makes notification sequences reproducible; it is a
// policy, not an accident of map iteration. Diff performs no I/O and does
// not mutate either snapshot.
func Diff(old, new Snapshot) []ChangeEvent {
	var events []ChangeEvent

	events = append(events, diffAdded(old, new)...)
	events = append(events, diffRemoved(old, new)...)
	events = append(events, diffSurvivors(old, new)...)

	return events
}

// diffAdded emits item_added for ids present in new but not old.
func diffAdded(old, new Snapshot) []ChangeEvent {
	var added []ItemRecord

	for id, item := range new.Items {
		if _, ok := old.Items[id]; !ok {
			added = append(added, item)
		}
	}

	sortByListThenID(added)

	events := make([]ChangeEvent, 0, len(added))
	for _, item := range added {
		events = append(events, ChangeEvent{
			Kind:     ChangeItemAdded,
			Item:     item,
			ListName: listName(new, item.ListID),
		})
	}

	return events
}

// diffRemoved emits item_removed for ids present in old but not new,
// carrying the old-side record since the new snapshot no longer has one.
func diffRemoved(old, new Snapshot) []ChangeEvent {
	var removed []ItemRecord

	for id, item := range old.Items {
		if _, ok := new.Items[id]; !ok {
			removed = append(removed, item)
		}
	}

	sortByListThenID(removed)

	events := make([]ChangeEvent, 0, len(removed))
	for _, item := range removed {
		events = append(events, ChangeEvent{
			Kind:     ChangeItemRemoved,
			Item:     item,
			ListName: listName(old, item.ListID),
		})
	}

	return events
}

// diffSurvivors emits check-state and modification events for ids present
// in both snapshots, ascending by id.
func diffSurvivors(old, new Snapshot) []ChangeEvent {
	var ids []string

	for id := range new.Items {
		if _, ok := old.Items[id]; ok {
			ids = append(ids, id)
		}
	}

	sort.Strings(ids)

	var events []ChangeEvent

	for _, id := range ids {
		before := old.Items[id]
		after := new.Items[id]

		if before.IsChecked != after.IsChecked {
			kind := ChangeItemChecked
			if !after.IsChecked {
				kind = ChangeItemUnchecked
			}

			events = append(events, ChangeEvent{
				Kind:     kind,
				Item:     after,
				ListName: listName(new, after.ListID),
			})
		}

		if fields := fieldChanges(before, after); len(fields) > 0 {
			events = append(events, ChangeEvent{
				Kind:     ChangeItemModified,
				Item:     after,
				ListName: listName(new, after.ListID),
				Fields:   fields,
			})
		}
	}

	return events
}

// fieldChanges compares the diffable fields of two records of the same item
// and returns one FieldChange per difference, in the fixed order name,
// details, quantity, category.
func fieldChanges(before, after ItemRecord) []FieldChange {
	var changes []FieldChange

	if before.Name != after.Name {
		changes = append(changes, FieldChange{
			Field: FieldName,
			Old:   strPtr(before.Name),
			New:   strPtr(after.Name),
		})
	}

	if !strPtrEqual(before.Details, after.Details) {
		changes = append(changes, FieldChange{Field: FieldDetails, Old: before.Details, New: after.Details})
	}

	if !strPtrEqual(before.Quantity, after.Quantity) {
		changes = append(changes, FieldChange{Field: FieldQuantity, Old: before.Quantity, New: after.Quantity})
	}

	if !strPtrEqual(before.Category, after.Category) {
		changes = append(changes, FieldChange{Field: FieldCategory, Old: before.Category, New: after.Category})
	}

	return changes
}

// sortByListThenID orders records ascending by (list_id, id) so events come
// out grouped by list with a stable order inside each group.
func sortByListThenID(items []ItemRecord) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].ListID != items[j].ListID {
			return items[i].ListID < items[j].ListID
		}

		return items[i].ID < items[j].ID
	})
}

// listName resolves a list's display name from the snapshot that supplied
// the item. Snapshots are validated before diffing, so the lookup cannot
// miss; the empty-string fallback only guards direct Diff calls in tests.
func listName(s Snapshot, listID string) string {
	if l, ok := s.Lists[listID]; ok {
		return l.Name
	}

	return ""
}

func strPtr(s string) *string {
	return &s
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
