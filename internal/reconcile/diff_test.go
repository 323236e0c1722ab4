package reconcile

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger creates a debug-level logger that writes to t.Log.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(&testWriter{t: t}, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// testWriter adapts testing.T to io.Writer for slog output.
type testWriter struct {
	t *testing.T
}

func (w *testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// --- Snapshot builders ---

// snapshotOf builds a snapshot containing the given items, synthesizing one
// list per distinct ListID. List names follow the pattern "list <id>".
func snapshotOf(items ...ItemRecord) Snapshot {
	snap := EmptySnapshot()

	for _, it := range items {
		if _, ok := snap.Lists[it.ListID]; !ok {
			snap.Lists[it.ListID] = ListRecord{ID: it.ListID, Name: "list " + it.ListID, LastUpdated: 1}
		}

		snap.Items[it.ID] = it
	}

	return snap
}

func item(id, listID, name string, checked bool) ItemRecord {
	return ItemRecord{ID: id, ListID: listID, Name: name, IsChecked: checked, LastSeen: 1}
}

func kinds(events []ChangeEvent) []ChangeKind {
	out := make([]ChangeKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}

	return out
}

func ids(events []ChangeEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Item.ID)
	}

	return out
}

// --- Tests ---

func TestDiffIdentity(t *testing.T) {
	snap := snapshotOf(
		item("a", "l1", "Milk", false),
		item("b", "l1", "Bread", true),
		item("c", "l2", "Soap", false),
	)

	assert.Empty(t, Diff(snap, snap), "diff of a snapshot against itself must be empty")
}

func TestDiffEmptySnapshots(t *testing.T) {
	assert.Empty(t, Diff(EmptySnapshot(), EmptySnapshot()))
}

func TestDiffAdded(t *testing.T) {
	old := snapshotOf(item("a", "l1", "Milk", false))
	new := snapshotOf(
		item("a", "l1", "Milk", false),
		item("z", "l1", "Eggs", false),
	)

	events := Diff(old, new)
	require.Len(t, events, 1)
	assert.Equal(t, ChangeItemAdded, events[0].Kind)
	assert.Equal(t, "z", events[0].Item.ID)
	assert.Equal(t, "Eggs", events[0].Item.Name)
	assert.Equal(t, "list l1", events[0].ListName)
}

func TestDiffRemoved(t *testing.T) {
	old := snapshotOf(
		item("a", "l1", "Milk", false),
		item("y", "l1", "Butter", true),
	)
	new := snapshotOf(item("a", "l1", "Milk", false))

	events := Diff(old, new)
	require.Len(t, events, 1)
	assert.Equal(t, ChangeItemRemoved, events[0].Kind)
	assert.Equal(t, "y", events[0].Item.ID)
	// Removed events carry the old-side record.
	assert.Equal(t, "Butter", events[0].Item.Name)
	assert.True(t, events[0].Item.IsChecked)
}

func TestDiffAddedRemovedSetsArePartition(t *testing.T) {
	old := snapshotOf(
		item("a", "l1", "A", false),
		item("b", "l1", "B", false),
		item("c", "l2", "C", false),
	)
	new := snapshotOf(
		item("b", "l1", "B", false),
		item("d", "l2", "D", false),
		item("e", "l2", "E", false),
	)

	events := Diff(old, new)

	var added, removed []string

	for _, ev := range events {
		switch ev.Kind {
		case ChangeItemAdded:
			added = append(added, ev.Item.ID)
		case ChangeItemRemoved:
			removed = append(removed, ev.Item.ID)
		default:
			t.Fatalf("unexpected event kind %s for item %s", ev.Kind, ev.Item.ID)
		}
	}

	assert.ElementsMatch(t, []string{"d", "e"}, added, "added ids must equal ids(new) - ids(old)")
	assert.ElementsMatch(t, []string{"a", "c"}, removed, "removed ids must equal ids(old) - ids(new)")
}

func TestDiffChecked(t *testing.T) {
	old := snapshotOf(item("w", "l1", "Milk", false))
	new := snapshotOf(item("w", "l1", "Milk", true))

	events := Diff(old, new)
	require.Len(t, events, 1, "pure check flip must not produce a modification event")
	assert.Equal(t, ChangeItemChecked, events[0].Kind)
	assert.Equal(t, "w", events[0].Item.ID)
}

func TestDiffUnchecked(t *testing.T) {
	old := snapshotOf(item("w", "l1", "Milk", true))
	new := snapshotOf(item("w", "l1", "Milk", false))

	events := Diff(old, new)
	require.Len(t, events, 1)
	assert.Equal(t, ChangeItemUnchecked, events[0].Kind)
}

func TestDiffModifiedQuantity(t *testing.T) {
	oldItem := item("x", "l1", "Milk", false)
	oldItem.Quantity = strPtr("1 gallon")
	newItem := item("x", "l1", "Milk", false)
	newItem.Quantity = strPtr("2 gallons")

	events := Diff(snapshotOf(oldItem), snapshotOf(newItem))
	require.Len(t, events, 1)
	assert.Equal(t, ChangeItemModified, events[0].Kind)
	require.Len(t, events[0].Fields, 1)

	fc := events[0].Fields[0]
	assert.Equal(t, FieldQuantity, fc.Field)
	require.NotNil(t, fc.Old)
	require.NotNil(t, fc.New)
	assert.Equal(t, "1 gallon", *fc.Old)
	assert.Equal(t, "2 gallons", *fc.New)
}

func TestDiffModifiedMultipleFields(t *testing.T) {
	oldItem := item("x", "l1", "Milk", false)
	oldItem.Details = strPtr("whole")
	newItem := item("x", "l1", "Oat milk", false)
	newItem.Category = strPtr("Dairy")

	events := Diff(snapshotOf(oldItem), snapshotOf(newItem))
	require.Len(t, events, 1, "all field changes fold into one modification event")
	require.Len(t, events[0].Fields, 3)

	// Fixed field order: name, details, quantity, category.
	assert.Equal(t, FieldName, events[0].Fields[0].Field)
	assert.Equal(t, FieldDetails, events[0].Fields[1].Field)
	assert.Equal(t, FieldCategory, events[0].Fields[2].Field)

	assert.Nil(t, events[0].Fields[1].New, "details removed: new side is nil")
	assert.Nil(t, events[0].Fields[2].Old, "category added: old side is nil")
}

func TestDiffCheckFlipWithFieldChange(t *testing.T) {
	oldItem := item("x", "l1", "Milk", false)
	oldItem.Quantity = strPtr("1")
	newItem := item("x", "l1", "Milk", true)
	newItem.Quantity = strPtr("2")

	events := Diff(snapshotOf(oldItem), snapshotOf(newItem))
	require.Len(t, events, 2, "check flip and field change yield separate events")

	// Check-state event first, then the modification.
	assert.Equal(t, ChangeItemChecked, events[0].Kind)
	assert.Equal(t, ChangeItemModified, events[1].Kind)
	require.Len(t, events[1].Fields, 1)
	assert.Equal(t, FieldQuantity, events[1].Fields[0].Field)
}

func TestDiffNilVersusEmptyString(t *testing.T) {
	oldItem := item("x", "l1", "Milk", false)
	newItem := item("x", "l1", "Milk", false)
	newItem.Details = strPtr("")

	events := Diff(snapshotOf(oldItem), snapshotOf(newItem))
	require.Len(t, events, 1, "absent and empty are distinct values")
	assert.Equal(t, ChangeItemModified, events[0].Kind)
}

func TestDiffOrdering(t *testing.T) {
	old := snapshotOf(
		item("m", "l1", "Milk", false),  // survives, gets checked
		item("r2", "l1", "Rye", false),  // removed
		item("r1", "l2", "Rice", false), // removed
		item("k", "l2", "Kale", false),  // survives, renamed
	)
	new := snapshotOf(
		item("m", "l1", "Milk", true),
		item("k", "l2", "Chard", false),
		item("a2", "l1", "Apples", false), // added
		item("a1", "l2", "Anise", false),  // added
		item("a0", "l1", "Aioli", false),  // added
	)

	events := Diff(old, new)

	// Adds first ascending by (list, id), then removes the same way, then
	// survivor events ascending by id.
	assert.Equal(t, []string{"a0", "a2", "a1", "r2", "r1", "k", "m"}, ids(events))
	assert.Equal(t, []ChangeKind{
		ChangeItemAdded, ChangeItemAdded, ChangeItemAdded,
		ChangeItemRemoved, ChangeItemRemoved,
		ChangeItemModified, ChangeItemChecked,
	}, kinds(events))
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	old := snapshotOf(item("a", "l1", "Milk", false))
	new := snapshotOf(item("b", "l1", "Eggs", false))

	_ = Diff(old, new)

	assert.Len(t, old.Items, 1)
	assert.Len(t, new.Items, 1)
	assert.Contains(t, old.Items, "a")
	assert.Contains(t, new.Items, "b")
}

func TestDiffIgnoresUserID(t *testing.T) {
	oldItem := item("x", "l1", "Milk", false)
	oldItem.UserID = strPtr("alice")
	newItem := item("x", "l1", "Milk", false)
	newItem.UserID = strPtr("bob")

	assert.Empty(t, Diff(snapshotOf(oldItem), snapshotOf(newItem)),
		"user attribution changes are not notifiable")
}

func TestSnapshotValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		snap := snapshotOf(item("a", "l1", "Milk", false))
		assert.NoError(t, snap.Validate())
	})

	t.Run("empty", func(t *testing.T) {
		assert.NoError(t, EmptySnapshot().Validate())
	})

	t.Run("dangling list reference", func(t *testing.T) {
		snap := snapshotOf(item("a", "l1", "Milk", false))
		snap.Items["b"] = item("b", "nope", "Eggs", false)

		err := snap.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedSnapshot)
	})
}
