// Package reconcile implements the state-reconciliation core: the snapshot
// data model, the SQLite cache store holding the last committed snapshot,
// the pure diff engine that classifies differences between two snapshots
// into typed change events, and the coordinator that drives one
// fetch → diff → dispatch → commit cycle at a time.
package reconcile

import (
	"context"
	"errors"
	"fmt"
)

// ErrMalformedSnapshot indicates a fetched snapshot violates the referential
// invariant (an item references a list that is not present). The snapshot
// source is producing invalid data; the cycle aborts with the cache untouched.
var ErrMalformedSnapshot = errors.New("reconcile: malformed snapshot")

// ListRecord is one remote shopping list as observed at snapshot time.
type ListRecord struct {
	ID          string
	Name        string
	LastUpdated int64 // Unix seconds
}

// ItemRecord is one list item as observed at snapshot time. Details,
// Quantity, Category, and UserID are nullable remote fields; nil means the
// field is absent, which is distinct from an empty string. UserID identifies
// the remote user who last touched the item and is never compared by the
// diff engine — it only feeds own-change filtering at the dispatch layer.
type ItemRecord struct {
	ID        string
	ListID    string
	Name      string
	Details   *string
	Quantity  *string
	Category  *string
	IsChecked bool
	UserID    *string
	LastSeen  int64 // Unix seconds
}

// Snapshot is the full observable remote state at one instant: every list
// and every item, keyed by their globally unique remote identifiers.
// A Snapshot is immutable once constructed; nothing in this package
// mutates one after creation.
type Snapshot struct {
	Lists map[string]ListRecord
	Items map[string]ItemRecord
}

// EmptySnapshot returns a snapshot with no lists and no items. This is what
// the cache store reports before anything has ever been committed.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Lists: make(map[string]ListRecord),
		Items: make(map[string]ItemRecord),
	}
}

// Validate checks the referential invariant: every item's ListID must
// resolve to a list present in the same snapshot. Returns an error wrapping
// ErrMalformedSnapshot on the first violation found.
func (s Snapshot) Validate() error {
	for id, item := range s.Items {
		if _, ok := s.Lists[item.ListID]; !ok {
			return fmt.Errorf("%w: item %s references absent list %s", ErrMalformedSnapshot, id, item.ListID)
		}
	}

	return nil
}

// ChangeKind classifies a detected difference between two snapshots.
type ChangeKind string

// Change kinds emitted by the diff engine.
const (
	ChangeItemAdded     ChangeKind = "item_added"
	ChangeItemRemoved   ChangeKind = "item_removed"
	ChangeItemChecked   ChangeKind = "item_checked"
	ChangeItemUnchecked ChangeKind = "item_unchecked"
	ChangeItemModified  ChangeKind = "item_modified"
)

// Field names a diffable item field. Check state is not a Field: is_checked
// transitions are their own change kinds because they drive distinct
// notification priority downstream.
type Field string

// Diffable item fields.
const (
	FieldName     Field = "name"
	FieldDetails  Field = "details"
	FieldQuantity Field = "quantity"
	FieldCategory Field = "category"
)

// FieldChange records one field's old and new values within an
// item_modified event. Nil means the field was absent on that side.
type FieldChange struct {
	Field Field
	Old   *string
	New   *string
}

// ChangeEvent is one typed difference between two snapshots. Item carries
// the new-side record for added, checked, unchecked, and modified events,
// and the old-side record for removed events (the new side no longer has
// one). ListName is the containing list's name, resolved from whichever
// snapshot supplied Item. Fields is populated only for item_modified.
type ChangeEvent struct {
	Kind     ChangeKind
	Item     ItemRecord
	ListName string
	Fields   []FieldChange
}

// SnapshotSource fetches the current remote state. Implementations must
// return a structurally valid snapshot or an error, never a partial one.
// Transport retry and backoff belong to the implementation; the
// coordinator treats any error as fatal to the current cycle.
type SnapshotSource interface {
	FetchSnapshot(ctx context.Context) (Snapshot, error)
}

// EventSink delivers one change event to the outside world. The coordinator
// logs delivery errors and moves on; it never inspects or retries them.
type EventSink interface {
	Deliver(ctx context.Context, ev ChangeEvent) error
}

// Store persists the last committed snapshot across process restarts.
// Load returns an empty snapshot when nothing has ever been committed.
// Commit atomically replaces the stored snapshot and must be idempotent
// under retry.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	Commit(ctx context.Context, snap Snapshot) error
}
