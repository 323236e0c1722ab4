package anylist

import (
	"context"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/tonimelisma/anylist-notify/internal/reconcile"
)

// FetchSnapshot fetches every list and converts the wire types into a
// reconcile.Snapshot. It satisfies reconcile.SnapshotSource.
//
// All remote strings are normalized to NFC before they enter a snapshot:
// the API is not consistent about Unicode normalization, and a
// normalization-only difference must not surface as a modification event.
func (c *Client) FetchSnapshot(ctx context.Context) (reconcile.Snapshot, error) {
	lists, err := c.Lists(ctx)
	if err != nil {
		return reconcile.Snapshot{}, err
	}

	return buildSnapshot(lists, time.Now().Unix()), nil
}

// buildSnapshot converts wire lists into a snapshot, stamping every record
// with the observation time.
func buildSnapshot(lists []List, observedAt int64) reconcile.Snapshot {
	snap := reconcile.EmptySnapshot()

	for _, l := range lists {
		snap.Lists[l.ID] = reconcile.ListRecord{
			ID:          l.ID,
			Name:        norm.NFC.String(l.Name),
			LastUpdated: observedAt,
		}

		for _, it := range l.Items {
			listID := it.ListID
			if listID == "" {
				// Some API responses omit the redundant parent reference.
				listID = l.ID
			}

			snap.Items[it.ID] = reconcile.ItemRecord{
				ID:        it.ID,
				ListID:    listID,
				Name:      norm.NFC.String(it.Name),
				Details:   normPtr(it.Details),
				Quantity:  normPtr(it.Quantity),
				Category:  normPtr(it.Category),
				IsChecked: it.Checked,
				UserID:    it.UserID,
				LastSeen:  observedAt,
			}
		}
	}

	return snap
}

func normPtr(s *string) *string {
	if s == nil {
		return nil
	}

	n := norm.NFC.String(*s)

	return &n
}
