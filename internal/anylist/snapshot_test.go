package anylist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/anylist-notify/internal/reconcile"
)

func strp(s string) *string { return &s }

func TestBuildSnapshot(t *testing.T) {
	lists := []List{
		{
			ID:   "l1",
			Name: "Groceries",
			Items: []Item{
				{ID: "i1", ListID: "l1", Name: "Milk", Quantity: strp("1 gallon"), Checked: false, UserID: strp("u1")},
				{ID: "i2", ListID: "l1", Name: "Bread", Checked: true},
			},
		},
		{ID: "l2", Name: "Hardware", Items: []Item{{ID: "i3", ListID: "l2", Name: "Nails"}}},
	}

	snap := buildSnapshot(lists, 1234)

	require.Len(t, snap.Lists, 2)
	require.Len(t, snap.Items, 3)
	require.NoError(t, snap.Validate())

	assert.Equal(t, "Groceries", snap.Lists["l1"].Name)
	assert.Equal(t, int64(1234), snap.Lists["l1"].LastUpdated)

	milk := snap.Items["i1"]
	assert.Equal(t, "l1", milk.ListID)
	require.NotNil(t, milk.Quantity)
	assert.Equal(t, "1 gallon", *milk.Quantity)
	require.NotNil(t, milk.UserID)
	assert.Equal(t, "u1", *milk.UserID)
	assert.Nil(t, milk.Details)
	assert.Equal(t, int64(1234), milk.LastSeen)

	assert.True(t, snap.Items["i2"].IsChecked)
}

func TestBuildSnapshotFillsMissingListID(t *testing.T) {
	lists := []List{
		{ID: "l1", Name: "Groceries", Items: []Item{{ID: "i1", Name: "Milk"}}},
	}

	snap := buildSnapshot(lists, 1)
	assert.Equal(t, "l1", snap.Items["i1"].ListID)
	require.NoError(t, snap.Validate())
}

func TestBuildSnapshotNormalizesNFC(t *testing.T) {
	// "é" as e + combining acute (NFD) must normalize to the precomposed
	// form so normalization-only differences never look like changes.
	nfd := "Café"
	nfc := "Café"

	lists := []List{
		{ID: "l1", Name: nfd, Items: []Item{
			{ID: "i1", ListID: "l1", Name: nfd, Details: strp(nfd)},
		}},
	}

	snap := buildSnapshot(lists, 1)
	assert.Equal(t, nfc, snap.Lists["l1"].Name)
	assert.Equal(t, nfc, snap.Items["i1"].Name)
	require.NotNil(t, snap.Items["i1"].Details)
	assert.Equal(t, nfc, *snap.Items["i1"].Details)

	// Same content in NFC directly diffs clean against the NFD build.
	nfcLists := []List{
		{ID: "l1", Name: nfc, Items: []Item{
			{ID: "i1", ListID: "l1", Name: nfc, Details: strp(nfc)},
		}},
	}

	assert.Empty(t, reconcile.Diff(buildSnapshot(lists, 1), buildSnapshot(nfcLists, 1)))
}

func TestFetchSnapshot(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/lists", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(listsResponse{Lists: []List{
			{ID: "l1", Name: "Groceries", Items: []Item{{ID: "i1", ListID: "l1", Name: "Milk"}}},
		}})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)

	snap, err := client.FetchSnapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Lists, 1)
	assert.Len(t, snap.Items, 1)
	assert.Positive(t, snap.Items["i1"].LastSeen)
}

func TestFetchSnapshotPropagatesError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/lists", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
