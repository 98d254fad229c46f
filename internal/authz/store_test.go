package authz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreReplaceSwapsWholeActor(t *testing.T) {
	store := NewStore()

	first := &Actor{ID: 1, Permissions: []string{"supplier.viewAny"}}
	store.Replace("sess-1", first)
	require.Same(t, first, store.Get("sess-1"))

	// A site switch replaces the snapshot wholesale; readers see either
	// the old actor or the new one, never a mix.
	second := &Actor{ID: 1, CurrentSiteID: siteID(4), Permissions: []string{"item.viewAny"}}
	store.Replace("sess-1", second)
	require.Same(t, second, store.Get("sess-1"))
	require.Equal(t, []string{"supplier.viewAny"}, first.Permissions, "old snapshot untouched")
}

func TestStoreClear(t *testing.T) {
	store := NewStore()
	store.Replace("sess-1", &Actor{ID: 1})

	store.Clear("sess-1")
	require.Nil(t, store.Get("sess-1"))
}

func TestStoreReplaceNilDeletes(t *testing.T) {
	store := NewStore()
	store.Replace("sess-1", &Actor{ID: 1})

	store.Replace("sess-1", nil)
	require.Nil(t, store.Get("sess-1"))
}

func TestStoreIgnoresEmptySessionID(t *testing.T) {
	store := NewStore()
	store.Replace("", &Actor{ID: 1})
	require.Nil(t, store.Get(""))
}
