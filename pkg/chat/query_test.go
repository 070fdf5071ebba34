package chat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chatd/pkg/models"
	"chatd/pkg/store"
)

func openQueryStore(t *testing.T) {
	t.Helper()
	require.NoError(t, store.Open(t.TempDir()))
	t.Cleanup(func() { _ = store.Close() })
}

func TestListThreadsScopedToCaller(t *testing.T) {
	openQueryStore(t)

	_, err := store.CreateThread("alice", "hers")
	require.NoError(t, err)
	_, err = store.CreateThread("bob", "his")
	require.NoError(t, err)

	got, err := ListThreads("alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "hers", got[0].Title)

	_, err = ListThreads("")
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestGetThread(t *testing.T) {
	openQueryStore(t)

	th, err := store.CreateThread("alice", "t", models.Message{Role: models.RoleUser, Content: "hi"})
	require.NoError(t, err)

	got, err := GetThread("alice", th.ID)
	require.NoError(t, err)
	require.Len(t, got.Messages, 1)

	_, err = GetThread("bob", th.ID)
	require.ErrorIs(t, err, ErrThreadNotFound)

	_, err = GetThread("", th.ID)
	require.ErrorIs(t, err, ErrUnauthenticated)
}

func TestDeleteThread(t *testing.T) {
	openQueryStore(t)

	th, err := store.CreateThread("alice", "t")
	require.NoError(t, err)

	ok, err := DeleteThread("alice", th.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = DeleteThread("alice", th.ID)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = GetThread("alice", th.ID)
	require.ErrorIs(t, err, ErrThreadNotFound)
}
