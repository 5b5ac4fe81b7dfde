package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shreyas-sv10/Shopperplex2/internal/store"
)

func TestPebblePersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	persister, err := store.OpenPebblePersister(dir, "keeranaStoreData")
	require.NoError(t, err)

	_, ok, err := persister.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok, "fresh database holds no snapshot")

	st, err := store.Open(ctx, persister)
	require.NoError(t, err)
	require.NoError(t, st.Update(ctx, func(snap *store.Snapshot) error {
		sampleSnapshot(snap)
		return nil
	}))
	require.NoError(t, persister.Close())

	// Reopen from disk to prove durability.
	persister, err = store.OpenPebblePersister(dir, "keeranaStoreData")
	require.NoError(t, err)
	defer func() { require.NoError(t, persister.Close()) }()

	reloaded, err := store.Open(ctx, persister)
	require.NoError(t, err)
	require.Equal(t, st.Items(), reloaded.Items())
	require.Equal(t, st.History("Ravi"), reloaded.History("Ravi"))
}
