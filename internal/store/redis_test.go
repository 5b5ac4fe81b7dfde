package store_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Shreyas-sv10/Shopperplex2/internal/store"
)

func newRedisPersister(t *testing.T) store.RedisPersister {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return store.RedisPersister{Client: client, Key: "keeranaStoreData"}
}

func TestRedisPersisterMissingKey(t *testing.T) {
	persister := newRedisPersister(t)
	_, ok, err := persister.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisPersisterRoundTrip(t *testing.T) {
	ctx := context.Background()
	persister := newRedisPersister(t)

	st, err := store.Open(ctx, persister)
	require.NoError(t, err)
	require.NoError(t, st.Update(ctx, func(snap *store.Snapshot) error {
		sampleSnapshot(snap)
		return nil
	}))

	reloaded, err := store.Open(ctx, persister)
	require.NoError(t, err)
	require.Equal(t, st.Items(), reloaded.Items())
	require.Equal(t, st.History("Ravi"), reloaded.History("Ravi"))
}
