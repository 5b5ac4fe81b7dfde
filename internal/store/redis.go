package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPersister stores the snapshot as a single JSON value under Key.
type RedisPersister struct {
	Client *redis.Client
	Key    string
}

func (p RedisPersister) key() string {
	if p.Key == "" {
		return DefaultSnapshotKey
	}
	return p.Key
}

// Load fetches and decodes the snapshot. A missing key means first run.
func (p RedisPersister) Load(ctx context.Context) (Snapshot, bool, error) {
	if p.Client == nil {
		return Snapshot{}, false, errors.New("redis persister: client is required")
	}
	data, err := p.Client.Get(ctx, p.key()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("get snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Save overwrites the snapshot key. No TTL: the snapshot is the system of
// record, not a cache.
func (p RedisPersister) Save(ctx context.Context, snap Snapshot) error {
	if p.Client == nil {
		return errors.New("redis persister: client is required")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return p.Client.Set(ctx, p.key(), data, 0).Err()
}

// Ping probes the Redis connection.
func (p RedisPersister) Ping(ctx context.Context) error {
	if p.Client == nil {
		return errors.New("redis persister: client is required")
	}
	return p.Client.Ping(ctx).Err()
}
