package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

// PebblePersister stores the snapshot under a single key in a local Pebble
// database. Useful when the service should survive restarts without an
// external Redis.
type PebblePersister struct {
	db  *pebble.DB
	key []byte
}

// OpenPebblePersister opens (or creates) the Pebble database at dir.
func OpenPebblePersister(dir, key string) (*PebblePersister, error) {
	if key == "" {
		key = DefaultSnapshotKey
	}
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebble open: %w", err)
	}
	return &PebblePersister{db: db, key: []byte(key)}, nil
}

// Close releases the underlying database.
func (p *PebblePersister) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Load reads and decodes the snapshot key.
func (p *PebblePersister) Load(_ context.Context) (Snapshot, bool, error) {
	value, closer, err := p.db.Get(p.key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("pebble get: %w", err)
	}
	data := append([]byte(nil), value...)
	_ = closer.Close()

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// Save overwrites the snapshot key with a synced write.
func (p *PebblePersister) Save(_ context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := p.db.Set(p.key, data, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

// Ping reports whether the database handle is usable.
func (p *PebblePersister) Ping(_ context.Context) error {
	if p == nil || p.db == nil {
		return errors.New("pebble persister: database is closed")
	}
	return nil
}
