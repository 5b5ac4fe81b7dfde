package store

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryPersister keeps the serialized snapshot in process memory. It backs
// tests and the "memory" backend, where state is intentionally ephemeral.
// It round-trips through JSON so it exercises the same wire shape as the
// durable backends.
type MemoryPersister struct {
	mu   sync.Mutex
	data []byte

	// SaveErr, when set, is returned by every Save. Lets tests simulate a
	// failing backend.
	SaveErr error
}

// Load decodes the last saved snapshot, if any.
func (p *MemoryPersister) Load(_ context.Context) (Snapshot, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.data == nil {
		return Snapshot{}, false, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(p.data, &snap); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// Save serializes and retains the snapshot.
func (p *MemoryPersister) Save(_ context.Context, snap Snapshot) error {
	if p.SaveErr != nil {
		return p.SaveErr
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.data = data
	p.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (p *MemoryPersister) Ping(_ context.Context) error { return nil }
