// Package store owns the persistent state of the shop: the item catalog and
// the per-customer purchase history. The whole state is held in memory and
// written out as a single snapshot record after every mutation.
package store

import (
	"context"
	"fmt"
	"sync"
)

// DefaultSnapshotKey is the record name the snapshot is stored under in
// key-value backends.
const DefaultSnapshotKey = "keeranaStoreData"

// DateLayout renders purchase timestamps in the en-US locale shape the
// snapshot format carries, e.g. "1/2/2006, 3:04:05 PM".
const DateLayout = "1/2/2006, 3:04:05 PM"

// Item is a sellable catalog entry. PriceManual, when set and positive, takes
// precedence over PriceKg as the billing unit price.
type Item struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	PriceKg     *float64 `json:"priceKg"`
	PriceManual *float64 `json:"priceManual"`
	ImageSrc    *string  `json:"imageSrc"`
}

// PurchaseRecord is a denormalized line of a recorded bill. The item name is
// captured at sale time so later catalog edits never rewrite history.
type PurchaseRecord struct {
	ItemName string  `json:"itemName"`
	Qty      float64 `json:"qty"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"`
}

// Snapshot is the full serialized state: every item plus every customer's
// purchase history, keyed by the exact customer name.
type Snapshot struct {
	Items           []Item                      `json:"items"`
	PurchaseHistory map[string][]PurchaseRecord `json:"purchaseHistory"`
}

// NewSnapshot returns an empty snapshot with initialised collections.
func NewSnapshot() Snapshot {
	return Snapshot{
		Items:           []Item{},
		PurchaseHistory: map[string][]PurchaseRecord{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Items:           make([]Item, len(s.Items)),
		PurchaseHistory: make(map[string][]PurchaseRecord, len(s.PurchaseHistory)),
	}
	for i, item := range s.Items {
		out.Items[i] = item.clone()
	}
	for name, records := range s.PurchaseHistory {
		out.PurchaseHistory[name] = append([]PurchaseRecord(nil), records...)
	}
	return out
}

func (it Item) clone() Item {
	out := it
	if it.PriceKg != nil {
		v := *it.PriceKg
		out.PriceKg = &v
	}
	if it.PriceManual != nil {
		v := *it.PriceManual
		out.PriceManual = &v
	}
	if it.ImageSrc != nil {
		v := *it.ImageSrc
		out.ImageSrc = &v
	}
	return out
}

// Persister is the persistence boundary for the snapshot. Load reports
// ok=false when no snapshot exists yet, which is a normal first-run state.
type Persister interface {
	Load(ctx context.Context) (Snapshot, bool, error)
	Save(ctx context.Context, snap Snapshot) error
}

// Store guards the snapshot with a mutex and persists it wholesale after
// every successful mutation. The single-writer discipline matters: Save is a
// full overwrite, so unsynchronised writers would clobber each other.
type Store struct {
	mu        sync.RWMutex
	snap      Snapshot
	persister Persister
}

// Open loads the snapshot from the persister, or starts empty when none has
// been written yet.
func Open(ctx context.Context, p Persister) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("store: persister is required")
	}
	snap, ok, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if !ok {
		snap = NewSnapshot()
	}
	if snap.Items == nil {
		snap.Items = []Item{}
	}
	if snap.PurchaseHistory == nil {
		snap.PurchaseHistory = map[string][]PurchaseRecord{}
	}
	return &Store{snap: snap, persister: p}, nil
}

// Update runs fn against a copy of the snapshot, persists the result, and
// swaps it in. If fn fails or the save fails, the in-memory state is left
// untouched, so callers get all-or-nothing semantics per operation.
func (s *Store) Update(ctx context.Context, fn func(*Snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snap.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.persister.Save(ctx, next); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	s.snap = next
	return nil
}

// View runs fn with a read lock held. fn must not retain or mutate the
// snapshot's collections.
func (s *Store) View(fn func(Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.snap)
}

// Items returns the catalog in insertion order.
func (s *Store) Items() []Item {
	var out []Item
	s.View(func(snap Snapshot) {
		out = make([]Item, len(snap.Items))
		for i, item := range snap.Items {
			out[i] = item.clone()
		}
	})
	return out
}

// History returns the purchase records for the given customer name in append
// order. The name match is exact and case-sensitive; an unknown name yields
// an empty slice.
func (s *Store) History(customerName string) []PurchaseRecord {
	out := []PurchaseRecord{}
	s.View(func(snap Snapshot) {
		out = append(out, snap.PurchaseHistory[customerName]...)
	})
	return out
}
