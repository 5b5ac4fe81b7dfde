// Package catalog owns the list of sellable items and their pricing.
package catalog

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/Shreyas-sv10/Shopperplex2/internal/common"
	"github.com/Shreyas-sv10/Shopperplex2/internal/store"
)

// ErrNoUsablePrice is wrapped into the InvalidStateError raised when an item
// carries neither a usable manual price nor a per-kg price.
var ErrNoUsablePrice = errors.New("item has no usable price")

// Service exposes catalog operations over the shared store.
type Service struct {
	Store *store.Store
}

// AddItemParams carries the inputs for item registration. Prices are
// optional, but at least one must be a positive number.
type AddItemParams struct {
	Name        string
	PriceKg     *float64
	PriceManual *float64
	ImageSrc    *string
}

// AddItem validates, assigns a fresh id, appends the item, and persists.
func (s *Service) AddItem(ctx context.Context, p AddItemParams) (store.Item, error) {
	if p.Name == "" {
		return store.Item{}, common.ValidationError("item name is required", nil)
	}
	if !positivePrice(p.PriceKg) && !positivePrice(p.PriceManual) {
		return store.Item{}, common.ValidationError("a positive price per kg or manual price is required", nil)
	}

	item := store.Item{
		ID:          uuid.NewString(),
		Name:        p.Name,
		PriceKg:     normalizePrice(p.PriceKg),
		PriceManual: normalizePrice(p.PriceManual),
		ImageSrc:    p.ImageSrc,
	}
	err := s.Store.Update(ctx, func(snap *store.Snapshot) error {
		snap.Items = append(snap.Items, item)
		return nil
	})
	if err != nil {
		return store.Item{}, err
	}
	return item, nil
}

// UpdatePrice replaces BOTH price fields of the item: a price omitted here
// becomes absent, it is not left unchanged. That matches the behaviour the
// data model was built around, so existing snapshots keep meaning the same
// thing; callers must resend a price they want to keep.
func (s *Service) UpdatePrice(ctx context.Context, itemID string, priceKg, priceManual *float64) error {
	if !positivePrice(priceKg) && !positivePrice(priceManual) {
		return common.ValidationError("a positive new price per kg or manual price is required", nil)
	}
	return s.Store.Update(ctx, func(snap *store.Snapshot) error {
		for i := range snap.Items {
			if snap.Items[i].ID == itemID {
				snap.Items[i].PriceKg = normalizePrice(priceKg)
				snap.Items[i].PriceManual = normalizePrice(priceManual)
				return nil
			}
		}
		return common.NotFoundError("item not found")
	})
}

// List returns the catalog in insertion order.
func (s *Service) List(_ context.Context) []store.Item {
	return s.Store.Items()
}

// EffectivePrice resolves the unit price used for billing: the manual price
// when it is set and positive, otherwise the per-kg price. An item holding
// neither violates the catalog invariant and is rejected defensively.
func EffectivePrice(item store.Item) (float64, error) {
	if positivePrice(item.PriceManual) {
		return *item.PriceManual, nil
	}
	if positivePrice(item.PriceKg) {
		return *item.PriceKg, nil
	}
	appErr := common.InvalidStateError("item " + item.Name + " has no usable price")
	appErr.Err = ErrNoUsablePrice
	return 0, appErr
}

func positivePrice(p *float64) bool {
	if p == nil {
		return false
	}
	v := *p
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// normalizePrice drops non-positive or non-finite values, mirroring how the
// snapshot format represents "no price" as null.
func normalizePrice(p *float64) *float64 {
	if !positivePrice(p) {
		return nil
	}
	v := *p
	return &v
}
