package catalog_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Shreyas-sv10/Shopperplex2/internal/catalog"
	"github.com/Shreyas-sv10/Shopperplex2/internal/common"
	"github.com/Shreyas-sv10/Shopperplex2/internal/store"
)

func fptr(v float64) *float64 { return &v }

func newService(t *testing.T) *catalog.Service {
	t.Helper()
	st, err := store.Open(context.Background(), &store.MemoryPersister{})
	require.NoError(t, err)
	return &catalog.Service{Store: st}
}

func requireAppError(t *testing.T, err error, code string) *common.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok, "expected *common.AppError, got %T", err)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func TestAddItemValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, catalog.AddItemParams{PriceKg: fptr(60)})
	requireAppError(t, err, common.CodeValidation)

	_, err = svc.AddItem(ctx, catalog.AddItemParams{Name: "Rice"})
	requireAppError(t, err, common.CodeValidation)

	_, err = svc.AddItem(ctx, catalog.AddItemParams{Name: "Rice", PriceKg: fptr(-5)})
	requireAppError(t, err, common.CodeValidation)

	_, err = svc.AddItem(ctx, catalog.AddItemParams{Name: "Rice", PriceManual: fptr(math.NaN())})
	requireAppError(t, err, common.CodeValidation)

	require.Empty(t, svc.List(ctx), "rejected items must not be stored")
}

func TestAddItemAssignsIDAndPersists(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, catalog.AddItemParams{Name: "Rice", PriceKg: fptr(60)})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, "Rice", item.Name)
	require.Equal(t, 60.0, *item.PriceKg)
	require.Nil(t, item.PriceManual)

	items := svc.List(ctx)
	require.Len(t, items, 1)
	require.Equal(t, item, items[0])
}

func TestAddItemDropsNonPositivePrices(t *testing.T) {
	svc := newService(t)

	item, err := svc.AddItem(context.Background(), catalog.AddItemParams{
		Name:        "Soap",
		PriceKg:     fptr(0),
		PriceManual: fptr(25),
	})
	require.NoError(t, err)
	require.Nil(t, item.PriceKg, "a zero price is stored as absent")
	require.Equal(t, 25.0, *item.PriceManual)
}

func TestListPreservesInsertionOrder(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, name := range []string{"Rice", "Sugar", "Salt"} {
		_, err := svc.AddItem(ctx, catalog.AddItemParams{Name: name, PriceKg: fptr(10)})
		require.NoError(t, err)
	}

	items := svc.List(ctx)
	require.Len(t, items, 3)
	require.Equal(t, "Rice", items[0].Name)
	require.Equal(t, "Sugar", items[1].Name)
	require.Equal(t, "Salt", items[2].Name)
}

func TestUpdatePriceOverwritesBothFields(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, catalog.AddItemParams{
		Name:        "Soap",
		PriceKg:     fptr(10),
		PriceManual: fptr(25),
	})
	require.NoError(t, err)

	// Sending only a per-kg price clears the manual price.
	require.NoError(t, svc.UpdatePrice(ctx, item.ID, fptr(12), nil))

	items := svc.List(ctx)
	require.Len(t, items, 1)
	require.Equal(t, 12.0, *items[0].PriceKg)
	require.Nil(t, items[0].PriceManual)
}

func TestUpdatePriceErrors(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, catalog.AddItemParams{Name: "Rice", PriceKg: fptr(60)})
	require.NoError(t, err)

	err = svc.UpdatePrice(ctx, item.ID, nil, nil)
	requireAppError(t, err, common.CodeValidation)

	err = svc.UpdatePrice(ctx, "no-such-id", fptr(10), nil)
	requireAppError(t, err, common.CodeNotFound)

	items := svc.List(ctx)
	require.Equal(t, 60.0, *items[0].PriceKg, "failed updates must not change prices")
}

func TestEffectivePrice(t *testing.T) {
	price, err := catalog.EffectivePrice(store.Item{Name: "Soap", PriceKg: fptr(10), PriceManual: fptr(25)})
	require.NoError(t, err)
	require.Equal(t, 25.0, price, "manual price wins over per-kg")

	price, err = catalog.EffectivePrice(store.Item{Name: "Rice", PriceKg: fptr(60)})
	require.NoError(t, err)
	require.Equal(t, 60.0, price)

	_, err = catalog.EffectivePrice(store.Item{Name: "Broken"})
	appErr := requireAppError(t, err, common.CodeInvalidState)
	require.ErrorIs(t, appErr, catalog.ErrNoUsablePrice)
}
