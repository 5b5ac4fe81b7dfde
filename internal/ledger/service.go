// Package ledger turns item selections into priced bills and records them in
// the per-customer purchase history.
package ledger

import (
	"context"
	"math"
	"time"

	"github.com/Shreyas-sv10/Shopperplex2/internal/catalog"
	"github.com/Shreyas-sv10/Shopperplex2/internal/common"
	"github.com/Shreyas-sv10/Shopperplex2/internal/store"
)

// Selection pairs an item id with the quantity being bought. Quantity is a
// weight for per-kg items and a unit count for flat-priced ones.
type Selection struct {
	ItemID string
	Qty    float64
}

// BillLine is one priced row of a bill.
type BillLine struct {
	ItemID    string  `json:"itemId"`
	ItemName  string  `json:"itemName"`
	Qty       float64 `json:"qty"`
	UnitPrice float64 `json:"unitPrice"`
	Amount    float64 `json:"amount"`
}

// Bill is the computed result of one purchase.
type Bill struct {
	CustomerName string     `json:"customerName"`
	Lines        []BillLine `json:"lines"`
	Total        float64    `json:"total"`
	Discount     float64    `json:"discount"`
	FinalTotal   float64    `json:"finalTotal"`
	Date         string     `json:"date"`
}

// Service computes bills against the catalog held in the shared store and
// appends the resulting purchase records.
type Service struct {
	Store *store.Store

	// Now overrides the bill timestamp source. Defaults to time.Now.
	Now func() time.Time
}

// ComputeAndRecordBill prices the selections, applies the discount, appends
// one purchase record per line under customerName, persists, and returns the
// bill. Validation is all-or-nothing: any bad selection aborts the whole bill
// and nothing is written.
//
// The discount is deliberately not clamped to the total; an over-large
// discount yields a negative final total.
func (s *Service) ComputeAndRecordBill(ctx context.Context, customerName string, selections []Selection, discount float64) (Bill, error) {
	if customerName == "" {
		return Bill{}, common.ValidationError("customer name is required", nil)
	}
	if len(selections) == 0 {
		return Bill{}, common.ValidationError("no items selected", nil)
	}
	if math.IsNaN(discount) || math.IsInf(discount, 0) || discount < 0 {
		return Bill{}, common.ValidationError("discount must be a non-negative number", nil)
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	date := now.Format(store.DateLayout)

	var bill Bill
	err := s.Store.Update(ctx, func(snap *store.Snapshot) error {
		byID := make(map[string]store.Item, len(snap.Items))
		for _, item := range snap.Items {
			byID[item.ID] = item
		}

		lines := make([]BillLine, 0, len(selections))
		var total float64
		for _, sel := range selections {
			item, ok := byID[sel.ItemID]
			if !ok {
				return common.NotFoundError("item not found: " + sel.ItemID)
			}
			if math.IsNaN(sel.Qty) || math.IsInf(sel.Qty, 0) || sel.Qty <= 0 {
				return common.ValidationError("enter a valid quantity for "+item.Name, map[string]string{"itemId": item.ID})
			}
			unitPrice, err := catalog.EffectivePrice(item)
			if err != nil {
				return err
			}
			amount := sel.Qty * unitPrice
			lines = append(lines, BillLine{
				ItemID:    item.ID,
				ItemName:  item.Name,
				Qty:       sel.Qty,
				UnitPrice: unitPrice,
				Amount:    amount,
			})
			total += amount
		}

		records := snap.PurchaseHistory[customerName]
		for _, line := range lines {
			records = append(records, store.PurchaseRecord{
				ItemName: line.ItemName,
				Qty:      line.Qty,
				Price:    line.UnitPrice,
				Date:     date,
			})
		}
		snap.PurchaseHistory[customerName] = records

		bill = Bill{
			CustomerName: customerName,
			Lines:        lines,
			Total:        total,
			Discount:     discount,
			FinalTotal:   total - discount,
			Date:         date,
		}
		return nil
	})
	if err != nil {
		return Bill{}, err
	}
	return bill, nil
}

// LookupHistory returns the purchase records for the given customer in
// chronological append order. An unknown name yields an empty slice; that is
// a normal outcome, not an error.
func (s *Service) LookupHistory(_ context.Context, customerName string) []store.PurchaseRecord {
	return s.Store.History(customerName)
}
