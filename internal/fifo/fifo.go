// Package fifo implements oldest-purchase-first consumption of tax lots.
// Consume is a pure function over value copies of the lots, so lot
// consumption can be tested and reasoned about without a store.
package fifo

import (
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInsufficientQuantity is returned when the sell quantity exceeds the
// total remaining quantity of all open lots. No lot is consumed in that
// case; the caller decides how to surface the failure.
var ErrInsufficientQuantity = errors.New("sell quantity exceeds open lot quantity")

// Lot is the consumable view of a tax lot.
type Lot struct {
	ID           string
	PurchaseDate time.Time
	Remaining    decimal.Decimal
	CostPerUnit  decimal.Decimal
}

// Consumption describes how much of one lot a sale used up.
type Consumption struct {
	LotID        string
	PurchaseDate time.Time
	Quantity     decimal.Decimal
	CostBasis    decimal.Decimal
	NewRemaining decimal.Decimal
	Closed       bool
}

// Consume walks the lots in ascending purchase date order and consumes
// sellQty from them. A later-dated lot is never touched while an
// earlier-dated lot still has remaining quantity.
//
// The full quantity must be coverable: if the lots hold less than sellQty
// in total, Consume returns ErrInsufficientQuantity and no consumptions.
func Consume(lots []Lot, sellQty decimal.Decimal) ([]Consumption, error) {
	if !sellQty.IsPositive() {
		return nil, errors.New("sell quantity must be positive")
	}

	available := decimal.Zero
	for _, l := range lots {
		available = available.Add(l.Remaining)
	}
	if available.LessThan(sellQty) {
		return nil, ErrInsufficientQuantity
	}

	ordered := make([]Lot, len(lots))
	copy(ordered, lots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PurchaseDate.Before(ordered[j].PurchaseDate)
	})

	var consumptions []Consumption
	remaining := sellQty
	for _, lot := range ordered {
		if remaining.IsZero() {
			break
		}
		if !lot.Remaining.IsPositive() {
			continue
		}

		qty := decimal.Min(remaining, lot.Remaining)
		newRemaining := lot.Remaining.Sub(qty)
		consumptions = append(consumptions, Consumption{
			LotID:        lot.ID,
			PurchaseDate: lot.PurchaseDate,
			Quantity:     qty,
			CostBasis:    lot.CostPerUnit.Mul(qty),
			NewRemaining: newRemaining,
			Closed:       newRemaining.IsZero(),
		})
		remaining = remaining.Sub(qty)
	}

	return consumptions, nil
}

// HoldingPeriodDays returns the whole days between purchase and sale.
func HoldingPeriodDays(purchaseDate, saleDate time.Time) int {
	return int(saleDate.Sub(purchaseDate).Hours() / 24)
}
