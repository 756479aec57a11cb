// Package ledger holds the pure reconciliation rules shared by the
// transaction linker and the sync sweep: status recomputation from links,
// allocation validation, and the epsilon conventions for money comparisons.
package ledger

import (
	"time"

	"immoledger/internal/models"

	"github.com/shopspring/decimal"
)

// Epsilon is the tolerance for treating rounding differences as equal.
// Two amounts closer than one cent count as the same amount.
var Epsilon = decimal.New(1, -2)

// CoversExpected reports whether paid covers expected within Epsilon.
func CoversExpected(paid, expected decimal.Decimal) bool {
	return paid.GreaterThanOrEqual(expected.Sub(Epsilon))
}

// RecomputeStatus derives an obligation's status from its paid and expected
// amounts. Invoices additionally escalate to overdue once the due date has
// passed without full payment; financial items never go overdue.
func RecomputeStatus(expected, paid decimal.Decimal, dueDate time.Time, isInvoice bool, today time.Time) models.ObligationStatus {
	var status models.ObligationStatus
	switch {
	case CoversExpected(paid, expected):
		status = models.StatusPaid
	case paid.IsPositive():
		status = models.StatusPartial
	default:
		status = models.StatusPending
	}

	if isInvoice && status != models.StatusPaid && dueDate.Before(today) {
		return models.StatusOverdue
	}
	return status
}

// PaidAmount sums the linked amounts of an obligation's links.
func PaidAmount(links []models.ObligationLink) decimal.Decimal {
	total := decimal.Zero
	for i := range links {
		total = total.Add(links[i].LinkedAmount)
	}
	return total
}

// Allocation is one requested application of money to a target obligation.
type Allocation struct {
	TargetID string
	Amount   decimal.Decimal
}

// ValidAllocation reports whether the allocation has a target and a
// strictly positive amount.
func (a Allocation) Valid() bool {
	return a.TargetID != "" && a.Amount.IsPositive()
}

// AllocationTotal sums the requested allocation amounts.
func AllocationTotal(allocs []Allocation) decimal.Decimal {
	total := decimal.Zero
	for _, a := range allocs {
		total = total.Add(a.Amount)
	}
	return total
}

// ExceedsAmount reports whether an allocated total overshoots the absolute
// transaction amount by more than Epsilon.
func ExceedsAmount(allocated, txAmount decimal.Decimal) bool {
	return allocated.GreaterThan(txAmount.Abs().Add(Epsilon))
}

// SpreadProportionally splits an allocation amount across transactions in
// proportion to each weight's share of the total absolute weight. Every
// share is rounded to cents and capped at the matching entry of capacity,
// so no share is ever negative and no transaction is pushed past what it
// can still absorb. Rounding differences are settled against transactions
// with spare capacity; the shares sum to amount as long as the total
// capacity covers it. capacity must be as long as weights.
func SpreadProportionally(amount decimal.Decimal, weights, capacity []decimal.Decimal) []decimal.Decimal {
	totalWeight := decimal.Zero
	for _, w := range weights {
		totalWeight = totalWeight.Add(w.Abs())
	}

	shares := make([]decimal.Decimal, len(weights))
	if len(weights) == 0 || totalWeight.IsZero() {
		return shares
	}

	assigned := decimal.Zero
	for i, w := range weights {
		share := amount.Mul(w.Abs()).Div(totalWeight).Round(2)
		if share.GreaterThan(capacity[i]) {
			share = capacity[i]
		}
		if share.IsNegative() {
			share = decimal.Zero
		}
		shares[i] = share
		assigned = assigned.Add(share)
	}

	// Rounding can leave the shares above or below amount. Top up from
	// transactions with spare capacity, or cut back from the end.
	remainder := amount.Sub(assigned)
	for i := range shares {
		if !remainder.IsPositive() {
			break
		}
		spare := capacity[i].Sub(shares[i])
		if !spare.IsPositive() {
			continue
		}
		add := decimal.Min(remainder, spare)
		shares[i] = shares[i].Add(add)
		remainder = remainder.Sub(add)
	}
	for i := len(shares) - 1; i >= 0 && remainder.IsNegative(); i-- {
		cut := decimal.Min(remainder.Neg(), shares[i])
		shares[i] = shares[i].Sub(cut)
		remainder = remainder.Add(cut)
	}
	return shares
}
