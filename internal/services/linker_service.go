package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "immoledger/internal/errors"
	"immoledger/internal/ledger"
	"immoledger/internal/logger"
	"immoledger/internal/models"
	"immoledger/internal/pagination"
)

// linkerService creates and replaces links between bank transactions and
// obligations.
type linkerService struct {
	db    *gorm.DB
	locks *keyedMutex
}

// NewLinkerService creates a new LinkerServicer.
func NewLinkerService(db *gorm.DB) LinkerServicer {
	return &linkerService{db: db, locks: &keyedMutex{}}
}

// BulkAllocate categorizes a batch of transactions and, when allocations are
// given, spreads each allocation proportionally across the batch by each
// transaction's share of the total absolute amount. Failures on individual
// items are recorded and the batch continues.
func (s *linkerService) BulkAllocate(ctx context.Context, req BulkAllocateRequest) (*BulkAllocateReport, error) {
	if len(req.TransactionIDs) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "No transactions selected")
	}

	db := s.db.WithContext(ctx)
	report := &BulkAllocateReport{Errors: []BulkItemError{}, Details: []BulkAllocateDetail{}}

	var transactions []models.Transaction
	if err := db.Where("id IN ?", req.TransactionIDs).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	found := make(map[string]bool, len(transactions))
	for i := range transactions {
		found[transactions[i].ID] = true
	}
	for _, id := range req.TransactionIDs {
		if !found[id] {
			report.Errors = append(report.Errors, BulkItemError{TransactionID: id, Message: "transaction not found"})
		}
	}
	if len(transactions) == 0 {
		report.Success = false
		return report, nil
	}

	if len(req.Allocations) > 0 {
		if err := s.allocate(db, req, transactions, report); err != nil {
			return nil, err
		}
	} else {
		s.categorize(db, req, transactions, report)
	}

	report.Success = len(report.Errors) == 0
	return report, nil
}

// allocate runs the allocation mode of BulkAllocate. Validation happens
// before any write; after that each allocation is processed in its own
// database transaction so one bad item cannot abort the batch. Shares are
// capped at each transaction's remaining unlinked amount across the whole
// run, so no transaction ever carries links beyond its absolute amount.
func (s *linkerService) allocate(db *gorm.DB, req BulkAllocateRequest, transactions []models.Transaction, report *BulkAllocateReport) error {
	allocs := make([]ledger.Allocation, len(req.Allocations))
	for i, a := range req.Allocations {
		allocs[i] = ledger.Allocation{TargetID: a.FinancialItemID, Amount: a.Amount}
		if !allocs[i].Valid() {
			return apperrors.ErrInvalidAllocation
		}
	}

	txAmounts := make([]decimal.Decimal, len(transactions))
	for i := range transactions {
		txAmounts[i] = transactions[i].Amount
	}

	remaining, err := s.remainingCapacity(db, transactions)
	if err != nil {
		return err
	}
	totalCapacity := decimal.Zero
	for _, r := range remaining {
		totalCapacity = totalCapacity.Add(r)
	}
	if ledger.ExceedsAmount(ledger.AllocationTotal(allocs), totalCapacity) {
		return apperrors.ErrAllocationExceedsAmount
	}

	today := time.Now()
	linksPerTx := make(map[string]int, len(transactions))

	for _, alloc := range allocs {
		shares := ledger.SpreadProportionally(alloc.Amount, txAmounts, remaining)
		placed := decimal.Zero
		for _, share := range shares {
			placed = placed.Add(share)
		}
		if alloc.Amount.Sub(placed).GreaterThan(ledger.Epsilon) {
			report.Errors = append(report.Errors, BulkItemError{
				FinancialItemID: alloc.TargetID,
				Message:         "allocation exceeds the remaining transaction capacity",
			})
			continue
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			var item models.FinancialItem
			if err := tx.First(&item, "id = ?", alloc.TargetID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrFinancialItemNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			for i := range transactions {
				if !shares[i].IsPositive() {
					continue
				}
				itemID := alloc.TargetID
				link := models.ObligationLink{
					TransactionID:   transactions[i].ID,
					FinancialItemID: &itemID,
					LinkedAmount:    shares[i],
				}
				if err := tx.Create(&link).Error; err != nil {
					return apperrors.Wrap(apperrors.ErrInternalServer, err)
				}
			}

			_, err := recomputeFinancialItem(tx, alloc.TargetID, today)
			return err
		})
		if err != nil {
			logger.Get().Warnw("bulk allocation item failed",
				"financial_item_id", alloc.TargetID,
				"error", err.Error(),
			)
			report.Errors = append(report.Errors, BulkItemError{FinancialItemID: alloc.TargetID, Message: err.Error()})
			continue
		}

		// Only committed links consume capacity and count in the report.
		for i := range transactions {
			if shares[i].IsPositive() {
				remaining[i] = remaining[i].Sub(shares[i])
				linksPerTx[transactions[i].ID]++
			}
		}
	}

	for i := range transactions {
		t := &transactions[i]
		if err := s.updateTransactionFields(db, t, req); err != nil {
			report.Errors = append(report.Errors, BulkItemError{TransactionID: t.ID, Message: err.Error()})
			continue
		}
		if err := refreshCategorized(db, t); err != nil {
			report.Errors = append(report.Errors, BulkItemError{TransactionID: t.ID, Message: err.Error()})
			continue
		}
		report.Details = append(report.Details, BulkAllocateDetail{
			TransactionID: t.ID,
			LinksCreated:  linksPerTx[t.ID],
			Categorized:   t.IsCategorized,
		})
	}
	return nil
}

// remainingCapacity returns how much of each transaction's absolute amount
// is not yet covered by existing links, floored at zero.
func (s *linkerService) remainingCapacity(db *gorm.DB, transactions []models.Transaction) ([]decimal.Decimal, error) {
	ids := make([]string, len(transactions))
	for i := range transactions {
		ids[i] = transactions[i].ID
	}

	var links []models.ObligationLink
	if err := db.Where("transaction_id IN ?", ids).Find(&links).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	linked := make(map[string]decimal.Decimal, len(transactions))
	for i := range links {
		linked[links[i].TransactionID] = linked[links[i].TransactionID].Add(links[i].LinkedAmount)
	}

	remaining := make([]decimal.Decimal, len(transactions))
	for i := range transactions {
		r := transactions[i].AbsAmount().Sub(linked[transactions[i].ID])
		if r.IsNegative() {
			r = decimal.Zero
		}
		remaining[i] = r
	}
	return remaining, nil
}

// categorize runs the plain categorization mode: no links, just category
// and assignment fields on each transaction.
func (s *linkerService) categorize(db *gorm.DB, req BulkAllocateRequest, transactions []models.Transaction, report *BulkAllocateReport) {
	for i := range transactions {
		t := &transactions[i]
		if err := s.updateTransactionFields(db, t, req); err != nil {
			report.Errors = append(report.Errors, BulkItemError{TransactionID: t.ID, Message: err.Error()})
			continue
		}
		report.Details = append(report.Details, BulkAllocateDetail{
			TransactionID: t.ID,
			Categorized:   t.IsCategorized,
		})
	}
}

func (s *linkerService) updateTransactionFields(db *gorm.DB, t *models.Transaction, req BulkAllocateRequest) error {
	updates := map[string]interface{}{"category": req.Category}
	if req.UnitID != nil {
		updates["unit_id"] = *req.UnitID
	}
	if req.ContractID != nil {
		updates["contract_id"] = *req.ContractID
	}
	if err := db.Model(t).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Reconcile replaces the full link set of one transaction. Validation
// happens before any mutation; the delete and recreate run inside a single
// database transaction, serialized per transaction id, so no reader ever
// observes the transaction without links.
func (s *linkerService) Reconcile(ctx context.Context, transactionID string, req ReconcileRequest) error {
	unlock := s.locks.lock("tx:" + transactionID)
	defer unlock()

	db := s.db.WithContext(ctx)

	var transaction models.Transaction
	if err := db.First(&transaction, "id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTransactionNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	itemAllocs := make([]ledger.Allocation, len(req.FinancialItemAllocations))
	for i, a := range req.FinancialItemAllocations {
		itemAllocs[i] = ledger.Allocation{TargetID: a.TargetID, Amount: a.Amount}
	}
	invoiceAllocs := make([]ledger.Allocation, len(req.InvoiceAllocations))
	for i, a := range req.InvoiceAllocations {
		invoiceAllocs[i] = ledger.Allocation{TargetID: a.TargetID, Amount: a.Amount}
	}

	for _, a := range append(append([]ledger.Allocation{}, itemAllocs...), invoiceAllocs...) {
		if !a.Valid() {
			return apperrors.ErrInvalidAllocation
		}
	}

	total := ledger.AllocationTotal(itemAllocs).Add(ledger.AllocationTotal(invoiceAllocs))
	if ledger.ExceedsAmount(total, transaction.Amount) {
		return apperrors.ErrAllocationExceedsAmount
	}

	today := time.Now()

	return db.Transaction(func(tx *gorm.DB) error {
		var oldLinks []models.ObligationLink
		if err := tx.Where("transaction_id = ?", transactionID).Find(&oldLinks).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Where("transaction_id = ?", transactionID).Delete(&models.ObligationLink{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		affectedItems := make(map[string]bool)
		affectedInvoices := make(map[string]bool)
		for _, l := range oldLinks {
			if l.FinancialItemID != nil {
				affectedItems[*l.FinancialItemID] = true
			}
			if l.InvoiceID != nil {
				affectedInvoices[*l.InvoiceID] = true
			}
		}

		for _, a := range itemAllocs {
			itemID := a.TargetID
			link := models.ObligationLink{
				TransactionID:   transactionID,
				FinancialItemID: &itemID,
				LinkedAmount:    a.Amount,
			}
			if err := tx.Create(&link).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			affectedItems[itemID] = true
		}
		for _, a := range invoiceAllocs {
			invoiceID := a.TargetID
			link := models.ObligationLink{
				TransactionID: transactionID,
				InvoiceID:     &invoiceID,
				LinkedAmount:  a.Amount,
			}
			if err := tx.Create(&link).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			affectedInvoices[invoiceID] = true
		}

		for itemID := range affectedItems {
			if _, err := recomputeFinancialItem(tx, itemID, today); err != nil {
				return err
			}
		}
		for invoiceID := range affectedInvoices {
			if _, err := recomputeInvoice(tx, invoiceID, today); err != nil {
				return err
			}
		}

		updates := map[string]interface{}{}
		if req.Category != "" {
			updates["category"] = req.Category
		}
		if req.UnitID != nil {
			updates["unit_id"] = *req.UnitID
		}
		if req.ContractID != nil {
			updates["contract_id"] = *req.ContractID
		}
		if len(updates) > 0 {
			if err := tx.Model(&transaction).Updates(updates).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		return refreshCategorized(tx, &transaction)
	})
}

// GetTransactions returns a paginated list of transactions, newest first,
// optionally narrowed by category and booking month.
func (s *linkerService) GetTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	db := s.db.WithContext(ctx)
	page.Defaults()

	var monthStart time.Time
	if filter.PaymentMonth != "" {
		parsed, err := time.Parse("2006-01", filter.PaymentMonth)
		if err != nil {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Payment month must be YYYY-MM")
		}
		monthStart = parsed
	}

	filterScope := func(q *gorm.DB) *gorm.DB {
		if filter.Category != "" {
			q = q.Where("category = ?", filter.Category)
		}
		if !monthStart.IsZero() {
			q = q.Where("booking_date >= ? AND booking_date < ?", monthStart, monthStart.AddDate(0, 1, 0))
		}
		return q
	}

	var totalItems int64
	if err := db.Model(&models.Transaction{}).Scopes(filterScope).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := db.Scopes(filterScope).Preload("Links").Order("booking_date DESC").
		Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}
