package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "immoledger/internal/errors"
	"immoledger/internal/logger"
	"immoledger/internal/models"
)

// syncService runs the full-ledger sweep: recompute every obligation's
// status from its links, then match unlinked rent-income transactions to a
// best-fit financial item.
type syncService struct {
	db *gorm.DB
}

// NewSyncService creates a new SyncServicer.
func NewSyncService(db *gorm.DB) SyncServicer {
	return &syncService{db: db}
}

// Sync sweeps the whole ledger. It only ever touches transactions without
// links, so running it again with no new transactions is a no-op.
func (s *syncService) Sync(ctx context.Context) (*SyncReport, error) {
	db := s.db.WithContext(ctx)
	report := &SyncReport{Errors: []string{}}
	today := time.Now()

	var items []models.FinancialItem
	if err := db.Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range items {
		changed, err := recomputeFinancialItem(db, items[i].ID, today)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("financial item %s: %v", items[i].ID, err))
			continue
		}
		if changed {
			report.ItemsUpdated++
		}
	}

	var invoices []models.Invoice
	if err := db.Find(&invoices).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for i := range invoices {
		changed, err := recomputeInvoice(db, invoices[i].ID, today)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("invoice %s: %v", invoices[i].ID, err))
			continue
		}
		if changed {
			report.ItemsUpdated++
		}
	}
	report.TotalItems = len(items) + len(invoices)

	var transactions []models.Transaction
	if err := db.Where("category = ?", models.CategoryRentIncome).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	report.TotalTransactions = len(transactions)

	for i := range transactions {
		created, err := s.matchTransaction(db, &transactions[i], today)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("transaction %s: %v", transactions[i].ID, err))
			continue
		}
		if created {
			report.LinksCreated++
		}
	}

	logger.Get().Infow("ledger sync complete",
		"links_created", report.LinksCreated,
		"items_updated", report.ItemsUpdated,
		"errors", len(report.Errors),
	)
	return report, nil
}

// matchTransaction links one unlinked rent-income transaction to the
// best-fit financial item of its contract. Transactions that already carry
// a link are left alone; the matched amount never exceeds what the item
// still expects, so a rematch cannot double-count.
func (s *syncService) matchTransaction(db *gorm.DB, transaction *models.Transaction, today time.Time) (bool, error) {
	var linkCount int64
	if err := db.Model(&models.ObligationLink{}).
		Where("transaction_id = ?", transaction.ID).Count(&linkCount).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if linkCount > 0 {
		return false, nil
	}
	if transaction.ContractID == nil {
		return false, nil
	}

	var candidates []models.FinancialItem
	if err := db.Where("contract_id = ?", *transaction.ContractID).
		Order("due_date ASC").Find(&candidates).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(candidates) == 0 {
		return false, nil
	}

	target := bestFit(candidates, transaction.BookingDate.Format("2006-01"))
	if target == nil {
		return false, nil
	}

	remaining := target.ExpectedAmount.Sub(target.PaidAmount)
	amount := decimal.Min(transaction.AbsAmount(), remaining)
	if !amount.IsPositive() {
		return false, nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		itemID := target.ID
		link := models.ObligationLink{
			TransactionID:   transaction.ID,
			FinancialItemID: &itemID,
			LinkedAmount:    amount,
		}
		if err := tx.Create(&link).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if _, err := recomputeFinancialItem(tx, itemID, today); err != nil {
			return err
		}
		return refreshCategorized(tx, transaction)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// bestFit picks the financial item a rent payment most plausibly belongs
// to: an exact payment-month match first, then the earliest item that is
// not fully paid, then the first candidate.
func bestFit(candidates []models.FinancialItem, paymentMonth string) *models.FinancialItem {
	for i := range candidates {
		if candidates[i].PaymentMonth == paymentMonth {
			return &candidates[i]
		}
	}
	for i := range candidates {
		if candidates[i].Status != models.StatusPaid {
			return &candidates[i]
		}
	}
	return &candidates[0]
}
