package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "immoledger/internal/errors"
	"immoledger/internal/ledger"
	"immoledger/internal/models"
)

// recomputeFinancialItem rederives a financial item's paid amount and status
// from its current links and persists the result when it changed. Both the
// linker and the sync sweep go through here, so every code path applies the
// same status rules.
func recomputeFinancialItem(tx *gorm.DB, itemID string, today time.Time) (bool, error) {
	var item models.FinancialItem
	if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrFinancialItemNotFound
		}
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var links []models.ObligationLink
	if err := tx.Where("financial_item_id = ?", itemID).Find(&links).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	paid := ledger.PaidAmount(links)
	status := ledger.RecomputeStatus(item.ExpectedAmount, paid, item.DueDate, false, today)

	if paid.Equal(item.PaidAmount) && status == item.Status {
		return false, nil
	}
	if err := tx.Model(&item).Updates(map[string]interface{}{
		"paid_amount": paid,
		"status":      status,
	}).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return true, nil
}

// recomputeInvoice is the invoice counterpart of recomputeFinancialItem.
// Invoices escalate to overdue when due and unpaid.
func recomputeInvoice(tx *gorm.DB, invoiceID string, today time.Time) (bool, error) {
	var invoice models.Invoice
	if err := tx.First(&invoice, "id = ?", invoiceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, apperrors.ErrInvoiceNotFound
		}
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var links []models.ObligationLink
	if err := tx.Where("invoice_id = ?", invoiceID).Find(&links).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	paid := ledger.PaidAmount(links)
	status := ledger.RecomputeStatus(invoice.ExpectedAmount, paid, invoice.DueDate, true, today)

	if paid.Equal(invoice.PaidAmount) && status == invoice.Status {
		return false, nil
	}
	if err := tx.Model(&invoice).Updates(map[string]interface{}{
		"paid_amount": paid,
		"status":      status,
	}).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return true, nil
}

// refreshCategorized rederives a transaction's is_categorized flag from its
// links: true only when the linked total covers the absolute amount within
// the epsilon.
func refreshCategorized(tx *gorm.DB, transaction *models.Transaction) error {
	var links []models.ObligationLink
	if err := tx.Where("transaction_id = ?", transaction.ID).Find(&links).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	categorized := ledger.CoversExpected(ledger.PaidAmount(links), transaction.AbsAmount())
	if categorized == transaction.IsCategorized {
		return nil
	}
	if err := tx.Model(transaction).Update("is_categorized", categorized).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.IsCategorized = categorized
	return nil
}
