package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ObligationStatus is the payment status of a billable expectation.
// It is derived solely from the links attached to the obligation.
type ObligationStatus string

const (
	StatusPending ObligationStatus = "pending"
	StatusPartial ObligationStatus = "partial"
	StatusPaid    ObligationStatus = "paid"
	StatusOverdue ObligationStatus = "overdue"
)

// FinancialItem is a rent-side obligation: one expected payment for a
// lease contract in a given payment month. Financial items never become
// overdue, they only cycle pending/partial/paid.
type FinancialItem struct {
	Base
	ContractID     string           `gorm:"type:uuid;not null;index" json:"contract_id"`
	UnitID         string           `gorm:"type:uuid;not null;index" json:"unit_id"`
	Description    string           `json:"description"`
	ExpectedAmount decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"expected_amount"`
	PaidAmount     decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0" json:"paid_amount"`
	Status         ObligationStatus `gorm:"not null;default:pending;index" json:"status"`
	PaymentMonth   string           `gorm:"size:7;not null;index" json:"payment_month"` // YYYY-MM
	DueDate        time.Time        `gorm:"not null" json:"due_date"`

	// Relationships
	Contract LeaseContract    `gorm:"foreignKey:ContractID" json:"contract,omitempty"`
	Links    []ObligationLink `gorm:"foreignKey:FinancialItemID" json:"links,omitempty"`
}

// Invoice is a supplier-side obligation. Unlike financial items, invoices
// escalate to overdue when the due date has passed and they are not paid.
type Invoice struct {
	Base
	Supplier       string           `json:"supplier"`
	InvoiceNumber  string           `json:"invoice_number"`
	ExpectedAmount decimal.Decimal  `gorm:"type:decimal(14,2);not null" json:"expected_amount"`
	PaidAmount     decimal.Decimal  `gorm:"type:decimal(14,2);not null;default:0" json:"paid_amount"`
	Status         ObligationStatus `gorm:"not null;default:pending;index" json:"status"`
	DueDate        time.Time        `gorm:"not null" json:"due_date"`
	UnitID         *string          `gorm:"type:uuid" json:"unit_id,omitempty"`

	// Relationships
	Links []ObligationLink `gorm:"foreignKey:InvoiceID" json:"links,omitempty"`
}

// ObligationLink records how much of a transaction was applied to a given
// obligation. Exactly one of FinancialItemID and InvoiceID is set.
type ObligationLink struct {
	Base
	TransactionID   string          `gorm:"type:uuid;not null;index" json:"transaction_id"`
	FinancialItemID *string         `gorm:"type:uuid;index" json:"financial_item_id,omitempty"`
	InvoiceID       *string         `gorm:"type:uuid;index" json:"invoice_id,omitempty"`
	LinkedAmount    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"linked_amount"`

	// Relationships
	Transaction Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
}
