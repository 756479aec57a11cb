package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionCategory classifies a bank transaction after categorization.
type TransactionCategory string

const (
	CategoryRentIncome    TransactionCategory = "rent_income"
	CategoryOperatingCost TransactionCategory = "operating_cost"
	CategoryMaintenance   TransactionCategory = "maintenance"
	CategoryInsurance     TransactionCategory = "insurance"
	CategoryPropertyTax   TransactionCategory = "property_tax"
	CategoryLoanInterest  TransactionCategory = "loan_interest"
	CategoryOther         TransactionCategory = "other"
)

// Transaction represents a single bank transaction. Amount is signed:
// negative for outgoing payments, positive for incoming ones.
//
// IsCategorized is derived: it is true only when the sum of linked amounts
// covers the absolute transaction amount within the 0.01 epsilon.
type Transaction struct {
	Base
	Amount        decimal.Decimal     `gorm:"type:decimal(14,2);not null" json:"amount"`
	BookingDate   time.Time           `gorm:"not null;index" json:"booking_date"`
	Counterparty  string              `json:"counterparty"`
	Purpose       string              `json:"purpose"`
	Category      TransactionCategory `gorm:"index" json:"category"`
	IsCategorized bool                `gorm:"not null;default:false" json:"is_categorized"`
	UnitID        *string             `gorm:"type:uuid" json:"unit_id,omitempty"`
	ContractID    *string             `gorm:"type:uuid" json:"contract_id,omitempty"`

	// Relationships
	Links []ObligationLink `gorm:"foreignKey:TransactionID" json:"links,omitempty"`
}

// AbsAmount returns the unsigned transaction amount.
func (t *Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}
