package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxLotStatus tracks how much of a purchase batch is still unsold.
type TaxLotStatus string

const (
	LotStatusOpen          TaxLotStatus = "open"
	LotStatusPartiallySold TaxLotStatus = "partially_sold"
	LotStatusClosed        TaxLotStatus = "closed"
)

// TaxCategory classifies a realized gain for tax reporting.
type TaxCategory string

const (
	TaxCategoryCapitalIncome TaxCategory = "capital_income"
	TaxCategoryPrivateSale   TaxCategory = "private_sale"
)

// TaxLot is one purchase batch of an asset. RemainingQuantity only ever
// decreases; OriginalQuantity always equals RemainingQuantity plus the
// quantities sold against the lot across all tax events.
type TaxLot struct {
	Base
	AssetID           string          `gorm:"type:uuid;not null;index:idx_tax_lots_asset_account" json:"asset_id"`
	AccountID         string          `gorm:"type:uuid;not null;index:idx_tax_lots_asset_account" json:"account_id"`
	BuyTransactionID  string          `gorm:"type:uuid;not null" json:"buy_transaction_id"`
	PurchaseDate      time.Time       `gorm:"not null;index" json:"purchase_date"`
	OriginalQuantity  decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"original_quantity"`
	RemainingQuantity decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"remaining_quantity"`
	CostBasisPerUnit  decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"cost_basis_per_unit"`
	Status            TaxLotStatus    `gorm:"not null;default:open;index" json:"status"`
	HoldingPeriodEnd  *time.Time      `json:"holding_period_end,omitempty"`

	// Relationships
	Asset Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}

// TotalCostBasis returns the cost basis of the full original lot.
func (l *TaxLot) TotalCostBasis() decimal.Decimal {
	return l.CostBasisPerUnit.Mul(l.OriginalQuantity)
}

// TaxEvent records the realized result of consuming (part of) one tax lot
// during a sale. Tax events are append-only and never altered after creation.
type TaxEvent struct {
	Base
	SellTransactionID string          `gorm:"type:uuid;not null;index" json:"sell_transaction_id"`
	TaxLotID          string          `gorm:"type:uuid;not null;index" json:"tax_lot_id"`
	Quantity          decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"quantity"`
	Proceeds          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"proceeds"`
	CostBasis         decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"cost_basis"`
	GainLoss          decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"gain_loss"`
	TaxableAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"taxable_amount"`
	ExemptionRate     decimal.Decimal `gorm:"type:decimal(5,4);not null;default:0" json:"exemption_rate"`
	HoldingPeriodDays int             `gorm:"not null" json:"holding_period_days"`
	TaxCategory       TaxCategory     `gorm:"not null" json:"tax_category"`

	// Relationships
	TaxLot TaxLot `gorm:"foreignKey:TaxLotID" json:"tax_lot,omitempty"`
}
