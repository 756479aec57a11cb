package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetClass determines which tax treatment applies on sale.
type AssetClass string

const (
	AssetClassSecurity      AssetClass = "security"
	AssetClassFund          AssetClass = "fund"
	AssetClassCrypto        AssetClass = "crypto"
	AssetClassPreciousMetal AssetClass = "precious_metal"
)

// FundSubtype selects the partial-exemption rate for fund assets.
type FundSubtype string

const (
	FundSubtypeEquity     FundSubtype = "equity"
	FundSubtypeMixed      FundSubtype = "mixed"
	FundSubtypeRealEstate FundSubtype = "real_estate"
	FundSubtypeBond       FundSubtype = "bond"
	FundSubtypeNone       FundSubtype = "none"
)

// HasHoldingPeriod reports whether the asset class is exempt from tax
// after the one-year private-sale holding period.
func (c AssetClass) HasHoldingPeriod() bool {
	return c == AssetClassCrypto || c == AssetClassPreciousMetal
}

// Asset is a capital asset tracked by the tax lot engine.
type Asset struct {
	Base
	Symbol      string      `gorm:"not null;index" json:"symbol"`
	Name        string      `gorm:"not null" json:"name"`
	AssetClass  AssetClass  `gorm:"not null" json:"asset_class"`
	FundSubtype FundSubtype `gorm:"default:none" json:"fund_subtype"`
	Currency    string      `gorm:"size:3;default:EUR" json:"currency"`
}

// AssetTransactionSide distinguishes purchases from disposals.
type AssetTransactionSide string

const (
	AssetTransactionBuy  AssetTransactionSide = "buy"
	AssetTransactionSell AssetTransactionSide = "sell"
)

// AssetTransaction is one buy or sell of an asset in a custody account.
// Buys open tax lots; sells consume them in FIFO order.
type AssetTransaction struct {
	Base
	AssetID      string               `gorm:"type:uuid;not null;index" json:"asset_id"`
	AccountID    string               `gorm:"type:uuid;not null;index" json:"account_id"`
	Side         AssetTransactionSide `gorm:"not null" json:"side"`
	TradeDate    time.Time            `gorm:"not null" json:"trade_date"`
	Quantity     decimal.Decimal      `gorm:"type:decimal(20,8);not null" json:"quantity"`
	PricePerUnit decimal.Decimal      `gorm:"type:decimal(20,8);not null" json:"price_per_unit"`
	ExchangeRate decimal.Decimal      `gorm:"type:decimal(14,6);default:1" json:"exchange_rate"`
	Fees         decimal.Decimal      `gorm:"type:decimal(14,2);default:0" json:"fees"`

	// Relationships
	Asset Asset `gorm:"foreignKey:AssetID" json:"asset,omitempty"`
}
