package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DistributionKey selects the rule used to apportion a shared cost item
// across the units of a building.
type DistributionKey string

const (
	DistributionDirect           DistributionKey = "direct"
	DistributionArea             DistributionKey = "area"
	DistributionPersons          DistributionKey = "persons"
	DistributionUnits            DistributionKey = "units"
	DistributionHeatingOrdinance DistributionKey = "heating_ordinance"
)

// Statement is one operating-cost statement run for a building and period.
type Statement struct {
	Base
	BuildingID  string    `gorm:"type:uuid;not null;index" json:"building_id"`
	Title       string    `gorm:"not null" json:"title"`
	PeriodStart time.Time `gorm:"not null" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null" json:"period_end"`

	// Relationships
	Building  Building   `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	CostItems []CostItem `gorm:"foreignKey:StatementID" json:"cost_items,omitempty"`
}

// CostItem is one distributable cost position of a statement. ServiceStart
// and ServiceEnd bound the interval the cost was incurred for; when unset
// the item covers the full statement period.
type CostItem struct {
	Base
	StatementID     string          `gorm:"type:uuid;not null;index" json:"statement_id"`
	Description     string          `gorm:"not null" json:"description"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	DistributionKey DistributionKey `gorm:"not null" json:"distribution_key"`
	ServiceStart    *time.Time      `json:"service_start,omitempty"`
	ServiceEnd      *time.Time      `json:"service_end,omitempty"`
}

// UnitCostResult is the apportionment outcome for one unit (and, unless the
// unit was vacant, its contract) in a statement run. Results are recreated
// wholesale per run: rerunning a statement overwrites them idempotently.
type UnitCostResult struct {
	Base
	StatementID     string          `gorm:"type:uuid;not null;index" json:"statement_id"`
	UnitID          string          `gorm:"type:uuid;not null;index" json:"unit_id"`
	ContractID      *string         `gorm:"type:uuid" json:"contract_id,omitempty"`
	DayFactor       decimal.Decimal `gorm:"type:decimal(9,6);not null" json:"day_factor"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_cost"`
	AdvancePayments decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"advance_payments"`
	Difference      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"difference"`

	// Relationships
	Details []CostDetail `gorm:"foreignKey:UnitCostResultID" json:"details,omitempty"`
}

// CostDetail is one row of a unit cost result: the unit's share of a single
// contributing cost item.
type CostDetail struct {
	Base
	UnitCostResultID string          `gorm:"type:uuid;not null;index" json:"unit_cost_result_id"`
	CostItemID       string          `gorm:"type:uuid;not null" json:"cost_item_id"`
	Description      string          `gorm:"not null" json:"description"`
	DistributionKey  DistributionKey `gorm:"not null" json:"distribution_key"`
	Amount           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
}
