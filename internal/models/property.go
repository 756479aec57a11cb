package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Building groups the units that share distributable costs.
type Building struct {
	Base
	Name    string `gorm:"not null" json:"name"`
	Address string `json:"address"`

	// Relationships
	Units []Unit `gorm:"foreignKey:BuildingID" json:"units,omitempty"`
}

// Unit is one rentable unit inside a building.
type Unit struct {
	Base
	BuildingID string          `gorm:"type:uuid;not null;index" json:"building_id"`
	Name       string          `gorm:"not null" json:"name"`
	LivingArea decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"living_area"`

	// Relationships
	Contracts []LeaseContract `gorm:"foreignKey:UnitID" json:"contracts,omitempty"`
}

// LeaseContract is a tenancy for a unit. A nil EndDate means the contract
// is open-ended. Units without an active contract in a period are vacant.
type LeaseContract struct {
	Base
	UnitID     string     `gorm:"type:uuid;not null;index" json:"unit_id"`
	TenantName string     `gorm:"not null" json:"tenant_name"`
	Persons    int        `gorm:"not null;default:1" json:"persons"`
	StartDate  time.Time  `gorm:"not null" json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`

	// Relationships
	Unit Unit `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
}

// ActiveDuring reports whether the contract overlaps the given period.
func (c *LeaseContract) ActiveDuring(periodStart, periodEnd time.Time) bool {
	if c.StartDate.After(periodEnd) {
		return false
	}
	if c.EndDate != nil && c.EndDate.Before(periodStart) {
		return false
	}
	return true
}
