package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"immoledger/internal/apportion"
	apperrors "immoledger/internal/errors"
	"immoledger/internal/heating"
	"immoledger/internal/models"
	"immoledger/internal/pagination"
)

// costShareService apportions a statement's cost items across units and
// contracts by distribution key and day factor.
type costShareService struct {
	db      *gorm.DB
	heating heating.Calculator
}

// NewCostShareService creates a new CostShareServicer.
func NewCostShareService(db *gorm.DB, heatingCalc heating.Calculator) CostShareServicer {
	return &costShareService{db: db, heating: heatingCalc}
}

// buildingTotals holds the denominators shared by all shares of one run.
type buildingTotals struct {
	area      decimal.Decimal
	persons   int
	unitCount int
}

// CalculateTenantShare computes one unit's share of a statement's cost
// items and stores it as the unit's cost result, replacing any previous
// result for the same statement and unit. All reads and the replace-write
// run inside one database transaction: denominators, advance payments and
// the stored result come from the same snapshot, so the per-unit results
// of one statement run stay mutually consistent.
func (s *costShareService) CalculateTenantShare(ctx context.Context, statementID string, req TenantShareRequest) (*TenantShareResult, error) {
	var response *TenantShareResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var statement models.Statement
		if err := tx.Preload("CostItems").First(&statement, "id = ?", statementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrStatementNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		periodStart := statement.PeriodStart
		periodEnd := statement.PeriodEnd
		if req.PeriodStart != nil {
			periodStart = *req.PeriodStart
		}
		if req.PeriodEnd != nil {
			periodEnd = *req.PeriodEnd
		}
		if periodEnd.Before(periodStart) {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "Period end before period start")
		}

		var unit models.Unit
		if err := tx.First(&unit, "id = ? AND building_id = ?", req.UnitID, statement.BuildingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrUnitNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		var contract *models.LeaseContract
		if !req.IsVacancy {
			if req.ContractID == nil {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "Contract required unless the unit was vacant")
			}
			var c models.LeaseContract
			if err := tx.First(&c, "id = ? AND unit_id = ?", *req.ContractID, unit.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrContractNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			contract = &c
		}

		totals, err := s.loadBuildingTotals(tx, statement.BuildingID, periodStart, periodEnd)
		if err != nil {
			return err
		}

		occStart, occEnd := occupancy(contract, periodStart, periodEnd)
		dayFactor := apportion.DayFactor(occStart, occEnd, periodStart, periodEnd)

		result := &models.UnitCostResult{
			StatementID:     statement.ID,
			UnitID:          unit.ID,
			ContractID:      req.ContractID,
			DayFactor:       dayFactor,
			TotalCost:       decimal.Zero,
			AdvancePayments: decimal.Zero,
		}
		if req.IsVacancy {
			result.ContractID = nil
		}

		var details []models.CostDetail
		for _, item := range statement.CostItems {
			amount, err := s.itemShare(ctx, &statement, &item, &unit, contract, totals, req, periodStart, periodEnd, occStart, occEnd)
			if err != nil {
				return err
			}
			amount = apportion.Round2(amount)
			result.TotalCost = result.TotalCost.Add(amount)
			details = append(details, models.CostDetail{
				CostItemID:      item.ID,
				Description:     item.Description,
				DistributionKey: item.DistributionKey,
				Amount:          amount,
			})
		}

		if contract != nil {
			advance, err := s.advancePayments(tx, contract.ID, periodStart, periodEnd)
			if err != nil {
				return err
			}
			result.AdvancePayments = advance
		}
		result.Difference = result.TotalCost.Sub(result.AdvancePayments)

		var previous []models.UnitCostResult
		if err := tx.Where("statement_id = ? AND unit_id = ?", statement.ID, unit.ID).Find(&previous).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i := range previous {
			if err := tx.Where("unit_cost_result_id = ?", previous[i].ID).Delete(&models.CostDetail{}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if err := tx.Where("statement_id = ? AND unit_id = ?", statement.ID, unit.ID).Delete(&models.UnitCostResult{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Create(result).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i := range details {
			details[i].UnitCostResultID = result.ID
			if err := tx.Create(&details[i]).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		response = &TenantShareResult{
			UnitResultID:    result.ID,
			TotalCost:       result.TotalCost,
			CostDetails:     details,
			AdvancePayments: result.AdvancePayments,
			Difference:      result.Difference,
			Unit:            unit,
		}
		if contract != nil {
			response.Tenant = contract.TenantName
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

// itemShare computes the unit's share of one cost item according to the
// item's distribution key.
func (s *costShareService) itemShare(
	ctx context.Context,
	statement *models.Statement,
	item *models.CostItem,
	unit *models.Unit,
	contract *models.LeaseContract,
	totals buildingTotals,
	req TenantShareRequest,
	periodStart, periodEnd time.Time,
	occStart, occEnd time.Time,
) (decimal.Decimal, error) {
	itemStart := periodStart
	itemEnd := periodEnd
	if item.ServiceStart != nil {
		itemStart = *item.ServiceStart
	}
	if item.ServiceEnd != nil {
		itemEnd = *item.ServiceEnd
	}

	// Time weight: the item's service interval clipped to the occupancy.
	effStart := laterOf(itemStart, occStart)
	effEnd := earlierOf(itemEnd, occEnd)
	dayFactor := apportion.DayFactor(effStart, effEnd, periodStart, periodEnd)

	switch item.DistributionKey {
	case models.DistributionDirect:
		return req.DirectCosts[item.ID], nil

	case models.DistributionArea:
		return apportion.AreaShare(item.TotalAmount, unit.LivingArea, totals.area, dayFactor), nil

	case models.DistributionPersons:
		if contract == nil {
			// Vacancies carry no persons and get no share of these items.
			return decimal.Zero, nil
		}
		return apportion.PersonsShare(item.TotalAmount, contract.Persons, totals.persons, dayFactor), nil

	case models.DistributionUnits:
		return apportion.UnitsShare(item.TotalAmount, totals.unitCount, dayFactor), nil

	case models.DistributionHeatingOrdinance:
		amount, err := s.heating.CalculateShare(ctx, heating.ShareRequest{
			StatementID: statement.ID,
			CostItemID:  item.ID,
			UnitID:      unit.ID,
			TotalAmount: item.TotalAmount,
			PeriodStart: periodStart,
			PeriodEnd:   periodEnd,
		})
		if err != nil {
			return decimal.Zero, apperrors.Wrap(apperrors.ErrHeatingCalculator, err)
		}
		return amount, nil

	default:
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unknown distribution key")
	}
}

// loadBuildingTotals collects the denominators for the apportionment: total
// living area, number of units, and the persons of all contracts active in
// the period. Vacant units contribute zero persons.
func (s *costShareService) loadBuildingTotals(db *gorm.DB, buildingID string, periodStart, periodEnd time.Time) (buildingTotals, error) {
	var totals buildingTotals

	var units []models.Unit
	if err := db.Where("building_id = ?", buildingID).Find(&units).Error; err != nil {
		return totals, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals.unitCount = len(units)
	totals.area = decimal.Zero
	unitIDs := make([]string, len(units))
	for i := range units {
		totals.area = totals.area.Add(units[i].LivingArea)
		unitIDs[i] = units[i].ID
	}

	if len(unitIDs) > 0 {
		var contracts []models.LeaseContract
		if err := db.Where("unit_id IN ?", unitIDs).Find(&contracts).Error; err != nil {
			return totals, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		for i := range contracts {
			if contracts[i].ActiveDuring(periodStart, periodEnd) {
				totals.persons += contracts[i].Persons
			}
		}
	}

	return totals, nil
}

// advancePayments sums what the contract actually paid on financial items
// due inside the period.
func (s *costShareService) advancePayments(db *gorm.DB, contractID string, periodStart, periodEnd time.Time) (decimal.Decimal, error) {
	var items []models.FinancialItem
	if err := db.Where("contract_id = ? AND due_date >= ? AND due_date <= ?",
		contractID, periodStart, periodEnd).Find(&items).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].PaidAmount)
	}
	return total, nil
}

// occupancy returns the interval the unit was occupied by the contract,
// clipped later against the statement period. A vacancy spans the whole
// period with the owner bearing the share.
func occupancy(contract *models.LeaseContract, periodStart, periodEnd time.Time) (time.Time, time.Time) {
	if contract == nil {
		return periodStart, periodEnd
	}
	start := laterOf(contract.StartDate, periodStart)
	end := periodEnd
	if contract.EndDate != nil {
		end = earlierOf(*contract.EndDate, periodEnd)
	}
	return start, end
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// GetStatementResults returns the unit cost results of a statement run.
func (s *costShareService) GetStatementResults(ctx context.Context, statementID string, page pagination.PageRequest) (*pagination.PageResponse[models.UnitCostResult], error) {
	db := s.db.WithContext(ctx)
	page.Defaults()

	var totalItems int64
	if err := db.Model(&models.UnitCostResult{}).Where("statement_id = ?", statementID).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var results []models.UnitCostResult
	if err := db.Preload("Details").Where("statement_id = ?", statementID).
		Scopes(pagination.Paginate(page)).Find(&results).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(results, page.Page, page.PageSize, totalItems)
	return &result, nil
}
