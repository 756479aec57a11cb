package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "immoledger/internal/errors"
	"immoledger/internal/fifo"
	"immoledger/internal/models"
	"immoledger/internal/pagination"
)

// fundExemptionRates maps fund subtypes to their partial exemption rate.
var fundExemptionRates = map[models.FundSubtype]decimal.Decimal{
	models.FundSubtypeEquity:     decimal.New(30, -2),
	models.FundSubtypeMixed:      decimal.New(15, -2),
	models.FundSubtypeRealEstate: decimal.New(60, -2),
	models.FundSubtypeBond:       decimal.Zero,
	models.FundSubtypeNone:       decimal.Zero,
}

// holdingPeriodDays is the private-sale holding period for crypto and
// precious-metal assets. Gains realized after it are fully tax-exempt.
const holdingPeriodDays = 365

// taxLotService implements FIFO cost-basis tracking over tax lots.
type taxLotService struct {
	db    *gorm.DB
	locks *keyedMutex
}

// NewTaxLotService creates a new TaxLotServicer.
func NewTaxLotService(db *gorm.DB) TaxLotServicer {
	return &taxLotService{db: db, locks: &keyedMutex{}}
}

// CalculateTaxLots processes one asset transaction: a buy opens a new tax
// lot, a sell consumes open lots of the same asset and account in FIFO
// order and emits one tax event per lot touched.
func (s *taxLotService) CalculateTaxLots(ctx context.Context, assetTransactionID string) (*TaxLotResult, error) {
	db := s.db.WithContext(ctx)

	var assetTx models.AssetTransaction
	if err := db.Preload("Asset").First(&assetTx, "id = ?", assetTransactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrAssetTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if assetTx.Asset.ID == "" {
		return nil, apperrors.ErrAssetNotFound
	}
	if !assetTx.Quantity.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive")
	}

	switch assetTx.Side {
	case models.AssetTransactionBuy:
		return s.processBuy(db, &assetTx)
	case models.AssetTransactionSell:
		return s.processSell(db, &assetTx)
	default:
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Unsupported asset transaction side")
	}
}

// processBuy opens a tax lot. Fees are spread over the quantity and the
// price is converted with the trade's exchange rate, so the per-unit cost
// basis carries everything the purchase actually cost.
func (s *taxLotService) processBuy(db *gorm.DB, assetTx *models.AssetTransaction) (*TaxLotResult, error) {
	rate := assetTx.ExchangeRate
	if rate.IsZero() {
		rate = decimal.New(1, 0)
	}

	costPerUnit := assetTx.PricePerUnit.Mul(rate).Add(assetTx.Fees.Div(assetTx.Quantity))

	lot := models.TaxLot{
		AssetID:           assetTx.AssetID,
		AccountID:         assetTx.AccountID,
		BuyTransactionID:  assetTx.ID,
		PurchaseDate:      assetTx.TradeDate,
		OriginalQuantity:  assetTx.Quantity,
		RemainingQuantity: assetTx.Quantity,
		CostBasisPerUnit:  costPerUnit,
		Status:            models.LotStatusOpen,
	}

	if assetTx.Asset.AssetClass.HasHoldingPeriod() {
		end := assetTx.TradeDate.AddDate(1, 0, 0)
		lot.HoldingPeriodEnd = &end
	}

	if err := db.Create(&lot).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &TaxLotResult{TaxLot: &lot}, nil
}

// processSell consumes open lots FIFO and emits the tax events. The whole
// consumption is serialized per (asset, account) so concurrent sells cannot
// race on the same lot, and written in one database transaction.
func (s *taxLotService) processSell(db *gorm.DB, assetTx *models.AssetTransaction) (*TaxLotResult, error) {
	unlock := s.locks.lock("lots:" + assetTx.AssetID + "|" + assetTx.AccountID)
	defer unlock()

	var lots []models.TaxLot
	if err := db.Where("asset_id = ? AND account_id = ? AND status <> ?",
		assetTx.AssetID, assetTx.AccountID, models.LotStatusClosed).
		Order("purchase_date ASC").Find(&lots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	fifoLots := make([]fifo.Lot, len(lots))
	lotByID := make(map[string]*models.TaxLot, len(lots))
	for i := range lots {
		fifoLots[i] = fifo.Lot{
			ID:           lots[i].ID,
			PurchaseDate: lots[i].PurchaseDate,
			Remaining:    lots[i].RemainingQuantity,
			CostPerUnit:  lots[i].CostBasisPerUnit,
		}
		lotByID[lots[i].ID] = &lots[i]
	}

	consumptions, err := fifo.Consume(fifoLots, assetTx.Quantity)
	if err != nil {
		if errors.Is(err, fifo.ErrInsufficientQuantity) {
			return nil, apperrors.ErrInsufficientLotQuantity
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	rate := assetTx.ExchangeRate
	if rate.IsZero() {
		rate = decimal.New(1, 0)
	}
	salePrice := assetTx.PricePerUnit.Mul(rate)

	var events []models.TaxEvent
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, c := range consumptions {
			lot := lotByID[c.LotID]

			status := models.LotStatusPartiallySold
			if c.Closed {
				status = models.LotStatusClosed
			}
			if err := tx.Model(lot).Updates(map[string]interface{}{
				"remaining_quantity": c.NewRemaining,
				"status":             status,
			}).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}

			proceeds := salePrice.Mul(c.Quantity)
			gainLoss := proceeds.Sub(c.CostBasis)
			event := s.buildTaxEvent(assetTx, lot, c, proceeds, gainLoss)
			if err := tx.Create(&event).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &TaxLotResult{TaxEvents: events}, nil
}

// buildTaxEvent applies the exemption rules for the asset class. Amounts
// are kept at full precision through the math and rounded to cents only
// here, at the storage boundary.
func (s *taxLotService) buildTaxEvent(assetTx *models.AssetTransaction, lot *models.TaxLot, c fifo.Consumption, proceeds, gainLoss decimal.Decimal) models.TaxEvent {
	days := fifo.HoldingPeriodDays(lot.PurchaseDate, assetTx.TradeDate)

	category := models.TaxCategoryCapitalIncome
	exemptionRate := decimal.Zero
	taxable := gainLoss

	switch assetTx.Asset.AssetClass {
	case models.AssetClassCrypto, models.AssetClassPreciousMetal:
		category = models.TaxCategoryPrivateSale
		if days > holdingPeriodDays {
			exemptionRate = decimal.New(1, 0)
			taxable = decimal.Zero
		}
	case models.AssetClassFund:
		exemptionRate = fundExemptionRates[assetTx.Asset.FundSubtype]
		taxable = gainLoss.Mul(decimal.New(1, 0).Sub(exemptionRate))
	}

	return models.TaxEvent{
		SellTransactionID: assetTx.ID,
		TaxLotID:          lot.ID,
		Quantity:          c.Quantity,
		Proceeds:          proceeds.Round(2),
		CostBasis:         c.CostBasis.Round(2),
		GainLoss:          gainLoss.Round(2),
		TaxableAmount:     taxable.Round(2),
		ExemptionRate:     exemptionRate,
		HoldingPeriodDays: days,
		TaxCategory:       category,
	}
}

// GetTaxLots returns a paginated list of tax lots, oldest purchase first,
// optionally narrowed to lots of a given asset class or fund subtype.
func (s *taxLotService) GetTaxLots(ctx context.Context, filter TaxLotFilter, page pagination.PageRequest) (*pagination.PageResponse[models.TaxLot], error) {
	db := s.db.WithContext(ctx)
	page.Defaults()

	filterScope := func(q *gorm.DB) *gorm.DB { return q }
	if filter.AssetClass != "" || filter.FundSubtype != "" {
		assetQuery := db.Model(&models.Asset{})
		if filter.AssetClass != "" {
			assetQuery = assetQuery.Where("asset_class = ?", filter.AssetClass)
		}
		if filter.FundSubtype != "" {
			assetQuery = assetQuery.Where("fund_subtype = ?", filter.FundSubtype)
		}
		var assetIDs []string
		if err := assetQuery.Pluck("id", &assetIDs).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		filterScope = func(q *gorm.DB) *gorm.DB {
			return q.Where("asset_id IN ?", assetIDs)
		}
	}

	var totalItems int64
	if err := db.Model(&models.TaxLot{}).Scopes(filterScope).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var lots []models.TaxLot
	if err := db.Scopes(filterScope).Preload("Asset").Order("purchase_date ASC").
		Scopes(pagination.Paginate(page)).Find(&lots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(lots, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTaxEvents returns a paginated list of tax events, newest first.
func (s *taxLotService) GetTaxEvents(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.TaxEvent], error) {
	db := s.db.WithContext(ctx)
	page.Defaults()

	var totalItems int64
	if err := db.Model(&models.TaxEvent{}).Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var events []models.TaxEvent
	if err := db.Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&events).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(events, page.Page, page.PageSize, totalItems)
	return &result, nil
}
