package services

import (
	"context"
	"testing"
	"time"

	"immoledger/internal/models"
	"immoledger/internal/pagination"
	"immoledger/internal/testutil"
)

const testAccountID = "0195fe13-aaaa-7000-8000-000000000010"

func TestCalculateTaxLots(t *testing.T) {
	ctx := context.Background()

	t.Run("buy_opens_lot_with_fees_in_basis", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		asset := testutil.CreateTestAsset(t, db, models.AssetClassSecurity, models.FundSubtypeNone)
		buy := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.January, 1),
			testutil.D("10"), testutil.D("100"), testutil.D("10"))

		result, err := svc.CalculateTaxLots(ctx, buy.ID)
		testutil.AssertNoError(t, err)

		if result.TaxLot == nil {
			t.Fatal("expected a tax lot")
		}
		testutil.AssertDecimalEqual(t, "10", result.TaxLot.OriginalQuantity)
		testutil.AssertDecimalEqual(t, "10", result.TaxLot.RemainingQuantity)
		testutil.AssertDecimalEqual(t, "101", result.TaxLot.CostBasisPerUnit)
		testutil.AssertDecimalEqual(t, "1010", result.TaxLot.TotalCostBasis())
		if result.TaxLot.Status != models.LotStatusOpen {
			t.Errorf("expected open, got %s", result.TaxLot.Status)
		}
		if result.TaxLot.HoldingPeriodEnd != nil {
			t.Error("securities carry no holding period end")
		}
	})

	t.Run("buy_crypto_sets_holding_period_end", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		asset := testutil.CreateTestAsset(t, db, models.AssetClassCrypto, models.FundSubtypeNone)
		buy := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.March, 15),
			testutil.D("0.5"), testutil.D("40000"), testutil.D("0"))

		result, err := svc.CalculateTaxLots(ctx, buy.ID)
		testutil.AssertNoError(t, err)

		if result.TaxLot.HoldingPeriodEnd == nil {
			t.Fatal("expected holding period end for crypto")
		}
		want := testutil.Date(2024, time.March, 15)
		if !result.TaxLot.HoldingPeriodEnd.Equal(want) {
			t.Errorf("expected %s, got %s", want, result.TaxLot.HoldingPeriodEnd)
		}
	})

	t.Run("sell_consumes_lots_fifo", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		asset := testutil.CreateTestAsset(t, db, models.AssetClassSecurity, models.FundSubtypeNone)
		buy1 := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.January, 1),
			testutil.D("5"), testutil.D("100"), testutil.D("0"))
		buy2 := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.June, 1),
			testutil.D("5"), testutil.D("120"), testutil.D("0"))

		if _, err := svc.CalculateTaxLots(ctx, buy1.ID); err != nil {
			t.Fatalf("buy1 failed: %v", err)
		}
		if _, err := svc.CalculateTaxLots(ctx, buy2.ID); err != nil {
			t.Fatalf("buy2 failed: %v", err)
		}

		sell := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionSell, testutil.Date(2024, time.January, 1),
			testutil.D("7"), testutil.D("150"), testutil.D("0"))

		result, err := svc.CalculateTaxLots(ctx, sell.ID)
		testutil.AssertNoError(t, err)

		if len(result.TaxEvents) != 2 {
			t.Fatalf("expected 2 tax events, got %d", len(result.TaxEvents))
		}

		// Oldest lot first: 5 units bought at 100, sold at 150.
		testutil.AssertDecimalEqual(t, "5", result.TaxEvents[0].Quantity)
		testutil.AssertDecimalEqual(t, "250", result.TaxEvents[0].GainLoss)
		// Then 2 units of the June lot bought at 120.
		testutil.AssertDecimalEqual(t, "2", result.TaxEvents[1].Quantity)
		testutil.AssertDecimalEqual(t, "60", result.TaxEvents[1].GainLoss)

		var lots []models.TaxLot
		if err := db.Order("purchase_date ASC").Find(&lots).Error; err != nil {
			t.Fatalf("failed to load lots: %v", err)
		}
		if lots[0].Status != models.LotStatusClosed {
			t.Errorf("expected first lot closed, got %s", lots[0].Status)
		}
		testutil.AssertDecimalEqual(t, "0", lots[0].RemainingQuantity)
		if lots[1].Status != models.LotStatusPartiallySold {
			t.Errorf("expected second lot partially sold, got %s", lots[1].Status)
		}
		testutil.AssertDecimalEqual(t, "3", lots[1].RemainingQuantity)
	})

	t.Run("oversell_fails_without_consuming", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		asset := testutil.CreateTestAsset(t, db, models.AssetClassSecurity, models.FundSubtypeNone)
		buy := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.January, 1),
			testutil.D("5"), testutil.D("100"), testutil.D("0"))
		if _, err := svc.CalculateTaxLots(ctx, buy.ID); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		sell := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionSell, testutil.Date(2024, time.January, 1),
			testutil.D("6"), testutil.D("150"), testutil.D("0"))

		_, err := svc.CalculateTaxLots(ctx, sell.ID)
		testutil.AssertAppError(t, err, "INSUFFICIENT_LOT_QUANTITY")

		var lot models.TaxLot
		if err := db.First(&lot).Error; err != nil {
			t.Fatalf("failed to load lot: %v", err)
		}
		testutil.AssertDecimalEqual(t, "5", lot.RemainingQuantity)
		if lot.Status != models.LotStatusOpen {
			t.Errorf("expected lot untouched, got %s", lot.Status)
		}
	})

	t.Run("crypto_gain_exempt_after_holding_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		asset := testutil.CreateTestAsset(t, db, models.AssetClassCrypto, models.FundSubtypeNone)
		buy := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2022, time.January, 1),
			testutil.D("1"), testutil.D("30000"), testutil.D("0"))
		if _, err := svc.CalculateTaxLots(ctx, buy.ID); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		sell := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionSell, testutil.Date(2023, time.June, 1),
			testutil.D("1"), testutil.D("45000"), testutil.D("0"))

		result, err := svc.CalculateTaxLots(ctx, sell.ID)
		testutil.AssertNoError(t, err)

		event := result.TaxEvents[0]
		testutil.AssertDecimalEqual(t, "15000", event.GainLoss)
		testutil.AssertDecimalEqual(t, "0", event.TaxableAmount)
		testutil.AssertDecimalEqual(t, "1", event.ExemptionRate)
		if event.TaxCategory != models.TaxCategoryPrivateSale {
			t.Errorf("expected private_sale, got %s", event.TaxCategory)
		}
		if event.HoldingPeriodDays <= 365 {
			t.Errorf("expected more than 365 days, got %d", event.HoldingPeriodDays)
		}
	})

	t.Run("crypto_gain_taxable_within_holding_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		asset := testutil.CreateTestAsset(t, db, models.AssetClassCrypto, models.FundSubtypeNone)
		buy := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.January, 1),
			testutil.D("1"), testutil.D("30000"), testutil.D("0"))
		if _, err := svc.CalculateTaxLots(ctx, buy.ID); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		sell := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionSell, testutil.Date(2023, time.June, 1),
			testutil.D("1"), testutil.D("45000"), testutil.D("0"))

		result, err := svc.CalculateTaxLots(ctx, sell.ID)
		testutil.AssertNoError(t, err)

		event := result.TaxEvents[0]
		testutil.AssertDecimalEqual(t, "15000", event.TaxableAmount)
		testutil.AssertDecimalEqual(t, "0", event.ExemptionRate)
		if event.TaxCategory != models.TaxCategoryPrivateSale {
			t.Errorf("expected private_sale, got %s", event.TaxCategory)
		}
	})

	t.Run("equity_fund_partial_exemption", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		asset := testutil.CreateTestAsset(t, db, models.AssetClassFund, models.FundSubtypeEquity)
		buy := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.January, 1),
			testutil.D("10"), testutil.D("100"), testutil.D("0"))
		if _, err := svc.CalculateTaxLots(ctx, buy.ID); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		sell := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionSell, testutil.Date(2024, time.January, 1),
			testutil.D("10"), testutil.D("150"), testutil.D("0"))

		result, err := svc.CalculateTaxLots(ctx, sell.ID)
		testutil.AssertNoError(t, err)

		event := result.TaxEvents[0]
		testutil.AssertDecimalEqual(t, "500", event.GainLoss)
		// 30% exempt for equity funds, 70% of the gain stays taxable.
		testutil.AssertDecimalEqual(t, "350", event.TaxableAmount)
		testutil.AssertDecimalEqual(t, "0.3", event.ExemptionRate)
		if event.TaxCategory != models.TaxCategoryCapitalIncome {
			t.Errorf("expected capital_income, got %s", event.TaxCategory)
		}
	})

	t.Run("security_gain_fully_taxable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		asset := testutil.CreateTestAsset(t, db, models.AssetClassSecurity, models.FundSubtypeNone)
		buy := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2020, time.January, 1),
			testutil.D("10"), testutil.D("100"), testutil.D("0"))
		if _, err := svc.CalculateTaxLots(ctx, buy.ID); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		// Holding period rules never apply to securities, however long held.
		sell := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionSell, testutil.Date(2024, time.January, 1),
			testutil.D("10"), testutil.D("150"), testutil.D("0"))

		result, err := svc.CalculateTaxLots(ctx, sell.ID)
		testutil.AssertNoError(t, err)

		event := result.TaxEvents[0]
		testutil.AssertDecimalEqual(t, "500", event.TaxableAmount)
		if event.TaxCategory != models.TaxCategoryCapitalIncome {
			t.Errorf("expected capital_income, got %s", event.TaxCategory)
		}
	})

	t.Run("sell_scoped_to_account", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		otherAccount := "0195fe13-aaaa-7000-8000-000000000011"
		asset := testutil.CreateTestAsset(t, db, models.AssetClassSecurity, models.FundSubtypeNone)
		buy := testutil.CreateTestAssetTransaction(t, db, asset.ID, otherAccount,
			models.AssetTransactionBuy, testutil.Date(2023, time.January, 1),
			testutil.D("10"), testutil.D("100"), testutil.D("0"))
		if _, err := svc.CalculateTaxLots(ctx, buy.ID); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		sell := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionSell, testutil.Date(2024, time.January, 1),
			testutil.D("5"), testutil.D("150"), testutil.D("0"))

		_, err := svc.CalculateTaxLots(ctx, sell.ID)
		testutil.AssertAppError(t, err, "INSUFFICIENT_LOT_QUANTITY")
	})

	t.Run("asset_transaction_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)

		_, err := svc.CalculateTaxLots(ctx, "0195fe13-aaaa-7000-8000-000000000012")
		testutil.AssertAppError(t, err, "ASSET_TRANSACTION_NOT_FOUND")
	})
}

func TestGetTaxLots(t *testing.T) {
	t.Run("orders_oldest_purchase_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)
		ctx := context.Background()

		asset := testutil.CreateTestAsset(t, db, models.AssetClassSecurity, models.FundSubtypeNone)
		newer := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.June, 1),
			testutil.D("5"), testutil.D("120"), testutil.D("0"))
		older := testutil.CreateTestAssetTransaction(t, db, asset.ID, testAccountID,
			models.AssetTransactionBuy, testutil.Date(2023, time.January, 1),
			testutil.D("5"), testutil.D("100"), testutil.D("0"))
		if _, err := svc.CalculateTaxLots(ctx, newer.ID); err != nil {
			t.Fatalf("buy failed: %v", err)
		}
		if _, err := svc.CalculateTaxLots(ctx, older.ID); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		result, err := svc.GetTaxLots(ctx, TaxLotFilter{}, pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Fatalf("expected 2 lots, got %d", result.TotalItems)
		}
		if result.Data[0].PurchaseDate.After(result.Data[1].PurchaseDate) {
			t.Error("expected oldest purchase first")
		}
	})

	t.Run("filters_by_asset_class", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTaxLotService(db)
		ctx := context.Background()

		security := testutil.CreateTestAsset(t, db, models.AssetClassSecurity, models.FundSubtypeNone)
		crypto := testutil.CreateTestAsset(t, db, models.AssetClassCrypto, models.FundSubtypeNone)
		for _, assetID := range []string{security.ID, crypto.ID} {
			buy := testutil.CreateTestAssetTransaction(t, db, assetID, testAccountID,
				models.AssetTransactionBuy, testutil.Date(2023, time.January, 1),
				testutil.D("5"), testutil.D("100"), testutil.D("0"))
			if _, err := svc.CalculateTaxLots(ctx, buy.ID); err != nil {
				t.Fatalf("buy failed: %v", err)
			}
		}

		result, err := svc.GetTaxLots(ctx, TaxLotFilter{AssetClass: models.AssetClassCrypto},
			pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 1 {
			t.Fatalf("expected 1 crypto lot, got %d", result.TotalItems)
		}
		if result.Data[0].AssetID != crypto.ID {
			t.Errorf("expected the crypto asset's lot, got asset %s", result.Data[0].AssetID)
		}
	})
}
