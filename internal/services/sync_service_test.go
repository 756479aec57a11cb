package services

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"immoledger/internal/models"
	"immoledger/internal/testutil"
)

func createRentTransaction(t *testing.T, db *gorm.DB, contractID string, amount string, bookingDate time.Time) *models.Transaction {
	t.Helper()
	tx := testutil.CreateTestTransaction(t, db, testutil.D(amount), models.CategoryRentIncome)
	if err := db.Model(tx).Updates(map[string]interface{}{
		"contract_id":  contractID,
		"booking_date": bookingDate,
	}).Error; err != nil {
		t.Fatalf("failed to assign contract: %v", err)
	}
	tx.ContractID = &contractID
	tx.BookingDate = bookingDate
	return tx
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("matches_payment_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSyncService(db)
		unit, contract := setupRentFixtures(t, db)

		testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-02", testutil.Date(2024, time.February, 3))
		march := testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-03", testutil.Date(2024, time.March, 3))
		createRentTransaction(t, db, contract.ID, "-500", testutil.Date(2024, time.March, 5))

		report, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)

		if report.LinksCreated != 1 {
			t.Fatalf("expected 1 link created, got %d", report.LinksCreated)
		}

		var reloaded models.FinancialItem
		if err := db.First(&reloaded, "id = ?", march.ID).Error; err != nil {
			t.Fatalf("failed to reload item: %v", err)
		}
		if reloaded.Status != models.StatusPaid {
			t.Errorf("expected the March item paid, got %s", reloaded.Status)
		}
		testutil.AssertDecimalEqual(t, "500", reloaded.PaidAmount)
	})

	t.Run("falls_back_to_earliest_unpaid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSyncService(db)
		unit, contract := setupRentFixtures(t, db)

		january := testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-01", testutil.Date(2024, time.January, 3))
		testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-02", testutil.Date(2024, time.February, 3))
		// Booking month has no item of its own.
		createRentTransaction(t, db, contract.ID, "-500", testutil.Date(2024, time.June, 5))

		report, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)

		if report.LinksCreated != 1 {
			t.Fatalf("expected 1 link created, got %d", report.LinksCreated)
		}

		var links []models.ObligationLink
		if err := db.Find(&links).Error; err != nil {
			t.Fatalf("failed to load links: %v", err)
		}
		if len(links) != 1 || links[0].FinancialItemID == nil || *links[0].FinancialItemID != january.ID {
			t.Fatalf("expected the earliest unpaid item linked, got %+v", links)
		}
	})

	t.Run("skips_transactions_with_links", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSyncService(db)
		unit, contract := setupRentFixtures(t, db)

		item := testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-03", testutil.Date(2024, time.March, 3))
		tx := createRentTransaction(t, db, contract.ID, "-500", testutil.Date(2024, time.March, 5))

		link := models.ObligationLink{TransactionID: tx.ID, FinancialItemID: &item.ID, LinkedAmount: testutil.D("500")}
		if err := db.Create(&link).Error; err != nil {
			t.Fatalf("failed to create link: %v", err)
		}

		report, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)

		if report.LinksCreated != 0 {
			t.Errorf("expected no new links, got %d", report.LinksCreated)
		}
	})

	t.Run("rerun_is_idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSyncService(db)
		unit, contract := setupRentFixtures(t, db)

		item := testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-03", testutil.Date(2024, time.March, 3))
		createRentTransaction(t, db, contract.ID, "-500", testutil.Date(2024, time.March, 5))

		first, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)
		if first.LinksCreated != 1 {
			t.Fatalf("expected 1 link on first run, got %d", first.LinksCreated)
		}

		second, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)
		if second.LinksCreated != 0 {
			t.Errorf("expected no links on rerun, got %d", second.LinksCreated)
		}

		var reloaded models.FinancialItem
		if err := db.First(&reloaded, "id = ?", item.ID).Error; err != nil {
			t.Fatalf("failed to reload item: %v", err)
		}
		testutil.AssertDecimalEqual(t, "500", reloaded.PaidAmount)
	})

	t.Run("caps_link_at_remaining_expectation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSyncService(db)
		unit, contract := setupRentFixtures(t, db)

		item := testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-03", testutil.Date(2024, time.March, 3))
		createRentTransaction(t, db, contract.ID, "-800", testutil.Date(2024, time.March, 5))

		report, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)
		if report.LinksCreated != 1 {
			t.Fatalf("expected 1 link, got %d", report.LinksCreated)
		}

		var links []models.ObligationLink
		if err := db.Where("financial_item_id = ?", item.ID).Find(&links).Error; err != nil {
			t.Fatalf("failed to load links: %v", err)
		}
		testutil.AssertDecimalEqual(t, "500", links[0].LinkedAmount)
	})

	t.Run("ignores_transactions_without_contract", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSyncService(db)
		unit, contract := setupRentFixtures(t, db)

		testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-03", testutil.Date(2024, time.March, 3))
		testutil.CreateTestTransaction(t, db, testutil.D("-500"), models.CategoryRentIncome)

		report, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)
		if report.LinksCreated != 0 {
			t.Errorf("expected no links without a contract, got %d", report.LinksCreated)
		}
	})

	t.Run("escalates_overdue_invoices", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSyncService(db)

		invoice := testutil.CreateTestInvoice(t, db, testutil.D("300"), testutil.Date(2020, time.January, 1))

		report, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)
		if report.ItemsUpdated != 1 {
			t.Errorf("expected 1 item updated, got %d", report.ItemsUpdated)
		}

		var reloaded models.Invoice
		if err := db.First(&reloaded, "id = ?", invoice.ID).Error; err != nil {
			t.Fatalf("failed to reload invoice: %v", err)
		}
		if reloaded.Status != models.StatusOverdue {
			t.Errorf("expected overdue, got %s", reloaded.Status)
		}
	})

	t.Run("reports_totals", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewSyncService(db)
		unit, contract := setupRentFixtures(t, db)

		testutil.CreateTestFinancialItem(t, db, contract.ID, unit.ID, testutil.D("500"), "2024-03", testutil.Date(2024, time.March, 3))
		testutil.CreateTestInvoice(t, db, testutil.D("300"), testutil.Date(2099, time.January, 1))
		createRentTransaction(t, db, contract.ID, "-500", testutil.Date(2024, time.March, 5))

		report, err := svc.Sync(ctx)
		testutil.AssertNoError(t, err)

		if report.TotalItems != 2 {
			t.Errorf("expected 2 total items, got %d", report.TotalItems)
		}
		if report.TotalTransactions != 1 {
			t.Errorf("expected 1 rent transaction, got %d", report.TotalTransactions)
		}
		if len(report.Errors) != 0 {
			t.Errorf("expected no errors, got %+v", report.Errors)
		}
	})
}
