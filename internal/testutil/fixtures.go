package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"immoledger/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// D parses a decimal literal, panicking on malformed input. Test-only shorthand.
func D(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Date builds a UTC calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CreateTestTransaction creates a bank transaction with the given signed amount.
func CreateTestTransaction(t *testing.T, db *gorm.DB, amount decimal.Decimal, category models.TransactionCategory) *models.Transaction {
	t.Helper()

	transaction := &models.Transaction{
		Amount:      amount,
		BookingDate: Date(2024, time.March, 5),
		Purpose:     fmt.Sprintf("Test payment %d", nextID()),
		Category:    category,
	}
	if err := db.Create(transaction).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return transaction
}

// CreateTestFinancialItem creates a rent obligation for a contract and month.
func CreateTestFinancialItem(t *testing.T, db *gorm.DB, contractID, unitID string, expected decimal.Decimal, paymentMonth string, dueDate time.Time) *models.FinancialItem {
	t.Helper()

	item := &models.FinancialItem{
		ContractID:     contractID,
		UnitID:         unitID,
		Description:    fmt.Sprintf("Rent %s", paymentMonth),
		ExpectedAmount: expected,
		PaidAmount:     decimal.Zero,
		Status:         models.StatusPending,
		PaymentMonth:   paymentMonth,
		DueDate:        dueDate,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test financial item: %v", err)
	}
	return item
}

// CreateTestInvoice creates a supplier invoice.
func CreateTestInvoice(t *testing.T, db *gorm.DB, expected decimal.Decimal, dueDate time.Time) *models.Invoice {
	t.Helper()

	invoice := &models.Invoice{
		Supplier:       fmt.Sprintf("Supplier %d", nextID()),
		InvoiceNumber:  fmt.Sprintf("INV-%d", nextID()),
		ExpectedAmount: expected,
		PaidAmount:     decimal.Zero,
		Status:         models.StatusPending,
		DueDate:        dueDate,
	}
	if err := db.Create(invoice).Error; err != nil {
		t.Fatalf("failed to create test invoice: %v", err)
	}
	return invoice
}

// CreateTestAsset creates an asset of the given class.
func CreateTestAsset(t *testing.T, db *gorm.DB, class models.AssetClass, subtype models.FundSubtype) *models.Asset {
	t.Helper()

	asset := &models.Asset{
		Symbol:      fmt.Sprintf("AST%d", nextID()),
		Name:        fmt.Sprintf("Test Asset %d", nextID()),
		AssetClass:  class,
		FundSubtype: subtype,
		Currency:    "EUR",
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return asset
}

// CreateTestAssetTransaction creates a buy or sell for an asset and account.
func CreateTestAssetTransaction(t *testing.T, db *gorm.DB, assetID, accountID string, side models.AssetTransactionSide, tradeDate time.Time, quantity, price, fees decimal.Decimal) *models.AssetTransaction {
	t.Helper()

	assetTx := &models.AssetTransaction{
		AssetID:      assetID,
		AccountID:    accountID,
		Side:         side,
		TradeDate:    tradeDate,
		Quantity:     quantity,
		PricePerUnit: price,
		ExchangeRate: decimal.New(1, 0),
		Fees:         fees,
	}
	if err := db.Create(assetTx).Error; err != nil {
		t.Fatalf("failed to create test asset transaction: %v", err)
	}
	return assetTx
}

// CreateTestBuilding creates a building.
func CreateTestBuilding(t *testing.T, db *gorm.DB) *models.Building {
	t.Helper()

	building := &models.Building{
		Name:    fmt.Sprintf("Test Building %d", nextID()),
		Address: "Teststr. 1",
	}
	if err := db.Create(building).Error; err != nil {
		t.Fatalf("failed to create test building: %v", err)
	}
	return building
}

// CreateTestUnit creates a unit with the given living area.
func CreateTestUnit(t *testing.T, db *gorm.DB, buildingID string, area decimal.Decimal) *models.Unit {
	t.Helper()

	unit := &models.Unit{
		BuildingID: buildingID,
		Name:       fmt.Sprintf("Unit %d", nextID()),
		LivingArea: area,
	}
	if err := db.Create(unit).Error; err != nil {
		t.Fatalf("failed to create test unit: %v", err)
	}
	return unit
}

// CreateTestContract creates an open-ended lease contract.
func CreateTestContract(t *testing.T, db *gorm.DB, unitID string, persons int, startDate time.Time) *models.LeaseContract {
	t.Helper()

	contract := &models.LeaseContract{
		UnitID:     unitID,
		TenantName: fmt.Sprintf("Tenant %d", nextID()),
		Persons:    persons,
		StartDate:  startDate,
	}
	if err := db.Create(contract).Error; err != nil {
		t.Fatalf("failed to create test contract: %v", err)
	}
	return contract
}

// CreateTestStatement creates a statement for a building and period.
func CreateTestStatement(t *testing.T, db *gorm.DB, buildingID string, periodStart, periodEnd time.Time) *models.Statement {
	t.Helper()

	statement := &models.Statement{
		BuildingID:  buildingID,
		Title:       fmt.Sprintf("Statement %d", nextID()),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	if err := db.Create(statement).Error; err != nil {
		t.Fatalf("failed to create test statement: %v", err)
	}
	return statement
}

// CreateTestCostItem creates a cost item on a statement.
func CreateTestCostItem(t *testing.T, db *gorm.DB, statementID string, total decimal.Decimal, key models.DistributionKey) *models.CostItem {
	t.Helper()

	item := &models.CostItem{
		StatementID:     statementID,
		Description:     fmt.Sprintf("Cost item %d", nextID()),
		TotalAmount:     total,
		DistributionKey: key,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test cost item: %v", err)
	}
	return item
}
