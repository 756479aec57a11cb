package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"immoledger/internal/models"
	"immoledger/internal/pagination"
)

// BulkAllocation applies part of a batch of transactions to one financial item.
type BulkAllocation struct {
	FinancialItemID string
	Amount          decimal.Decimal
}

// BulkAllocateRequest is the input for a bulk allocation run.
type BulkAllocateRequest struct {
	TransactionIDs []string
	Category       models.TransactionCategory
	UnitID         *string
	ContractID     *string
	Allocations    []BulkAllocation
}

// BulkItemError attributes a failure inside a batch to one item.
type BulkItemError struct {
	TransactionID   string `json:"transaction_id,omitempty"`
	FinancialItemID string `json:"financial_item_id,omitempty"`
	Message         string `json:"message"`
}

// BulkAllocateDetail reports the outcome for one transaction of the batch.
type BulkAllocateDetail struct {
	TransactionID string `json:"transaction_id"`
	LinksCreated  int    `json:"links_created"`
	Categorized   bool   `json:"categorized"`
}

// BulkAllocateReport aggregates the results of one bulk allocation run.
// Partial success is an expected outcome: Errors lists the items that
// failed while the rest of the batch went through.
type BulkAllocateReport struct {
	Success bool                 `json:"success"`
	Errors  []BulkItemError      `json:"errors"`
	Details []BulkAllocateDetail `json:"details"`
}

// ReconcileAllocation targets one obligation with an amount.
type ReconcileAllocation struct {
	TargetID string
	Amount   decimal.Decimal
}

// ReconcileRequest is the input for replacing a transaction's link set.
type ReconcileRequest struct {
	FinancialItemAllocations []ReconcileAllocation
	InvoiceAllocations       []ReconcileAllocation
	Category                 models.TransactionCategory
	UnitID                   *string
	ContractID               *string
}

// TransactionFilter narrows a transaction listing. PaymentMonth is a
// YYYY-MM month matched against the booking date.
type TransactionFilter struct {
	Category     models.TransactionCategory
	PaymentMonth string
}

// LinkerServicer defines the contract for linking bank transactions to obligations.
type LinkerServicer interface {
	BulkAllocate(ctx context.Context, req BulkAllocateRequest) (*BulkAllocateReport, error)
	Reconcile(ctx context.Context, transactionID string, req ReconcileRequest) error
	GetTransactions(ctx context.Context, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// SyncReport aggregates the results of a full-ledger sync sweep.
type SyncReport struct {
	LinksCreated      int      `json:"linksCreated"`
	ItemsUpdated      int      `json:"itemsUpdated"`
	TotalTransactions int      `json:"totalTransactions"`
	TotalItems        int      `json:"totalItems"`
	Errors            []string `json:"errors"`
}

// SyncServicer defines the contract for the full-ledger status sweep.
type SyncServicer interface {
	Sync(ctx context.Context) (*SyncReport, error)
}

// TaxLotResult is the outcome of processing one asset transaction: a new
// lot for a buy, the emitted tax events for a sell.
type TaxLotResult struct {
	TaxLot    *models.TaxLot    `json:"tax_lot,omitempty"`
	TaxEvents []models.TaxEvent `json:"tax_events,omitempty"`
}

// TaxLotFilter narrows a tax lot listing by properties of the lot's asset.
type TaxLotFilter struct {
	AssetClass  models.AssetClass
	FundSubtype models.FundSubtype
}

// TaxLotServicer defines the contract for FIFO cost-basis tracking.
type TaxLotServicer interface {
	CalculateTaxLots(ctx context.Context, assetTransactionID string) (*TaxLotResult, error)
	GetTaxLots(ctx context.Context, filter TaxLotFilter, page pagination.PageRequest) (*pagination.PageResponse[models.TaxLot], error)
	GetTaxEvents(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.TaxEvent], error)
}

// TenantShareRequest is the input for apportioning a statement's costs to one unit.
type TenantShareRequest struct {
	UnitID      string
	ContractID  *string
	IsVacancy   bool
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	DirectCosts map[string]decimal.Decimal
}

// TenantShareResult is the apportionment outcome returned to the caller.
type TenantShareResult struct {
	UnitResultID    string              `json:"unitResultId"`
	TotalCost       decimal.Decimal     `json:"totalCost"`
	CostDetails     []models.CostDetail `json:"costDetails"`
	AdvancePayments decimal.Decimal     `json:"advancePayments"`
	Difference      decimal.Decimal     `json:"difference"`
	Tenant          string              `json:"tenant,omitempty"`
	Unit            models.Unit         `json:"unit"`
}

// CostShareServicer defines the contract for the cost distribution engine.
type CostShareServicer interface {
	CalculateTenantShare(ctx context.Context, statementID string, req TenantShareRequest) (*TenantShareResult, error)
	GetStatementResults(ctx context.Context, statementID string, page pagination.PageRequest) (*pagination.PageResponse[models.UnitCostResult], error)
}
