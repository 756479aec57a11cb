package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "immoledger/internal/errors"
	"immoledger/internal/models"
	"immoledger/internal/pagination"
	"immoledger/internal/services"
)

// LinkerHandler handles transaction-to-obligation linking requests.
type LinkerHandler struct {
	linkerService services.LinkerServicer
	batchDeadline time.Duration
}

// NewLinkerHandler creates a new LinkerHandler. batchDeadline bounds how
// long one bulk allocation run may take; zero disables the bound.
func NewLinkerHandler(linkerService services.LinkerServicer, batchDeadline time.Duration) *LinkerHandler {
	return &LinkerHandler{linkerService: linkerService, batchDeadline: batchDeadline}
}

// ItemAllocationRequest targets a financial item with an amount.
type ItemAllocationRequest struct {
	FinancialItemID string          `json:"financial_item_id" binding:"required,uuid"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
}

// InvoiceAllocationRequest targets an invoice with an amount.
type InvoiceAllocationRequest struct {
	InvoiceID string          `json:"invoice_id" binding:"required,uuid"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// BulkAllocateRequest represents the request payload for a bulk allocation run.
type BulkAllocateRequest struct {
	TransactionIDs []string                `json:"transaction_ids" binding:"required,min=1,dive,uuid"`
	Category       string                  `json:"category" binding:"required,tx_category"`
	UnitID         *string                 `json:"unit_id" binding:"omitempty,uuid"`
	ContractID     *string                 `json:"contract_id" binding:"omitempty,uuid"`
	Allocations    []ItemAllocationRequest `json:"allocations" binding:"omitempty,dive"`
}

// ReconcileRequest represents the request payload for replacing a transaction's links.
type ReconcileRequest struct {
	FinancialItemAllocations []ItemAllocationRequest    `json:"financial_item_allocations" binding:"omitempty,dive"`
	InvoiceAllocations       []InvoiceAllocationRequest `json:"invoice_allocations" binding:"omitempty,dive"`
	Category                 string                     `json:"category" binding:"omitempty,tx_category"`
	UnitID                   *string                    `json:"unit_id" binding:"omitempty,uuid"`
	ContractID               *string                    `json:"contract_id" binding:"omitempty,uuid"`
}

// BulkAllocate handles allocating a batch of transactions.
// @Summary     Bulk allocate transactions
// @Description Categorize a batch of transactions and spread allocations across them proportionally
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       request body BulkAllocateRequest true "Batch details"
// @Success     200 {object} services.BulkAllocateReport "Batch report, possibly partial success"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/bulk-allocate [post]
func (h *LinkerHandler) BulkAllocate(c *gin.Context) {
	var req BulkAllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	allocations := make([]services.BulkAllocation, len(req.Allocations))
	for i, a := range req.Allocations {
		allocations[i] = services.BulkAllocation{FinancialItemID: a.FinancialItemID, Amount: a.Amount}
	}

	ctx, cancel := batchContext(c, h.batchDeadline)
	defer cancel()

	report, err := h.linkerService.BulkAllocate(ctx, services.BulkAllocateRequest{
		TransactionIDs: req.TransactionIDs,
		Category:       models.TransactionCategory(req.Category),
		UnitID:         req.UnitID,
		ContractID:     req.ContractID,
		Allocations:    allocations,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Reconcile handles replacing the full link set of one transaction.
// @Summary     Reconcile transaction
// @Description Replace all links of a transaction with the given allocations
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       id      path string           true "Transaction ID"
// @Param       request body ReconcileRequest true "New allocations"
// @Success     200 {object} map[string]interface{} "Success message"
// @Failure     400 {object} ErrorResponse "Invalid or overflowing allocation"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id}/reconcile [post]
func (h *LinkerHandler) Reconcile(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	itemAllocs := make([]services.ReconcileAllocation, len(req.FinancialItemAllocations))
	for i, a := range req.FinancialItemAllocations {
		itemAllocs[i] = services.ReconcileAllocation{TargetID: a.FinancialItemID, Amount: a.Amount}
	}
	invoiceAllocs := make([]services.ReconcileAllocation, len(req.InvoiceAllocations))
	for i, a := range req.InvoiceAllocations {
		invoiceAllocs[i] = services.ReconcileAllocation{TargetID: a.InvoiceID, Amount: a.Amount}
	}

	err = h.linkerService.Reconcile(c.Request.Context(), transactionID, services.ReconcileRequest{
		FinancialItemAllocations: itemAllocs,
		InvoiceAllocations:       invoiceAllocs,
		Category:                 models.TransactionCategory(req.Category),
		UnitID:                   req.UnitID,
		ContractID:               req.ContractID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Transaction reconciled"})
}

// TransactionListRequest carries the query filters for listing transactions.
type TransactionListRequest struct {
	pagination.PageRequest
	Category     string `form:"category" binding:"omitempty,tx_category"`
	PaymentMonth string `form:"payment_month" binding:"omitempty,payment_month"`
}

// GetTransactions handles listing transactions.
// @Summary     List transactions
// @Description Get a paginated list of bank transactions, newest first
// @Tags        ledger
// @Accept      json
// @Produce     json
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Param       category      query string false "Only transactions of this category"
// @Param       payment_month query string false "Only transactions booked in this YYYY-MM month"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *LinkerHandler) GetTransactions(c *gin.Context) {
	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TransactionFilter{
		Category:     models.TransactionCategory(req.Category),
		PaymentMonth: req.PaymentMonth,
	}
	result, err := h.linkerService.GetTransactions(c.Request.Context(), filter, req.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
