package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "immoledger/internal/errors"
	"immoledger/internal/pagination"
	"immoledger/internal/services"
)

// CostShareHandler handles cost distribution requests.
type CostShareHandler struct {
	costShareService services.CostShareServicer
}

// NewCostShareHandler creates a new CostShareHandler.
func NewCostShareHandler(costShareService services.CostShareServicer) *CostShareHandler {
	return &CostShareHandler{costShareService: costShareService}
}

// TenantShareRequest represents the request payload for one unit's share calculation.
type TenantShareRequest struct {
	UnitID      string                     `json:"unit_id" binding:"required,uuid"`
	ContractID  *string                    `json:"contract_id" binding:"omitempty,uuid"`
	IsVacancy   bool                       `json:"is_vacancy"`
	PeriodStart *time.Time                 `json:"period_start"`
	PeriodEnd   *time.Time                 `json:"period_end"`
	DirectCosts map[string]decimal.Decimal `json:"direct_costs"`
}

// CalculateTenantShare handles apportioning a statement's costs to one unit.
// @Summary     Calculate tenant share
// @Description Apportion the statement's cost items to one unit and store the result
// @Tags        statements
// @Accept      json
// @Produce     json
// @Param       id      path string             true "Statement ID"
// @Param       request body TenantShareRequest true "Unit, contract, and period"
// @Success     200 {object} services.TenantShareResult "Apportionment result"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Statement, unit, or contract not found"
// @Failure     502 {object} ErrorResponse "Heating ordinance calculator failure"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /statements/{id}/tenant-share [post]
func (h *CostShareHandler) CalculateTenantShare(c *gin.Context) {
	statementID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TenantShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.costShareService.CalculateTenantShare(c.Request.Context(), statementID, services.TenantShareRequest{
		UnitID:      req.UnitID,
		ContractID:  req.ContractID,
		IsVacancy:   req.IsVacancy,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		DirectCosts: req.DirectCosts,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetStatementResults handles listing the unit cost results of a statement.
// @Summary     List statement results
// @Description Get a paginated list of per-unit cost results of a statement run
// @Tags        statements
// @Produce     json
// @Param       id        path  string true  "Statement ID"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.UnitCostResult] "Paginated results"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /statements/{id}/results [get]
func (h *CostShareHandler) GetStatementResults(c *gin.Context) {
	statementID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.costShareService.GetStatementResults(c.Request.Context(), statementID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
