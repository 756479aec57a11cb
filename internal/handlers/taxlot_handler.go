package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "immoledger/internal/errors"
	"immoledger/internal/models"
	"immoledger/internal/pagination"
	"immoledger/internal/services"
)

// TaxLotHandler handles tax lot engine requests.
type TaxLotHandler struct {
	taxLotService services.TaxLotServicer
}

// NewTaxLotHandler creates a new TaxLotHandler.
func NewTaxLotHandler(taxLotService services.TaxLotServicer) *TaxLotHandler {
	return &TaxLotHandler{taxLotService: taxLotService}
}

// CalculateTaxLots handles processing one asset transaction.
// @Summary     Calculate tax lots
// @Description Open a tax lot for a buy or consume lots FIFO and emit tax events for a sell
// @Tags        tax
// @Produce     json
// @Param       id path string true "Asset transaction ID"
// @Success     200 {object} services.TaxLotResult "New lot or emitted tax events"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient lot quantity"
// @Failure     404 {object} ErrorResponse "Asset transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tax/transactions/{id}/lots [post]
func (h *TaxLotHandler) CalculateTaxLots(c *gin.Context) {
	assetTransactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.taxLotService.CalculateTaxLots(c.Request.Context(), assetTransactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// TaxLotListRequest carries the query filters for listing tax lots.
type TaxLotListRequest struct {
	pagination.PageRequest
	AssetClass  string `form:"asset_class" binding:"omitempty,asset_class"`
	FundSubtype string `form:"fund_subtype" binding:"omitempty,fund_subtype"`
}

// GetTaxLots handles listing tax lots.
// @Summary     List tax lots
// @Description Get a paginated list of tax lots, oldest purchase first
// @Tags        tax
// @Produce     json
// @Param       page         query int    false "Page number (default 1)"
// @Param       page_size    query int    false "Items per page (default 20, max 100)"
// @Param       asset_class  query string false "Only lots of assets with this class"
// @Param       fund_subtype query string false "Only lots of funds with this subtype"
// @Success     200 {object} pagination.PageResponse[models.TaxLot] "Paginated tax lots"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tax/lots [get]
func (h *TaxLotHandler) GetTaxLots(c *gin.Context) {
	var req TaxLotListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	filter := services.TaxLotFilter{
		AssetClass:  models.AssetClass(req.AssetClass),
		FundSubtype: models.FundSubtype(req.FundSubtype),
	}
	result, err := h.taxLotService.GetTaxLots(c.Request.Context(), filter, req.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTaxEvents handles listing tax events.
// @Summary     List tax events
// @Description Get a paginated list of realized tax events, newest first
// @Tags        tax
// @Produce     json
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.TaxEvent] "Paginated tax events"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /tax/events [get]
func (h *TaxLotHandler) GetTaxEvents(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.taxLotService.GetTaxEvents(c.Request.Context(), page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
