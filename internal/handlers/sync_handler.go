package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"immoledger/internal/services"
)

// SyncHandler handles full-ledger sync requests.
type SyncHandler struct {
	syncService   services.SyncServicer
	batchDeadline time.Duration
}

// NewSyncHandler creates a new SyncHandler. batchDeadline bounds how long
// one full-ledger sweep may take; zero disables the bound.
func NewSyncHandler(syncService services.SyncServicer, batchDeadline time.Duration) *SyncHandler {
	return &SyncHandler{syncService: syncService, batchDeadline: batchDeadline}
}

// Sync handles the full-ledger sweep.
// @Summary     Sync ledger
// @Description Recompute every obligation status and match unlinked rent transactions
// @Tags        ledger
// @Produce     json
// @Success     200 {object} services.SyncReport "Sweep report"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ledger/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	ctx, cancel := batchContext(c, h.batchDeadline)
	defer cancel()

	report, err := h.syncService.Sync(ctx)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
