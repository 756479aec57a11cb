package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "immoledger/internal/errors"
	"immoledger/internal/models"
	"immoledger/internal/pagination"
	"immoledger/internal/services"
)

// --- mock tax lot service ---

type mockTaxLotService struct {
	calculateFn func(ctx context.Context, assetTransactionID string) (*services.TaxLotResult, error)
	getLotsFn   func(ctx context.Context, filter services.TaxLotFilter, page pagination.PageRequest) (*pagination.PageResponse[models.TaxLot], error)
	getEventsFn func(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.TaxEvent], error)
}

func (m *mockTaxLotService) CalculateTaxLots(ctx context.Context, assetTransactionID string) (*services.TaxLotResult, error) {
	if m.calculateFn != nil {
		return m.calculateFn(ctx, assetTransactionID)
	}
	return &services.TaxLotResult{}, nil
}

func (m *mockTaxLotService) GetTaxLots(ctx context.Context, filter services.TaxLotFilter, page pagination.PageRequest) (*pagination.PageResponse[models.TaxLot], error) {
	if m.getLotsFn != nil {
		return m.getLotsFn(ctx, filter, page)
	}
	resp := pagination.NewPageResponse([]models.TaxLot{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTaxLotService) GetTaxEvents(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.TaxEvent], error) {
	if m.getEventsFn != nil {
		return m.getEventsFn(ctx, page)
	}
	resp := pagination.NewPageResponse([]models.TaxEvent{}, 1, 20, 0)
	return &resp, nil
}

var _ services.TaxLotServicer = (*mockTaxLotService)(nil)

func setupTaxLotRouter(handler *TaxLotHandler) *gin.Engine {
	r := gin.New()
	r.POST("/tax/transactions/:id/lots", handler.CalculateTaxLots)
	r.GET("/tax/lots", handler.GetTaxLots)
	r.GET("/tax/events", handler.GetTaxEvents)
	return r
}

const testAssetTxID = "0195fe13-dddd-7000-8000-000000000001"

func TestTaxLotHandler_CalculateTaxLots(t *testing.T) {
	t.Run("returns lot for buy", func(t *testing.T) {
		svc := &mockTaxLotService{
			calculateFn: func(_ context.Context, id string) (*services.TaxLotResult, error) {
				return &services.TaxLotResult{
					TaxLot: &models.TaxLot{
						BuyTransactionID: id,
						OriginalQuantity: decimal.RequireFromString("10"),
						Status:           models.LotStatusOpen,
					},
				}, nil
			},
		}
		r := setupTaxLotRouter(NewTaxLotHandler(svc))

		rec := doRequest(r, "POST", "/tax/transactions/"+testAssetTxID+"/lots", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		lot, ok := result["tax_lot"].(map[string]interface{})
		if !ok {
			t.Fatalf("expected tax_lot in response, got %v", result)
		}
		if lot["status"] != "open" {
			t.Errorf("expected open lot, got %v", lot["status"])
		}
	})

	t.Run("maps insufficient quantity to 400", func(t *testing.T) {
		svc := &mockTaxLotService{
			calculateFn: func(_ context.Context, _ string) (*services.TaxLotResult, error) {
				return nil, apperrors.ErrInsufficientLotQuantity
			},
		}
		r := setupTaxLotRouter(NewTaxLotHandler(svc))

		rec := doRequest(r, "POST", "/tax/transactions/"+testAssetTxID+"/lots", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
		assertErrorCode(t, parseJSON(t, rec), "INSUFFICIENT_LOT_QUANTITY")
	})

	t.Run("rejects malformed id", func(t *testing.T) {
		r := setupTaxLotRouter(NewTaxLotHandler(&mockTaxLotService{}))

		rec := doRequest(r, "POST", "/tax/transactions/nope/lots", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}

func TestTaxLotHandler_GetTaxLots(t *testing.T) {
	t.Run("returns paginated lots", func(t *testing.T) {
		svc := &mockTaxLotService{
			getLotsFn: func(_ context.Context, _ services.TaxLotFilter, page pagination.PageRequest) (*pagination.PageResponse[models.TaxLot], error) {
				resp := pagination.NewPageResponse([]models.TaxLot{{Status: models.LotStatusOpen}}, page.Page, page.PageSize, 1)
				return &resp, nil
			},
		}
		r := setupTaxLotRouter(NewTaxLotHandler(svc))

		rec := doRequest(r, "GET", "/tax/lots?page=1&page_size=10", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["total_items"] != float64(1) {
			t.Errorf("expected 1 total item, got %v", result["total_items"])
		}
	})

	t.Run("passes asset class filter through", func(t *testing.T) {
		var captured services.TaxLotFilter
		svc := &mockTaxLotService{
			getLotsFn: func(_ context.Context, filter services.TaxLotFilter, page pagination.PageRequest) (*pagination.PageResponse[models.TaxLot], error) {
				captured = filter
				resp := pagination.NewPageResponse([]models.TaxLot{}, page.Page, page.PageSize, 0)
				return &resp, nil
			},
		}
		r := setupTaxLotRouter(NewTaxLotHandler(svc))

		rec := doRequest(r, "GET", "/tax/lots?asset_class=crypto&fund_subtype=", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if captured.AssetClass != models.AssetClassCrypto {
			t.Errorf("expected crypto filter passed through, got %+v", captured)
		}
	})

	t.Run("rejects unknown asset class", func(t *testing.T) {
		r := setupTaxLotRouter(NewTaxLotHandler(&mockTaxLotService{}))

		rec := doRequest(r, "GET", "/tax/lots?asset_class=stamps", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
		}
	})
}
