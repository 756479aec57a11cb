// Package heating wraps the external heating-cost-ordinance calculator.
// The collaborator is opaque: it is consumed strictly through the request
// and response shapes below and returns one amount per unit.
package heating

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ShareRequest describes one unit's share calculation input.
type ShareRequest struct {
	StatementID string          `json:"statement_id"`
	CostItemID  string          `json:"cost_item_id"`
	UnitID      string          `json:"unit_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PeriodStart time.Time       `json:"period_start"`
	PeriodEnd   time.Time       `json:"period_end"`
}

// Calculator computes a unit's share of a heating cost item.
type Calculator interface {
	CalculateShare(ctx context.Context, req ShareRequest) (decimal.Decimal, error)
}

// Client calls the heating ordinance service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type shareResponse struct {
	Amount decimal.Decimal `json:"amount"`
}

// CalculateShare posts the request to the collaborator and returns the
// per-unit amount it computed.
func (c *Client) CalculateShare(ctx context.Context, req ShareRequest) (decimal.Decimal, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to encode share request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/shares", bytes.NewReader(body))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to create share request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return decimal.Zero, fmt.Errorf("heating service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("heating service returned status %d", resp.StatusCode)
	}

	var parsed shareResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return decimal.Zero, fmt.Errorf("failed to decode share response: %w", err)
	}
	return parsed.Amount, nil
}

// FixedCalculator returns the same amount for every request. It stands in
// for the collaborator in tests.
type FixedCalculator struct {
	Amount decimal.Decimal
	Err    error
}

// CalculateShare implements Calculator.
func (f FixedCalculator) CalculateShare(ctx context.Context, req ShareRequest) (decimal.Decimal, error) {
	if f.Err != nil {
		return decimal.Zero, f.Err
	}
	return f.Amount, nil
}
