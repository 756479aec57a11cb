// Package errors provides custom error types for the Immoledger API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Ledger errors.
var (
	ErrTransactionNotFound     = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrFinancialItemNotFound   = &AppError{Code: "FINANCIAL_ITEM_NOT_FOUND", Message: "Financial item not found", StatusCode: http.StatusNotFound}
	ErrInvoiceNotFound         = &AppError{Code: "INVOICE_NOT_FOUND", Message: "Invoice not found", StatusCode: http.StatusNotFound}
	ErrInvalidAllocation       = &AppError{Code: "INVALID_ALLOCATION", Message: "Every allocation needs a target and a positive amount", StatusCode: http.StatusBadRequest}
	ErrAllocationExceedsAmount = &AppError{Code: "ALLOCATION_EXCEEDS_AMOUNT", Message: "Allocated total exceeds the transaction amount", StatusCode: http.StatusBadRequest}
)

// Tax lot errors.
var (
	ErrAssetNotFound            = &AppError{Code: "ASSET_NOT_FOUND", Message: "Asset not found", StatusCode: http.StatusNotFound}
	ErrAssetTransactionNotFound = &AppError{Code: "ASSET_TRANSACTION_NOT_FOUND", Message: "Asset transaction not found", StatusCode: http.StatusNotFound}
	ErrInsufficientLotQuantity  = &AppError{Code: "INSUFFICIENT_LOT_QUANTITY", Message: "Sell quantity exceeds the open lot quantity", StatusCode: http.StatusBadRequest}
)

// Statement errors.
var (
	ErrStatementNotFound = &AppError{Code: "STATEMENT_NOT_FOUND", Message: "Statement not found", StatusCode: http.StatusNotFound}
	ErrUnitNotFound      = &AppError{Code: "UNIT_NOT_FOUND", Message: "Unit not found", StatusCode: http.StatusNotFound}
	ErrContractNotFound  = &AppError{Code: "CONTRACT_NOT_FOUND", Message: "Lease contract not found", StatusCode: http.StatusNotFound}
	ErrHeatingCalculator = &AppError{Code: "HEATING_CALCULATOR_ERROR", Message: "Heating ordinance calculation failed", StatusCode: http.StatusBadGateway}
)
