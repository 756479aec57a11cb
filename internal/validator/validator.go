// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var paymentMonthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("tx_category", validateTransactionCategory)
		_ = v.RegisterValidation("asset_class", validateAssetClass)
		_ = v.RegisterValidation("fund_subtype", validateFundSubtype)
		_ = v.RegisterValidation("payment_month", validatePaymentMonth)
	}
}

func validateTransactionCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "rent_income", "operating_cost", "maintenance", "insurance", "property_tax", "loan_interest", "other":
		return true
	}
	return false
}

func validateAssetClass(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "security", "fund", "crypto", "precious_metal":
		return true
	}
	return false
}

func validateFundSubtype(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "equity", "mixed", "real_estate", "bond", "none":
		return true
	}
	return false
}

func validatePaymentMonth(fl validator.FieldLevel) bool {
	return paymentMonthRegex.MatchString(fl.Field().String())
}
