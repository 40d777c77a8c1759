// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	isoDateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hex_color", validateHexColor)
		_ = v.RegisterValidation("iso_date", validateISODate)
		_ = v.RegisterValidation("benefit_frequency", validateBenefitFrequency)
		_ = v.RegisterValidation("quota_frequency", validateQuotaFrequency)
		_ = v.RegisterValidation("reset_type", validateResetType)
		_ = v.RegisterValidation("renewal_day", validateRenewalDay)
		_ = v.RegisterValidation("card_network", validateCardNetwork)
	}
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	return isoDateRegex.MatchString(fl.Field().String())
}

func validateBenefitFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Monthly", "Quarterly", "Semi-Annual", "Annual", "One-time":
		return true
	}
	return false
}

func validateQuotaFrequency(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Monthly", "Daily":
		return true
	}
	return false
}

func validateResetType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "calendar", "anniversary":
		return true
	}
	return false
}

func validateRenewalDay(fl validator.FieldLevel) bool {
	day := fl.Field().Int()
	return day >= 1 && day <= 31
}

func validateCardNetwork(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "Visa", "Mastercard", "Amex", "Discover":
		return true
	}
	return false
}
