package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Withdrawal source balance
	validate.RegisterValidation("source_balance", func(fl validator.FieldLevel) bool {
		source := fl.Field().String()
		return source == "wallet" || source == "reward"
	})

	// Nigerian NUBAN account numbers are exactly 10 digits
	validate.RegisterValidation("nuban", func(fl validator.FieldLevel) bool {
		account := fl.Field().String()
		if len(account) != 10 {
			return false
		}
		for _, c := range account {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	})

	// Wallet-funded purchase kinds
	validate.RegisterValidation("purchase_kind", func(fl validator.FieldLevel) bool {
		kind := fl.Field().String()
		return kind == "airtime" || kind == "data"
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "source_balance":
			errors[field] = "Invalid source. Must be: wallet or reward"
		case "nuban":
			errors[field] = "Account number must be a 10-digit NUBAN"
		case "purchase_kind":
			errors[field] = "Invalid purchase kind. Must be: airtime or data"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
