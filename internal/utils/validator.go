// internal/utils/validator.go
package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so clients can map errors onto form inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("strong_password", validateStrongPassword)
	_ = v.RegisterValidation("employee_id", validateEmployeeID)
	return v
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

// validateStrongPassword requires 8+ characters mixing upper, lower, digit and symbol classes.
func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()
	if len(password) < 8 {
		return false
	}

	var classes [4]bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			classes[0] = true
		case unicode.IsLower(r):
			classes[1] = true
		case unicode.IsDigit(r):
			classes[2] = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			classes[3] = true
		}
	}
	return classes[0] && classes[1] && classes[2] && classes[3]
}

// validateEmployeeID accepts an empty value or 2-50 letters, digits, dashes, underscores and slashes.
func validateEmployeeID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" {
		return true
	}
	if len(id) < 2 || len(id) > 50 {
		return false
	}
	return strings.IndexFunc(id, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("-/_", r)
	}) < 0
}

// ValidationError is one failed rule, rendered under error.details.
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, ValidationError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: validationMessage(e),
		})
	}
	return out
}

var fixedMessages = map[string]string{
	"email":           "Invalid email format",
	"strong_password": "Password must contain at least 8 characters with uppercase, lowercase, number, and special character",
	"employee_id":     "Employee ID must be 2-50 letters, digits, dashes or slashes",
}

func validationMessage(e validator.FieldError) string {
	if msg, ok := fixedMessages[e.Tag()]; ok {
		return msg
	}

	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min", "max":
		bound := "at least"
		if e.Tag() == "max" {
			bound = "at most"
		}
		unit := " characters"
		if k := e.Kind(); k == reflect.Slice || k == reflect.Array {
			unit = " items"
		}
		return fmt.Sprintf("%s must be %s %s%s", e.Field(), bound, e.Param(), unit)
	case "oneof":
		return e.Field() + " must be one of " + e.Param()
	case "url":
		return e.Field() + " must be a valid URL"
	case "gte":
		return e.Field() + " must be at least " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
