package validation

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// AccessCodeLength is the number of digits in an access code.
const AccessCodeLength = 6

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("accesscode", validateAccessCode); err != nil {
		panic(fmt.Sprintf("failed to register accesscode validation: %v", err))
	}
	if err := validate.RegisterValidation("sharehash", validateShareHash); err != nil {
		panic(fmt.Sprintf("failed to register sharehash validation: %v", err))
	}
	if err := validate.RegisterValidation("httpurl", validateHTTPURL); err != nil {
		panic(fmt.Sprintf("failed to register httpurl validation: %v", err))
	}
}

// Validate validates a struct using tags
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// ValidateAccessCode validates a concatenated access code
func ValidateAccessCode(code string) error {
	return validate.Var(code, "required,accesscode")
}

// ValidateShareHash validates the path segment of a share link
func ValidateShareHash(hash string) error {
	return validate.Var(hash, "required,sharehash")
}

// ValidateHTTPURL validates a base URL such as the backend API address
func ValidateHTTPURL(urlStr string) error {
	return validate.Var(urlStr, "required,httpurl")
}

func validateAccessCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()
	if len(code) != AccessCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

func validateShareHash(fl validator.FieldLevel) bool {
	hash := fl.Field().String()

	// Hashes are opaque; the backend decides what exists. Locally they only
	// have to survive as one path segment of at most 128 bytes.
	if len(hash) == 0 || len(hash) > 128 || hash == "." || hash == ".." {
		return false
	}

	for _, char := range hash {
		if char == '/' || char == '\\' || unicode.IsControl(char) || unicode.IsSpace(char) {
			return false
		}
	}

	return true
}

func validateHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") &&
		u.Host != "" &&
		u.Fragment == "" &&
		u.RawQuery == ""
}

// ValidationError represents a validation error
type ValidationError struct {
	Field string
	Error string
}

// FormatError formats a validation error into a human-readable message
func FormatError(err error) []ValidationError {
	var validationErrors []ValidationError

	if err == nil {
		return validationErrors
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return validationErrors
	}

	for _, e := range errs {
		var message string

		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", e.Field())
		case "accesscode":
			message = "Please enter a complete 6-digit code"
		case "sharehash":
			message = "Share link is malformed"
		case "httpurl":
			message = fmt.Sprintf("%s must be an http or https URL without query or fragment", e.Field())
		case "gt", "gte", "min":
			message = fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
		default:
			message = fmt.Sprintf("Invalid value for %s", e.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field: strings.ToLower(e.Field()),
			Error: message,
		})
	}

	return validationErrors
}
