package validation

import (
	"fmt"
	"strings"

	"ccs/internal/utils"
)

const (
	maxProviderNameLen = 50
	maxModelNameLen    = 200
)

// ValidationError describes a rejected user input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InputValidator validates user input
type InputValidator struct{}

// NewInputValidator creates a new InputValidator
func NewInputValidator() *InputValidator {
	return &InputValidator{}
}

// ValidateProviderName checks if a provider name is usable in a "provider,model" reference
func (iv *InputValidator) ValidateProviderName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Message: "provider name cannot be empty"}
	}
	if name != strings.TrimSpace(name) {
		return &ValidationError{Field: "name", Message: "provider name cannot start or end with whitespace"}
	}
	if strings.ContainsAny(name, ",<>\"'&/\\") {
		return &ValidationError{Field: "name", Message: "provider name contains invalid characters"}
	}
	if len(name) > maxProviderNameLen {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("provider name is too long (max %d characters)", maxProviderNameLen)}
	}
	return nil
}

// ValidateURL checks that a base URL is an absolute http(s) URL
func (iv *InputValidator) ValidateURL(url string) error {
	if url == "" {
		return &ValidationError{Field: "base-url", Message: "base URL cannot be empty"}
	}
	if !utils.ValidateURL(url) {
		return &ValidationError{Field: "base-url", Message: fmt.Sprintf("invalid URL format: %s", url)}
	}
	return nil
}

// ValidateModelName checks if a model name is valid.
// Slashes are allowed since aggregators name models "vendor/model".
func (iv *InputValidator) ValidateModelName(model string) error {
	if strings.TrimSpace(model) == "" {
		return &ValidationError{Field: "model", Message: "model name cannot be empty"}
	}
	if strings.Contains(model, ",") {
		return &ValidationError{Field: "model", Message: "model name cannot contain ','"}
	}
	if strings.ContainsAny(model, "\n\r\t") {
		return &ValidationError{Field: "model", Message: "model name contains control characters"}
	}
	if len(model) > maxModelNameLen {
		return &ValidationError{Field: "model", Message: fmt.Sprintf("model name is too long (max %d characters)", maxModelNameLen)}
	}
	return nil
}
