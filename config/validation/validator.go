package validation

import (
	"fmt"
	"strings"

	"ccs/config/models"
)

// ValidateRouterType checks that t names one of CCR's routing slots
func ValidateRouterType(t string) error {
	if !models.IsRouterType(t) {
		return &ValidationError{
			Field:   "router",
			Message: fmt.Sprintf("'%s' is not a router type, valid types: %s", t, strings.Join(models.RouterTypes, ", ")),
		}
	}
	return nil
}

// NormalizeModels trims and deduplicates a model list, preserving order.
// Empty model names are removed.
func NormalizeModels(list []string) []string {
	if len(list) == 0 {
		return []string{}
	}

	seen := make(map[string]bool)
	result := make([]string, 0, len(list))
	for _, m := range list {
		trimmed := strings.TrimSpace(m)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		result = append(result, trimmed)
	}
	return result
}
