// Package upstream talks to provider endpoints: it lists their models and
// works out which base URL form a provider expects.
package upstream

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Error categories for failed model listing requests
const (
	CategoryAuthFailure      = "authentication_failure"
	CategoryEndpointNotFound = "endpoint_not_found"
	CategoryRateLimit        = "rate_limit"
	CategoryServerError      = "server_error"
	CategoryNetworkError     = "network_error"
	CategoryBadResponse      = "bad_response"
	CategoryUnknown          = "unknown_error"
)

var categoryMessages = map[string]string{
	CategoryAuthFailure:      "authentication failed, check the provider's api_key",
	CategoryEndpointNotFound: "endpoint not found",
	CategoryRateLimit:        "rate limit exceeded",
	CategoryServerError:      "server error",
	CategoryNetworkError:     "network error",
	CategoryBadResponse:      "unexpected response format",
	CategoryUnknown:          "unexpected status",
}

// CategorizeStatus maps an HTTP status code to an error category
func CategorizeStatus(statusCode int) string {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return CategoryAuthFailure
	case statusCode == http.StatusNotFound:
		return CategoryEndpointNotFound
	case statusCode == http.StatusTooManyRequests:
		return CategoryRateLimit
	case statusCode >= http.StatusInternalServerError:
		return CategoryServerError
	default:
		return CategoryUnknown
	}
}

// CategoryMessage returns the user-facing text for a category
func CategoryMessage(category string) string {
	if msg, ok := categoryMessages[category]; ok {
		return msg
	}
	return categoryMessages[CategoryUnknown]
}

// DescribeNetworkError turns a transport error into a short explanation
func DescribeNetworkError(err error, timeout time.Duration) string {
	if err == nil {
		return CategoryMessage(CategoryNetworkError)
	}

	var netErr net.Error
	errStr := err.Error()
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return fmt.Sprintf("request timed out (more than %s)", timeout)
	case strings.Contains(errStr, "connection refused"):
		return "connection refused (server not listening on this port)"
	case strings.Contains(errStr, "network is unreachable"):
		return "network unreachable"
	case strings.Contains(errStr, "no such host"):
		return "DNS resolution failed"
	case strings.Contains(errStr, "EOF"):
		return "connection closed unexpectedly"
	default:
		return fmt.Sprintf("request failed: %v", err)
	}
}
