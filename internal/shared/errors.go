package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig    = fmt.Errorf("configuration not found")
	ErrInvalidConfig    = fmt.Errorf("invalid configuration")
	ErrMissingAPIKey    = fmt.Errorf("missing are.na API key")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// Upstream API errors
	ErrTransientFetch     = fmt.Errorf("upstream request failed")
	ErrMalformedResponse  = fmt.Errorf("unexpected upstream payload")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrChannelNotFound    = fmt.Errorf("channel not found")

	// Input validation errors
	ErrMissingParameter = fmt.Errorf("missing required parameter")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrInvalidFlag      = fmt.Errorf("invalid flag value")
)
