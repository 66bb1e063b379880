package notion

import (
	"errors"
	"fmt"
)

// ErrUnauthorized indicates the integration token was rejected
var ErrUnauthorized = errors.New("invalid or revoked Notion integration token")

// ErrRateLimited indicates the API rate limit was exceeded
var ErrRateLimited = errors.New("notion API rate limit exceeded")

// ServerError represents a 5xx error from the Notion API
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("Notion server error: HTTP %d", e.StatusCode)
}

// APIError is a 4xx response carrying Notion's error object.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("Notion API error: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("Notion API error: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}
