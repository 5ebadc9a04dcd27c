package llm

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// AuthError indicates the API rejected our credentials.
type AuthError struct {
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("model API authentication failed: %v", e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// RateLimitError indicates the API rejected the call due to quota or rate limits.
type RateLimitError struct {
	Cause error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("model API rate limited: %v", e.Cause)
}

func (e *RateLimitError) Unwrap() error { return e.Cause }

// TransportError covers network failures and non-auth, non-quota API errors.
type TransportError struct {
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("model API call failed: %v", e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// EmptyResponseError indicates the model returned no usable content.
type EmptyResponseError struct {
	Message string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("empty model response: %s", e.Message)
}

// classifyAPIError maps a raw provider error onto the package taxonomy.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Cause: err}
		case http.StatusTooManyRequests:
			return &RateLimitError{Cause: err}
		}
	}
	return &TransportError{Cause: err}
}
