package api

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized is returned after a 401 has cleared the session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAPI matches every *APIError.
	ErrAPI = errors.New("api error")

	// ErrInvalidResponse matches every *InvalidResponseError.
	ErrInvalidResponse = errors.New("invalid response type")

	// ErrValidation is returned when input fails the client-side checks.
	ErrValidation = errors.New("validation failed")

	// ErrNoProfile means the current user could not be loaded.
	ErrNoProfile = errors.New("profile unavailable")

	// ErrNoToken means a login answer carried no token.
	ErrNoToken = errors.New("no token in login response")
)

// APIError is a non-2xx, non-401 answer from the API.
type APIError struct {
	StatusCode int
	Status     string
	// Body is the response body when it could be read, for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %s", e.Status)
}

func (e *APIError) Is(target error) bool {
	return target == ErrAPI
}

// InvalidResponseError is a successful status whose payload is not JSON, such
// as an HTML error page from a proxy.
type InvalidResponseError struct {
	ContentType string
	Err         error
}

func (e *InvalidResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response (content type %q): %v", e.ContentType, e.Err)
	}
	return fmt.Sprintf("invalid response type %q", e.ContentType)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}

func (e *InvalidResponseError) Is(target error) bool {
	return target == ErrInvalidResponse
}

// outcome labels an error for logs and metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrAPI):
		return "api_error"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid_response"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "network_error"
	}
}
