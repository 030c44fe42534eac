package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned before any I/O when the session carries no token.
	ErrUnauthenticated = errors.New("gateway: not authenticated")
	// ErrBadResponse marks a 2xx answer whose body is not the expected JSON.
	ErrBadResponse = errors.New("gateway: invalid response body")
)

// APIError is a non-2xx provider answer. Body is kept verbatim for diagnostics.
type APIError struct {
	Operation string
	Status    int
	Body      string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API Error %d: %s", e.Status, e.Body)
}

// StatusOf extracts the upstream status code from err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
