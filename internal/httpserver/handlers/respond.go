package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/storefront/internal/auth"
	"github.com/MrSnakeDoc/storefront/internal/dashboard"
	"github.com/MrSnakeDoc/storefront/internal/domain"
	"github.com/MrSnakeDoc/storefront/internal/gateway"
	"github.com/MrSnakeDoc/storefront/internal/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, gateway.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, gateway.ErrBadResponse):
		return http.StatusBadGateway
	case errors.Is(err, auth.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrConsentInFlight),
		errors.Is(err, auth.ErrConsentAbandoned),
		errors.Is(err, domain.ErrAlreadyReplied):
		return http.StatusConflict
	case errors.Is(err, domain.ErrReviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, dashboard.ErrMissingLocation),
		errors.Is(err, domain.ErrEmptyReply),
		errors.Is(err, domain.ErrEmptyPost),
		errors.Is(err, auth.ErrUnknownAttempt):
		return http.StatusBadRequest
	}
	if _, ok := auth.AsAuthError(err); ok {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// messageFor is the text shown to the owner. Upstream errors carry the
// provider body verbatim.
func messageFor(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, log logger.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", logger.Int("status", status), logger.Error(err))
	} else {
		log.Debug("request rejected", logger.Int("status", status), logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: messageFor(err)})
}

var errBadBody = errors.New("invalid JSON body")

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadBody)
		}
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	return nil
}

func writeBadRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
}
