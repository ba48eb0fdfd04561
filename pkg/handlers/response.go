package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cinesage/cinesage-engine/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ServiceErrorResponse maps a service-layer error to an HTTP error response.
// Sentinel errors from apperrors carry their own status; anything else is a
// 500 with the error text passed through.
func ServiceErrorResponse(w http.ResponseWriter, logger *zap.Logger, err error) {
	var statusCode int
	var errorCode string
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		statusCode, errorCode = http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrEmptyResult):
		statusCode, errorCode = http.StatusNotFound, "empty_result"
	case errors.Is(err, apperrors.ErrOracleResponse):
		statusCode, errorCode = http.StatusBadGateway, "oracle_error"
	default:
		statusCode, errorCode = http.StatusInternalServerError, "internal_error"
	}
	if writeErr := ErrorResponse(w, statusCode, errorCode, err.Error()); writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}
