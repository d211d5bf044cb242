package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeNoInput         ErrorType = "no_input_provided"
	ErrorTypeMissingFields   ErrorType = "missing_fields"
	ErrorTypeInvalidFormat   ErrorType = "invalid_measurement_format"
	ErrorTypeUnreadableImage ErrorType = "unreadable_image"
	ErrorTypePoseNotDetected ErrorType = "pose_not_detected"
	ErrorTypeDegenerate      ErrorType = "degenerate_measurement"
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeNetwork         ErrorType = "network"
	ErrorTypeTimeout         ErrorType = "timeout"
	ErrorTypeInternal        ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Fields     []string  `json:"fields,omitempty"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewNoInputError is returned when neither an image nor manual measurements were supplied
func NewNoInputError() *AppError {
	return newError(ErrorTypeNoInput, http.StatusBadRequest,
		"either image or manual_measurements must be provided", nil)
}

// NewMissingFieldsError names the required measurement keys that are absent
func NewMissingFieldsError(fields []string) *AppError {
	err := newError(ErrorTypeMissingFields, http.StatusBadRequest,
		"missing required measurements: "+strings.Join(fields, ", "), nil)
	err.Fields = append([]string(nil), fields...)
	return err
}

// NewInvalidFormatError reports a manual measurement payload that is not well-formed
func NewInvalidFormatError(message string, cause error) *AppError {
	return newError(ErrorTypeInvalidFormat, http.StatusBadRequest, message, cause)
}

// NewUnreadableImageError reports image bytes that cannot be decoded
func NewUnreadableImageError(message string, cause error) *AppError {
	return newError(ErrorTypeUnreadableImage, http.StatusUnprocessableEntity, message, cause)
}

// NewPoseNotDetectedError reports a decoded image without usable body landmarks
func NewPoseNotDetectedError(message string, cause error) *AppError {
	return newError(ErrorTypePoseNotDetected, http.StatusUnprocessableEntity, message, cause)
}

// NewDegenerateMeasurementError reports a zero denominator in a ratio or scale
func NewDegenerateMeasurementError(message string) *AppError {
	return newError(ErrorTypeDegenerate, http.StatusUnprocessableEntity, message, nil)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// As extracts the AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := As(err); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
