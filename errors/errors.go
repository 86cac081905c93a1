package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the custom error type for the application. Message is safe to
// show to callers; Raw holds the internal cause and is only logged.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the raw cause to errors.Is/As
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithCorrelation attaches the pipeline correlation id as a detail
func (e AppError) WithCorrelation(correlationID string) AppError {
	return e.WithDetail("correlation_id", correlationID)
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal server error",
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Authentication required",
	}
}

func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_UNAUTHENTICATED,
		Message:  "Invalid authentication token",
	}
}

// Request Errors

func ErrInvalidPayload() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_PAYLOAD,
		Message:  "Invalid payload",
	}
}

func ErrMissingCaptionText() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_MISSING_CAPTION_TEXT,
		Message:  "Missing caption text",
	}
}

func ErrTranscriptTooShort(length int) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_TRANSCRIPT_TOO_SHORT,
		Message:  "Transcript is too short to analyze",
	}.WithDetail("length", fmt.Sprintf("%d", length))
}

// Extraction Errors

func ErrExtractionFailed(correlationID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_EXTRACTION_FAILED,
		Message:  "Action item extraction failed",
	}.WithCorrelation(correlationID)
}

// ErrExtractionParseFailed marks an unparseable extraction response. The raw
// payload is kept as a detail for diagnosis; it is logged, never returned to
// the caller body.
func ErrExtractionParseFailed(correlationID, rawContent string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_EXTRACTION_PARSE_FAILED,
		Message:  "Extraction backend returned an unparseable response",
	}.WithCorrelation(correlationID).
		WithDetail("raw_content", rawContent)
}

func ErrExtractionServiceUnavailable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_EXTRACTION_SERVICE_UNAVAILABLE,
		Message:  "Extraction service temporarily unavailable",
	}
}

func ErrExtractionQuotaExceeded() AppError {
	return AppError{
		HTTPCode: http.StatusTooManyRequests,
		Code:     ErrorCode_EXTRACTION_QUOTA_EXCEEDED,
		Message:  "Extraction service quota exceeded",
	}
}

// Directory Errors

func ErrDirectoryLookupFailed(name string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DIRECTORY_LOOKUP_FAILED,
		Message:  "Directory lookup failed",
	}.WithDetail("name", name)
}

// Delivery Errors

func ErrDeliveryFailed(correlationID string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_DELIVERY_FAILED,
		Message:  "Work item delivery failed",
	}.WithCorrelation(correlationID)
}
