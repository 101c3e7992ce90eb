package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeInsufficientData indicates no scientific literature exists
	// for a query. Expected outcome, user-facing, never auto-retried.
	ErrorTypeInsufficientData ErrorType = "INSUFFICIENT_DATA"

	// ErrorTypeEnrichment indicates the enrichment collaborator failed,
	// timed out, or returned a malformed payload
	ErrorTypeEnrichment ErrorType = "ENRICHMENT_FAILED"

	// ErrorTypeTimeout indicates a bounded operation exceeded its ceiling
	ErrorTypeTimeout ErrorType = "TIMEOUT"

	// ErrorTypeCacheMiss indicates no entry exists for the requested key
	ErrorTypeCacheMiss ErrorType = "CACHE_MISS"

	// ErrorTypeCacheExpired indicates the entry's TTL has elapsed
	ErrorTypeCacheExpired ErrorType = "CACHE_EXPIRED"

	// ErrorTypeCacheInvalid indicates the entry failed provenance validation
	ErrorTypeCacheInvalid ErrorType = "CACHE_INVALID"

	// ErrorTypeCacheCorrupted indicates the stored value could not be parsed.
	// Read paths treat it exactly like a miss; it stays distinct so the
	// corruption rate can be observed.
	ErrorTypeCacheCorrupted ErrorType = "CACHE_CORRUPTED"

	// ErrorTypeOffline indicates the connectivity observer reports no network
	ErrorTypeOffline ErrorType = "OFFLINE"
)

// AppError represents an application error
type AppError struct {
	Type        ErrorType
	Message     string
	Suggestions []string
	Err         error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// IsType reports whether err is an AppError of the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsCacheUnavailable reports whether err is any of the cache-read failures
// (miss, expired, invalid, corrupted). Callers surface all four identically.
func IsCacheUnavailable(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Type {
	case ErrorTypeCacheMiss, ErrorTypeCacheExpired, ErrorTypeCacheInvalid, ErrorTypeCacheCorrupted:
		return true
	}
	return false
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// NewInsufficientDataError creates an insufficient-data error carrying
// alternative query suggestions for the user.
func NewInsufficientDataError(message string, suggestions []string) *AppError {
	return &AppError{
		Type:        ErrorTypeInsufficientData,
		Message:     message,
		Suggestions: suggestions,
	}
}

// NewEnrichmentError creates an enrichment failure error
func NewEnrichmentError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeEnrichment,
		Message: message,
		Err:     err,
	}
}

// NewTimeoutError creates a timeout error
func NewTimeoutError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeTimeout,
		Message: message,
	}
}

// NewCacheMissError creates a cache miss error
func NewCacheMissError(key string) *AppError {
	return &AppError{
		Type:    ErrorTypeCacheMiss,
		Message: fmt.Sprintf("no cache entry for key %s", key),
	}
}

// NewCacheExpiredError creates a cache expired error
func NewCacheExpiredError(key string) *AppError {
	return &AppError{
		Type:    ErrorTypeCacheExpired,
		Message: fmt.Sprintf("cache entry for key %s has expired", key),
	}
}

// NewCacheInvalidError creates a cache invalid error
func NewCacheInvalidError(key string) *AppError {
	return &AppError{
		Type:    ErrorTypeCacheInvalid,
		Message: fmt.Sprintf("cache entry for key %s failed validation", key),
	}
}

// NewCacheCorruptedError creates a corrupted cache error
func NewCacheCorruptedError(key string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeCacheCorrupted,
		Message: fmt.Sprintf("cache entry for key %s could not be parsed", key),
		Err:     err,
	}
}

// NewOfflineError creates an offline error
func NewOfflineError() *AppError {
	return &AppError{
		Type:    ErrorTypeOffline,
		Message: "no network connectivity",
	}
}
