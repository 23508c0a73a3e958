package errors

import (
	"fmt"
	"time"
)

/**
 * Error types for the OCR wrapper
 *
 * Every engine-level failure collapses into an OCRError carrying the
 * operation that failed and the request ID it was logged under.
 */

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Engine errors
	ErrorEngineFailed   ErrorCode = "ENGINE_FAILED"
	ErrorEngineNotFound ErrorCode = "ENGINE_NOT_FOUND"
	ErrorEngineTimeout  ErrorCode = "ENGINE_TIMEOUT"

	// Input/output shape errors
	ErrorImageEncode   ErrorCode = "IMAGE_ENCODE_FAILED"
	ErrorInvalidOutput ErrorCode = "INVALID_ENGINE_OUTPUT"

	// Configuration errors
	ErrorInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// OCRError represents a structured OCR engine error
type OCRError struct {
	Code      ErrorCode
	Message   string
	Operation string
	RequestID string
	Timestamp time.Time
	Details   map[string]interface{}
	Cause     error
}

func (e *OCRError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *OCRError) Unwrap() error {
	return e.Cause
}

// WithRequest stamps the operation and request ID onto the error and returns it.
func (e *OCRError) WithRequest(operation, requestID string) *OCRError {
	e.Operation = operation
	e.RequestID = requestID
	return e
}

// Factory functions for common errors

func NewEngineFailedError(engine string, cause error) *OCRError {
	return &OCRError{
		Code:      ErrorEngineFailed,
		Message:   fmt.Sprintf("OCR engine failed: %s", engine),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"engine": engine,
		},
		Cause: cause,
	}
}

func NewEngineNotFoundError(path string, cause error) *OCRError {
	return &OCRError{
		Code:      ErrorEngineNotFound,
		Message:   fmt.Sprintf("OCR engine executable not found: %s", path),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"path": path,
		},
		Cause: cause,
	}
}

func NewEngineTimeoutError(engine string, cause error) *OCRError {
	return &OCRError{
		Code:      ErrorEngineTimeout,
		Message:   fmt.Sprintf("OCR engine did not finish in time: %s", engine),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"engine": engine,
		},
		Cause: cause,
	}
}

func NewImageEncodeError(cause error) *OCRError {
	return &OCRError{
		Code:      ErrorImageEncode,
		Message:   "Failed to encode image for the OCR engine",
		Timestamp: time.Now(),
		Cause:     cause,
	}
}

func NewInvalidOutputError(reason string, cause error) *OCRError {
	return &OCRError{
		Code:      ErrorInvalidOutput,
		Message:   fmt.Sprintf("Unexpected OCR engine output: %s", reason),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"reason": reason,
		},
		Cause: cause,
	}
}

func NewInvalidConfigError(param string, cause error) *OCRError {
	return &OCRError{
		Code:      ErrorInvalidConfig,
		Message:   fmt.Sprintf("Invalid OCR configuration: %s", param),
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"param": param,
		},
		Cause: cause,
	}
}

// ToMap converts error to map for structured logging
func (e *OCRError) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
		"timestamp":  e.Timestamp,
	}

	if e.Operation != "" {
		result["operation"] = e.Operation
	}
	if e.RequestID != "" {
		result["request_id"] = e.RequestID
	}

	for k, v := range e.Details {
		result[k] = v
	}

	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}

	return result
}
