// Package errors provides standardized error handling for the review engine
// and its BPMN job workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeStorageReadFailed  ErrorCode = "STORAGE_READ_FAILED"
	ErrCodeStorageWriteFailed ErrorCode = "STORAGE_WRITE_FAILED"
	ErrCodeStorageCorrupt     ErrorCode = "STORAGE_CORRUPT"

	ErrCodeValidationFailed  ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRating     ErrorCode = "INVALID_RATING"
	ErrCodeBusinessNotFound  ErrorCode = "BUSINESS_NOT_FOUND"
	ErrCodeFeedbackNotFound  ErrorCode = "FEEDBACK_NOT_FOUND"
	ErrCodeSlugUnavailable   ErrorCode = "SLUG_UNAVAILABLE"
	ErrCodeSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"

	ErrCodeReplyDeliveryFailed ErrorCode = "REPLY_DELIVERY_FAILED"
	ErrCodeAlertPublishFailed  ErrorCode = "ALERT_PUBLISH_FAILED"
	ErrCodeIndexWriteFailed    ErrorCode = "INDEX_WRITE_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key to the error metadata and returns the error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = map[string]interface{}{}
	}
	e.Metadata[key] = value
	return e
}

// As extracts a StandardError from err's chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// NewStorageReadError wraps a failed partition read.
func NewStorageReadError(partition string, err error) *StandardError {
	return newError(ErrCodeStorageReadFailed, "Storage read failed",
		fmt.Sprintf("partition: %s, error: %s", partition, err.Error()), true, err)
}

// NewStorageWriteError wraps a failed partition write.
func NewStorageWriteError(partition string, err error) *StandardError {
	return newError(ErrCodeStorageWriteFailed, "Storage write failed",
		fmt.Sprintf("partition: %s, error: %s", partition, err.Error()), true, err)
}

// NewStorageCorruptError reports a partition that could not be decoded. The
// repositories heal these on read; the error is only surfaced for logging.
func NewStorageCorruptError(partition string, err error) *StandardError {
	return newError(ErrCodeStorageCorrupt, "Stored data could not be decoded",
		fmt.Sprintf("partition: %s, error: %s", partition, err.Error()), false, err)
}

// NewValidationError reports invalid caller input.
func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Input validation failed", details, false, nil)
}

// NewInvalidRatingError reports a rating outside 1..5.
func NewInvalidRatingError(rating int) *StandardError {
	return newError(ErrCodeInvalidRating, "Rating must be between 1 and 5",
		fmt.Sprintf("rating: %d", rating), false, nil)
}

// NewBusinessNotFoundError reports an unknown business slug or id.
func NewBusinessNotFoundError(ref string) *StandardError {
	return newError(ErrCodeBusinessNotFound, "Business not found",
		fmt.Sprintf("business: %s", ref), false, nil)
}

// NewFeedbackNotFoundError reports an unknown feedback id where the caller
// asked for strict lookups.
func NewFeedbackNotFoundError(id string) *StandardError {
	return newError(ErrCodeFeedbackNotFound, "Feedback not found",
		fmt.Sprintf("feedbackId: %s", id), false, nil)
}

// NewSlugUnavailableError reports a slug already held by another business.
func NewSlugUnavailableError(slug string) *StandardError {
	return newError(ErrCodeSlugUnavailable, "Slug is not available",
		fmt.Sprintf("slug: %s", slug), false, nil)
}

// NewSourceUnavailableError reports a link source already used by the business.
func NewSourceUnavailableError(source string) *StandardError {
	return newError(ErrCodeSourceUnavailable, "Link source is already in use",
		fmt.Sprintf("source: %s", source), false, nil)
}

// NewUnauthorizedError reports a session that may not act on a business.
func NewUnauthorizedError(details string) *StandardError {
	return newError(ErrCodeUnauthorized, "Operation not permitted", details, false, nil)
}

// NewReplyDeliveryError wraps a failed customer reply send. It is not
// retryable: the reply is already on the timeline and a retry would append it
// again.
func NewReplyDeliveryError(err error) *StandardError {
	return newError(ErrCodeReplyDeliveryFailed, "Reply delivery failed", err.Error(), false, err)
}

// NewAlertPublishError wraps a failed operator alert.
func NewAlertPublishError(channel string, err error) *StandardError {
	return newError(ErrCodeAlertPublishFailed, "Operator alert failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true, err)
}

// NewIndexWriteError wraps a failed search index write.
func NewIndexWriteError(index string, err error) *StandardError {
	return newError(ErrCodeIndexWriteFailed, "Search index write failed",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true, err)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err.Error(), true, err)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true, err)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError("RESOURCE_NOT_FOUND", fmt.Sprintf("Resource not found in %s", service), details, false, nil)
}

func NewAuthenticationError(details string) *StandardError {
	return newError("AUTHENTICATION_ERROR", "Authentication failed", details, false, nil)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled on BPMN
// boundary events. Codes missing here are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeStorageReadFailed:   "STORAGE_UNAVAILABLE",
	ErrCodeStorageWriteFailed:  "STORAGE_UNAVAILABLE",
	ErrCodeValidationFailed:    "INVALID_INPUT",
	ErrCodeInvalidRating:       "INVALID_INPUT",
	ErrCodeBusinessNotFound:    "BUSINESS_NOT_FOUND",
	ErrCodeFeedbackNotFound:    "FEEDBACK_NOT_FOUND",
	ErrCodeReplyDeliveryFailed: "REPLY_DELIVERY_FAILED",
	ErrCodeAlertPublishFailed:  "ALERT_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStorageReadFailed,
		ErrCodeStorageWriteFailed,
		ErrCodeAlertPublishFailed:
		return 3

	case ErrCodeIndexWriteFailed, "TIMEOUT_ERROR", "EXTERNAL_SERVICE_ERROR":
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "REPLY") || strings.Contains(codeStr, "ALERT"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "UNAVAILABLE"):
		return "LOOKUP"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	case strings.Contains(codeStr, "UNAUTHORIZED") || strings.Contains(codeStr, "AUTHENTICATION"):
		return "AUTH"
	default:
		return "OTHER"
	}
}
