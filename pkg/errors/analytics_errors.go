package errors

import (
	"fmt"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a business rule violation
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainInfrastructureError indicates an infrastructure-level failure
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"

	// DomainAuthenticationError indicates authentication failure
	DomainAuthenticationError DomainErrorType = "AUTHENTICATION_ERROR"

	// DomainRateLimitError indicates rate limit exceeded
	DomainRateLimitError DomainErrorType = "RATE_LIMIT_ERROR"

	// DomainTimeoutError indicates operation timeout
	DomainTimeoutError DomainErrorType = "TIMEOUT_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Retryable:  false,
		StatusCode: domainErrorTypeToStatusCode(errorType),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// clone copies the error so the predefined values stay immutable
func (e *DomainError) clone() *DomainError {
	c := *e
	c.Details = make(map[string]interface{}, len(e.Details))
	for k, v := range e.Details {
		c.Details[k] = v
	}
	return &c
}

// WithCause returns a copy of the error with a cause attached
func (e *DomainError) WithCause(cause error) *DomainError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithDetail returns a copy of the error with a detail attached
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	c := e.clone()
	c.Details[key] = value
	return c
}

// WithRetryable returns a copy of the error with retryability set
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	c := e.clone()
	c.Retryable = retryable
	return c
}

// Is checks if the error is of a specific type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// domainErrorTypeToStatusCode maps error types to HTTP status codes
func domainErrorTypeToStatusCode(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError:
		return 400
	case DomainBusinessRuleError:
		return 422
	case DomainNotFoundError:
		return 404
	case DomainAuthenticationError:
		return 401
	case DomainRateLimitError:
		return 429
	case DomainTimeoutError:
		return 504
	case DomainInfrastructureError:
		return 500
	default:
		return 500
	}
}

// Common domain errors - these are pre-defined errors that can be reused

var (
	// Request errors
	ErrUnknownGraphType = NewDomainError(
		DomainValidationError,
		"UNKNOWN_GRAPH_TYPE",
		"The requested graph type is not supported",
	)

	ErrDateRangeRequired = NewDomainError(
		DomainValidationError,
		"DATE_RANGE_REQUIRED",
		"A start and end date are required for this analytics type",
	)

	ErrInvalidDateRange = NewDomainError(
		DomainValidationError,
		"INVALID_DATE_RANGE",
		"Start date must be before end date",
	)

	ErrMissingUserIdentity = NewDomainError(
		DomainAuthenticationError,
		"MISSING_USER_IDENTITY",
		"No authenticated user identity in request",
	)

	// Report errors
	ErrReportRenderFailed = NewDomainError(
		DomainInfrastructureError,
		"REPORT_RENDER_FAILED",
		"Failed to render the analytics report",
	)

	ErrReportUploadFailed = NewDomainError(
		DomainInfrastructureError,
		"REPORT_UPLOAD_FAILED",
		"Failed to upload the analytics report",
	).WithRetryable(true)

	// Rate limiting errors
	ErrRateLimitExceeded = NewDomainError(
		DomainRateLimitError,
		"RATE_LIMIT_EXCEEDED",
		"Too many requests, please try again later",
	).WithRetryable(true)

	// Infrastructure errors
	ErrEventPublishFailed = NewDomainError(
		DomainInfrastructureError,
		"EVENT_PUBLISH_FAILED",
		"Failed to publish analytics event",
	).WithRetryable(true)
)

