// internal/common/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type ErrorCode string

const (
	ErrCodeInvalidSearchInput  ErrorCode = "INVALID_SEARCH_INPUT"
	ErrCodeInvalidFilterFormat ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeParseError          ErrorCode = "PARSE_ERROR"

	ErrCodeSearchQueryFailed ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout     ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound     ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeQueryExecutionFailed ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSourceUnavailable    ErrorCode = "SOURCE_UNAVAILABLE"

	ErrCodeCacheInvalidationFailed ErrorCode = "CACHE_INVALIDATION_FAILED"
	ErrCodeCacheNotConfigured      ErrorCode = "CACHE_NOT_CONFIGURED"

	ErrCodeBusinessRuleViolation ErrorCode = "BUSINESS_RULE_VIOLATION"
	ErrCodeExternalService       ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout               ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound      ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication        ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
)

type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key to the error and returns it for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError finds a StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

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

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidSearchInputError(details string) *StandardError {
	return newError(ErrCodeInvalidSearchInput, "Invalid search request", details, false)
}

func NewInvalidFilterFormatError(details string) *StandardError {
	return newError(ErrCodeInvalidFilterFormat, "Invalid filter format", details, false)
}

func NewParseError(err error) *StandardError {
	return newError(ErrCodeParseError, "Could not parse job variables", err.Error(), false)
}

func NewSearchQueryFailedError(searchType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Search failed",
		fmt.Sprintf("searchType: %s, error: %s", searchType, err.Error()), true)
}

func NewSearchTimeoutError(searchType string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Search timed out",
		fmt.Sprintf("searchType: %s", searchType), true)
}

func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Search index not found",
		fmt.Sprintf("indexName: %s", indexName), false)
}

func NewQueryExecutionFailedError(kind string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Listing query failed",
		fmt.Sprintf("kind: %s, error: %s", kind, err.Error()), true)
}

// NewSourceUnavailableError is returned when every requested kind failed to
// load, so an empty result would be misleading.
func NewSourceUnavailableError(kinds []string) *StandardError {
	return newError(ErrCodeSourceUnavailable, "No listing source answered",
		fmt.Sprintf("kinds: %s", strings.Join(kinds, ",")), true)
}

func NewCacheInvalidationFailedError(err error) *StandardError {
	return newError(ErrCodeCacheInvalidationFailed, "Candidate cache invalidation failed", err.Error(), true)
}

func NewCacheNotConfiguredError() *StandardError {
	return newError(ErrCodeCacheNotConfigured, "Candidate cache is disabled", "", false)
}

func NewBusinessRuleError(message, details string) *StandardError {
	return newError(ErrCodeBusinessRuleViolation, message, details, false)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// BPMNErrorMapping lists codes whose BPMN error code differs from the
// internal one. Unlisted codes are thrown unchanged.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidFilterFormat: "INVALID_SEARCH_INPUT",
	ErrCodeParseError:          "INVALID_SEARCH_INPUT",
	ErrCodeIndexNotFound:       "SEARCH_QUERY_FAILED",
	ErrCodeCacheNotConfigured:  "CACHE_INVALIDATION_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSearchQueryFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeSourceUnavailable,
		ErrCodeCacheInvalidationFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeSearchTimeout,
		ErrCodeTimeout:
		return 2

	default:
		return 0
	}
}

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

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CACHE"):
		return "CACHE"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "PARSE"):
		return "VALIDATION"
	case strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "SOURCE"):
		return "DATABASE"
	case strings.Contains(codeStr, "AUTHENTICATION"):
		return "AUTH"
	default:
		return "OTHER"
	}
}

// HTTPStatus maps an error code to the status the HTTP API answers with.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidSearchInput, ErrCodeInvalidFilterFormat, ErrCodeParseError, ErrCodeBusinessRuleViolation:
		return http.StatusBadRequest
	case ErrCodeResourceNotFound, ErrCodeIndexNotFound:
		return http.StatusNotFound
	case ErrCodeAuthentication:
		return http.StatusUnauthorized
	case ErrCodeSearchTimeout, ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeSourceUnavailable, ErrCodeCacheNotConfigured:
		return http.StatusServiceUnavailable
	case ErrCodeSearchQueryFailed, ErrCodeQueryExecutionFailed, ErrCodeExternalService, ErrCodeCacheInvalidationFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
