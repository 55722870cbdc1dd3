package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
)

// Short aliases used throughout the application layers.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")

	CodeDBConnectionError = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeMessageQueueError = ErrCodeInternal
	CodeStorageError      = ErrCodeInternal
)

// Affair Module Error Codes
const (
	ErrCodeAffairNotFound       ErrorCode = "AFF_001"
	ErrCodeAffairAlreadyExists  ErrorCode = "AFF_002"
	ErrCodeAffairInvalid        ErrorCode = "AFF_003"
	ErrCodeAffairSlugExhausted  ErrorCode = "AFF_004"
	ErrCodeAffairSourceMissing  ErrorCode = "AFF_005"
	ErrCodeAffairPersistFailed  ErrorCode = "AFF_006"
	ErrCodeScoringInputInvalid  ErrorCode = "AFF_007"
	ErrCodeDuplicateScanFailed  ErrorCode = "AFF_008"
)

// Subject Module Error Codes
const (
	ErrCodeSubjectNotFound ErrorCode = "SUB_001"
	ErrCodeSubjectInvalid  ErrorCode = "SUB_002"
)

// Knowledge-Graph Client Error Codes
const (
	ErrCodeKGUnavailable  ErrorCode = "KG_001"
	ErrCodeKGRateLimited  ErrorCode = "KG_002"
	ErrCodeKGParseError   ErrorCode = "KG_003"
	ErrCodeKGAuthFailed   ErrorCode = "KG_004"
)

// AI Extraction Client Error Codes
const (
	ErrCodeExtractionUnavailable ErrorCode = "EXT_001"
	ErrCodeExtractionRateLimited ErrorCode = "EXT_002"
	ErrCodeExtractionParseError  ErrorCode = "EXT_003"
	ErrCodeExtractionRejected    ErrorCode = "EXT_004"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,

	ErrCodeAffairNotFound:      http.StatusNotFound,
	ErrCodeAffairAlreadyExists: http.StatusConflict,
	ErrCodeAffairInvalid:       http.StatusBadRequest,
	ErrCodeAffairSlugExhausted: http.StatusConflict,
	ErrCodeAffairSourceMissing: http.StatusBadRequest,
	ErrCodeAffairPersistFailed: http.StatusInternalServerError,
	ErrCodeScoringInputInvalid: http.StatusBadRequest,
	ErrCodeDuplicateScanFailed: http.StatusInternalServerError,

	ErrCodeSubjectNotFound: http.StatusNotFound,
	ErrCodeSubjectInvalid:  http.StatusBadRequest,

	ErrCodeKGUnavailable: http.StatusBadGateway,
	ErrCodeKGRateLimited: http.StatusTooManyRequests,
	ErrCodeKGParseError:  http.StatusBadGateway,
	ErrCodeKGAuthFailed:  http.StatusBadGateway,

	ErrCodeExtractionUnavailable: http.StatusBadGateway,
	ErrCodeExtractionRateLimited: http.StatusTooManyRequests,
	ErrCodeExtractionParseError:  http.StatusBadGateway,
	ErrCodeExtractionRejected:    http.StatusUnprocessableEntity,
}

// ErrorCodeMessage maps ErrorCodes to default human-readable messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "operation timed out",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",

	ErrCodeAffairNotFound:      "affair not found",
	ErrCodeAffairAlreadyExists: "affair already exists",
	ErrCodeAffairInvalid:       "affair record is invalid",
	ErrCodeAffairSlugExhausted: "no free slug could be generated",
	ErrCodeAffairSourceMissing: "affair requires at least one source",
	ErrCodeAffairPersistFailed: "failed to persist affair",
	ErrCodeScoringInputInvalid: "similarity scoring input is invalid",
	ErrCodeDuplicateScanFailed: "duplicate scan failed",

	ErrCodeSubjectNotFound: "subject not found",
	ErrCodeSubjectInvalid:  "subject record is invalid",

	ErrCodeKGUnavailable: "knowledge graph service unavailable",
	ErrCodeKGRateLimited: "knowledge graph rate limit reached",
	ErrCodeKGParseError:  "knowledge graph response could not be parsed",
	ErrCodeKGAuthFailed:  "knowledge graph authentication failed",

	ErrCodeExtractionUnavailable: "extraction service unavailable",
	ErrCodeExtractionRateLimited: "extraction service rate limit reached",
	ErrCodeExtractionParseError:  "extraction response could not be parsed",
	ErrCodeExtractionRejected:    "extraction rejected by filters",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
