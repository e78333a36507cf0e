package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
// Codes carry a module prefix ("COL_001") so logs and API bodies can be
// grouped by the layer that produced them.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeFeatureDisabled    ErrorCode = "COMMON_015"
	ErrCodePayloadTooLarge    ErrorCode = "COMMON_017"
)

// Aliases used by call sites that predate the prefixed names.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Column detection error codes
const (
	ErrCodeNoSmilesColumn ErrorCode = "COL_001"
	ErrCodeColumnMissing  ErrorCode = "COL_002"
)

// Tabular ingestion error codes
const (
	ErrCodeTableEmpty        ErrorCode = "TAB_001"
	ErrCodeTableMalformed    ErrorCode = "TAB_002"
	ErrCodeFormatUnsupported ErrorCode = "TAB_003"
	ErrCodeTableTooLarge     ErrorCode = "TAB_004"
	ErrCodeTableWriteFailed  ErrorCode = "TAB_005"
)

// Chemistry engine error codes
const (
	ErrCodeInvalidSMILES        ErrorCode = "CHEM_001"
	ErrCodeDescriptorFailed     ErrorCode = "CHEM_002"
	ErrCodeStructureUnsupported ErrorCode = "CHEM_003"
)

// Analysis run error codes
const (
	ErrCodeRunNotFound      ErrorCode = "RUN_001"
	ErrCodeHistoryDisabled  ErrorCode = "RUN_002"
	ErrCodeRunPersistFailed ErrorCode = "RUN_003"
)

// Storage and messaging error codes
const (
	ErrCodeStorageFailed  ErrorCode = "STORE_001"
	ErrCodeObjectNotFound ErrorCode = "STORE_002"
	ErrCodePublishFailed  ErrorCode = "STORE_003"
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeFeatureDisabled:    http.StatusNotImplemented,
	ErrCodePayloadTooLarge:    http.StatusRequestEntityTooLarge,

	ErrCodeNoSmilesColumn: http.StatusUnprocessableEntity,
	ErrCodeColumnMissing:  http.StatusBadRequest,

	ErrCodeTableEmpty:        http.StatusUnprocessableEntity,
	ErrCodeTableMalformed:    http.StatusUnprocessableEntity,
	ErrCodeFormatUnsupported: http.StatusUnsupportedMediaType,
	ErrCodeTableTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeTableWriteFailed:  http.StatusInternalServerError,

	ErrCodeInvalidSMILES:        http.StatusBadRequest,
	ErrCodeDescriptorFailed:     http.StatusInternalServerError,
	ErrCodeStructureUnsupported: http.StatusBadRequest,

	ErrCodeRunNotFound:      http.StatusNotFound,
	ErrCodeHistoryDisabled:  http.StatusNotImplemented,
	ErrCodeRunPersistFailed: http.StatusInternalServerError,

	ErrCodeStorageFailed:  http.StatusBadGateway,
	ErrCodeObjectNotFound: http.StatusNotFound,
	ErrCodePublishFailed:  http.StatusBadGateway,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization error",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeFeatureDisabled:    "feature disabled",
	ErrCodePayloadTooLarge:    "payload too large",

	ErrCodeNoSmilesColumn: "No valid SMILES column found. Please ensure your CSV contains a column with SMILES strings.",
	ErrCodeColumnMissing:  "column not present in table",

	ErrCodeTableEmpty:        "table has no header row",
	ErrCodeTableMalformed:    "malformed tabular data",
	ErrCodeFormatUnsupported: "unsupported file format",
	ErrCodeTableTooLarge:     "table exceeds row limit",
	ErrCodeTableWriteFailed:  "failed to write table",

	ErrCodeInvalidSMILES:        "invalid SMILES",
	ErrCodeDescriptorFailed:     "descriptor computation failed",
	ErrCodeStructureUnsupported: "unsupported structure type",

	ErrCodeRunNotFound:      "analysis run not found",
	ErrCodeHistoryDisabled:  "analysis history is disabled",
	ErrCodeRunPersistFailed: "failed to persist analysis run",

	ErrCodeStorageFailed:  "object storage error",
	ErrCodeObjectNotFound: "object not found",
	ErrCodePublishFailed:  "failed to publish event",
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
	if len(parts) > 1 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}

//Personal.AI order the ending
