package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes, shared by every module.
const (
	CodeUnknown            ErrorCode = "COMMON_000"
	CodeInternal           ErrorCode = "COMMON_001"
	CodeInvalidParam       ErrorCode = "COMMON_002"
	CodeUnauthorized       ErrorCode = "COMMON_003"
	CodeForbidden          ErrorCode = "COMMON_004"
	CodeNotFound           ErrorCode = "COMMON_005"
	CodeConflict           ErrorCode = "COMMON_006"
	CodeRateLimit          ErrorCode = "COMMON_007"
	CodeServiceUnavailable ErrorCode = "COMMON_008"
	CodeTimeout            ErrorCode = "COMMON_009"
	CodeValidation         ErrorCode = "COMMON_010"
	CodeSerialization      ErrorCode = "COMMON_011"
	CodeDatabaseError      ErrorCode = "COMMON_012"
	CodeCacheError         ErrorCode = "COMMON_013"
	CodeExternalService    ErrorCode = "COMMON_014"
	CodeInvalidState       ErrorCode = "COMMON_015"
)

// Task module error codes.
const (
	CodeTaskNotFound      ErrorCode = "TASK_001"
	CodeTaskInvalidStatus ErrorCode = "TASK_002"
	CodeTaskAlreadyClosed ErrorCode = "TASK_003"
)

// Issue module error codes.
const (
	CodeIssueNotFound      ErrorCode = "ISS_001"
	CodeIssueInvalidStatus ErrorCode = "ISS_002"
	CodeIssueAlreadyClosed ErrorCode = "ISS_003"
)

// Project module error codes.
const (
	CodeProjectNotFound   ErrorCode = "PROJ_001"
	CodeNotProjectMember  ErrorCode = "PROJ_002"
	CodeDuplicateMember   ErrorCode = "PROJ_003"
	CodeProjectCodeExists ErrorCode = "PROJ_004"
)

// User module error codes.
const (
	CodeUserNotFound       ErrorCode = "USER_001"
	CodeInvalidCredentials ErrorCode = "USER_002"
	CodeEmailExists        ErrorCode = "USER_003"
)

// Notification module error codes.
const (
	CodeNotificationNotFound ErrorCode = "NTF_001"
	CodeDeliveryFailed       ErrorCode = "NTF_002"
	CodeChannelUnsupported   ErrorCode = "NTF_003"
)

// Document module error codes.
const (
	CodeDocumentNotFound ErrorCode = "DOC_001"
	CodeStorageError     ErrorCode = "DOC_002"
)

// Calendar module error codes.
const (
	CodeEventNotFound    ErrorCode = "CAL_001"
	CodeEventInvalidTime ErrorCode = "CAL_002"
)

// Permission module error codes.
const (
	CodeMatrixNotFound   ErrorCode = "PERM_001"
	CodeUnknownRole      ErrorCode = "PERM_002"
	CodePermissionDenied ErrorCode = "PERM_003"
)

// Auth error codes.
const (
	CodeTokenInvalid ErrorCode = "AUTH_001"
	CodeTokenExpired ErrorCode = "AUTH_002"
)

// httpStatusByCode maps every error code to the HTTP status the REST layer
// should answer with. Codes absent from the map default to 500.
var httpStatusByCode = map[ErrorCode]int{
	CodeInvalidParam:       http.StatusBadRequest,
	CodeValidation:         http.StatusBadRequest,
	CodeSerialization:      http.StatusBadRequest,
	CodeEventInvalidTime:   http.StatusBadRequest,
	CodeTaskInvalidStatus:  http.StatusBadRequest,
	CodeIssueInvalidStatus: http.StatusBadRequest,
	CodeUnknownRole:        http.StatusBadRequest,

	CodeUnauthorized:       http.StatusUnauthorized,
	CodeTokenInvalid:       http.StatusUnauthorized,
	CodeTokenExpired:       http.StatusUnauthorized,
	CodeInvalidCredentials: http.StatusUnauthorized,

	CodeForbidden:        http.StatusForbidden,
	CodeNotProjectMember: http.StatusForbidden,
	CodePermissionDenied: http.StatusForbidden,

	CodeNotFound:             http.StatusNotFound,
	CodeTaskNotFound:         http.StatusNotFound,
	CodeIssueNotFound:        http.StatusNotFound,
	CodeProjectNotFound:      http.StatusNotFound,
	CodeUserNotFound:         http.StatusNotFound,
	CodeNotificationNotFound: http.StatusNotFound,
	CodeDocumentNotFound:     http.StatusNotFound,
	CodeEventNotFound:        http.StatusNotFound,
	CodeMatrixNotFound:       http.StatusNotFound,

	CodeConflict:           http.StatusConflict,
	CodeTaskAlreadyClosed:  http.StatusConflict,
	CodeIssueAlreadyClosed: http.StatusConflict,
	CodeDuplicateMember:    http.StatusConflict,
	CodeProjectCodeExists:  http.StatusConflict,
	CodeEmailExists:        http.StatusConflict,
	CodeInvalidState:       http.StatusConflict,

	CodeRateLimit:          http.StatusTooManyRequests,
	CodeTimeout:            http.StatusGatewayTimeout,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
}

// HTTPStatus returns the HTTP status code associated with c.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}
