package response

import "net/http"

// Generic codes (100xxx).
const (
	ErrSuccess int = iota + 100000
	ErrUnknown
	ErrBind
	ErrValidation
	ErrTokenInvalid
	ErrNotReady
)

// Authentication codes (101xxx).
const (
	ErrInvalidCredentials int = iota + 101000
	ErrSessionClosed
)

// Content store codes (105xxx).
const (
	ErrStoreUnavailable int = iota + 105000
	ErrSaveFailed
	ErrVersionConflict
	ErrRecordNotFound
)

var codeMessageMap = map[int]string{
	ErrSuccess:      "success",
	ErrUnknown:      "unknown error",
	ErrBind:         "invalid request parameters",
	ErrValidation:   "request validation failed",
	ErrTokenInvalid: "invalid or expired token",
	ErrNotReady:     "site content is still loading",

	ErrInvalidCredentials: "invalid username or password",
	ErrSessionClosed:      "session has been logged out",

	ErrStoreUnavailable: "content store is unavailable",
	ErrSaveFailed:       "content was applied locally but the store did not save it",
	ErrVersionConflict:  "content was changed by another session",
	ErrRecordNotFound:   "record not found",
}

var codeStatusMap = map[int]int{
	ErrSuccess:      http.StatusOK,
	ErrUnknown:      http.StatusInternalServerError,
	ErrBind:         http.StatusBadRequest,
	ErrValidation:   http.StatusBadRequest,
	ErrTokenInvalid: http.StatusUnauthorized,
	ErrNotReady:     http.StatusServiceUnavailable,

	ErrInvalidCredentials: http.StatusUnauthorized,
	ErrSessionClosed:      http.StatusUnauthorized,

	ErrStoreUnavailable: http.StatusBadGateway,
	ErrSaveFailed:       http.StatusBadGateway,
	ErrVersionConflict:  http.StatusConflict,
	ErrRecordNotFound:   http.StatusNotFound,
}

// GetMessage returns the default message of a code
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return codeMessageMap[ErrUnknown]
}

// GetStatus returns the HTTP status a code is answered with
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
