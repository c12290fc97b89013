package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wagglex2/waggle/pkg/httpx"
)

// Envelope codes.
const (
	CodeSuccess = "SUCCESS"

	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	CodeTooManyRequests  = httpx.CodeTooManyRequests
	CodeInternalError    = "INTERNAL_ERROR"

	CodeUnauthorized       = httpx.CodeUnauthorized
	CodeForbidden          = httpx.CodeForbidden
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUsernameTaken      = "DUPLICATED_USERNAME"

	CodeTokenExpired            = "TOKEN_EXPIRED"
	CodeRefreshTokenInvalid     = "REFRESH_TOKEN_INVALID"
	CodeRefreshTokenTypeInvalid = "REFRESH_TOKEN_TYPE_INVALID"
	CodeRefreshTokenNotFound    = "REFRESH_TOKEN_NOT_FOUND"
	CodeRefreshTokenMismatch    = "REFRESH_TOKEN_MISMATCH"
	CodeUserNotFound            = "USER_NOT_FOUND"

	CodeBootstrapDisabled     = "BOOTSTRAP_DISABLED"
	CodeBootstrapUnauthorized = "BOOTSTRAP_UNAUTHORIZED"
	CodeBootstrapCompleted    = "BOOTSTRAP_ALREADY_COMPLETED"
)

// APIError is a failed response. The server writes it with WriteError; the
// client returns it from every call that got a non-success status.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

// Is matches on Code, so a decoded error compares equal to the
// predefined value with the same code.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes e as an envelope.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteEnvelope(w, e.Status, e.Code, e.Message, nil)
}

// WithMessage returns a copy of e carrying msg.
func (e *APIError) WithMessage(msg string) *APIError {
	return &APIError{Status: e.Status, Code: e.Code, Message: msg}
}

var (
	ErrInvalidRequest = &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeInvalidRequest,
		Message: "the request is malformed or missing required fields",
	}
	ErrValidationFailed = &APIError{
		Status:  http.StatusBadRequest,
		Code:    CodeValidationFailed,
		Message: "request values are invalid",
	}
	ErrMethodNotAllowed = &APIError{
		Status:  http.StatusMethodNotAllowed,
		Code:    CodeMethodNotAllowed,
		Message: "method not allowed",
	}
	ErrInternal = &APIError{
		Status:  http.StatusInternalServerError,
		Code:    CodeInternalError,
		Message: "internal server error",
	}

	ErrUnauthorized = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeUnauthorized,
		Message: "authentication required",
	}
	ErrForbidden = &APIError{
		Status:  http.StatusForbidden,
		Code:    CodeForbidden,
		Message: "access denied",
	}
	ErrTooManyRequests = &APIError{
		Status:  http.StatusTooManyRequests,
		Code:    CodeTooManyRequests,
		Message: "rate limit exceeded",
	}

	// ErrInvalidCredentials does not say whether the username or the
	// password was wrong.
	ErrInvalidCredentials = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeInvalidCredentials,
		Message: "invalid username or password",
	}
	ErrUsernameTaken = &APIError{
		Status:  http.StatusConflict,
		Code:    CodeUsernameTaken,
		Message: "username is already in use",
	}

	ErrTokenExpired = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeTokenExpired,
		Message: "refresh token has expired",
	}
	ErrRefreshTokenInvalid = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeRefreshTokenInvalid,
		Message: "refresh token is invalid",
	}
	ErrRefreshTokenTypeInvalid = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeRefreshTokenTypeInvalid,
		Message: "presented token is not a refresh token",
	}
	ErrRefreshTokenNotFound = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeRefreshTokenNotFound,
		Message: "no refresh token or no live session",
	}
	ErrRefreshTokenMismatch = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeRefreshTokenMismatch,
		Message: "refresh token has been superseded",
	}
	ErrUserNotFound = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeUserNotFound,
		Message: "user no longer exists",
	}

	ErrBootstrapDisabled = &APIError{
		Status:  http.StatusNotFound,
		Code:    CodeBootstrapDisabled,
		Message: "bootstrap is not enabled",
	}
	ErrBootstrapUnauthorized = &APIError{
		Status:  http.StatusUnauthorized,
		Code:    CodeBootstrapUnauthorized,
		Message: "invalid bootstrap token",
	}
	ErrBootstrapCompleted = &APIError{
		Status:  http.StatusConflict,
		Code:    CodeBootstrapCompleted,
		Message: "service is already bootstrapped",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies
// that are not an envelope keep the status and get a generic code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var env rawEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Code != "" {
		return &APIError{Status: resp.StatusCode, Code: env.Code, Message: env.Message}
	}

	return &APIError{
		Status:  resp.StatusCode,
		Code:    CodeInternalError,
		Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
