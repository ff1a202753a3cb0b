package models

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidToken      ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired      ErrorCode = "TOKEN_EXPIRED"
	CodeTokenAlreadyUsed  ErrorCode = "TOKEN_ALREADY_USED"
	CodeCampaignNotActive ErrorCode = "CAMPAIGN_NOT_ACTIVE"
	CodeDeviceMismatch    ErrorCode = "DEVICE_MISMATCH"
	CodeAlreadySubmitted  ErrorCode = "ALREADY_SUBMITTED"
	CodeInvalidSession    ErrorCode = "INVALID_SESSION"
	CodeInvalidAnswer     ErrorCode = "INVALID_ANSWER"
	CodeUnscopedQuery     ErrorCode = "UNSCOPED_QUERY"
	CodeForbidden         ErrorCode = "FORBIDDEN"
	CodeNotFound          ErrorCode = "NOT_FOUND"
	CodeConflict          ErrorCode = "CONFLICT"
)

// CoreError is the typed error every operation returns to its caller.
// Two CoreErrors match under errors.Is when their codes are equal.
type CoreError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CoreError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	return ok && t.Code == e.Code
}

func NewError(code ErrorCode, format string, args ...interface{}) *CoreError {
	return &CoreError{Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidToken      = &CoreError{Code: CodeInvalidToken, Message: "survey token is not recognised"}
	ErrTokenExpired      = &CoreError{Code: CodeTokenExpired, Message: "survey token has expired"}
	ErrTokenAlreadyUsed  = &CoreError{Code: CodeTokenAlreadyUsed, Message: "survey token has no uses left"}
	ErrCampaignNotActive = &CoreError{Code: CodeCampaignNotActive, Message: "campaign is not collecting responses"}
	ErrDeviceMismatch    = &CoreError{Code: CodeDeviceMismatch, Message: "token is bound to another device"}
	ErrAlreadySubmitted  = &CoreError{Code: CodeAlreadySubmitted, Message: "survey has already been submitted"}
	ErrInvalidSession    = &CoreError{Code: CodeInvalidSession, Message: "no active survey session"}
	ErrUnscopedQuery     = &CoreError{Code: CodeUnscopedQuery, Message: "query has no tenant scope"}
	ErrForbidden         = &CoreError{Code: CodeForbidden, Message: "resource belongs to another tenant"}
	ErrNotFound          = &CoreError{Code: CodeNotFound, Message: "resource not found"}
)

// CodeOf extracts the error code, if err wraps a CoreError.
func CodeOf(err error) (ErrorCode, bool) {
	var ce *CoreError
	if errors.As(err, &ce) {
		return ce.Code, true
	}
	return "", false
}
