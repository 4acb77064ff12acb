package pkgerrors

import (
	"errors"
	"fmt"
)

const (
	CodeMalformedPayload   = -2001
	CodeInvalidSignature   = -2002
	CodeOrderNotFound      = -2101
	CodeAmountMismatch     = -2102
	CodeShopIDMismatch     = -2103
	CodeAlreadySettled     = -2104
	CodeUnhandledState     = -2201
	CodePersistenceFailure = -2301
	CodeUnknown            = -9999
)

type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Code so wrapped instances compare equal to the sentinels below.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

var (
	ErrMalformedPayload   = &AppError{Code: CodeMalformedPayload, Message: "malformed payload"}
	ErrInvalidSignature   = &AppError{Code: CodeInvalidSignature, Message: "invalid signature"}
	ErrOrderNotFound      = &AppError{Code: CodeOrderNotFound, Message: "no corresponding order"}
	ErrAmountMismatch     = &AppError{Code: CodeAmountMismatch, Message: "order total and amount don't match"}
	ErrShopIDMismatch     = &AppError{Code: CodeShopIDMismatch, Message: "shop id doesn't match"}
	ErrAlreadySettled     = &AppError{Code: CodeAlreadySettled, Message: "transaction already paid / expired"}
	ErrUnhandledState     = &AppError{Code: CodeUnhandledState, Message: "not able to handle state"}
	ErrPersistenceFailure = &AppError{Code: CodePersistenceFailure, Message: "datastore failure"}
)

func NewMalformedPayloadError(err error) *AppError {
	return &AppError{
		Code:    CodeMalformedPayload,
		Message: "malformed payload",
		Err:     err,
	}
}

func NewInvalidSignatureError(err error) *AppError {
	return &AppError{
		Code:    CodeInvalidSignature,
		Message: "invalid signature",
		Err:     err,
	}
}

func NewOrderNotFoundError(matches int) *AppError {
	return &AppError{
		Code:    CodeOrderNotFound,
		Message: "no corresponding order",
		Err:     fmt.Errorf("%d matching orders", matches),
	}
}

func NewPersistenceError(err error) *AppError {
	return &AppError{
		Code:    CodePersistenceFailure,
		Message: "datastore failure",
		Err:     err,
	}
}

func IsMalformedPayloadError(err error) bool {
	return GetErrorCode(err) == CodeMalformedPayload
}

func IsInvalidSignatureError(err error) bool {
	return GetErrorCode(err) == CodeInvalidSignature
}

func IsAlreadySettledError(err error) bool {
	return GetErrorCode(err) == CodeAlreadySettled
}

func IsPersistenceError(err error) bool {
	return GetErrorCode(err) == CodePersistenceFailure
}

func GetErrorCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

type Disposition int

const (
	DispositionAccepted Disposition = iota
	// rejected after authentication; acknowledged so the provider stops retrying
	DispositionRejected
	// rejected before authentication
	DispositionRefused
	// nothing was persisted; the provider should re-deliver
	DispositionRetry
)

func GetDisposition(err error) Disposition {
	if err == nil {
		return DispositionAccepted
	}
	switch GetErrorCode(err) {
	case CodeMalformedPayload, CodeInvalidSignature:
		return DispositionRefused
	case CodeOrderNotFound, CodeAmountMismatch, CodeShopIDMismatch, CodeAlreadySettled, CodeUnhandledState:
		return DispositionRejected
	default:
		return DispositionRetry
	}
}

func (d Disposition) String() string {
	switch d {
	case DispositionAccepted:
		return "accepted"
	case DispositionRejected:
		return "rejected"
	case DispositionRefused:
		return "refused"
	default:
		return "retry"
	}
}
