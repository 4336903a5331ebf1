package market

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrCode string

const (
	CodeValidation   ErrCode = "validation_error"
	CodeNotFound     ErrCode = "product_not_found"
	CodeUnavailable  ErrCode = "product_unavailable"
	CodeSelfPurchase ErrCode = "self_purchase_forbidden"
	CodeForbidden    ErrCode = "forbidden"
	CodeUnauthorized ErrCode = "unauthorized"
	CodeInternal     ErrCode = "internal_error"
)

// Error membawa taxonomy domain + detail per item (untuk batch checkout).
// Semua error di coordinator recoverable; mapping ke HTTP ada di HTTPStatus.
type Error struct {
	Code    ErrCode
	Message string
	Details []string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is cocok kalau target adalah *Error dengan Code sama.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnavailable:
		return http.StatusConflict
	case CodeSelfPurchase, CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func NewError(code ErrCode, msg string, details ...string) *Error {
	return &Error{Code: code, Message: msg, Details: details}
}

func WrapInternal(err error, msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg, Err: err}
}

// Sentinels untuk errors.Is di caller.
var (
	ErrProductNotFound    = &Error{Code: CodeNotFound, Message: "product not found"}
	ErrProductUnavailable = &Error{Code: CodeUnavailable, Message: "product no longer available"}
	ErrSelfPurchase       = &Error{Code: CodeSelfPurchase, Message: "cannot purchase your own product"}
)
