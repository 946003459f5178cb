// Package apperror defines the error taxonomy surfaced by services and
// translated to HTTP responses by the handlers.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeValidation            Code = "VALIDATION_ERROR"
	CodeNotFoundOrForbidden   Code = "NOT_FOUND_OR_FORBIDDEN"
	CodeDuplicateRating       Code = "DUPLICATE_RATING"
	CodeDuplicateOrder        Code = "DUPLICATE_ORDER"
	CodeNotEligible           Code = "NOT_ELIGIBLE"
	CodeProductNotFound       Code = "PRODUCT_NOT_FOUND"
	CodeInvalidAmount         Code = "INVALID_AMOUNT"
	CodePaymentGateway        Code = "PAYMENT_GATEWAY_ERROR"
	CodeOrderCreation         Code = "ORDER_CREATION_ERROR"
	CodeSignatureVerification Code = "SIGNATURE_VERIFICATION_ERROR"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeInternal              Code = "INTERNAL_ERROR"
)

// AppError carries a taxonomy code, a message safe to show the caller, and
// the underlying cause.
type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the code to a status. Eligibility failures are 400 because
// they are business-rule rejections of well-formed input.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation, CodeNotEligible, CodeProductNotFound, CodeInvalidAmount, CodeSignatureVerification:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFoundOrForbidden:
		return http.StatusNotFound
	case CodeDuplicateRating, CodeDuplicateOrder:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

func NotFoundOrForbidden(message string) *AppError {
	return New(CodeNotFoundOrForbidden, message)
}

func DuplicateRating(message string) *AppError {
	return New(CodeDuplicateRating, message)
}

// NotEligible reports a failed business gate; reason is shown to the user.
func NotEligible(reason string) *AppError {
	return New(CodeNotEligible, reason)
}

func ProductNotFound(productID string) *AppError {
	return New(CodeProductNotFound, fmt.Sprintf("product %s not found", productID))
}

func InvalidAmount(amount int64) *AppError {
	return New(CodeInvalidAmount, fmt.Sprintf("order amount must be positive, got %d", amount))
}

func PaymentGateway(err error) *AppError {
	return Wrap(err, CodePaymentGateway, "payment session could not be created")
}

func OrderCreation(err error) *AppError {
	return Wrap(err, CodeOrderCreation, "order could not be created")
}

func SignatureVerification(err error) *AppError {
	return Wrap(err, CodeSignatureVerification, "webhook signature verification failed")
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message)
}

func Internal(err error) *AppError {
	return Wrap(err, CodeInternal, "internal server error")
}

// As returns the AppError in err's chain, if any.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
