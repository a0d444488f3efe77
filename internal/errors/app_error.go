package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	// RedirectTo is the page a client should send the user to, if any.
	RedirectTo string
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

func (e *AppError) WithRedirect(path string) *AppError {
	e.RedirectTo = path

	return e
}

const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeDuplicateEntry    = "DUPLICATE_ENTRY"
	ErrCodeThirdPartyError   = "THIRD_PARTY_ERROR"
	ErrCodeTooManyRequests   = "TOO_MANY_REQUESTS"
	ErrCodeResourceExhausted = "RESOURCE_EXHAUSTED"

	// cart and checkout
	ErrCodeConflict          = "CONFLICT"
	ErrCodeOutOfStock        = "OUT_OF_STOCK"
	ErrCodeNotInCart         = "NOT_IN_CART"
	ErrCodeCartEmpty         = "CART_EMPTY"
	ErrCodeNoShippingAddress = "NO_SHIPPING_ADDRESS"
	ErrCodeNoPaymentMethod   = "NO_PAYMENT_METHOD"

	// payment lifecycle
	ErrCodeAlreadyPaid               = "ALREADY_PAID"
	ErrCodeNotYetPaid                = "NOT_YET_PAID"
	ErrCodeAlreadyDelivered          = "ALREADY_DELIVERED"
	ErrCodePaymentVerificationFailed = "PAYMENT_VERIFICATION_FAILED"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func DuplicateEntryError(message string) *AppError {
	return NewAppError(ErrCodeDuplicateEntry, message, http.StatusConflict)
}

func ThirdPartyError(message string) *AppError {
	return NewAppError(ErrCodeThirdPartyError, message, http.StatusInternalServerError)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(ErrCodeTooManyRequests, message, http.StatusTooManyRequests)
}

func ResourceExhaustedError(message string) *AppError {
	return NewAppError(ErrCodeResourceExhausted, message, http.StatusTooManyRequests)
}

func ConflictError(message string) *AppError {
	return NewAppError(ErrCodeConflict, message, http.StatusConflict)
}

func OutOfStockError(productName string) *AppError {
	return NewAppError(ErrCodeOutOfStock, fmt.Sprintf("%s does not have enough stock.", productName), http.StatusConflict)
}

func NotInCartError(productName string) *AppError {
	return NewAppError(ErrCodeNotInCart, fmt.Sprintf("%s is not in cart.", productName), http.StatusNotFound)
}

func CartEmptyError() *AppError {
	return NewAppError(ErrCodeCartEmpty, "Your cart is empty", http.StatusBadRequest).WithRedirect("/cart")
}

func NoShippingAddressError() *AppError {
	return NewAppError(ErrCodeNoShippingAddress, "No shipping address", http.StatusBadRequest).WithRedirect("/shipping-address")
}

func NoPaymentMethodError() *AppError {
	return NewAppError(ErrCodeNoPaymentMethod, "No payment method", http.StatusBadRequest).WithRedirect("/payment-method")
}

func AlreadyPaidError() *AppError {
	return NewAppError(ErrCodeAlreadyPaid, "Order is already paid", http.StatusConflict)
}

func NotYetPaidError() *AppError {
	return NewAppError(ErrCodeNotYetPaid, "Order is not paid", http.StatusConflict)
}

func AlreadyDeliveredError() *AppError {
	return NewAppError(ErrCodeAlreadyDelivered, "Order is already delivered", http.StatusConflict)
}

func PaymentVerificationFailedError() *AppError {
	return NewAppError(ErrCodePaymentVerificationFailed, "Payment could not be verified", http.StatusBadRequest)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	appErr, ok := IsAppError(err)

	return ok && appErr.Code == code
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
