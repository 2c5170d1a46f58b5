package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrCredentialsInvalid is returned when no ledger account matches the supplied credentials.
	ErrCredentialsInvalid = errors.New("invalid payment credentials")
	// ErrInsufficientFunds is returned when an account balance cannot cover a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrLedgerUpdateFailed is returned when a balance adjustment did not apply.
	ErrLedgerUpdateFailed = errors.New("ledger update failed")
	// ErrInvalidStateTransition is returned when a payment is not in the state an operation requires.
	ErrInvalidStateTransition = errors.New("invalid payment state transition")
	// ErrAccountNotFound is returned when a ledger account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrPaymentNotFound is returned when a payment record is not found.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrDuplicatePayment is returned when a payment id is already taken.
	ErrDuplicatePayment = errors.New("payment already exists")
	// ErrInvalidAmount is returned when amount is invalid.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrBookingNotFound is returned when a booking is not found.
	ErrBookingNotFound = errors.New("booking not found")
	// ErrUnsupportedMethod is returned for an unknown payment method.
	ErrUnsupportedMethod = errors.New("unsupported payment method")
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrCredentialsInvalid):
		return NewHTTPError(http.StatusPaymentRequired, ErrCredentialsInvalid.Error(), "CREDENTIALS_INVALID")
	case errors.Is(err, ErrInsufficientFunds):
		return NewHTTPError(http.StatusPaymentRequired, ErrInsufficientFunds.Error(), "INSUFFICIENT_FUNDS")
	case errors.Is(err, ErrLedgerUpdateFailed):
		return NewHTTPError(http.StatusConflict, ErrLedgerUpdateFailed.Error(), "LEDGER_UPDATE_FAILED")
	case errors.Is(err, ErrInvalidStateTransition):
		return NewHTTPError(http.StatusConflict, ErrInvalidStateTransition.Error(), "INVALID_STATE_TRANSITION")
	case errors.Is(err, ErrAccountNotFound):
		return NewHTTPError(http.StatusNotFound, ErrAccountNotFound.Error(), "ACCOUNT_NOT_FOUND")
	case errors.Is(err, ErrPaymentNotFound):
		return NewHTTPError(http.StatusNotFound, ErrPaymentNotFound.Error(), "PAYMENT_NOT_FOUND")
	case errors.Is(err, ErrBookingNotFound):
		return NewHTTPError(http.StatusNotFound, ErrBookingNotFound.Error(), "BOOKING_NOT_FOUND")
	case errors.Is(err, ErrDuplicatePayment):
		return NewHTTPError(http.StatusConflict, ErrDuplicatePayment.Error(), "DUPLICATE_PAYMENT")
	case errors.Is(err, ErrInvalidAmount):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidAmount.Error(), "INVALID_AMOUNT")
	case errors.Is(err, ErrUnsupportedMethod):
		return NewHTTPError(http.StatusBadRequest, ErrUnsupportedMethod.Error(), "UNSUPPORTED_METHOD")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
