package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"credentials", ErrCredentialsInvalid, http.StatusPaymentRequired, "CREDENTIALS_INVALID"},
		{"funds wrapped", fmt.Errorf("debit: %w", ErrInsufficientFunds), http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"},
		{"state", ErrInvalidStateTransition, http.StatusConflict, "INVALID_STATE_TRANSITION"},
		{"payment missing", ErrPaymentNotFound, http.StatusNotFound, "PAYMENT_NOT_FOUND"},
		{"amount", ErrInvalidAmount, http.StatusBadRequest, "INVALID_AMOUNT"},
		{"unknown", fmt.Errorf("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantCode, httpErr.ToErrorResponse().Code)
		})
	}
}

func TestMapErrorToHTTP_HidesInternalDetails(t *testing.T) {
	httpErr := MapErrorToHTTP(fmt.Errorf("dial tcp 10.0.0.5:3306: refused"))
	assert.Equal(t, "internal server error", httpErr.Error())
}
