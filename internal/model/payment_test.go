package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPaymentStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		want     bool
	}{
		{PaymentStatusPending, PaymentStatusSuccess, true},
		{PaymentStatusPending, PaymentStatusFailed, true},
		{PaymentStatusSuccess, PaymentStatusRefunded, true},
		{PaymentStatusPending, PaymentStatusRefunded, false},
		{PaymentStatusFailed, PaymentStatusRefunded, false},
		{PaymentStatusFailed, PaymentStatusSuccess, false},
		{PaymentStatusRefunded, PaymentStatusSuccess, false},
		{PaymentStatusSuccess, PaymentStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestPaymentStatus_Terminal(t *testing.T) {
	assert.True(t, PaymentStatusFailed.Terminal())
	assert.True(t, PaymentStatusRefunded.Terminal())
	assert.False(t, PaymentStatusPending.Terminal())
	assert.False(t, PaymentStatusSuccess.Terminal())
}

func TestBooking_Total(t *testing.T) {
	b := Booking{
		CheckIn:       time.Date(2026, 7, 1, 15, 0, 0, 0, time.UTC),
		CheckOut:      time.Date(2026, 7, 4, 11, 0, 0, 0, time.UTC),
		PricePerNight: decimal.RequireFromString("120.50"),
	}

	assert.Equal(t, 3, b.Nights())
	assert.True(t, b.Total().Equal(decimal.RequireFromString("361.50")))
}

func TestLedgerEntry_Signed(t *testing.T) {
	debit := LedgerEntry{Direction: EntryDebit, Amount: decimal.NewFromInt(40)}
	credit := LedgerEntry{Direction: EntryCredit, Amount: decimal.NewFromInt(40)}

	assert.True(t, debit.Signed().Equal(decimal.NewFromInt(-40)))
	assert.True(t, credit.Signed().Equal(decimal.NewFromInt(40)))
}
