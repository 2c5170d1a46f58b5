package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// paymentTransitions lists, per state, the states a payment may move to.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusSuccess, PaymentStatusFailed},
	PaymentStatusSuccess: {PaymentStatusRefunded},
}

// CanTransition reports whether a payment may move from one status to another.
func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s PaymentStatus) Terminal() bool {
	return len(paymentTransitions[s]) == 0
}

// PaymentMethod is the instrument a payment was settled with.
type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodPayPal PaymentMethod = "paypal"
	PaymentMethodBank   PaymentMethod = "bank"
)

// AccountKind returns the ledger that backs the method.
func (m PaymentMethod) AccountKind() AccountKind {
	switch m {
	case PaymentMethodCard:
		return AccountKindCard
	case PaymentMethodPayPal:
		return AccountKindPayPal
	case PaymentMethodBank:
		return AccountKindBank
	default:
		return ""
	}
}

// Payment tracks one booking payment from creation to refund.
type Payment struct {
	PaymentID     string          `json:"payment_id" gorm:"size:64;primaryKey"`
	BookingID     string          `json:"booking_id" gorm:"size:64;not null;index"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Method        PaymentMethod   `json:"method" gorm:"type:varchar(16);not null"`
	Status        PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	FailureReason string          `json:"failure_reason,omitempty" gorm:"type:text"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`
	RefundedAt    *time.Time      `json:"refunded_at,omitempty"`
}
