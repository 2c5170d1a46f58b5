package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// EntryDirection tells whether an entry added to or removed from a balance.
type EntryDirection string

const (
	EntryDebit  EntryDirection = "debit"
	EntryCredit EntryDirection = "credit"
)

// LedgerEntry is one balance movement. Entries are written in the same database
// transaction as the balance change they describe.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	PaymentID    string          `json:"payment_id" gorm:"size:64;not null;index"`
	AccountID    uuid.UUID       `json:"account_id" gorm:"type:char(36);not null;index"`
	Kind         AccountKind     `json:"kind" gorm:"type:varchar(16);not null"`
	Direction    EntryDirection  `json:"direction" gorm:"type:varchar(8);not null"`
	Amount       decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	BalanceAfter decimal.Decimal `json:"balance_after" gorm:"type:decimal(20,2);not null"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (e *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Signed returns the entry amount as a balance delta.
func (e LedgerEntry) Signed() decimal.Decimal {
	if e.Direction == EntryDebit {
		return e.Amount.Neg()
	}
	return e.Amount
}
