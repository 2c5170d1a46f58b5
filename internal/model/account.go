package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountKind identifies which dummy ledger an account belongs to.
type AccountKind string

const (
	AccountKindCentral AccountKind = "central"
	AccountKindCard    AccountKind = "card"
	AccountKindPayPal  AccountKind = "paypal"
	AccountKindBank    AccountKind = "bank"
)

// LedgerAccount is one row of the simulated ledgers. Only the identity columns of its
// kind are populated; secrets (CVV, PayPal password) are stored as bcrypt hashes.
type LedgerAccount struct {
	ID             uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Kind           AccountKind     `json:"kind" gorm:"type:varchar(16);not null;index:idx_ledger_card,priority:1;index:idx_ledger_paypal,priority:1;index:idx_ledger_bank,priority:1"`
	CardNumber     string          `json:"-" gorm:"size:19;index:idx_ledger_card,priority:2"`
	CardholderName string          `json:"-" gorm:"size:255"`
	CardExpiry     string          `json:"-" gorm:"size:5"` // MM/YY format
	CVVHash        string          `json:"-" gorm:"size:255"`
	Email          string          `json:"-" gorm:"size:255;index:idx_ledger_paypal,priority:2"`
	PasswordHash   string          `json:"-" gorm:"size:255"` // Never expose in JSON
	AccountNumber  string          `json:"-" gorm:"size:34;index:idx_ledger_bank,priority:2"`
	BankCode       string          `json:"-" gorm:"size:16"`
	Balance        decimal.Decimal `json:"balance" gorm:"type:decimal(20,2);not null;default:0"`
	OpeningBalance decimal.Decimal `json:"opening_balance" gorm:"type:decimal(20,2);not null;default:0"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (a *LedgerAccount) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
