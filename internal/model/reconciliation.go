package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReconciliationReport summarises one reconciliation run.
type ReconciliationReport struct {
	ID                  uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	AccountsChecked     int       `json:"accounts_checked"`
	MismatchedAccounts  int       `json:"mismatched_accounts"`
	StalePaymentsFailed int       `json:"stale_payments_failed"`
	Details             string    `json:"details,omitempty" gorm:"type:text"`
	CreatedAt           time.Time `json:"created_at" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (r *ReconciliationReport) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Clean reports whether the run found nothing to fix.
func (r *ReconciliationReport) Clean() bool {
	return r.MismatchedAccounts == 0 && r.StalePaymentsFailed == 0
}
