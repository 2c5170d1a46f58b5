package service

import (
	"regexp"
	"strings"

	"stayledger/internal/errors"
	"stayledger/internal/model"
)

var (
	cardNumberRegex    = regexp.MustCompile(`^\d{13,19}$`)
	expiryRegex        = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvRegex           = regexp.MustCompile(`^\d{3,4}$`)
	emailRegex         = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	accountNumberRegex = regexp.MustCompile(`^[0-9A-Z]{6,34}$`)
	bankCodeRegex      = regexp.MustCompile(`^[0-9A-Z]{2,16}$`)
)

// CredentialValidator rejects credentials that cannot match any ledger account before
// the store is queried. It checks shape only: the dummy ledgers carry test card numbers
// that are not Luhn-valid and expiry dates in the past.
type CredentialValidator struct{}

// NewCredentialValidator creates a new credential validator.
func NewCredentialValidator() *CredentialValidator {
	return &CredentialValidator{}
}

// Validate checks the identity fields of its kind.
func (v *CredentialValidator) Validate(identity model.AccountIdentity) error {
	switch identity.Kind {
	case model.AccountKindCard:
		return v.ValidateCard(identity.CardNumber, identity.CardholderName, identity.CardExpiry, identity.CVV)
	case model.AccountKindPayPal:
		return v.ValidatePayPal(identity.Email, identity.Password)
	case model.AccountKindBank:
		return v.ValidateBank(identity.AccountNumber, identity.BankCode)
	default:
		return errors.ErrUnsupportedMethod
	}
}

// ValidateCard validates card number, holder name, expiry, and CVV.
func (v *CredentialValidator) ValidateCard(cardNumber, name, expiry, cvv string) error {
	if !cardNumberRegex.MatchString(cardNumber) {
		return errors.ErrCredentialsInvalid
	}
	if strings.TrimSpace(name) == "" {
		return errors.ErrCredentialsInvalid
	}
	if !expiryRegex.MatchString(expiry) {
		return errors.ErrCredentialsInvalid
	}
	if !cvvRegex.MatchString(cvv) {
		return errors.ErrCredentialsInvalid
	}
	return nil
}

// ValidatePayPal validates a PayPal email and password pair.
func (v *CredentialValidator) ValidatePayPal(email, password string) error {
	if !emailRegex.MatchString(email) || password == "" {
		return errors.ErrCredentialsInvalid
	}
	return nil
}

// ValidateBank validates a bank account number and bank code.
func (v *CredentialValidator) ValidateBank(accountNumber, bankCode string) error {
	if !accountNumberRegex.MatchString(accountNumber) || !bankCodeRegex.MatchString(bankCode) {
		return errors.ErrCredentialsInvalid
	}
	return nil
}
