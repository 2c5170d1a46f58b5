package model

import "strings"

// AccountIdentity is the set of fields that identifies one ledger account. Only the
// fields of the identity's kind are meaningful.
type AccountIdentity struct {
	Kind           AccountKind
	CardNumber     string
	CardholderName string
	CardExpiry     string
	CVV            string
	Email          string
	Password       string
	AccountNumber  string
	BankCode       string
}

// CardIdentity identifies a credit card ledger account.
func CardIdentity(cardNumber, name, expiry, cvv string) AccountIdentity {
	return AccountIdentity{
		Kind:           AccountKindCard,
		CardNumber:     normalizeCardNumber(cardNumber),
		CardholderName: strings.TrimSpace(name),
		CardExpiry:     strings.TrimSpace(expiry),
		CVV:            strings.TrimSpace(cvv),
	}
}

// PayPalIdentity identifies a PayPal ledger account.
func PayPalIdentity(email, password string) AccountIdentity {
	return AccountIdentity{
		Kind:     AccountKindPayPal,
		Email:    strings.TrimSpace(email),
		Password: password,
	}
}

// BankIdentity identifies a bank ledger account.
func BankIdentity(accountNumber, bankCode string) AccountIdentity {
	return AccountIdentity{
		Kind:          AccountKindBank,
		AccountNumber: strings.TrimSpace(accountNumber),
		BankCode:      strings.TrimSpace(bankCode),
	}
}

// CentralIdentity identifies the platform clearing account.
func CentralIdentity() AccountIdentity {
	return AccountIdentity{Kind: AccountKindCentral}
}

// String renders the identity without secrets, for logs.
func (i AccountIdentity) String() string {
	switch i.Kind {
	case AccountKindCard:
		return "card " + MaskCardNumber(i.CardNumber)
	case AccountKindPayPal:
		return "paypal " + i.Email
	case AccountKindBank:
		return "bank " + i.BankCode + "/" + maskTail(i.AccountNumber)
	case AccountKindCentral:
		return "central"
	default:
		return "unknown"
	}
}

// MaskCardNumber masks a card number, showing only last 4 digits.
func MaskCardNumber(cardNumber string) string {
	cardNumber = normalizeCardNumber(cardNumber)
	if len(cardNumber) < 4 {
		return "****"
	}
	return "****" + cardNumber[len(cardNumber)-4:]
}

func maskTail(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func normalizeCardNumber(cardNumber string) string {
	return strings.ReplaceAll(strings.ReplaceAll(strings.TrimSpace(cardNumber), " ", ""), "-", "")
}
