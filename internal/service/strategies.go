package service

import "stayledger/internal/model"

// CreditCardStrategy settles from a card ledger account.
type CreditCardStrategy struct {
	instrument
}

// CreditCard builds a strategy for the card identified by number, holder name, expiry and CVV.
func (f *StrategyFactory) CreditCard(cardNumber, name, expiry, cvv string) *CreditCardStrategy {
	identity := model.CardIdentity(cardNumber, name, expiry, cvv)
	return &CreditCardStrategy{instrument: f.instrument(model.PaymentMethodCard, identity)}
}

// PayPalStrategy settles from a PayPal ledger account.
type PayPalStrategy struct {
	instrument
}

// PayPal builds a strategy for the PayPal account identified by email and password.
func (f *StrategyFactory) PayPal(email, password string) *PayPalStrategy {
	identity := model.PayPalIdentity(email, password)
	return &PayPalStrategy{instrument: f.instrument(model.PaymentMethodPayPal, identity)}
}

// BankTransferStrategy settles from a bank ledger account.
type BankTransferStrategy struct {
	instrument
}

// BankTransfer builds a strategy for the bank account identified by number and bank code.
func (f *StrategyFactory) BankTransfer(accountNumber, bankCode string) *BankTransferStrategy {
	identity := model.BankIdentity(accountNumber, bankCode)
	return &BankTransferStrategy{instrument: f.instrument(model.PaymentMethodBank, identity)}
}

var (
	_ Strategy = (*CreditCardStrategy)(nil)
	_ Strategy = (*PayPalStrategy)(nil)
	_ Strategy = (*BankTransferStrategy)(nil)
)
