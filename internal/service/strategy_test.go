package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stayledger/internal/errors"
	"stayledger/internal/model"
	"stayledger/internal/repository"
	"stayledger/internal/testdb"
)

func TestStrategy_ProcessPaymentMovesFunds(t *testing.T) {
	db := testdb.Open(t)
	ledger := repository.NewLedgerRepository(db)
	factory := NewStrategyFactory(ledger, repository.NewTxManager(db), zap.NewNop())
	ctx := context.Background()

	central := testdb.SeedCentral(t, db, "0")
	paypal := testdb.SeedPayPal(t, db, "user2@example.com", "password456", "2500")

	strategy := factory.PayPal("user2@example.com", "password456")
	assert.Equal(t, model.PaymentMethodPayPal, strategy.Method())
	assert.True(t, strategy.VerifyCredentials(ctx))

	require.NoError(t, strategy.ProcessPayment(ctx, "pay-1", dec("500")))
	assert.True(t, testdb.Balance(t, db, paypal).Equal(dec("2000")))
	assert.True(t, testdb.Balance(t, db, central).Equal(dec("500")))

	entries, err := ledger.ListEntries(ctx, paypal.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntryDebit, entries[0].Direction)

	entries, err = ledger.ListEntries(ctx, central.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntryCredit, entries[0].Direction)
}

func TestStrategy_ProcessPaymentFailures(t *testing.T) {
	db := testdb.Open(t)
	factory := NewStrategyFactory(repository.NewLedgerRepository(db), repository.NewTxManager(db), zap.NewNop())
	ctx := context.Background()

	central := testdb.SeedCentral(t, db, "0")
	card := testdb.SeedCard(t, db, "1234567890123456", "John Doe", "12/25", "123", "100")

	tests := []struct {
		name     string
		strategy Strategy
		amount   string
		wantErr  error
	}{
		{"insufficient funds", factory.CreditCard("1234567890123456", "John Doe", "12/25", "123"), "250", errors.ErrInsufficientFunds},
		{"wrong cvv", factory.CreditCard("1234567890123456", "John Doe", "12/25", "999"), "10", errors.ErrCredentialsInvalid},
		{"malformed card", factory.CreditCard("1234", "John Doe", "12/25", "123"), "10", errors.ErrCredentialsInvalid},
		{"zero amount", factory.CreditCard("1234567890123456", "John Doe", "12/25", "123"), "0", errors.ErrInvalidAmount},
		{"unknown bank", factory.BankTransfer("999999999999", "BANK9"), "10", errors.ErrCredentialsInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.strategy.ProcessPayment(ctx, "pay-1", dec(tt.amount))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.True(t, testdb.Balance(t, db, card).Equal(dec("100")))
	assert.True(t, testdb.Balance(t, db, central).Equal(dec("0")))
}

func TestStrategy_MissingCentralRollsBackDebit(t *testing.T) {
	db := testdb.Open(t)
	factory := NewStrategyFactory(repository.NewLedgerRepository(db), repository.NewTxManager(db), zap.NewNop())
	ctx := context.Background()

	bank := testdb.SeedBank(t, db, "111122223333", "BANK1", "3000")

	err := factory.BankTransfer("111122223333", "BANK1").ProcessPayment(ctx, "pay-1", dec("100"))
	assert.ErrorIs(t, err, errors.ErrLedgerUpdateFailed)
	assert.True(t, testdb.Balance(t, db, bank).Equal(dec("3000")))
}

func TestStrategyFactory_New(t *testing.T) {
	factory := NewStrategyFactory(nil, nil, zap.NewNop())

	s, err := factory.New(model.PaymentMethodBank, Credentials{AccountNumber: "111122223333", BankCode: "bank1"})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentMethodBank, s.Method())
	assert.Equal(t, "bank1", s.Identity().BankCode)

	s, err = factory.New(model.PaymentMethodCard, Credentials{CardNumber: "1234-5678-9012-3456", CardholderName: "John Doe", CardExpiry: "12/25", CVV: "123"})
	require.NoError(t, err)
	assert.Equal(t, "1234567890123456", s.Identity().CardNumber)

	_, err = factory.New("crypto", Credentials{})
	assert.ErrorIs(t, err, errors.ErrUnsupportedMethod)
}

func TestCredentialValidator(t *testing.T) {
	v := NewCredentialValidator()

	tests := []struct {
		name     string
		identity model.AccountIdentity
		wantErr  bool
	}{
		{"valid card", model.CardIdentity("1234567890123456", "John Doe", "12/25", "123"), false},
		{"expired card shape is fine", model.CardIdentity("9876543210987654", "Jane Smith", "06/24", "456"), false},
		{"short card", model.CardIdentity("123456", "John Doe", "12/25", "123"), true},
		{"bad month", model.CardIdentity("1234567890123456", "John Doe", "13/25", "123"), true},
		{"bad cvv", model.CardIdentity("1234567890123456", "John Doe", "12/25", "12"), true},
		{"no holder", model.CardIdentity("1234567890123456", " ", "12/25", "123"), true},
		{"valid paypal", model.PayPalIdentity("user1@example.com", "password123"), false},
		{"paypal bad email", model.PayPalIdentity("user1", "password123"), true},
		{"paypal empty password", model.PayPalIdentity("user1@example.com", ""), true},
		{"valid bank", model.BankIdentity("111122223333", "BANK1"), false},
		{"bank empty code", model.BankIdentity("111122223333", ""), true},
		{"central is not a payment instrument", model.CentralIdentity(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.identity)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
