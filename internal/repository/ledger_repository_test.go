package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stayledger/internal/model"
	"stayledger/internal/testdb"
)

func TestLedgerRepository_Lookup(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	card := testdb.SeedCard(t, db, "1234567890123456", "John Doe", "12/25", "123", "1000")
	paypal := testdb.SeedPayPal(t, db, "user1@example.com", "password123", "1500")
	bank := testdb.SeedBank(t, db, "111122223333", "BANK1", "3000")

	tests := []struct {
		name     string
		identity model.AccountIdentity
		wantID   interface{}
	}{
		{"card exact match", model.CardIdentity("1234 5678 9012 3456", "John Doe", "12/25", "123"), card.ID},
		{"card wrong cvv", model.CardIdentity("1234567890123456", "John Doe", "12/25", "999"), nil},
		{"card wrong name", model.CardIdentity("1234567890123456", "Jane Doe", "12/25", "123"), nil},
		{"paypal exact match", model.PayPalIdentity("user1@example.com", "password123"), paypal.ID},
		{"paypal email case differs", model.PayPalIdentity("User1@Example.com", "password123"), nil},
		{"paypal wrong password", model.PayPalIdentity("user1@example.com", "nope"), nil},
		{"bank exact match", model.BankIdentity("111122223333", "BANK1"), bank.ID},
		{"bank code case differs", model.BankIdentity("111122223333", "bank1"), nil},
		{"bank wrong code", model.BankIdentity("111122223333", "BANK2"), nil},
		{"unknown kind", model.AccountIdentity{Kind: "crypto"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := repo.Lookup(ctx, tt.identity)
			if tt.wantID == nil {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, account)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, account.ID)
		})
	}
}

func TestLedgerRepository_AdjustBalanceJournals(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	bank := testdb.SeedBank(t, db, "444455556666", "BANK2", "4000")

	err := repo.AdjustBalance(ctx, model.BankIdentity("444455556666", "BANK2"), decimal.NewFromInt(-250), "pay-1")
	require.NoError(t, err)

	assert.True(t, testdb.Balance(t, db, bank).Equal(decimal.NewFromInt(3750)))

	entries, err := repo.ListEntries(ctx, bank.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pay-1", entries[0].PaymentID)
	assert.Equal(t, model.EntryDebit, entries[0].Direction)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(250)))
	assert.True(t, entries[0].BalanceAfter.Equal(decimal.NewFromInt(3750)))
}

func TestLedgerRepository_AdjustBalanceUnknownAccount(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLedgerRepository(db)

	err := repo.AdjustBalance(context.Background(), model.BankIdentity("000", "NOPE"), decimal.NewFromInt(10), "pay-1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestLedgerRepository_Central(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLedgerRepository(db)
	ctx := context.Background()

	_, err := repo.CentralBalance(ctx)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	testdb.SeedCentral(t, db, "0")
	require.NoError(t, repo.AdjustCentral(ctx, decimal.RequireFromString("99.95"), "pay-1"))

	balance, err := repo.CentralBalance(ctx)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("99.95")))
}

func TestTxManager_RollsBackLedgerChanges(t *testing.T) {
	db := testdb.Open(t)
	repo := NewLedgerRepository(db)
	txm := NewTxManager(db)
	ctx := context.Background()

	central := testdb.SeedCentral(t, db, "100")
	boom := errors.New("boom")

	err := txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := repo.AdjustCentral(ctx, decimal.NewFromInt(50), "pay-1"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, testdb.Balance(t, db, central).Equal(decimal.NewFromInt(100)))

	entries, err := repo.ListEntries(ctx, central.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
