// Package testdb opens throwaway databases for package tests.
package testdb

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stayledger/internal/db"
	"stayledger/internal/model"
)

// Open returns a migrated in-memory SQLite database that lives for the test.
// The pool is limited to one connection so every query sees the same memory database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	gormDB, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

// Hash hashes a secret at the minimum bcrypt cost to keep tests fast.
func Hash(t testing.TB, secret string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// SeedCentral inserts the central account with the given balance.
func SeedCentral(t testing.TB, gormDB *gorm.DB, balance string) *model.LedgerAccount {
	t.Helper()
	return create(t, gormDB, &model.LedgerAccount{Kind: model.AccountKindCentral}, balance)
}

// SeedCard inserts a card account.
func SeedCard(t testing.TB, gormDB *gorm.DB, number, name, expiry, cvv, balance string) *model.LedgerAccount {
	t.Helper()
	return create(t, gormDB, &model.LedgerAccount{
		Kind:           model.AccountKindCard,
		CardNumber:     number,
		CardholderName: name,
		CardExpiry:     expiry,
		CVVHash:        Hash(t, cvv),
	}, balance)
}

// SeedPayPal inserts a PayPal account.
func SeedPayPal(t testing.TB, gormDB *gorm.DB, email, password, balance string) *model.LedgerAccount {
	t.Helper()
	return create(t, gormDB, &model.LedgerAccount{
		Kind:         model.AccountKindPayPal,
		Email:        email,
		PasswordHash: Hash(t, password),
	}, balance)
}

// SeedBank inserts a bank account.
func SeedBank(t testing.TB, gormDB *gorm.DB, accountNumber, bankCode, balance string) *model.LedgerAccount {
	t.Helper()
	return create(t, gormDB, &model.LedgerAccount{
		Kind:          model.AccountKindBank,
		AccountNumber: accountNumber,
		BankCode:      bankCode,
	}, balance)
}

// Balance re-reads an account balance.
func Balance(t testing.TB, gormDB *gorm.DB, account *model.LedgerAccount) decimal.Decimal {
	t.Helper()
	var fresh model.LedgerAccount
	require.NoError(t, gormDB.Where("id = ?", account.ID).First(&fresh).Error)
	return fresh.Balance
}

func create(t testing.TB, gormDB *gorm.DB, account *model.LedgerAccount, balance string) *model.LedgerAccount {
	t.Helper()
	account.Balance = decimal.RequireFromString(balance)
	account.OpeningBalance = account.Balance
	require.NoError(t, gormDB.Create(account).Error)
	return account
}
