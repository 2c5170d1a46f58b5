package service

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"stayledger/internal/cache"
	"stayledger/internal/errors"
	"stayledger/internal/model"
	"stayledger/internal/repository"
)

const (
	centralBalanceCacheKey = "ledger:central:balance"
	centralBalanceCacheTTL = 30 * time.Second
)

//go:embed seed_accounts.json
var defaultSeedAccounts []byte

// SeedAccount describes one ledger account to seed, secrets in plain text.
type SeedAccount struct {
	Kind           model.AccountKind `json:"kind" validate:"required,oneof=central card paypal bank"`
	CardNumber     string            `json:"card_number,omitempty"`
	CardholderName string            `json:"cardholder_name,omitempty"`
	CardExpiry     string            `json:"card_expiry,omitempty"`
	CVV            string            `json:"cvv,omitempty"`
	Email          string            `json:"email,omitempty"`
	Password       string            `json:"password,omitempty"`
	AccountNumber  string            `json:"account_number,omitempty"`
	BankCode       string            `json:"bank_code,omitempty"`
	Balance        decimal.Decimal   `json:"balance"`
}

// Identity returns the lookup identity of the account.
func (a SeedAccount) Identity() model.AccountIdentity {
	switch a.Kind {
	case model.AccountKindCard:
		return model.CardIdentity(a.CardNumber, a.CardholderName, a.CardExpiry, a.CVV)
	case model.AccountKindPayPal:
		return model.PayPalIdentity(a.Email, a.Password)
	case model.AccountKindBank:
		return model.BankIdentity(a.AccountNumber, a.BankCode)
	default:
		return model.CentralIdentity()
	}
}

// DefaultSeedAccounts returns the built-in dummy ledgers.
func DefaultSeedAccounts() ([]SeedAccount, error) {
	var accounts []SeedAccount
	if err := json.Unmarshal(defaultSeedAccounts, &accounts); err != nil {
		return nil, fmt.Errorf("decode seed accounts: %w", err)
	}
	return accounts, nil
}

// LedgerService exposes the dummy ledgers.
type LedgerService interface {
	CentralBalance(ctx context.Context) (decimal.Decimal, error)
	// Seed creates the accounts that do not exist yet and returns how many it created.
	// Existing accounts keep their balances.
	Seed(ctx context.Context, accounts []SeedAccount) (int, error)
}

type ledgerService struct {
	repo   repository.LedgerRepository
	tx     repository.TxManager
	cache  *cache.Client
	logger *zap.Logger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(repo repository.LedgerRepository, tx repository.TxManager, cache *cache.Client, logger *zap.Logger) LedgerService {
	return &ledgerService{
		repo:   repo,
		tx:     tx,
		cache:  cache,
		logger: logger.Named("ledger"),
	}
}

// CentralBalance returns the central balance, served from cache for a short TTL.
func (s *ledgerService) CentralBalance(ctx context.Context) (decimal.Decimal, error) {
	if data, _ := s.cache.Get(ctx, centralBalanceCacheKey); data != nil {
		if cached, err := decimal.NewFromString(string(data)); err == nil {
			return cached, nil
		}
	}

	balance, err := s.repo.CentralBalance(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, errors.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("central balance: %w", err)
	}

	_ = s.cache.Set(ctx, centralBalanceCacheKey, []byte(balance.String()), centralBalanceCacheTTL)
	return balance, nil
}

func (s *ledgerService) Seed(ctx context.Context, accounts []SeedAccount) (int, error) {
	count := 0
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, seed := range accounts {
			created, err := s.seedOne(ctx, seed)
			if err != nil {
				return err
			}
			if created {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	_ = s.cache.Delete(ctx, centralBalanceCacheKey)
	s.logger.Info("ledgers seeded", zap.Int("created", count), zap.Int("requested", len(accounts)))
	return count, nil
}

func (s *ledgerService) seedOne(ctx context.Context, seed SeedAccount) (bool, error) {
	if seed.Balance.IsNegative() {
		return false, fmt.Errorf("seed %s account: %w", seed.Kind, errors.ErrInvalidAmount)
	}

	identity := seed.Identity()
	var err error
	if seed.Kind == model.AccountKindCentral {
		_, err = s.repo.FindCentral(ctx)
	} else {
		_, err = s.repo.Lookup(ctx, identity)
	}
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("seed %s: %w", identity, err)
	}

	account := &model.LedgerAccount{
		Kind:           identity.Kind,
		CardNumber:     identity.CardNumber,
		CardholderName: identity.CardholderName,
		CardExpiry:     identity.CardExpiry,
		Email:          identity.Email,
		AccountNumber:  identity.AccountNumber,
		BankCode:       identity.BankCode,
		Balance:        seed.Balance,
		OpeningBalance: seed.Balance,
	}
	if identity.CVV != "" {
		if account.CVVHash, err = hashSecret(identity.CVV); err != nil {
			return false, err
		}
	}
	if identity.Password != "" {
		if account.PasswordHash, err = hashSecret(identity.Password); err != nil {
			return false, err
		}
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return false, fmt.Errorf("create %s: %w", identity, err)
	}
	return true, nil
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}
