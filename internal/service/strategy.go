package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stayledger/internal/errors"
	"stayledger/internal/model"
	"stayledger/internal/repository"
)

// Strategy settles a payment from one kind of instrument into the central account.
// A strategy holds the instrument identity only; balances are always re-read from
// the ledger before acting.
type Strategy interface {
	Method() model.PaymentMethod
	Identity() model.AccountIdentity
	// VerifyCredentials reports whether a ledger account matches the identity.
	VerifyCredentials(ctx context.Context) bool
	// ProcessPayment debits the instrument by amount and credits central. Both
	// ledger mutations are journaled under ref and commit together.
	ProcessPayment(ctx context.Context, ref string, amount decimal.Decimal) error
	// TransferToCentral credits the central account by amount.
	TransferToCentral(ctx context.Context, ref string, amount decimal.Decimal) error
}

// Credentials carries the raw, method-specific fields collected by the caller.
type Credentials struct {
	CardNumber     string
	CardholderName string
	CardExpiry     string
	CVV            string
	Email          string
	Password       string
	AccountNumber  string
	BankCode       string
}

// StrategyFactory builds strategies bound to the shared ledger.
type StrategyFactory struct {
	ledger    repository.LedgerRepository
	tx        repository.TxManager
	validator *CredentialValidator
	logger    *zap.Logger
}

// NewStrategyFactory creates a new strategy factory.
func NewStrategyFactory(ledger repository.LedgerRepository, tx repository.TxManager, logger *zap.Logger) *StrategyFactory {
	return &StrategyFactory{
		ledger:    ledger,
		tx:        tx,
		validator: NewCredentialValidator(),
		logger:    logger,
	}
}

// New returns the strategy for method, built from creds.
func (f *StrategyFactory) New(method model.PaymentMethod, creds Credentials) (Strategy, error) {
	switch method {
	case model.PaymentMethodCard:
		return f.CreditCard(creds.CardNumber, creds.CardholderName, creds.CardExpiry, creds.CVV), nil
	case model.PaymentMethodPayPal:
		return f.PayPal(creds.Email, creds.Password), nil
	case model.PaymentMethodBank:
		return f.BankTransfer(creds.AccountNumber, creds.BankCode), nil
	default:
		return nil, errors.ErrUnsupportedMethod
	}
}

func (f *StrategyFactory) instrument(method model.PaymentMethod, identity model.AccountIdentity) instrument {
	return instrument{
		method:    method,
		identity:  identity,
		ledger:    f.ledger,
		tx:        f.tx,
		validator: f.validator,
		logger:    f.logger.With(zap.String("method", string(method)), zap.Stringer("instrument", identity)),
	}
}

// instrument implements the settlement algorithm shared by every variant.
type instrument struct {
	method    model.PaymentMethod
	identity  model.AccountIdentity
	ledger    repository.LedgerRepository
	tx        repository.TxManager
	validator *CredentialValidator
	logger    *zap.Logger
}

func (s *instrument) Method() model.PaymentMethod {
	return s.method
}

func (s *instrument) Identity() model.AccountIdentity {
	return s.identity
}

func (s *instrument) VerifyCredentials(ctx context.Context) bool {
	if err := s.validator.Validate(s.identity); err != nil {
		return false
	}

	_, err := s.ledger.Lookup(ctx, s.identity)
	if err == nil {
		return true
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("verify credentials: ledger lookup failed", zap.Error(err))
	}
	return false
}

func (s *instrument) ProcessPayment(ctx context.Context, ref string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errors.ErrInvalidAmount
	}
	if !s.VerifyCredentials(ctx) {
		s.logger.Info("payment declined: invalid credentials", zap.String("payment_id", ref))
		return errors.ErrCredentialsInvalid
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		account, err := s.ledger.LookupForUpdate(ctx, s.identity)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrCredentialsInvalid
			}
			return s.ledgerFailure("load account", err)
		}

		if account.Balance.LessThan(amount) {
			s.logger.Info("payment declined: insufficient funds",
				zap.String("payment_id", ref),
				zap.Stringer("amount", amount),
			)
			return errors.ErrInsufficientFunds
		}

		if err := s.ledger.AdjustBalance(ctx, s.identity, amount.Neg(), ref); err != nil {
			return s.ledgerFailure("debit source", err)
		}
		return s.TransferToCentral(ctx, ref, amount)
	})
}

func (s *instrument) TransferToCentral(ctx context.Context, ref string, amount decimal.Decimal) error {
	if err := s.ledger.AdjustCentral(ctx, amount, ref); err != nil {
		return s.ledgerFailure("credit central", err)
	}
	return nil
}

// ledgerFailure wraps a store error as ErrLedgerUpdateFailed, logging anything
// other than a missing row as unexpected.
func (s *instrument) ledgerFailure(step string, err error) error {
	if !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, repository.ErrNoRowsUpdated) {
		s.logger.Error("ledger operation failed", zap.String("step", step), zap.Error(err))
	}
	return fmt.Errorf("%s: %w: %w", step, errors.ErrLedgerUpdateFailed, err)
}
