package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stayledger/internal/errors"
	"stayledger/internal/metrics"
	"stayledger/internal/model"
	"stayledger/internal/repository"
)

const staleFailureReason = "stale: not processed in time"

// ReconcileService checks the ledgers against their journals and expires
// payments that were never processed.
type ReconcileService interface {
	Run(ctx context.Context) (*model.ReconciliationReport, error)
	Latest(ctx context.Context) (*model.ReconciliationReport, error)
}

type reconcileService struct {
	ledgerRepo  repository.LedgerRepository
	paymentRepo repository.PaymentRepository
	reportRepo  repository.ReconciliationRepository
	tx          repository.TxManager
	metrics     *metrics.Payments
	staleAfter  time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewReconcileService creates a new reconciler. Pending payments older than staleAfter
// are failed on each run; zero disables expiry.
func NewReconcileService(
	ledgerRepo repository.LedgerRepository,
	paymentRepo repository.PaymentRepository,
	reportRepo repository.ReconciliationRepository,
	tx repository.TxManager,
	metrics *metrics.Payments,
	staleAfter time.Duration,
	logger *zap.Logger,
) ReconcileService {
	return &reconcileService{
		ledgerRepo:  ledgerRepo,
		paymentRepo: paymentRepo,
		reportRepo:  reportRepo,
		tx:          tx,
		metrics:     metrics,
		staleAfter:  staleAfter,
		logger:      logger.Named("reconcile"),
		now:         time.Now,
	}
}

func (s *reconcileService) Run(ctx context.Context) (*model.ReconciliationReport, error) {
	report := &model.ReconciliationReport{}
	var details []string

	accounts, err := s.ledgerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	for _, listed := range accounts {
		account, expected, err := s.checkAccount(ctx, listed.ID)
		if err != nil {
			return nil, err
		}

		report.AccountsChecked++
		if !expected.Equal(account.Balance) {
			report.MismatchedAccounts++
			details = append(details, mismatchDetail(account, expected))
			s.logger.Warn("ledger mismatch",
				zap.String("account_id", account.ID.String()),
				zap.String("kind", string(account.Kind)),
				zap.Stringer("balance", account.Balance),
				zap.Stringer("expected", expected),
			)
		}
	}

	if s.staleAfter > 0 {
		failed, err := s.failStale(ctx)
		if err != nil {
			return nil, err
		}
		report.StalePaymentsFailed = failed
		if failed > 0 {
			details = append(details, fmt.Sprintf("failed %d stale pending payments", failed))
		}
	}

	report.Details = strings.Join(details, "\n")
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	s.metrics.ObserveReconcile(report.MismatchedAccounts, report.StalePaymentsFailed)
	s.logger.Info("reconciliation finished",
		zap.Int("accounts", report.AccountsChecked),
		zap.Int("mismatched", report.MismatchedAccounts),
		zap.Int("stale_failed", report.StalePaymentsFailed),
	)
	return report, nil
}

// checkAccount reads the balance and the journal of one account under its row lock,
// so a settlement cannot commit between the two reads.
func (s *reconcileService) checkAccount(ctx context.Context, id uuid.UUID) (*model.LedgerAccount, decimal.Decimal, error) {
	var (
		account  *model.LedgerAccount
		expected decimal.Decimal
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = s.ledgerRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock account %s: %w", id, err)
		}
		entries, err := s.ledgerRepo.ListEntries(ctx, id)
		if err != nil {
			return fmt.Errorf("list entries of %s: %w", id, err)
		}
		expected = account.OpeningBalance
		for _, entry := range entries {
			expected = expected.Add(entry.Signed())
		}
		return nil
	})
	return account, expected, err
}

// failStale fails pending payments past the cutoff. A pending payment has not moved
// any money, since settlement and the status change commit together.
func (s *reconcileService) failStale(ctx context.Context) (int, error) {
	stale, err := s.paymentRepo.ListPendingBefore(ctx, s.now().Add(-s.staleAfter))
	if err != nil {
		return 0, fmt.Errorf("list stale payments: %w", err)
	}

	failed := 0
	for _, payment := range stale {
		err := s.paymentRepo.UpdateStatus(ctx, payment.PaymentID, model.PaymentStatusPending, model.PaymentStatusFailed, staleFailureReason)
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			continue
		}
		if err != nil {
			return failed, fmt.Errorf("fail stale payment %s: %w", payment.PaymentID, err)
		}
		failed++
	}
	return failed, nil
}

func (s *reconcileService) Latest(ctx context.Context) (*model.ReconciliationReport, error) {
	report, err := s.reportRepo.Latest(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return report, err
}

func mismatchDetail(account *model.LedgerAccount, expected decimal.Decimal) string {
	return fmt.Sprintf("%s account %s: balance %s, journal implies %s",
		account.Kind, account.ID, account.Balance.StringFixed(2), expected.StringFixed(2))
}
