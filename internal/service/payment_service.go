package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stayledger/internal/cache"
	"stayledger/internal/errors"
	"stayledger/internal/metrics"
	"stayledger/internal/model"
	"stayledger/internal/notify"
	"stayledger/internal/repository"
)

const (
	logBatchSize     = 10
	logFlushInterval = time.Second
	logChannelSize   = 100
)

// PaymentService drives a payment record through its lifecycle.
type PaymentService interface {
	// Create registers a pending payment of amount for booking, settled through method.
	// An empty paymentID is replaced by a generated one.
	Create(ctx context.Context, paymentID, bookingID string, amount decimal.Decimal, method model.PaymentMethod) (*model.Payment, error)
	// Process settles a pending payment through strategy. The returned record carries
	// the resulting status even when err is non-nil.
	Process(ctx context.Context, paymentID string, strategy Strategy) (*model.Payment, error)
	// Refund returns the amount of a successful payment out of the central account.
	Refund(ctx context.Context, paymentID string) (*model.Payment, error)
	Receipt(ctx context.Context, paymentID string) (string, error)
	Get(ctx context.Context, paymentID string) (*model.Payment, error)
	// Close flushes pending payment logs and stops the log worker.
	Close()
}

type paymentService struct {
	paymentRepo    repository.PaymentRepository
	paymentLogRepo repository.PaymentLogRepository
	ledgerRepo     repository.LedgerRepository
	tx             repository.TxManager
	cache          *cache.Client
	notifier       notify.Notifier
	metrics        *metrics.Payments
	logger         *zap.Logger

	logChannel chan model.PaymentLog
	logMu      sync.RWMutex
	logClosed  bool
	wg         sync.WaitGroup
}

// NewPaymentService creates a new payment service and starts its log worker.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	paymentLogRepo repository.PaymentLogRepository,
	ledgerRepo repository.LedgerRepository,
	tx repository.TxManager,
	cache *cache.Client,
	notifier notify.Notifier,
	metrics *metrics.Payments,
	logger *zap.Logger,
) PaymentService {
	s := &paymentService{
		paymentRepo:    paymentRepo,
		paymentLogRepo: paymentLogRepo,
		ledgerRepo:     ledgerRepo,
		tx:             tx,
		cache:          cache,
		notifier:       notifier,
		metrics:        metrics,
		logger:         logger.Named("payments"),
		logChannel:     make(chan model.PaymentLog, logChannelSize),
	}

	s.wg.Add(1)
	go s.logWorker()

	return s
}

// logWorker writes payment logs in batches.
func (s *paymentService) logWorker() {
	defer s.wg.Done()

	batch := make([]model.PaymentLog, 0, logBatchSize)
	ticker := time.NewTicker(logFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.paymentLogRepo.CreateBatch(context.Background(), batch); err != nil {
			s.logger.Warn("failed to write payment logs", zap.Int("count", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-s.logChannel:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= logBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (s *paymentService) Close() {
	s.logMu.Lock()
	if !s.logClosed {
		s.logClosed = true
		close(s.logChannel)
	}
	s.logMu.Unlock()
	s.wg.Wait()
}

// logPayment queues a payment log entry. Must not be called inside a transaction.
func (s *paymentService) logPayment(ctx context.Context, paymentID string, status model.PaymentStatus, message string) {
	entry := model.PaymentLog{
		PaymentID:    paymentID,
		Status:       status,
		ErrorMessage: message,
	}

	s.logMu.RLock()
	defer s.logMu.RUnlock()
	if !s.logClosed {
		select {
		case s.logChannel <- entry:
			return
		default:
		}
	}
	// channel full or worker stopped
	if err := s.paymentLogRepo.Create(ctx, &entry); err != nil {
		s.logger.Warn("failed to write payment log", zap.String("payment_id", paymentID), zap.Error(err))
	}
}

func (s *paymentService) Create(ctx context.Context, paymentID, bookingID string, amount decimal.Decimal, method model.PaymentMethod) (*model.Payment, error) {
	// whole cents only
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) {
		return nil, errors.ErrInvalidAmount
	}
	if method.AccountKind() == "" {
		return nil, errors.ErrUnsupportedMethod
	}
	if paymentID == "" {
		paymentID = uuid.NewString()
	}

	if _, err := s.paymentRepo.FindByID(ctx, paymentID); err == nil {
		return nil, errors.ErrDuplicatePayment
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	payment := &model.Payment{
		PaymentID: paymentID,
		BookingID: bookingID,
		Amount:    amount.Round(2),
		Method:    method,
		Status:    model.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.logPayment(ctx, payment.PaymentID, model.PaymentStatusPending, "")
	s.logger.Info("payment created",
		zap.String("payment_id", payment.PaymentID),
		zap.String("booking_id", bookingID),
		zap.String("method", string(method)),
		zap.Stringer("amount", payment.Amount),
	)
	return payment, nil
}

func (s *paymentService) Get(ctx context.Context, paymentID string) (*model.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return payment, nil
}

func (s *paymentService) Process(ctx context.Context, paymentID string, strategy Strategy) (*model.Payment, error) {
	payment, err := s.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != model.PaymentStatusPending {
		return payment, errors.ErrInvalidStateTransition
	}
	if strategy.Method() != payment.Method {
		return payment, errors.ErrUnsupportedMethod
	}

	started := time.Now()
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := strategy.ProcessPayment(ctx, payment.PaymentID, payment.Amount); err != nil {
			return err
		}
		return s.transition(ctx, payment.PaymentID, model.PaymentStatusPending, model.PaymentStatusSuccess, "")
	})
	elapsed := time.Since(started).Seconds()

	if err != nil {
		if errors.Is(err, errors.ErrInvalidStateTransition) {
			// settled concurrently; the ledger changes were rolled back
			current, gerr := s.Get(ctx, paymentID)
			if gerr != nil {
				return payment, err
			}
			return current, err
		}

		reason := err.Error()
		if terr := s.paymentRepo.UpdateStatus(ctx, payment.PaymentID, model.PaymentStatusPending, model.PaymentStatusFailed, reason); terr != nil {
			s.logger.Error("failed to mark payment failed", zap.String("payment_id", payment.PaymentID), zap.Error(terr))
		} else {
			payment.Status = model.PaymentStatusFailed
			payment.FailureReason = reason
		}

		s.logPayment(ctx, payment.PaymentID, model.PaymentStatusFailed, reason)
		s.metrics.ObservePayment(string(payment.Method), metrics.OutcomeFailed, elapsed)
		s.publish(ctx, notify.EventPaymentFailed, payment)
		s.logger.Info("payment failed", zap.String("payment_id", payment.PaymentID), zap.Error(err))
		return payment, err
	}

	payment.Status = model.PaymentStatusSuccess
	s.invalidateCentral(ctx)
	s.logPayment(ctx, payment.PaymentID, model.PaymentStatusSuccess, "")
	s.metrics.ObservePayment(string(payment.Method), metrics.OutcomeSuccess, elapsed)
	s.publish(ctx, notify.EventPaymentSucceeded, payment)
	s.logger.Info("payment settled",
		zap.String("payment_id", payment.PaymentID),
		zap.Stringer("amount", payment.Amount),
		zap.Stringer("instrument", strategy.Identity()),
	)
	return payment, nil
}

// Refund debits only the central account. The source instrument is not credited back.
func (s *paymentService) Refund(ctx context.Context, paymentID string) (*model.Payment, error) {
	payment, err := s.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != model.PaymentStatusSuccess {
		s.logger.Info("refund rejected",
			zap.String("payment_id", payment.PaymentID),
			zap.String("status", string(payment.Status)),
		)
		return payment, errors.ErrInvalidStateTransition
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		central, err := s.ledgerRepo.FindCentralForUpdate(ctx)
		if err != nil {
			return fmt.Errorf("load central account: %w: %w", errors.ErrLedgerUpdateFailed, err)
		}
		if central.Balance.LessThan(payment.Amount) {
			return errors.ErrInsufficientFunds
		}
		if err := s.ledgerRepo.AdjustCentral(ctx, payment.Amount.Neg(), payment.PaymentID); err != nil {
			return fmt.Errorf("debit central: %w: %w", errors.ErrLedgerUpdateFailed, err)
		}
		return s.transition(ctx, payment.PaymentID, model.PaymentStatusSuccess, model.PaymentStatusRefunded, "")
	})
	if err != nil {
		s.metrics.ObserveRefund(metrics.OutcomeFailed)
		s.logger.Warn("refund failed", zap.String("payment_id", payment.PaymentID), zap.Error(err))
		if current, gerr := s.Get(ctx, paymentID); gerr == nil {
			payment = current
		}
		return payment, err
	}

	refunded, err := s.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	s.invalidateCentral(ctx)
	s.logPayment(ctx, refunded.PaymentID, model.PaymentStatusRefunded, "")
	s.metrics.ObserveRefund(metrics.OutcomeSuccess)
	s.publish(ctx, notify.EventPaymentRefunded, refunded)
	s.logger.Info("payment refunded", zap.String("payment_id", refunded.PaymentID), zap.Stringer("amount", refunded.Amount))
	return refunded, nil
}

func (s *paymentService) Receipt(ctx context.Context, paymentID string) (string, error) {
	payment, err := s.Get(ctx, paymentID)
	if err != nil {
		return "", err
	}
	return FormatReceipt(payment), nil
}

// FormatReceipt renders the one-line receipt for payment.
func FormatReceipt(payment *model.Payment) string {
	return fmt.Sprintf("Receipt: Payment ID %s, Amount $%s, Status: %s",
		payment.PaymentID, payment.Amount.StringFixed(2), payment.Status)
}

// transition moves a payment between statuses, failing if another writer moved it first.
func (s *paymentService) transition(ctx context.Context, paymentID string, from, to model.PaymentStatus, reason string) error {
	if !from.CanTransition(to) {
		return errors.ErrInvalidStateTransition
	}
	err := s.paymentRepo.UpdateStatus(ctx, paymentID, from, to, reason)
	if errors.Is(err, repository.ErrNoRowsUpdated) {
		return errors.ErrInvalidStateTransition
	}
	return err
}

func (s *paymentService) invalidateCentral(ctx context.Context) {
	_ = s.cache.Delete(ctx, centralBalanceCacheKey)
}

func (s *paymentService) publish(ctx context.Context, typ notify.EventType, payment *model.Payment) {
	if s.notifier == nil {
		return
	}
	event := notify.Event{
		Type:       typ,
		PaymentID:  payment.PaymentID,
		BookingID:  payment.BookingID,
		Method:     string(payment.Method),
		Amount:     payment.Amount.StringFixed(2),
		Status:     string(payment.Status),
		Reason:     payment.FailureReason,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("failed to publish payment event", zap.String("payment_id", payment.PaymentID), zap.Error(err))
	}
}
