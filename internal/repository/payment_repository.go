package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stayledger/internal/model"
)

// PaymentRepository defines payment persistence operations.
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByID(ctx context.Context, paymentID string) (*model.Payment, error)
	// UpdateStatus moves a payment from one status to another. It returns
	// ErrNoRowsUpdated when the payment is not currently in status from.
	UpdateStatus(ctx context.Context, paymentID string, from, to model.PaymentStatus, reason string) error
	ListPendingBefore(ctx context.Context, cutoff time.Time) ([]model.Payment, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create creates a new payment record.
func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	return conn(ctx, r.db).Create(payment).Error
}

// FindByID finds a payment by ID.
func (r *paymentRepository) FindByID(ctx context.Context, paymentID string) (*model.Payment, error) {
	var payment model.Payment
	if err := conn(ctx, r.db).Where("payment_id = ?", paymentID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

// UpdateStatus performs a conditional status update.
func (r *paymentRepository) UpdateStatus(ctx context.Context, paymentID string, from, to model.PaymentStatus, reason string) error {
	updates := map[string]interface{}{
		"status":         to,
		"failure_reason": reason,
	}
	if to == model.PaymentStatusRefunded {
		updates["refunded_at"] = time.Now()
	}

	res := conn(ctx, r.db).Model(&model.Payment{}).
		Where("payment_id = ? AND status = ?", paymentID, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsUpdated
	}
	return nil
}

// ListPendingBefore lists pending payments created before cutoff.
func (r *paymentRepository) ListPendingBefore(ctx context.Context, cutoff time.Time) ([]model.Payment, error) {
	var payments []model.Payment
	if err := conn(ctx, r.db).
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, cutoff).
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// PaymentLogRepository defines payment log persistence operations.
type PaymentLogRepository interface {
	Create(ctx context.Context, log *model.PaymentLog) error
	CreateBatch(ctx context.Context, logs []model.PaymentLog) error
}

type paymentLogRepository struct {
	db *gorm.DB
}

// NewPaymentLogRepository creates a new payment log repository.
func NewPaymentLogRepository(db *gorm.DB) PaymentLogRepository {
	return &paymentLogRepository{db: db}
}

// Create creates a new payment log entry.
func (r *paymentLogRepository) Create(ctx context.Context, log *model.PaymentLog) error {
	return conn(ctx, r.db).Create(log).Error
}

// CreateBatch creates multiple payment log entries in a single statement batch.
func (r *paymentLogRepository) CreateBatch(ctx context.Context, logs []model.PaymentLog) error {
	if len(logs) == 0 {
		return nil
	}
	return conn(ctx, r.db).CreateInBatches(logs, 100).Error
}
