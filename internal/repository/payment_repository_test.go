package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stayledger/internal/model"
	"stayledger/internal/testdb"
)

func TestPaymentRepository_UpdateStatusIsConditional(t *testing.T) {
	db := testdb.Open(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Payment{
		PaymentID: "pay-1",
		BookingID: "booking-1",
		Amount:    decimal.NewFromInt(250),
		Method:    model.PaymentMethodCard,
		Status:    model.PaymentStatusPending,
	}))

	require.NoError(t, repo.UpdateStatus(ctx, "pay-1", model.PaymentStatusPending, model.PaymentStatusSuccess, ""))

	err := repo.UpdateStatus(ctx, "pay-1", model.PaymentStatusPending, model.PaymentStatusFailed, "late")
	assert.ErrorIs(t, err, ErrNoRowsUpdated)

	require.NoError(t, repo.UpdateStatus(ctx, "pay-1", model.PaymentStatusSuccess, model.PaymentStatusRefunded, ""))

	payment, err := repo.FindByID(ctx, "pay-1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusRefunded, payment.Status)
	assert.NotNil(t, payment.RefundedAt)
}

func TestPaymentRepository_ListPendingBefore(t *testing.T) {
	db := testdb.Open(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	for _, id := range []string{"old", "fresh"} {
		require.NoError(t, repo.Create(ctx, &model.Payment{
			PaymentID: id,
			BookingID: "booking-1",
			Amount:    decimal.NewFromInt(10),
			Method:    model.PaymentMethodBank,
			Status:    model.PaymentStatusPending,
		}))
	}
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, db.Model(&model.Payment{}).Where("payment_id = ?", "old").Update("created_at", old).Error)

	stale, err := repo.ListPendingBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].PaymentID)
}
