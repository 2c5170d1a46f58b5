package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stayledger/internal/errors"
	"stayledger/internal/repository"
)

// BookingService reads reservations owned by the booking service.
type BookingService interface {
	// AmountDue returns nightly price times nights for the booking.
	AmountDue(ctx context.Context, bookingID string) (decimal.Decimal, error)
}

type bookingService struct {
	repo repository.BookingRepository
}

// NewBookingService creates a new booking service.
func NewBookingService(repo repository.BookingRepository) BookingService {
	return &bookingService{repo: repo}
}

func (s *bookingService) AmountDue(ctx context.Context, bookingID string) (decimal.Decimal, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, errors.ErrBookingNotFound
		}
		return decimal.Zero, fmt.Errorf("find booking: %w", err)
	}

	total := booking.Total()
	if !total.IsPositive() {
		return decimal.Zero, errors.ErrInvalidAmount
	}
	return total.Round(2), nil
}
