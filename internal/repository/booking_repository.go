package repository

import (
	"context"

	"gorm.io/gorm"

	"stayledger/internal/model"
)

// BookingRepository reads bookings owned by the booking service.
type BookingRepository interface {
	FindByID(ctx context.Context, bookingID string) (*model.Booking, error)
}

type bookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

// FindByID finds a booking by ID.
func (r *bookingRepository) FindByID(ctx context.Context, bookingID string) (*model.Booking, error) {
	var booking model.Booking
	if err := conn(ctx, r.db).Where("booking_id = ?", bookingID).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}
