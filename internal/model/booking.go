package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is the read model of a guest reservation. The booking service owns the
// table; the settlement core only reads it to derive the amount due.
type Booking struct {
	BookingID     string          `json:"booking_id" gorm:"size:64;primaryKey"`
	GuestID       string          `json:"guest_id" gorm:"size:64;index"`
	PropertyID    string          `json:"property_id" gorm:"size:64;index"`
	CheckIn       time.Time       `json:"check_in"`
	CheckOut      time.Time       `json:"check_out"`
	PricePerNight decimal.Decimal `json:"price_per_night" gorm:"type:decimal(20,2);not null"`
	Status        string          `json:"status" gorm:"size:32"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Nights returns the number of whole nights between check-in and check-out.
func (b Booking) Nights() int {
	in := time.Date(b.CheckIn.Year(), b.CheckIn.Month(), b.CheckIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(b.CheckOut.Year(), b.CheckOut.Month(), b.CheckOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}

// Total returns nightly price times nights.
func (b Booking) Total() decimal.Decimal {
	return b.PricePerNight.Mul(decimal.NewFromInt(int64(b.Nights())))
}
