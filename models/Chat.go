package models

import "time"

// Chat is the single support thread bound to one booking, created in the
// same transaction as the booking itself. ClosedAt is set exactly when
// IsOpen flips to false and never changes afterwards.
type Chat struct {
	ID        uint    `json:"id" gorm:"primaryKey"`
	BookingID uint    `json:"bookingID" gorm:"not null;uniqueIndex"`
	Booking   Booking `json:"-"`

	IsOpen    bool       `json:"isOpen" gorm:"default:true"`
	CreatedAt time.Time  `json:"createdAt"`
	ClosedAt  *time.Time `json:"closedAt"`
}
