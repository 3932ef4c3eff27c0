package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Booking is a user's hold on 1 to 4 seats of one event. Rows are hard
// deleted on cancellation so the pair (user, event) can be booked again.
type Booking struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_user_event" json:"user_id"`
	User        *User     `json:"user,omitempty"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookings_user_event;index:idx_bookings_event" json:"event_id"`
	Event       *Event    `json:"event,omitempty"`
	SeatsBooked int       `gorm:"not null;check:chk_bookings_seats_booked,seats_booked BETWEEN 1 AND 4" json:"seats_booked"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (booking *Booking) BeforeCreate(tx *gorm.DB) (err error) {
	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	return
}
