package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Registration is a seatless RSVP. It counts against the event capacity on
// its own and never touches BookedSeats.
type Registration struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_user_event" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_user_event;index:idx_registrations_event" json:"event_id"`
	Event     *Event    `json:"event,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (registration *Registration) BeforeCreate(tx *gorm.DB) (err error) {
	if registration.ID == uuid.Nil {
		registration.ID = uuid.New()
	}
	return
}
