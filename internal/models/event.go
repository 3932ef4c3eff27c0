package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a bookable occasion. BookedSeats is owned by the seat ledger and
// is only ever changed through conditional SQL expressions; the check
// constraint keeps the database itself from accepting an oversold row.
type Event struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Title          string         `gorm:"not null" json:"title"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	EventDate      time.Time      `gorm:"type:date;not null;index" json:"event_date"`
	StartTime      string         `gorm:"not null" json:"start_time"`
	EndTime        string         `gorm:"not null" json:"end_time"`
	Duration       string         `gorm:"not null" json:"duration"`
	Location       string         `gorm:"not null" json:"location"`
	Price          float64        `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
	Capacity       int            `gorm:"not null;check:chk_events_capacity,capacity >= 1" json:"capacity"`
	BookedSeats    int            `gorm:"not null;default:0;check:chk_events_booked_seats,booked_seats >= 0 AND booked_seats <= capacity" json:"booked_seats"`
	AvailableSeats int            `gorm:"-" json:"available_seats"`
	Tags           []string       `gorm:"type:text;serializer:json" json:"tags"`
	IsActive       bool           `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}

func (event *Event) AfterFind(tx *gorm.DB) (err error) {
	event.AvailableSeats = event.Remaining()
	return
}

func (event *Event) AfterSave(tx *gorm.DB) (err error) {
	event.AvailableSeats = event.Remaining()
	return
}

// Remaining returns the number of seats still open for booking.
func (event *Event) Remaining() int {
	return event.Capacity - event.BookedSeats
}

// IsPast reports whether the event's calendar day (UTC) lies before now's.
// An event stays bookable for the whole of its own day.
func (event *Event) IsPast(now time.Time) bool {
	return DateOnly(event.EventDate).Before(DateOnly(now))
}

// DateOnly truncates t to midnight UTC of its UTC calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
