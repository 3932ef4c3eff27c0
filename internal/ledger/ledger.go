// Package ledger owns every change to an event's booked seat counter.
//
// Reserve and Cancel each run in a single transaction. The event row is
// locked where the database supports it, and the counter only moves through
// conditional updates, so booked_seats never exceeds capacity no matter how
// many requests race on the same event.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farellandr/eventbuddy/internal/helpers"
	"github.com/farellandr/eventbuddy/internal/metrics"
	"github.com/farellandr/eventbuddy/internal/models"
	"github.com/farellandr/eventbuddy/internal/notify"
)

const (
	MinSeatsPerBooking = 1
	MaxSeatsPerBooking = 4
)

const publishTimeout = 5 * time.Second

// Actor is the authenticated caller of Cancel.
type Actor struct {
	UserID uuid.UUID
	Role   models.Role
}

type Ledger struct {
	db        *gorm.DB
	publisher notify.Publisher
	log       *slog.Logger
	now       func() time.Time
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func WithPublisher(p notify.Publisher) Option {
	return func(l *Ledger) { l.publisher = p }
}

func New(db *gorm.DB, log *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		db:        db,
		publisher: notify.NopPublisher{},
		log:       log.With("component", "ledger"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Reserve books seats seats of an event for a user.
func (l *Ledger) Reserve(ctx context.Context, userID, eventID uuid.UUID, seats int) (*models.Booking, error) {
	if seats < MinSeatsPerBooking || seats > MaxSeatsPerBooking {
		metrics.ObserveReservation(outcome(ErrInvalidSeatCount), seats)
		return nil, ErrInvalidSeatCount
	}

	var booking models.Booking
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := helpers.ForUpdate(tx).First(&event, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return fmt.Errorf("load event: %w", err)
		}

		if event.IsPast(l.now()) {
			return fmt.Errorf("%w: event date has passed", ErrEventNotBookable)
		}
		if !event.IsActive {
			return fmt.Errorf("%w: event is not active", ErrEventNotBookable)
		}

		var users int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&users).Error; err != nil {
			return fmt.Errorf("check user: %w", err)
		}
		if users == 0 {
			return ErrUserNotFound
		}

		var existing int64
		if err := tx.Model(&models.Booking{}).
			Where("user_id = ? AND event_id = ?", userID, eventID).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("check existing booking: %w", err)
		}
		if existing > 0 {
			return ErrDuplicateBooking
		}

		if event.Remaining() < seats {
			return &CapacityError{Requested: seats, Available: event.Remaining()}
		}

		result := tx.Model(&models.Event{}).
			Where("id = ? AND booked_seats + ? <= capacity", eventID, seats).
			Update("booked_seats", gorm.Expr("booked_seats + ?", seats))
		if result.Error != nil {
			return fmt.Errorf("advance booked seats: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return l.capacityError(tx, eventID, seats)
		}

		booking = models.Booking{UserID: userID, EventID: eventID, SeatsBooked: seats}
		if err := tx.Create(&booking).Error; err != nil {
			if helpers.IsUniqueViolation(err) {
				return ErrDuplicateBooking
			}
			return fmt.Errorf("create booking: %w", err)
		}

		event.BookedSeats += seats
		event.AvailableSeats = event.Remaining()
		booking.Event = &event
		return nil
	})

	metrics.ObserveReservation(outcome(err), seats)
	if err != nil {
		if outcome(err) == "error" {
			l.log.Error("reservation failed", "event_id", eventID, "user_id", userID, "error", err)
		}
		return nil, err
	}

	l.log.Info("seats reserved",
		"booking_id", booking.ID,
		"event_id", eventID,
		"user_id", userID,
		"seats", seats,
		"booked_seats", booking.Event.BookedSeats,
	)
	l.publish(ctx, notify.BookingEvent{
		Type:        notify.BookingCreated,
		BookingID:   booking.ID,
		UserID:      userID,
		EventID:     eventID,
		Seats:       seats,
		BookedSeats: booking.Event.BookedSeats,
		OccurredAt:  l.now().UTC(),
	})
	return &booking, nil
}

// capacityError re-reads the counter after a conditional update matched no
// row, so the caller learns how many seats are actually left.
func (l *Ledger) capacityError(tx *gorm.DB, eventID uuid.UUID, seats int) error {
	var event models.Event
	if err := tx.Select("capacity", "booked_seats").First(&event, "id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("reload event: %w", err)
	}
	return &CapacityError{Requested: seats, Available: max(event.Remaining(), 0)}
}

// Cancel deletes a booking and returns its seats to the event. Non-admin
// actors can only reach their own bookings; anyone else's is reported as not
// found.
func (l *Ledger) Cancel(ctx context.Context, bookingID uuid.UUID, actor Actor) (*models.Booking, error) {
	var booking models.Booking
	var bookedAfter int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := helpers.ForUpdate(tx).Where("id = ?", bookingID)
		if !actor.Role.IsAdmin() {
			query = query.Where("user_id = ?", actor.UserID)
		}
		if err := query.First(&booking).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("load booking: %w", err)
		}

		result := tx.Where("id = ?", booking.ID).Delete(&models.Booking{})
		if result.Error != nil {
			return fmt.Errorf("delete booking: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrBookingNotFound
		}

		result = tx.Unscoped().Model(&models.Event{}).
			Where("id = ? AND booked_seats >= ?", booking.EventID, booking.SeatsBooked).
			Update("booked_seats", gorm.Expr("booked_seats - ?", booking.SeatsBooked))
		if result.Error != nil {
			return fmt.Errorf("release booked seats: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return fmt.Errorf("event %s holds fewer than %d booked seats", booking.EventID, booking.SeatsBooked)
		}

		var event models.Event
		if err := tx.Unscoped().Select("booked_seats").First(&event, "id = ?", booking.EventID).Error; err != nil {
			return fmt.Errorf("reload event: %w", err)
		}
		bookedAfter = event.BookedSeats
		return nil
	})

	metrics.ObserveCancellation(outcome(err))
	if err != nil {
		if outcome(err) == "error" {
			l.log.Error("cancellation failed", "booking_id", bookingID, "error", err)
		}
		return nil, err
	}

	l.log.Info("booking cancelled",
		"booking_id", booking.ID,
		"event_id", booking.EventID,
		"user_id", booking.UserID,
		"by", actor.UserID,
		"seats", booking.SeatsBooked,
		"booked_seats", bookedAfter,
	)
	l.publish(ctx, notify.BookingEvent{
		Type:        notify.BookingCancelled,
		BookingID:   booking.ID,
		UserID:      booking.UserID,
		EventID:     booking.EventID,
		Seats:       booking.SeatsBooked,
		BookedSeats: bookedAfter,
		OccurredAt:  l.now().UTC(),
	})
	return &booking, nil
}

// publish never fails the caller: the booking is already committed.
func (l *Ledger) publish(ctx context.Context, evt notify.BookingEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := l.publisher.Publish(ctx, evt); err != nil {
		l.log.Warn("booking notification not delivered",
			"type", evt.Type,
			"booking_id", evt.BookingID,
			"error", err,
		)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidSeatCount):
		return "invalid_seat_count"
	case errors.Is(err, ErrEventNotFound):
		return "event_not_found"
	case errors.Is(err, ErrEventNotBookable):
		return "not_bookable"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrDuplicateBooking):
		return "duplicate"
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrBookingNotFound):
		return "booking_not_found"
	default:
		return "error"
	}
}
