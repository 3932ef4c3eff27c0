package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSeatCount = fmt.Errorf("seat count must be between %d and %d", MinSeatsPerBooking, MaxSeatsPerBooking)
	ErrEventNotFound    = errors.New("event not found")
	ErrEventNotBookable = errors.New("event is not bookable")
	ErrDuplicateBooking = errors.New("you have already booked this event")
	ErrCapacityExceeded = errors.New("not enough seats available")
	ErrUserNotFound     = errors.New("user not found")
	ErrBookingNotFound  = errors.New("booking not found")
)

// CapacityError reports how many seats were left when a reservation did not
// fit. It matches ErrCapacityExceeded.
type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	if e.Available == 1 {
		return "only 1 seat available"
	}
	return fmt.Sprintf("only %d seats available", e.Available)
}

func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacityExceeded
}
