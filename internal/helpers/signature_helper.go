package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// A booking pass is the text encoded into the QR code handed to attendees:
//
//	booking:<booking id>;event:<event id>;signature:<hex hmac-sha256>
//
// The signature covers booking, event and user ids, so a pass cannot be
// moved to another booking or forged without the server secret.

func SignBookingPass(secret []byte, bookingID, eventID, userID uuid.UUID) string {
	data := fmt.Sprintf("%s:%s:%s", bookingID, eventID, userID)
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func BuildBookingPass(secret []byte, bookingID, eventID, userID uuid.UUID) string {
	return fmt.Sprintf("booking:%s;event:%s;signature:%s",
		bookingID, eventID, SignBookingPass(secret, bookingID, eventID, userID))
}

type BookingPass struct {
	BookingID uuid.UUID
	EventID   uuid.UUID
	Signature string
}

func ParseBookingPass(pass string) (*BookingPass, error) {
	parts := strings.Split(pass, ";")
	if len(parts) != 3 ||
		!strings.HasPrefix(parts[0], "booking:") ||
		!strings.HasPrefix(parts[1], "event:") ||
		!strings.HasPrefix(parts[2], "signature:") {
		return nil, fmt.Errorf("invalid pass format")
	}

	bookingID, err := uuid.Parse(strings.TrimPrefix(parts[0], "booking:"))
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format")
	}
	eventID, err := uuid.Parse(strings.TrimPrefix(parts[1], "event:"))
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format")
	}

	return &BookingPass{
		BookingID: bookingID,
		EventID:   eventID,
		Signature: strings.TrimPrefix(parts[2], "signature:"),
	}, nil
}

// Verify checks the signature against the booking's owner.
func (p *BookingPass) Verify(secret []byte, userID uuid.UUID) bool {
	expected := SignBookingPass(secret, p.BookingID, p.EventID, userID)
	return hmac.Equal([]byte(expected), []byte(p.Signature))
}
