package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farellandr/eventbuddy/internal/logger"
)

func TestNewMessageKeysByEvent(t *testing.T) {
	evt := BookingEvent{
		Type:       BookingCreated,
		BookingID:  uuid.New(),
		UserID:     uuid.New(),
		EventID:    uuid.New(),
		Seats:      3,
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	msg, err := newMessage(evt)
	require.NoError(t, err)

	assert.Equal(t, evt.EventID.String(), string(msg.Key))
	assert.Equal(t, evt.OccurredAt, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, BookingCreated, string(msg.Headers[0].Value))

	var decoded BookingEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt, decoded)
}

func TestNewKafkaPublisherRequiresBrokersAndTopic(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "booking-events", logger.Discard())
	assert.Error(t, err)

	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "", logger.Discard())
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "booking-events", logger.Discard())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), BookingEvent{}))
	assert.NoError(t, p.Close())
}
