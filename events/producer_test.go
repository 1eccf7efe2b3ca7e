package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Saroj9823Dangol/event-management-sub001/events"
	"github.com/Saroj9823Dangol/event-management-sub001/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestProducer_PublishBookingConfirmed(t *testing.T) {
	w := &fakeWriter{}
	p := events.NewProducerWithWriter(w, "booking-events", zap.NewNop())

	evt := models.BookingConfirmedEvent{
		EventType: "booking_confirmed",
		OrderID:   "ord-1",
		EventID:   "evt-1",
		Tickets:   2,
		Total:     90,
		Currency:  "USD",
		Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishBookingConfirmed(context.Background(), evt))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("ord-1"), w.msgs[0].Key)
	assert.Equal(t, "event_type", w.msgs[0].Headers[0].Key)

	var got models.BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, evt, got)

	p.Close()
	assert.True(t, w.closed)
}

func TestProducer_WriteFailure(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := events.NewProducerWithWriter(w, "booking-events", zap.NewNop())

	err := p.PublishBookingConfirmed(context.Background(), models.BookingConfirmedEvent{OrderID: "ord-1"})
	assert.EqualError(t, err, "broker down")
}
