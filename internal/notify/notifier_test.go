package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	kafkax "github.com/ariefcatur/go-lodging-reservations.git/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	key, value []byte
	headers    []kafkago.Header
}

type fakePublisher struct {
	msgs []published
	err  error
}

func (p *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) error {
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, published{key: key, value: value, headers: headers})
	return nil
}

func sampleEvent(typ booking.EventType) booking.Event {
	return booking.Event{
		Type: typ,
		Reservation: booking.Reservation{
			ID: "r1", UnitID: "u1", GuestID: "g1",
			CheckIn: booking.MustDate("2025-10-01"), CheckOut: booking.MustDate("2025-10-05"),
			GuestCount: 3, TotalPrice: decimal.NewFromInt(400000),
			Status: booking.StatusCancelled, Version: 2,
		},
		OccurredAt: time.Date(2025, 9, 26, 8, 0, 0, 0, time.UTC),
		Reason:     "plans changed",
	}
}

func TestTopicFor(t *testing.T) {
	for _, typ := range []booking.EventType{
		booking.EventReservationCreated, booking.EventReservationConfirmed,
		booking.EventReservationCancelled, booking.EventReservationCompleted,
		booking.EventPaymentRejected,
	} {
		topic, ok := TopicFor(typ)
		assert.True(t, ok, typ)
		assert.Contains(t, Topics(), topic)
	}
	_, ok := TopicFor("Unknown")
	assert.False(t, ok)
}

func TestKafkaNotifier(t *testing.T) {
	pub := &fakePublisher{}
	n := &KafkaNotifier{Publishers: map[string]Publisher{TopicReservationCancelled: pub}, Producer: "reservation-api"}

	require.NoError(t, n.Notify(context.Background(), sampleEvent(booking.EventReservationCancelled)))
	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, []byte("r1"), msg.key)
	assert.Contains(t, msg.headers, kafkago.Header{Key: "x-event-type", Value: []byte("ReservationCancelled")})

	env, err := kafkax.UnmarshalEnvelope(msg.value)
	require.NoError(t, err)
	assert.Equal(t, "ReservationCancelled", env.EventType)
	assert.Equal(t, 1, env.EventVersion)
	assert.Equal(t, "reservation-api", env.Producer)
	assert.Equal(t, "r1", env.CorrelationID)
	assert.NotEmpty(t, env.EventID)

	p, err := kafkax.UnwrapPayload[ReservationPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, "r1", p.ReservationID)
	assert.Equal(t, booking.MustDate("2025-10-01"), p.CheckIn)
	assert.True(t, p.TotalPrice.Equal(decimal.NewFromInt(400000)))
	assert.Equal(t, booking.StatusCancelled, p.Status)
	assert.Equal(t, "plans changed", p.Reason)
}

func TestKafkaNotifierErrors(t *testing.T) {
	ctx := context.Background()
	n := &KafkaNotifier{Publishers: map[string]Publisher{}}
	assert.Error(t, n.Notify(ctx, sampleEvent(booking.EventReservationCreated)), "no producer registered")
	assert.Error(t, n.Notify(ctx, sampleEvent("Unknown")))

	n.Publishers[TopicReservationCreated] = &fakePublisher{err: kafkax.ErrInboxFull}
	assert.ErrorIs(t, n.Notify(ctx, sampleEvent(booking.EventReservationCreated)), kafkax.ErrInboxFull)
}

type notifierFunc func(ctx context.Context, ev booking.Event) error

func (f notifierFunc) Notify(ctx context.Context, ev booking.Event) error { return f(ctx, ev) }

func TestMulti(t *testing.T) {
	var calls int
	ok := notifierFunc(func(context.Context, booking.Event) error { calls++; return nil })
	boom := errors.New("boom")
	bad := notifierFunc(func(context.Context, booking.Event) error { calls++; return boom })

	m := Multi{ok, nil, bad, ok}
	err := m.Notify(context.Background(), sampleEvent(booking.EventReservationCreated))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls, "a failing notifier does not stop the others")

	assert.NoError(t, Multi{ok, LogNotifier{}}.Notify(context.Background(), sampleEvent(booking.EventReservationCompleted)))
}
