package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	closed int
	block  chan struct{}
	err    error
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.block != nil {
		<-w.block
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed++
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

func TestProducerFlushesOnClose(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, "reservation.created", 16)
	p.Start(context.Background())

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, p.Publish([]byte(k), []byte("v-"+k), kafka.Header{Key: "x-event-type", Value: []byte("ReservationCreated")}))
	}
	p.Close()
	p.Close() // idempotent
	p.WaitClosed()

	msgs := w.written()
	require.Len(t, msgs, 3)
	assert.Equal(t, []byte("a"), msgs[0].Key)
	assert.Equal(t, "x-event-type", msgs[0].Headers[0].Key)
	assert.Equal(t, 1, w.closed)

	assert.ErrorIs(t, p.Publish([]byte("d"), nil), ErrProducerClosed)
}

func TestProducerDrainsOnCancel(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	p := newProducer(w, "t", 4)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, p.Publish(nil, []byte{byte(i)}))
	}
	cancel()
	close(w.block)
	p.WaitClosed()

	assert.Len(t, w.written(), 3)
	assert.Equal(t, 1, w.closed)
}

func TestProducerInboxFull(t *testing.T) {
	w := &fakeWriter{block: make(chan struct{})}
	p := newProducer(w, "t", 1)
	p.Start(context.Background())

	// first message is taken by the loop and blocks in the writer, second fills the inbox
	require.NoError(t, p.Publish(nil, []byte("1")))
	require.Eventually(t, func() bool { return len(p.inbox) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, p.Publish(nil, []byte("2")))
	assert.ErrorIs(t, p.Publish(nil, []byte("3")), ErrInboxFull)

	close(w.block)
	p.Close()
	p.WaitClosed()
	assert.Len(t, w.written(), 2)
}

func TestProducerWriteErrorIsLogged(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	p := newProducer(w, "t", 1)
	p.Start(context.Background())
	require.NoError(t, p.Publish(nil, []byte("x")))
	p.Close()
	p.WaitClosed()
	assert.Empty(t, w.written())
}

func TestEnvelope(t *testing.T) {
	at := time.Date(2025, 10, 1, 7, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	env, err := NewEnvelope("ReservationCreated", "reservation-api", "r1", at, map[string]string{"reservation_id": "r1"})
	require.NoError(t, err)
	assert.Equal(t, time.UTC, env.OccurredAt.Location())
	assert.Equal(t, []kafka.Header{
		{Key: "x-event-type", Value: []byte("ReservationCreated")},
		{Key: "x-event-version", Value: []byte("1")},
	}, env.Headers())

	back, err := UnmarshalEnvelope(MustMarshal(env))
	require.NoError(t, err)
	assert.Equal(t, env.EventID, back.EventID)
	payload, err := UnwrapPayload[map[string]string](back.Payload)
	require.NoError(t, err)
	assert.Equal(t, "r1", payload["reservation_id"])

	_, err = UnmarshalEnvelope([]byte("nope"))
	assert.Error(t, err)
}
