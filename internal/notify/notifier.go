package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	kafkax "github.com/ariefcatur/go-lodging-reservations.git/internal/kafka"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Publisher is the async side of kafkax.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header) error
}

// KafkaNotifier wraps each event in an envelope v1 and hands it to the
// producer registered for the event's topic.
type KafkaNotifier struct {
	Publishers map[string]Publisher // topic -> producer
	Producer   string
}

func (n *KafkaNotifier) Notify(ctx context.Context, ev booking.Event) error {
	topic, ok := TopicFor(ev.Type)
	if !ok {
		return fmt.Errorf("no topic for event %s", ev.Type)
	}
	pub, ok := n.Publishers[topic]
	if !ok {
		return fmt.Errorf("no producer for topic %s", topic)
	}
	env, err := kafkax.NewEnvelope(string(ev.Type), n.Producer, ev.Reservation.ID, ev.OccurredAt, payloadOf(ev))
	if err != nil {
		return err
	}
	if err := pub.Publish(PartitionKey(ev.Reservation.ID), kafkax.MustMarshal(env), env.Headers()...); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// LogNotifier just writes the event to the log; handy for STORE=memory runs.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, ev booking.Event) error {
	logx.Logger.WithFields(logrus.Fields{
		"event":          ev.Type,
		"reservation_id": ev.Reservation.ID,
		"status":         ev.Reservation.Status,
		"reason":         ev.Reason,
	}).Info("reservation event")
	return nil
}

// Multi fans an event out to every notifier and joins their errors.
type Multi []booking.Notifier

func (m Multi) Notify(ctx context.Context, ev booking.Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
