package payments

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	kafkax "github.com/ariefcatur/go-lodging-reservations.git/internal/kafka"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type Applier interface {
	ApplyPayment(ctx context.Context, id string, result booking.PaymentResult) (booking.Reservation, error)
}

type Deduper interface {
	MarkProcessed(ctx context.Context, service, eventID string) (bool, error)
	ForgetProcessed(ctx context.Context, service, eventID string) error
}

type ResultHandler struct {
	Bookings    Applier
	Dedup       Deduper // optional
	ServiceName string
}

// HandlePaymentResult: dipasang sebagai handler consumer. Returning nil commits
// the offset, so only infrastructure failures are returned.
func (h *ResultHandler) HandlePaymentResult(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	env, err := kafkax.UnmarshalEnvelope(m.Value)
	if err != nil {
		logx.Logger.WithError(err).WithField("offset", m.Offset).Error("drop malformed payment event")
		return nil
	}
	var approved bool
	switch env.EventType {
	case EventPaymentApproved:
		approved = true
	case EventPaymentDeclined:
	default:
		return nil // ignore
	}

	// 2) decode payload
	p, err := kafkax.UnwrapPayload[ResultPayload](env.Payload)
	if err != nil {
		logx.Logger.WithError(err).WithField("event_id", env.EventID).Error("drop malformed payment payload")
		return nil
	}

	// 3) dedup via Redis (pakai event_id)
	if h.Dedup != nil {
		first, err := h.Dedup.MarkProcessed(ctx, h.ServiceName, env.EventID)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
	}

	log := logx.Logger.WithFields(logrus.Fields{"event_id": env.EventID, "reservation_id": p.ReservationID})
	_, err = h.Bookings.ApplyPayment(ctx, p.ReservationID, booking.PaymentResult{
		Approved:  approved,
		Amount:    p.Amount,
		Reference: p.PaymentRef,
		Reason:    p.Reason,
	})
	switch {
	case err == nil, errors.Is(err, booking.ErrPaymentRejected):
		return nil
	case errors.Is(err, booking.ErrStoreFailure):
		// release the claim; the consumer retries this message before moving on
		if h.Dedup != nil {
			if ferr := h.Dedup.ForgetProcessed(ctx, h.ServiceName, env.EventID); ferr != nil {
				log.WithError(ferr).Warn("release dedup claim failed")
			}
		}
		return err
	default:
		log.WithError(err).Warn("payment result not applied")
		return nil
	}
}
