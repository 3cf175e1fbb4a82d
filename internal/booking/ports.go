package booking

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Units is the read-only listing collaborator.
type Units interface {
	Unit(ctx context.Context, unitID string) (Unit, error)
}

// Payments charges the full reservation price and reports approve/reject.
type Payments interface {
	Charge(ctx context.Context, reservationID string, amount decimal.Decimal) (PaymentResult, error)
}

type Reviews interface {
	HasReview(ctx context.Context, reservationID string) (bool, error)
}

// Notifier is fire-and-forget: a failed notification never rolls back a transition.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

type EventType string

const (
	EventReservationCreated   EventType = "ReservationCreated"
	EventReservationConfirmed EventType = "ReservationConfirmed"
	EventReservationCancelled EventType = "ReservationCancelled"
	EventReservationCompleted EventType = "ReservationCompleted"
	EventPaymentRejected      EventType = "PaymentRejected"
)

type Event struct {
	Type        EventType   `json:"type"`
	Reservation Reservation `json:"reservation"`
	OccurredAt  time.Time   `json:"occurred_at"`
	Reason      string      `json:"reason,omitempty"`
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a plain function, mostly for tests.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
