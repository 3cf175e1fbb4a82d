// Package payments holds the payment collaborators: an in-process mock that
// charges synchronously and the consumer that applies asynchronous results.
package payments

import (
	"context"
	"sync"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Mock approves every charge unless the reservation was declined or the amount
// is above Limit. Real processing lives outside this service.
type Mock struct {
	Limit decimal.Decimal // zero means no limit

	mu       sync.Mutex
	declined map[string]string
	charges  []Charge
}

type Charge struct {
	ReservationID string
	Amount        decimal.Decimal
	Approved      bool
}

func NewMock() *Mock {
	return &Mock{declined: make(map[string]string)}
}

// Decline makes the next charges for reservationID fail with reason.
func (m *Mock) Decline(reservationID, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.declined == nil {
		m.declined = make(map[string]string)
	}
	m.declined[reservationID] = reason
}

func (m *Mock) Charge(ctx context.Context, reservationID string, amount decimal.Decimal) (booking.PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return booking.PaymentResult{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	res := booking.PaymentResult{Approved: true, Amount: amount, Reference: "mock-" + uuid.NewString()}
	if reason, ok := m.declined[reservationID]; ok {
		res = booking.PaymentResult{Approved: false, Amount: amount, Reason: reason}
	} else if !m.Limit.IsZero() && amount.GreaterThan(m.Limit) {
		res = booking.PaymentResult{Approved: false, Amount: amount, Reason: "LIMIT_EXCEEDED"}
	}
	m.charges = append(m.charges, Charge{ReservationID: reservationID, Amount: amount, Approved: res.Approved})
	return res, nil
}

// Charges returns every charge attempted so far.
func (m *Mock) Charges() []Charge {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Charge(nil), m.charges...)
}
