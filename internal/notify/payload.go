package notify

import (
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/shopspring/decimal"
)

// ReservationPayload is the body carried by every reservation.* event.
type ReservationPayload struct {
	ReservationID string          `json:"reservation_id"`
	UnitID        string          `json:"unit_id"`
	GuestID       string          `json:"guest_id"`
	CheckIn       booking.Date    `json:"check_in"`
	CheckOut      booking.Date    `json:"check_out"`
	GuestCount    int             `json:"guest_count"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Status        booking.Status  `json:"status"`
	Version       int64           `json:"version"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

func payloadOf(ev booking.Event) ReservationPayload {
	r := ev.Reservation
	return ReservationPayload{
		ReservationID: r.ID,
		UnitID:        r.UnitID,
		GuestID:       r.GuestID,
		CheckIn:       r.CheckIn,
		CheckOut:      r.CheckOut,
		GuestCount:    r.GuestCount,
		TotalPrice:    r.TotalPrice,
		Status:        r.Status,
		Version:       r.Version,
		PaymentRef:    r.PaymentRef,
		Reason:        ev.Reason,
		CancelledAt:   r.CancelledAt,
		CompletedAt:   r.CompletedAt,
	}
}
