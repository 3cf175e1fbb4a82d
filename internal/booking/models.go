package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

type Reservation struct {
	ID                 string          `json:"id"`
	UnitID             string          `json:"unit_id"`
	GuestID            string          `json:"guest_id"`
	CheckIn            Date            `json:"check_in"`
	CheckOut           Date            `json:"check_out"`
	GuestCount         int             `json:"guest_count"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	Status             Status          `json:"status"` // lihat status.go
	CreatedAt          time.Time       `json:"created_at"`
	ConfirmedAt        *time.Time      `json:"confirmed_at,omitempty"`
	PaymentRef         string          `json:"payment_ref,omitempty"`
	CompletedAt        *time.Time      `json:"completed_at,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty"`
	CancellationReason *string         `json:"cancellation_reason,omitempty"`
	Version            int64           `json:"version"`
}

func (r Reservation) Range() DateRange {
	return DateRange{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

func (r Reservation) Nights() int { return r.Range().Nights() }

// Clone returns a snapshot that shares no pointers with r.
func (r Reservation) Clone() Reservation {
	out := r
	out.ConfirmedAt = cloneTime(r.ConfirmedAt)
	out.CompletedAt = cloneTime(r.CompletedAt)
	out.CancelledAt = cloneTime(r.CancelledAt)
	if r.CancellationReason != nil {
		reason := *r.CancellationReason
		out.CancellationReason = &reason
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Unit is the slice of a lodging listing this engine reads at creation time.
type Unit struct {
	ID          string          `json:"id"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
	Capacity    int             `json:"capacity"`
	Active      bool            `json:"active"`
}

type PaymentResult struct {
	Approved  bool            `json:"approved"`
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference,omitempty"`
	Reason    string          `json:"reason,omitempty"`
}
