package payments

import "github.com/shopspring/decimal"

const (
	TopicPaymentResult = "reservation.payment.result"

	EventPaymentApproved = "PaymentApproved"
	EventPaymentDeclined = "PaymentDeclined"
)

type ResultPayload struct {
	ReservationID string          `json:"reservation_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	Reason        string          `json:"reason,omitempty"` // e.g., INSUFFICIENT_FUNDS
}
