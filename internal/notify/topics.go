package notify

import "github.com/ariefcatur/go-lodging-reservations.git/internal/booking"

const (
	TopicReservationCreated   = "reservation.created"
	TopicReservationConfirmed = "reservation.confirmed"
	TopicReservationCancelled = "reservation.cancelled"
	TopicReservationCompleted = "reservation.completed"
	TopicPaymentRejected      = "reservation.payment.rejected"
)

// TopicFor maps a lifecycle event onto its topic.
func TopicFor(t booking.EventType) (string, bool) {
	switch t {
	case booking.EventReservationCreated:
		return TopicReservationCreated, true
	case booking.EventReservationConfirmed:
		return TopicReservationConfirmed, true
	case booking.EventReservationCancelled:
		return TopicReservationCancelled, true
	case booking.EventReservationCompleted:
		return TopicReservationCompleted, true
	case booking.EventPaymentRejected:
		return TopicPaymentRejected, true
	}
	return "", false
}

// Topics lists every topic the api produces to.
func Topics() []string {
	return []string{
		TopicReservationCreated,
		TopicReservationConfirmed,
		TopicReservationCancelled,
		TopicReservationCompleted,
		TopicPaymentRejected,
	}
}

// Partition key = reservation_id, supaya semua event 1 reservasi maintain urutan.
func PartitionKey(reservationID string) []byte { return []byte(reservationID) }
