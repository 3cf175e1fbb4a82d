package redisx

import "time"

const (
	// Idempotency create reservation: idem:reservation:create:{idempotency_key} -> reservation_id
	KeyIdemBooking = "idem:reservation:create:%s"

	// Cache status reservation: reservation_status:{reservation_id} -> {"status": "...", "version": n}
	KeyReservationStatus = "reservation_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
