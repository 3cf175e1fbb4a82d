package booking

import "errors"

var (
	ErrInvalidRange      = errors.New("invalid date range")
	ErrInvalidStay       = errors.New("invalid stay")
	ErrStayTooLong       = errors.New("stay exceeds the maximum length")
	ErrInvalidRate       = errors.New("invalid nightly rate")
	ErrInvalidGuestCount = errors.New("invalid guest count")
	ErrPastCheckIn       = errors.New("check-in is not in the future")
	ErrCapacityExceeded  = errors.New("guest count exceeds unit capacity")
	ErrUnitInactive      = errors.New("unit is not accepting reservations")
	ErrUnavailable       = errors.New("unit unavailable for the requested dates")
	ErrNotOwner          = errors.New("requester does not own the reservation")
	ErrTooLateToCancel   = errors.New("too late to cancel")
	ErrAlreadyTerminal   = errors.New("reservation already finalized")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPaymentMismatch   = errors.New("payment amount does not match total price")
	ErrPaymentRejected   = errors.New("payment rejected")
	ErrNotFound          = errors.New("not found")
	ErrVersionConflict   = errors.New("reservation modified concurrently")
	ErrStoreFailure      = errors.New("reservation store failure")
)

// IsValidation reports whether err was raised before any persistence was attempted.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidRange, ErrInvalidStay, ErrStayTooLong, ErrInvalidRate, ErrInvalidGuestCount,
		ErrPastCheckIn, ErrCapacityExceeded, ErrUnitInactive,
		ErrNotOwner, ErrTooLateToCancel, ErrPaymentMismatch,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
