package booking

import (
	"context"
	"fmt"
)

// DateRange is the half-open stay interval [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

func (r DateRange) Validate() error {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() || !r.CheckIn.Before(r.CheckOut) {
		return fmt.Errorf("%w: %s..%s", ErrInvalidRange, r.CheckIn, r.CheckOut)
	}
	return nil
}

func (r DateRange) Nights() int {
	if r.CheckIn.IsZero() || r.CheckOut.IsZero() {
		return 0
	}
	return r.CheckIn.DaysUntil(r.CheckOut)
}

// Overlaps: [a,b) and [c,d) intersect iff a < d && c < b. Checkout on day X
// never conflicts with a check-in on day X.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.CheckIn.Before(o.CheckOut) && o.CheckIn.Before(r.CheckOut)
}

// ActiveConflicts filters candidates down to active reservations on unitID
// whose stay intersects rng.
func ActiveConflicts(candidates []Reservation, unitID string, rng DateRange) []Reservation {
	var out []Reservation
	for _, r := range candidates {
		if r.UnitID != unitID || !r.Status.IsActive() {
			continue
		}
		if r.Range().Overlaps(rng) {
			out = append(out, r)
		}
	}
	return out
}

type OverlapFinder interface {
	FindActiveOverlapping(ctx context.Context, unitID string, rng DateRange) ([]Reservation, error)
}

// Checker answers availability questions without side effects. Creation must
// still re-check under the store's unit lock.
type Checker struct {
	Store OverlapFinder
}

func (c Checker) IsAvailable(ctx context.Context, unitID string, checkIn, checkOut Date) (bool, error) {
	conflicts, err := c.Overlapping(ctx, unitID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}

func (c Checker) Overlapping(ctx context.Context, unitID string, checkIn, checkOut Date) ([]Reservation, error) {
	rng := DateRange{CheckIn: checkIn, CheckOut: checkOut}
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return c.Store.FindActiveOverlapping(ctx, unitID, rng)
}
