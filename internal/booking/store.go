package booking

import "context"

// Store persists reservations. Reads return snapshots; the only mutation path
// is Save.
//
// Save inserts when Version is 0 and otherwise updates the row only if the
// stored version still equals r.Version, returning ErrVersionConflict when it
// does not. A successful Save returns the stored snapshot with its new Version.
// Infrastructure errors are wrapped with ErrStoreFailure.
type Store interface {
	OverlapFinder

	Save(ctx context.Context, r Reservation) (Reservation, error)
	FindByID(ctx context.Context, id string) (Reservation, error)
	FindByUnit(ctx context.Context, unitID string) ([]Reservation, error)
	FindByGuest(ctx context.Context, guestID string) ([]Reservation, error)
	// FindExpiredActive returns CONFIRMED reservations whose checkout date is
	// strictly before asOf.
	FindExpiredActive(ctx context.Context, asOf Date) ([]Reservation, error)

	// WithUnitLock runs fn while holding the per-unit write lock, so an overlap
	// check and an insert made through tx are atomic relative to other writers
	// on the same unit. Calls must not nest for the same unit.
	WithUnitLock(ctx context.Context, unitID string, fn func(ctx context.Context, tx Store) error) error
}
