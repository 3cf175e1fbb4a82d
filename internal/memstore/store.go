// Package memstore keeps reservations in process memory. It backs tests and
// STORE=memory local runs.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
)

type Store struct {
	mu      sync.RWMutex
	byID    map[string]booking.Reservation
	byUnit  map[string][]string // unit -> reservation ids
	byGuest map[string][]string // guest -> reservation ids

	locksMu   sync.Mutex
	unitLocks map[string]*sync.Mutex
}

func New() *Store {
	return &Store{
		byID:      make(map[string]booking.Reservation),
		byUnit:    make(map[string][]string),
		byGuest:   make(map[string][]string),
		unitLocks: make(map[string]*sync.Mutex),
	}
}

var _ booking.Store = (*Store)(nil)

func (s *Store) Save(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return booking.Reservation{}, fmt.Errorf("%w: %w", booking.ErrStoreFailure, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byID[r.ID]
	if r.Version == 0 {
		if ok {
			return booking.Reservation{}, fmt.Errorf("%w: reservation %s already exists", booking.ErrVersionConflict, r.ID)
		}
		stored := r.Clone()
		stored.Version = 1
		s.byID[r.ID] = stored
		s.byUnit[r.UnitID] = append(s.byUnit[r.UnitID], r.ID)
		s.byGuest[r.GuestID] = append(s.byGuest[r.GuestID], r.ID)
		return stored.Clone(), nil
	}

	if !ok {
		return booking.Reservation{}, fmt.Errorf("reservation %s: %w", r.ID, booking.ErrNotFound)
	}
	if existing.Version != r.Version {
		return booking.Reservation{}, fmt.Errorf("%w: reservation %s at version %d, have %d",
			booking.ErrVersionConflict, r.ID, existing.Version, r.Version)
	}

	// identity, stay and price are immutable once created
	stored := existing.Clone()
	upd := r.Clone()
	stored.Status = upd.Status
	stored.ConfirmedAt = upd.ConfirmedAt
	stored.PaymentRef = upd.PaymentRef
	stored.CompletedAt = upd.CompletedAt
	stored.CancelledAt = upd.CancelledAt
	stored.CancellationReason = upd.CancellationReason
	stored.Version = existing.Version + 1
	s.byID[r.ID] = stored
	return stored.Clone(), nil
}

func (s *Store) FindByID(ctx context.Context, id string) (booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok {
		return booking.Reservation{}, fmt.Errorf("reservation %s: %w", id, booking.ErrNotFound)
	}
	return r.Clone(), nil
}

func (s *Store) FindByUnit(ctx context.Context, unitID string) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byUnit[unitID]), nil
}

func (s *Store) FindByGuest(ctx context.Context, guestID string) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(s.byGuest[guestID]), nil
}

func (s *Store) FindActiveOverlapping(ctx context.Context, unitID string, rng booking.DateRange) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return booking.ActiveConflicts(s.collect(s.byUnit[unitID]), unitID, rng), nil
}

func (s *Store) FindExpiredActive(ctx context.Context, asOf booking.Date) ([]booking.Reservation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []booking.Reservation
	for _, r := range s.byID {
		if r.Status == booking.StatusConfirmed && r.CheckOut.Before(asOf) {
			out = append(out, r.Clone())
		}
	}
	sortByCheckIn(out)
	return out, nil
}

func (s *Store) WithUnitLock(ctx context.Context, unitID string, fn func(ctx context.Context, tx booking.Store) error) error {
	l := s.unitLock(unitID)
	l.Lock()
	defer l.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", booking.ErrStoreFailure, err)
	}
	return fn(ctx, s)
}

func (s *Store) unitLock(unitID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.unitLocks[unitID]
	if !ok {
		l = &sync.Mutex{}
		s.unitLocks[unitID] = l
	}
	return l
}

// collect must run under s.mu.
func (s *Store) collect(ids []string) []booking.Reservation {
	out := make([]booking.Reservation, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.byID[id].Clone())
	}
	sortByCheckIn(out)
	return out
}

func sortByCheckIn(rs []booking.Reservation) {
	sort.SliceStable(rs, func(i, j int) bool {
		if c := rs[i].CheckIn.Compare(rs[j].CheckIn); c != 0 {
			return c < 0
		}
		return rs[i].CreatedAt.Before(rs[j].CreatedAt)
	})
}
