package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
)

// Units is an in-memory listing directory.
type Units struct {
	mu    sync.RWMutex
	units map[string]booking.Unit
}

func NewUnits(units ...booking.Unit) *Units {
	u := &Units{units: make(map[string]booking.Unit)}
	for _, x := range units {
		u.Put(x)
	}
	return u
}

// LoadUnits reads a JSON array of units, used to seed STORE=memory runs.
func LoadUnits(path string) (*Units, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read units file: %w", err)
	}
	var units []booking.Unit
	if err := json.Unmarshal(b, &units); err != nil {
		return nil, fmt.Errorf("decode units file: %w", err)
	}
	return NewUnits(units...), nil
}

func (u *Units) Put(unit booking.Unit) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.units[unit.ID] = unit
}

func (u *Units) Unit(ctx context.Context, unitID string) (booking.Unit, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	unit, ok := u.units[unitID]
	if !ok {
		return booking.Unit{}, fmt.Errorf("unit %s: %w", unitID, booking.ErrNotFound)
	}
	return unit, nil
}

// Reviews records which reservations already carry a review.
type Reviews struct {
	mu       sync.RWMutex
	reviewed map[string]bool
}

func NewReviews() *Reviews {
	return &Reviews{reviewed: make(map[string]bool)}
}

func (r *Reviews) MarkReviewed(reservationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviewed[reservationID] = true
}

func (r *Reviews) HasReview(ctx context.Context, reservationID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reviewed[reservationID], nil
}
