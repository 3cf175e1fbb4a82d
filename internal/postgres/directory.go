package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// UnitDirectory reads listing data owned by the listing service.
type UnitDirectory struct{ DB *pgxpool.Pool }

func (d *UnitDirectory) Unit(ctx context.Context, unitID string) (booking.Unit, error) {
	var (
		u    booking.Unit
		rate string
	)
	err := d.DB.QueryRow(ctx, `SELECT id, nightly_rate::text, capacity, active FROM units WHERE id=$1`, unitID).
		Scan(&u.ID, &rate, &u.Capacity, &u.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Unit{}, fmt.Errorf("unit %s: %w", unitID, booking.ErrNotFound)
	}
	if err != nil {
		return booking.Unit{}, storeErr("find unit", err)
	}
	if u.NightlyRate, err = decimal.NewFromString(rate); err != nil {
		return booking.Unit{}, fmt.Errorf("unit %s nightly_rate %q: %w", unitID, rate, err)
	}
	return u, nil
}

// ReviewLookup answers whether a reservation already has its review.
type ReviewLookup struct{ DB *pgxpool.Pool }

func (l *ReviewLookup) HasReview(ctx context.Context, reservationID string) (bool, error) {
	var exists bool
	err := l.DB.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM reviews WHERE reservation_id=$1)`, reservationID).Scan(&exists)
	if err != nil {
		return false, storeErr("review lookup", err)
	}
	return exists, nil
}
