package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ReservationStore struct {
	pool *pgxpool.Pool
	q    dbtx
}

func NewReservationStore(pool *pgxpool.Pool) *ReservationStore {
	return &ReservationStore{pool: pool, q: pool}
}

var _ booking.Store = (*ReservationStore)(nil)

const selectReservation = `
	SELECT id, unit_id, guest_id, check_in, check_out, guest_count, total_price::text,
	       status, created_at, confirmed_at, payment_ref, completed_at, cancelled_at,
	       cancellation_reason, version
	FROM reservations`

const (
	sqlstateExclusionViolation = "23P01"
	sqlstateUniqueViolation    = "23505"
)

func (s *ReservationStore) Save(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	if r.Version == 0 {
		return s.insert(ctx, r)
	}
	return s.update(ctx, r)
}

func (s *ReservationStore) insert(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	_, err := s.q.Exec(ctx, `
		INSERT INTO reservations(id, unit_id, guest_id, check_in, check_out, guest_count,
		                         total_price, status, created_at, version)
		VALUES ($1,$2,$3,$4,$5,$6,$7::numeric,$8,$9,1)`,
		r.ID, r.UnitID, r.GuestID, r.CheckIn.Time(), r.CheckOut.Time(), r.GuestCount,
		r.TotalPrice.StringFixed(2), string(r.Status), r.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case sqlstateExclusionViolation:
				return booking.Reservation{}, fmt.Errorf("%w: %s", booking.ErrUnavailable, pgErr.Message)
			case sqlstateUniqueViolation:
				return booking.Reservation{}, fmt.Errorf("%w: reservation %s already exists", booking.ErrVersionConflict, r.ID)
			}
		}
		return booking.Reservation{}, storeErr("insert reservation", err)
	}
	out := r.Clone()
	out.Version = 1
	return out, nil
}

// update writes only the lifecycle columns; identity, stay and price never change.
func (s *ReservationStore) update(ctx context.Context, r booking.Reservation) (booking.Reservation, error) {
	ct, err := s.q.Exec(ctx, `
		UPDATE reservations
		SET status=$3, confirmed_at=$4, payment_ref=$5, completed_at=$6,
		    cancelled_at=$7, cancellation_reason=$8, version=version+1
		WHERE id=$1 AND version=$2`,
		r.ID, r.Version, string(r.Status), r.ConfirmedAt, r.PaymentRef, r.CompletedAt,
		r.CancelledAt, r.CancellationReason,
	)
	if err != nil {
		return booking.Reservation{}, storeErr("update reservation", err)
	}
	if ct.RowsAffected() != 1 {
		// either gone or someone else moved it first
		if _, ferr := s.FindByID(ctx, r.ID); ferr != nil {
			return booking.Reservation{}, ferr
		}
		return booking.Reservation{}, fmt.Errorf("%w: reservation %s at version %d", booking.ErrVersionConflict, r.ID, r.Version)
	}
	return s.FindByID(ctx, r.ID)
}

func (s *ReservationStore) FindByID(ctx context.Context, id string) (booking.Reservation, error) {
	r, err := scanReservation(s.q.QueryRow(ctx, selectReservation+` WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.Reservation{}, fmt.Errorf("reservation %s: %w", id, booking.ErrNotFound)
	}
	if err != nil {
		return booking.Reservation{}, storeErr("find reservation", err)
	}
	return r, nil
}

func (s *ReservationStore) FindByUnit(ctx context.Context, unitID string) ([]booking.Reservation, error) {
	return s.list(ctx, selectReservation+` WHERE unit_id=$1 ORDER BY check_in, created_at`, unitID)
}

func (s *ReservationStore) FindByGuest(ctx context.Context, guestID string) ([]booking.Reservation, error) {
	return s.list(ctx, selectReservation+` WHERE guest_id=$1 ORDER BY check_in, created_at`, guestID)
}

func (s *ReservationStore) FindActiveOverlapping(ctx context.Context, unitID string, rng booking.DateRange) ([]booking.Reservation, error) {
	return s.list(ctx, selectReservation+`
		WHERE unit_id=$1
		  AND status IN ('PENDING','CONFIRMED')
		  AND check_in < $3 AND $2 < check_out
		ORDER BY check_in`,
		unitID, rng.CheckIn.Time(), rng.CheckOut.Time())
}

func (s *ReservationStore) FindExpiredActive(ctx context.Context, asOf booking.Date) ([]booking.Reservation, error) {
	return s.list(ctx, selectReservation+`
		WHERE status='CONFIRMED' AND check_out < $1
		ORDER BY check_in`, asOf.Time())
}

// WithUnitLock: lock baris unit (FOR UPDATE) -> jalankan fn dalam tx yang sama -> commit.
func (s *ReservationStore) WithUnitLock(ctx context.Context, unitID string, fn func(ctx context.Context, tx booking.Store) error) error {
	if s.pool == nil {
		return errors.New("postgres: nested unit lock")
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked string
	err = tx.QueryRow(ctx, `SELECT id FROM units WHERE id=$1 FOR UPDATE`, unitID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("unit %s: %w", unitID, booking.ErrNotFound)
	}
	if err != nil {
		return storeErr("lock unit", err)
	}

	if err := fn(ctx, &ReservationStore{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit", err)
	}
	return nil
}

func (s *ReservationStore) list(ctx context.Context, sql string, args ...any) ([]booking.Reservation, error) {
	rows, err := s.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr("query reservations", err)
	}
	defer rows.Close()

	var out []booking.Reservation
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, storeErr("scan reservation", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("iterate reservations", err)
	}
	return out, nil
}

func scanReservation(row pgx.Row) (booking.Reservation, error) {
	var (
		r                 booking.Reservation
		checkIn, checkOut time.Time
		price, status     string
	)
	err := row.Scan(&r.ID, &r.UnitID, &r.GuestID, &checkIn, &checkOut, &r.GuestCount, &price,
		&status, &r.CreatedAt, &r.ConfirmedAt, &r.PaymentRef, &r.CompletedAt, &r.CancelledAt,
		&r.CancellationReason, &r.Version)
	if err != nil {
		return booking.Reservation{}, err
	}
	r.CheckIn = booking.DateOf(checkIn)
	r.CheckOut = booking.DateOf(checkOut)
	if r.TotalPrice, err = decimal.NewFromString(price); err != nil {
		return booking.Reservation{}, fmt.Errorf("total_price %q: %w", price, err)
	}
	if r.Status, err = booking.ParseStatus(status); err != nil {
		return booking.Reservation{}, err
	}
	return r, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", booking.ErrStoreFailure, op, err)
}
