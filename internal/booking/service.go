package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultCancelWindowDays: cancelling is refused once today+2 days is past check-in.
const DefaultCancelWindowDays = 2

// MaxNights caps a single reservation.
const MaxNights = 365

type BookRequest struct {
	UnitID     string
	GuestID    string
	CheckIn    Date
	CheckOut   Date
	GuestCount int
}

// Service drives reservations through their lifecycle. Store and Units are
// required; the remaining collaborators are optional.
type Service struct {
	Store    Store
	Units    Units
	Payments Payments
	Reviews  Reviews
	Notifier Notifier
	Clock    Clock

	// Location decides which calendar day "today" is. Defaults to UTC.
	Location         *time.Location
	CancelWindowDays int
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

// Today is the current calendar date in the service's location.
func (s *Service) Today() Date {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(s.now().In(loc))
}

// cancelWindow falls back to the default for a zero-value Service; config
// rejects an explicit 0.
func (s *Service) cancelWindow() int {
	if s.CancelWindowDays <= 0 {
		return DefaultCancelWindowDays
	}
	return s.CancelWindowDays
}

// Book validates the request, prices it and persists a PENDING reservation.
// The overlap check is repeated under the unit lock right before the insert.
func (s *Service) Book(ctx context.Context, req BookRequest) (Reservation, error) {
	rng := DateRange{CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	if rng.Nights() < 1 {
		return Reservation{}, fmt.Errorf("%w: check-out %s must be after check-in %s", ErrInvalidStay, req.CheckOut, req.CheckIn)
	}
	if n := rng.Nights(); n > MaxNights {
		return Reservation{}, fmt.Errorf("%w: %d nights, max %d", ErrStayTooLong, n, MaxNights)
	}
	if req.GuestCount < 1 {
		return Reservation{}, fmt.Errorf("%w: %d", ErrInvalidGuestCount, req.GuestCount)
	}
	if today := s.Today(); !today.Before(req.CheckIn) {
		return Reservation{}, fmt.Errorf("%w: check-in %s, today %s", ErrPastCheckIn, req.CheckIn, today)
	}

	unit, err := s.Units.Unit(ctx, req.UnitID)
	if err != nil {
		return Reservation{}, fmt.Errorf("load unit %s: %w", req.UnitID, err)
	}
	if !unit.Active {
		return Reservation{}, fmt.Errorf("%w: %s", ErrUnitInactive, unit.ID)
	}
	if req.GuestCount > unit.Capacity {
		return Reservation{}, fmt.Errorf("%w: %d guests, capacity %d", ErrCapacityExceeded, req.GuestCount, unit.Capacity)
	}

	price, err := ComputePrice(unit.NightlyRate, req.CheckIn, req.CheckOut)
	if err != nil {
		return Reservation{}, err
	}

	res := Reservation{
		ID:         uuid.NewString(),
		UnitID:     req.UnitID,
		GuestID:    req.GuestID,
		CheckIn:    req.CheckIn,
		CheckOut:   req.CheckOut,
		GuestCount: req.GuestCount,
		TotalPrice: price,
		Status:     StatusPending,
		CreatedAt:  s.now().UTC(),
	}

	var saved Reservation
	err = s.Store.WithUnitLock(ctx, req.UnitID, func(ctx context.Context, tx Store) error {
		conflicts, err := tx.FindActiveOverlapping(ctx, req.UnitID, rng)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return fmt.Errorf("%w: overlaps reservation %s (%s..%s)",
				ErrUnavailable, conflicts[0].ID, conflicts[0].CheckIn, conflicts[0].CheckOut)
		}
		saved, err = tx.Save(ctx, res)
		return err
	})
	if err != nil {
		return Reservation{}, err
	}

	logx.Logger.WithFields(fields(saved)).Info("reservation created")
	s.notify(ctx, EventReservationCreated, saved, "")
	return saved, nil
}

// Cancel is the guest-initiated transition to CANCELLED.
func (s *Service) Cancel(ctx context.Context, id, requesterID, reason string) (Reservation, error) {
	cur, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if cur.GuestID != requesterID {
		return Reservation{}, fmt.Errorf("%w: reservation %s", ErrNotOwner, id)
	}
	if err := checkTransition(cur.Status, StatusCancelled); err != nil {
		return Reservation{}, err
	}
	// calendar-day granularity: today+window must not be past check-in
	if deadline := s.Today().AddDays(s.cancelWindow()); deadline.After(cur.CheckIn) {
		return Reservation{}, fmt.Errorf("%w: check-in %s is within %d days", ErrTooLateToCancel, cur.CheckIn, s.cancelWindow())
	}

	next := cur.Clone()
	now := s.now().UTC()
	next.Status = StatusCancelled
	next.CancelledAt = &now
	next.CancellationReason = &reason

	saved, err := s.persist(ctx, next)
	if err != nil {
		return Reservation{}, err
	}
	logx.Logger.WithFields(fields(saved)).WithField("reason", reason).Info("reservation cancelled")
	s.notify(ctx, EventReservationCancelled, saved, reason)
	return saved, nil
}

// ApplyPayment is the approve/reject boundary. Approval of the exact total moves
// PENDING to CONFIRMED; a rejection leaves the reservation untouched.
func (s *Service) ApplyPayment(ctx context.Context, id string, result PaymentResult) (Reservation, error) {
	cur, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if err := checkTransition(cur.Status, StatusConfirmed); err != nil {
		return Reservation{}, err
	}
	if !result.Approved {
		logx.Logger.WithFields(fields(cur)).WithField("reason", result.Reason).Warn("payment rejected")
		s.notify(ctx, EventPaymentRejected, cur, result.Reason)
		return cur, fmt.Errorf("%w: %s", ErrPaymentRejected, result.Reason)
	}
	if !result.Amount.Equal(cur.TotalPrice) {
		return Reservation{}, fmt.Errorf("%w: paid %s, expected %s", ErrPaymentMismatch, result.Amount, cur.TotalPrice)
	}

	next := cur.Clone()
	now := s.now().UTC()
	next.Status = StatusConfirmed
	next.ConfirmedAt = &now
	next.PaymentRef = result.Reference

	saved, err := s.persist(ctx, next)
	if err != nil {
		return Reservation{}, err
	}
	logx.Logger.WithFields(fields(saved)).WithField("payment_ref", result.Reference).Info("reservation confirmed")
	s.notify(ctx, EventReservationConfirmed, saved, "")
	return saved, nil
}

// Pay charges TotalPrice through the Payments collaborator and applies the outcome.
func (s *Service) Pay(ctx context.Context, id string) (Reservation, error) {
	if s.Payments == nil {
		return Reservation{}, errors.New("payments collaborator not configured")
	}
	cur, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if err := checkTransition(cur.Status, StatusConfirmed); err != nil {
		return Reservation{}, err
	}
	result, err := s.Payments.Charge(ctx, cur.ID, cur.TotalPrice)
	if err != nil {
		return Reservation{}, fmt.Errorf("charge reservation %s: %w", cur.ID, err)
	}
	return s.ApplyPayment(ctx, id, result)
}

// Complete moves a CONFIRMED reservation whose checkout day is before asOf to
// COMPLETED. PENDING reservations are never completed.
func (s *Service) Complete(ctx context.Context, id string, asOf Date) (Reservation, error) {
	cur, err := s.Store.FindByID(ctx, id)
	if err != nil {
		return Reservation{}, err
	}
	if err := checkTransition(cur.Status, StatusCompleted); err != nil {
		return Reservation{}, err
	}
	if !cur.CheckOut.Before(asOf) {
		return Reservation{}, fmt.Errorf("%w: checkout %s has not passed as of %s", ErrInvalidTransition, cur.CheckOut, asOf)
	}

	next := cur.Clone()
	now := s.now().UTC()
	next.Status = StatusCompleted
	next.CompletedAt = &now

	saved, err := s.persist(ctx, next)
	if err != nil {
		return Reservation{}, err
	}
	logx.Logger.WithFields(fields(saved)).Info("reservation completed")
	s.notify(ctx, EventReservationCompleted, saved, "")
	return saved, nil
}

// persist saves a transition. Losing a version race means the record left the
// expected source state, which callers see as ErrAlreadyTerminal.
func (s *Service) persist(ctx context.Context, next Reservation) (Reservation, error) {
	saved, err := s.Store.Save(ctx, next)
	if errors.Is(err, ErrVersionConflict) {
		return Reservation{}, fmt.Errorf("%w: %w", ErrAlreadyTerminal, err)
	}
	return saved, err
}

func (s *Service) Get(ctx context.Context, id string) (Reservation, error) {
	return s.Store.FindByID(ctx, id)
}

func (s *Service) ListByUnit(ctx context.Context, unitID string) ([]Reservation, error) {
	return s.Store.FindByUnit(ctx, unitID)
}

func (s *Service) ListByGuest(ctx context.Context, guestID string) ([]Reservation, error) {
	return s.Store.FindByGuest(ctx, guestID)
}

func (s *Service) IsAvailable(ctx context.Context, unitID string, checkIn, checkOut Date) (bool, error) {
	return Checker{Store: s.Store}.IsAvailable(ctx, unitID, checkIn, checkOut)
}

// ExpiredActive lists the CONFIRMED reservations the sweeper should complete.
func (s *Service) ExpiredActive(ctx context.Context, asOf Date) ([]Reservation, error) {
	return s.Store.FindExpiredActive(ctx, asOf)
}

// FindCompletedWithoutReview lists the guest's COMPLETED reservations that are
// still eligible for their single review.
func (s *Service) FindCompletedWithoutReview(ctx context.Context, guestID string) ([]Reservation, error) {
	all, err := s.Store.FindByGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}
	var out []Reservation
	for _, r := range all {
		if r.Status != StatusCompleted {
			continue
		}
		if s.Reviews != nil {
			reviewed, err := s.Reviews.HasReview(ctx, r.ID)
			if err != nil {
				return nil, fmt.Errorf("review lookup for %s: %w", r.ID, err)
			}
			if reviewed {
				continue
			}
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Service) notify(ctx context.Context, typ EventType, r Reservation, reason string) {
	if s.Notifier == nil {
		return
	}
	ev := Event{Type: typ, Reservation: r.Clone(), OccurredAt: s.now().UTC(), Reason: reason}
	if err := s.Notifier.Notify(ctx, ev); err != nil {
		logx.Logger.WithFields(fields(r)).WithError(err).Warnf("notify %s failed", typ)
	}
}

func fields(r Reservation) logrus.Fields {
	return logrus.Fields{
		"reservation_id": r.ID,
		"unit_id":        r.UnitID,
		"guest_id":       r.GuestID,
		"status":         r.Status,
	}
}
