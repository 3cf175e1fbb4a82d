package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/redisx"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/sweeper"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Reservations interface {
	Book(ctx context.Context, req booking.BookRequest) (booking.Reservation, error)
	Get(ctx context.Context, id string) (booking.Reservation, error)
	Cancel(ctx context.Context, id, requesterID, reason string) (booking.Reservation, error)
	Pay(ctx context.Context, id string) (booking.Reservation, error)
	ListByUnit(ctx context.Context, unitID string) ([]booking.Reservation, error)
	ListByGuest(ctx context.Context, guestID string) ([]booking.Reservation, error)
	IsAvailable(ctx context.Context, unitID string, checkIn, checkOut booking.Date) (bool, error)
	FindCompletedWithoutReview(ctx context.Context, guestID string) ([]booking.Reservation, error)
}

// StatusCache is the Redis fast path; *redisx.Cache implements it.
type StatusCache interface {
	LookupBooking(ctx context.Context, idemKey string) (string, bool, error)
	RememberBooking(ctx context.Context, idemKey, reservationID string) error
	Status(ctx context.Context, reservationID string) (redisx.StatusEntry, bool, error)
	SetStatus(ctx context.Context, r booking.Reservation) error
}

type SweepRunner interface {
	RunOnce(ctx context.Context) (sweeper.Result, error)
}

type ReservationsHandler struct {
	Bookings Reservations
	Cache    StatusCache // optional
	Sweeper  SweepRunner // optional
}

type CreateReservationReq struct {
	UnitID     string `json:"unit_id" validate:"required"`
	GuestID    string `json:"guest_id" validate:"required"`
	CheckIn    string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" validate:"required,datetime=2006-01-02"`
	GuestCount int    `json:"guest_count" validate:"required,min=1"`
}

type CancelReservationReq struct {
	GuestID string `json:"guest_id" validate:"required"`
	Reason  string `json:"reason" validate:"max=500"`
}

type CreateReservationResp struct {
	booking.Reservation
	Idempotent bool `json:"idempotent"`
}

type AvailabilityResp struct {
	UnitID    string       `json:"unit_id"`
	CheckIn   booking.Date `json:"check_in"`
	CheckOut  booking.Date `json:"check_out"`
	Available bool         `json:"available"`
}

func (h *ReservationsHandler) Register(r chi.Router) {
	r.Post("/reservations", h.createReservation)
	r.Get("/reservations/{id}", h.getReservation)
	r.Get("/reservations/{id}/status", h.getStatus)
	r.Post("/reservations/{id}/cancel", h.cancelReservation)
	r.Post("/reservations/{id}/pay", h.payReservation)
	r.Get("/units/{id}/reservations", h.listByUnit)
	r.Get("/units/{id}/availability", h.availability)
	r.Get("/guests/{id}/reservations", h.listByGuest)
	r.Get("/guests/{id}/reviewable", h.listReviewable)
	if h.Sweeper != nil {
		r.Post("/admin/sweep", h.runSweep)
	}
}

func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest("invalid json", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return badRequest("invalid field "+verrs[0].Field()+" ("+verrs[0].Tag()+")", err)
		}
		return badRequest("invalid request", err)
	}
	return nil
}

func (h *ReservationsHandler) createReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationReq
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// Fast-path idempotency via Redis (DB tetap jadi kebenaran)
	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" && h.Cache != nil {
		if id, ok, err := h.Cache.LookupBooking(ctx, idemKey); err == nil && ok {
			if res, err := h.Bookings.Get(ctx, id); err == nil {
				writeJSON(w, http.StatusOK, CreateReservationResp{Reservation: res, Idempotent: true})
				return
			}
		}
	}

	// format already checked by the validator
	checkIn, _ := booking.ParseDate(req.CheckIn)
	checkOut, _ := booking.ParseDate(req.CheckOut)

	res, err := h.Bookings.Book(ctx, booking.BookRequest{
		UnitID:     req.UnitID,
		GuestID:    req.GuestID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: req.GuestCount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if h.Cache != nil {
		if idemKey != "" {
			if err := h.Cache.RememberBooking(ctx, idemKey, res.ID); err != nil {
				logx.Logger.WithError(err).WithField("reservation_id", res.ID).Warn("idempotency key not stored")
			}
		}
		_ = h.Cache.SetStatus(ctx, res)
	}
	writeJSON(w, http.StatusCreated, CreateReservationResp{Reservation: res})
}

func (h *ReservationsHandler) getReservation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	res, err := h.Bookings.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationsHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	// 1) coba cache
	if h.Cache != nil {
		if e, ok, err := h.Cache.Status(ctx, id); err == nil && ok {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}

	// 2) fallback store
	res, err := h.Bookings.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if h.Cache != nil {
		_ = h.Cache.SetStatus(ctx, res)
	}
	writeJSON(w, http.StatusOK, redisx.StatusEntry{ID: res.ID, Status: res.Status, Version: res.Version, UpdatedAt: time.Now().UTC()})
}

func (h *ReservationsHandler) cancelReservation(w http.ResponseWriter, r *http.Request) {
	var req CancelReservationReq
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Bookings.Cancel(ctx, chi.URLParam(r, "id"), req.GuestID, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationsHandler) payReservation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.Bookings.Pay(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *ReservationsHandler) listByUnit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	h.writeList(w)(h.Bookings.ListByUnit(ctx, chi.URLParam(r, "id")))
}

func (h *ReservationsHandler) listByGuest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	h.writeList(w)(h.Bookings.ListByGuest(ctx, chi.URLParam(r, "id")))
}

func (h *ReservationsHandler) listReviewable(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	h.writeList(w)(h.Bookings.FindCompletedWithoutReview(ctx, chi.URLParam(r, "id")))
}

func (h *ReservationsHandler) writeList(w http.ResponseWriter) func([]booking.Reservation, error) {
	return func(rs []booking.Reservation, err error) {
		if err != nil {
			writeError(w, err)
			return
		}
		if rs == nil {
			rs = []booking.Reservation{}
		}
		writeJSON(w, http.StatusOK, rs)
	}
}

func (h *ReservationsHandler) availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	checkIn, err := booking.ParseDate(q.Get("check_in"))
	if err != nil {
		writeError(w, badRequest("check_in must be YYYY-MM-DD", err))
		return
	}
	checkOut, err := booking.ParseDate(q.Get("check_out"))
	if err != nil {
		writeError(w, badRequest("check_out must be YYYY-MM-DD", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	unitID := chi.URLParam(r, "id")
	ok, err := h.Bookings.IsAvailable(ctx, unitID, checkIn, checkOut)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AvailabilityResp{UnitID: unitID, CheckIn: checkIn, CheckOut: checkOut, Available: ok})
}

func (h *ReservationsHandler) runSweep(w http.ResponseWriter, r *http.Request) {
	res, err := h.Sweeper.RunOnce(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
