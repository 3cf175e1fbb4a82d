package httpx

import (
	"errors"
	"net/http"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/ariefcatur/go-lodging-reservations.git/internal/logx"
)

// AppError is what handlers hand to writeError; anything else becomes a 500.
type AppError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var errorTable = []struct {
	target error
	status int
	code   string
}{
	{booking.ErrNotFound, http.StatusNotFound, "not_found"},
	{booking.ErrNotOwner, http.StatusForbidden, "not_owner"},
	{booking.ErrTooLateToCancel, http.StatusConflict, "too_late_to_cancel"},
	{booking.ErrAlreadyTerminal, http.StatusConflict, "already_terminal"},
	{booking.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{booking.ErrUnavailable, http.StatusConflict, "unavailable"},
	{booking.ErrPaymentRejected, http.StatusPaymentRequired, "payment_rejected"},
	{booking.ErrPaymentMismatch, http.StatusConflict, "payment_mismatch"},
	{booking.ErrInvalidRange, http.StatusBadRequest, "invalid_range"},
	{booking.ErrInvalidStay, http.StatusBadRequest, "invalid_stay"},
	{booking.ErrStayTooLong, http.StatusBadRequest, "stay_too_long"},
	{booking.ErrInvalidRate, http.StatusBadRequest, "invalid_rate"},
	{booking.ErrInvalidGuestCount, http.StatusBadRequest, "invalid_guest_count"},
	{booking.ErrPastCheckIn, http.StatusBadRequest, "past_check_in"},
	{booking.ErrCapacityExceeded, http.StatusBadRequest, "capacity_exceeded"},
	{booking.ErrUnitInactive, http.StatusBadRequest, "unit_inactive"},
	{booking.ErrStoreFailure, http.StatusServiceUnavailable, "store_failure"},
}

// toAppError maps a booking error kind onto its HTTP shape.
func toAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, e := range errorTable {
		if errors.Is(err, e.target) {
			return &AppError{StatusCode: e.status, Code: e.code, Message: err.Error(), Err: err}
		}
	}
	return &AppError{StatusCode: http.StatusInternalServerError, Code: "internal", Message: "an unexpected error occurred", Err: err}
}

func badRequest(msg string, err error) *AppError {
	return &AppError{StatusCode: http.StatusBadRequest, Code: "invalid_request", Message: msg, Err: err}
}

func writeError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		logx.Logger.WithError(err).Error("request failed")
	}
	writeJSON(w, appErr.StatusCode, ErrorResponse{Code: appErr.Code, Message: appErr.Message})
}
