package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	allowed := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCancelled}: true,
		{StatusConfirmed, StatusCompleted}: true,
	}
	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCheckTransition(t *testing.T) {
	assert.NoError(t, checkTransition(StatusPending, StatusConfirmed))
	assert.ErrorIs(t, checkTransition(StatusCancelled, StatusConfirmed), ErrAlreadyTerminal)
	assert.ErrorIs(t, checkTransition(StatusCompleted, StatusCancelled), ErrAlreadyTerminal)
	assert.ErrorIs(t, checkTransition(StatusPending, StatusCompleted), ErrInvalidTransition)
	assert.ErrorIs(t, checkTransition(StatusConfirmed, StatusConfirmed), ErrInvalidTransition)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("CONFIRMED")
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)
	assert.True(t, st.IsActive())
	assert.False(t, st.IsTerminal())

	_, err = ParseStatus("EXPIRED")
	assert.Error(t, err)
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrPastCheckIn))
	assert.True(t, IsValidation(ErrNotOwner))
	assert.False(t, IsValidation(ErrUnavailable))
	assert.False(t, IsValidation(ErrStoreFailure))
}
