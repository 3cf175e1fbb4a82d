package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rng(in, out string) DateRange {
	return DateRange{CheckIn: MustDate(in), CheckOut: MustDate(out)}
}

func TestDateRangeOverlaps(t *testing.T) {
	base := rng("2025-06-10", "2025-06-15")
	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"identical", rng("2025-06-10", "2025-06-15"), true},
		{"inside", rng("2025-06-11", "2025-06-12"), true},
		{"covering", rng("2025-06-01", "2025-06-30"), true},
		{"overlap start", rng("2025-06-08", "2025-06-11"), true},
		{"overlap end", rng("2025-06-14", "2025-06-20"), true},
		{"checkout on check-in day", rng("2025-06-05", "2025-06-10"), false},
		{"check-in on checkout day", rng("2025-06-15", "2025-06-18"), false},
		{"far before", rng("2025-05-01", "2025-05-03"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap is symmetric")
		})
	}
}

func TestDateRangeValidate(t *testing.T) {
	assert.NoError(t, rng("2025-06-10", "2025-06-11").Validate())
	assert.ErrorIs(t, rng("2025-06-10", "2025-06-10").Validate(), ErrInvalidRange)
	assert.ErrorIs(t, rng("2025-06-10", "2025-06-09").Validate(), ErrInvalidRange)
	assert.ErrorIs(t, DateRange{CheckIn: MustDate("2025-06-10")}.Validate(), ErrInvalidRange)
}

func TestActiveConflictsIgnoresTerminalAndOtherUnits(t *testing.T) {
	mk := func(id, unit string, st Status, in, out string) Reservation {
		return Reservation{ID: id, UnitID: unit, Status: st, CheckIn: MustDate(in), CheckOut: MustDate(out)}
	}
	candidates := []Reservation{
		mk("pending", "u1", StatusPending, "2025-06-10", "2025-06-12"),
		mk("confirmed", "u1", StatusConfirmed, "2025-06-12", "2025-06-14"),
		mk("cancelled", "u1", StatusCancelled, "2025-06-10", "2025-06-14"),
		mk("completed", "u1", StatusCompleted, "2025-06-10", "2025-06-14"),
		mk("other-unit", "u2", StatusPending, "2025-06-10", "2025-06-14"),
		mk("adjacent", "u1", StatusConfirmed, "2025-06-14", "2025-06-16"),
	}
	got := ActiveConflicts(candidates, "u1", rng("2025-06-11", "2025-06-14"))
	ids := make([]string, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	assert.ElementsMatch(t, []string{"pending", "confirmed"}, ids)
}

type finderFunc func(ctx context.Context, unitID string, r DateRange) ([]Reservation, error)

func (f finderFunc) FindActiveOverlapping(ctx context.Context, unitID string, r DateRange) ([]Reservation, error) {
	return f(ctx, unitID, r)
}

func TestCheckerIsAvailable(t *testing.T) {
	busy := Reservation{ID: "r1", UnitID: "u1", Status: StatusPending, CheckIn: MustDate("2025-06-10"), CheckOut: MustDate("2025-06-12")}
	c := Checker{Store: finderFunc(func(_ context.Context, unitID string, r DateRange) ([]Reservation, error) {
		return ActiveConflicts([]Reservation{busy}, unitID, r), nil
	})}
	ctx := context.Background()

	ok, err := c.IsAvailable(ctx, "u1", MustDate("2025-06-11"), MustDate("2025-06-13"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.IsAvailable(ctx, "u1", MustDate("2025-06-12"), MustDate("2025-06-13"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = c.IsAvailable(ctx, "u1", MustDate("2025-06-12"), MustDate("2025-06-12"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	boom := errors.New("boom")
	c = Checker{Store: finderFunc(func(context.Context, string, DateRange) ([]Reservation, error) { return nil, boom })}
	_, err = c.IsAvailable(ctx, "u1", MustDate("2025-06-12"), MustDate("2025-06-13"))
	assert.ErrorIs(t, err, boom)
}
