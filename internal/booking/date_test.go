package booking

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-10")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2025, time.June, 10), d)
	assert.Equal(t, "2025-06-10", d.String())

	_, err = ParseDate("10/06/2025")
	assert.Error(t, err)
}

func TestDateOfUsesCalendarDayOfLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	// 20:00 UTC on the 9th is already the 10th in UTC+7
	instant := time.Date(2025, 6, 9, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, MustDate("2025-06-09"), DateOf(instant))
	assert.Equal(t, MustDate("2025-06-10"), DateOf(instant.In(jakarta)))
}

func TestDateArithmetic(t *testing.T) {
	d := MustDate("2025-02-27")
	assert.Equal(t, MustDate("2025-03-01"), d.AddDays(2))
	assert.Equal(t, 2, d.DaysUntil(MustDate("2025-03-01")))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.True(t, d.AddDays(1).After(d))
	assert.Equal(t, 0, d.Compare(MustDate("2025-02-27")))
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}
	b, err := json.Marshal(wrapper{D: MustDate("2025-06-10")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2025-06-10"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2025-12-31"}`), &w))
	assert.Equal(t, MustDate("2025-12-31"), w.D)

	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &w))
	assert.True(t, w.D.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"d":"yesterday"}`), &w))
}
