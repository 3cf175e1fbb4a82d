package payments

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockCharge(t *testing.T) {
	ctx := context.Background()
	m := NewMock()
	m.Limit = decimal.NewFromInt(1000)
	m.Decline("r2", "CARD_DECLINED")

	tests := []struct {
		name     string
		id       string
		amount   string
		approved bool
		reason   string
	}{
		{"approved", "r1", "500", true, ""},
		{"declined", "r2", "500", false, "CARD_DECLINED"},
		{"at limit", "r3", "1000", true, ""},
		{"over limit", "r4", "1000.01", false, "LIMIT_EXCEEDED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := m.Charge(ctx, tt.id, decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.approved, res.Approved)
			assert.Equal(t, tt.reason, res.Reason)
			assert.True(t, res.Amount.Equal(decimal.RequireFromString(tt.amount)))
			if tt.approved {
				assert.Contains(t, res.Reference, "mock-")
			} else {
				assert.Empty(t, res.Reference)
			}
		})
	}
	assert.Len(t, m.Charges(), len(tests))
}

func TestMockChargeCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMock().Charge(ctx, "r1", decimal.NewFromInt(1))
	assert.ErrorIs(t, err, context.Canceled)
}
