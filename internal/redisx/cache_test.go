package redisx

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// needs a live redis: REDIS_TEST_ADDR=localhost:6379 go test ./internal/redisx
func newTestCache(t *testing.T) *Cache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	rdb := New(addr)
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return NewCache(rdb)
}

func TestBookingIdempotency(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	_, ok, err := c.LookupBooking(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.RememberBooking(ctx, key, "r1"))
	id, ok, err := c.LookupBooking(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "r1", id)
}

func TestStatusCacheFollowsEvents(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	r := booking.Reservation{ID: uuid.NewString(), Status: booking.StatusPending, Version: 1}

	_, ok, err := c.Status(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetStatus(ctx, r))
	r.Status, r.Version = booking.StatusConfirmed, 2
	require.NoError(t, c.Notify(ctx, booking.Event{Type: booking.EventReservationConfirmed, Reservation: r}))

	e, ok, err := c.Status(ctx, r.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, booking.StatusConfirmed, e.Status)
	assert.Equal(t, int64(2), e.Version)
}

func TestStatusCacheIgnoresOlderVersion(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	id := uuid.NewString()

	cancelled := booking.Reservation{ID: id, Status: booking.StatusCancelled, Version: 3}
	confirmed := booking.Reservation{ID: id, Status: booking.StatusConfirmed, Version: 2}
	require.NoError(t, c.SetStatus(ctx, cancelled))
	require.NoError(t, c.SetStatus(ctx, confirmed)) // arrives late

	e, ok, err := c.Status(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, booking.StatusCancelled, e.Status)
	assert.Equal(t, int64(3), e.Version)

	ttl, err := c.rdb.PTTL(ctx, "reservation_status:"+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestDedup(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	ev := uuid.NewString()

	first, err := c.MarkProcessed(ctx, "payments", ev)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := c.MarkProcessed(ctx, "payments", ev)
	require.NoError(t, err)
	assert.False(t, again)

	found, err := exists(ctx, c.rdb, "dedup:payments:"+ev)
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, c.ForgetProcessed(ctx, "payments", ev))
	first, err = c.MarkProcessed(ctx, "payments", ev)
	require.NoError(t, err)
	assert.True(t, first)
}

func exists(ctx context.Context, rdb redis.Cmdable, key string) (bool, error) {
	n, err := rdb.Exists(ctx, key).Result()
	return n > 0, err
}
