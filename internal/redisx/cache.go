package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-lodging-reservations.git/internal/booking"
	"github.com/redis/go-redis/v9"
)

// Cache holds the fast-path shortcuts around the reservation store. Postgres
// stays the source of truth; every method here is safe to lose.
type Cache struct {
	rdb redis.Cmdable
}

func NewCache(rdb redis.Cmdable) *Cache { return &Cache{rdb: rdb} }

type StatusEntry struct {
	ID        string         `json:"id"`
	Status    booking.Status `json:"status"`
	Version   int64          `json:"version"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (c *Cache) LookupBooking(ctx context.Context, idemKey string) (string, bool, error) {
	id, err := c.rdb.Get(ctx, fmt.Sprintf(KeyIdemBooking, idemKey)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (c *Cache) RememberBooking(ctx context.Context, idemKey, reservationID string) error {
	return c.rdb.Set(ctx, fmt.Sprintf(KeyIdemBooking, idemKey), reservationID, TTLIdempotency).Err()
}

func (c *Cache) Status(ctx context.Context, reservationID string) (StatusEntry, bool, error) {
	raw, err := c.rdb.Get(ctx, fmt.Sprintf(KeyReservationStatus, reservationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return StatusEntry{}, false, nil
	}
	if err != nil {
		return StatusEntry{}, false, err
	}
	var e StatusEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return StatusEntry{}, false, fmt.Errorf("decode status cache: %w", err)
	}
	return e, true, nil
}

// setIfNewer: KEYS[1]=status key, ARGV = entry json, version, ttl ms.
// An entry already holding a higher version is left alone.
var setIfNewer = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local ok, e = pcall(cjson.decode, cur)
  if ok and tonumber(e['version']) and tonumber(e['version']) > tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// SetStatus caches r's status unless a newer version is already cached, so
// out-of-order notifications never roll the cache back.
func (c *Cache) SetStatus(ctx context.Context, r booking.Reservation) error {
	b, err := json.Marshal(StatusEntry{ID: r.ID, Status: r.Status, Version: r.Version, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return err
	}
	key := fmt.Sprintf(KeyReservationStatus, r.ID)
	return setIfNewer.Run(ctx, c.rdb, []string{key}, string(b), r.Version, TTLStatusCache.Milliseconds()).Err()
}

// Notify keeps the status cache in step with every lifecycle event.
func (c *Cache) Notify(ctx context.Context, ev booking.Event) error {
	return c.SetStatus(ctx, ev.Reservation)
}

// MarkProcessed claims an event id for a consumer. It reports false when the
// id was already claimed.
func (c *Cache) MarkProcessed(ctx context.Context, service, eventID string) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf(KeyDedup, service, eventID), "1", TTLDedup).Result()
}

// ForgetProcessed releases a claim so a redelivered event is handled again.
func (c *Cache) ForgetProcessed(ctx context.Context, service, eventID string) error {
	return c.rdb.Del(ctx, fmt.Sprintf(KeyDedup, service, eventID)).Err()
}
