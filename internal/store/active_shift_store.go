package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoActiveShift = errors.New("no active shift")

// ActiveShiftStore caches "driver id -> open shift id" so the open-shift
// lookup can skip Postgres on the hot path. Best effort: a miss falls
// through to the denormalized is_closed column.
type ActiveShiftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewActiveShiftStore(rdb *redis.Client, ttl time.Duration) *ActiveShiftStore {
	return &ActiveShiftStore{rdb: rdb, ttl: ttl}
}

func (s *ActiveShiftStore) key(driverID string) string { return "activeshift:" + driverID }

// Set remembers the driver's open shift (written on a start event).
func (s *ActiveShiftStore) Set(ctx context.Context, driverID, shiftID string) error {
	return s.rdb.Set(ctx, s.key(driverID), shiftID, s.ttl).Err()
}

// Get returns the cached open shift id, or ErrNoActiveShift.
func (s *ActiveShiftStore) Get(ctx context.Context, driverID string) (string, error) {
	id, err := s.rdb.Get(ctx, s.key(driverID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoActiveShift
		}
		return "", err
	}
	return id, nil
}

// Clear drops the cache entry (written on an end event).
func (s *ActiveShiftStore) Clear(ctx context.Context, driverID string) error {
	return s.rdb.Del(ctx, s.key(driverID)).Err()
}
