package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-order-api/internal/domains/orders/ports"
)

const (
	keyPattern = "idem:order:place:%s"
	// DefaultTTL bounds how long a key can replay its order.
	DefaultTTL = 24 * time.Hour
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore shares order placement keys across API replicas through Redis.
// Keys are not part of the database transaction; a rolled back placement is
// cleaned up by Release.
type IdempotencyStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
	now    func() time.Time
}

// NewIdempotencyStore wires a Redis-backed store. A non-positive ttl uses DefaultTTL.
func NewIdempotencyStore(client goredis.UniversalClient, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl, now: time.Now}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var record ports.IdempotencyRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode idempotency record %q: %w", key, err)
	}
	return &record, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	now := s.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	stored, err := s.client.SetNX(ctx, redisKey(record.Key), payload, s.ttl).Result()
	if err != nil {
		return nil, err
	}
	if stored {
		return &record, nil
	}
	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency key expired during save")
	}
	if existing.RequestHash != record.RequestHash {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

// Release drops a key whose placement did not commit.
func (s *IdempotencyStore) Release(ctx context.Context, key string, orderID int64) error {
	existing, err := s.Get(ctx, key)
	if err != nil || existing == nil || existing.OrderID != orderID {
		return err
	}
	return s.client.Del(ctx, redisKey(key)).Err()
}

func redisKey(key string) string {
	return fmt.Sprintf(keyPattern, key)
}
