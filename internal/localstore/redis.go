package localstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront/internal/domain"
)

const keyPrefix = "storefront:cart:"

// RedisStore keeps the cached cart under one key per session id, with an
// optional TTL. Zero TTL means the key never expires.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedisStore(client *redis.Client, sessionID string, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		key:    keyPrefix + sessionID,
		ttl:    ttl,
		logger: logger.With().Str("component", "localstore").Logger(),
	}
}

func (s *RedisStore) Save(ctx context.Context, cart domain.Cart) error {
	raw, err := encodeCart(cart)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key, raw, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context) (*domain.Cart, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		s.logger.Warn().Err(err).Str("key", s.key).Msg("read cached cart")
		return nil, nil
	}
	cart, err := decodeCart(raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("discarding corrupt cached cart")
		return nil, nil
	}
	return cart, nil
}
