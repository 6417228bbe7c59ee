// Package redis implements a session store on a Redis server.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inbucket/rcptcontact/pkg/config"
	"github.com/inbucket/rcptcontact/pkg/session"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "rcptcontact:session:"

// Store implements session.Store, each value is a Redis string key expiring after the TTL.
type Store struct {
	rdb *goredis.Client
	ttl time.Duration
}

var _ session.Store = &Store{}

// New connects to the configured Redis server.
func New(cfg config.Session) (session.Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info().Str("module", "session").Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).
		Msg("Connected to Redis")

	return NewStore(rdb, cfg.TTL), nil
}

// NewStore wraps an existing client.
func NewStore(rdb *goredis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

func redisKey(sess, key string) string {
	return keyPrefix + sess + ":" + key
}

// Get implements session.Store.
func (s *Store) Get(ctx context.Context, sess, key string) ([]byte, error) {
	value, err := s.rdb.Get(ctx, redisKey(sess, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, session.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

// Has implements session.Store.
func (s *Store) Has(ctx context.Context, sess, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, redisKey(sess, key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

// Put implements session.Store.
func (s *Store) Put(ctx context.Context, sess, key string, value []byte) error {
	if err := s.rdb.Set(ctx, redisKey(sess, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Remove implements session.Store.
func (s *Store) Remove(ctx context.Context, sess, key string) error {
	if err := s.rdb.Del(ctx, redisKey(sess, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Take implements session.Store using GETDEL.
func (s *Store) Take(ctx context.Context, sess, key string) ([]byte, error) {
	value, err := s.rdb.GetDel(ctx, redisKey(sess, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, session.ErrNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("redis getdel: %w", err)
	}
	return value, nil
}
