package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"fireenrich/internal/config"
	"fireenrich/internal/port"
)

// Store keeps each client's credentials in one Redis hash at "<prefix>:<clientID>".
type Store struct {
	rdb    *goredis.Client
	prefix string
}

var _ port.CredentialStore = (*Store)(nil)

// NewStore connects to Redis and verifies the connection with a ping.
func NewStore(cfg *config.RedisConfig) (*Store, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewStoreWithClient(rdb, cfg.KeyPrefix), nil
}

// NewStoreWithClient wraps an existing client.
func NewStoreWithClient(rdb *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "fireenrich:credentials"
	}
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(clientID uuid.UUID) string {
	return s.prefix + ":" + clientID.String()
}

func (s *Store) Get(ctx context.Context, clientID uuid.UUID, name string) (string, bool, error) {
	v, err := s.rdb.HGet(ctx, s.key(clientID), name).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("credentialStore.Get: %w", err)
	}
	return v, true, nil
}

func (s *Store) Set(ctx context.Context, clientID uuid.UUID, name, value string) error {
	if err := s.rdb.HSet(ctx, s.key(clientID), name, value).Err(); err != nil {
		return fmt.Errorf("credentialStore.Set: %w", err)
	}
	return nil
}

// Delete removes the named entries, or the whole hash when names is empty.
func (s *Store) Delete(ctx context.Context, clientID uuid.UUID, names ...string) error {
	var err error
	if len(names) == 0 {
		err = s.rdb.Del(ctx, s.key(clientID)).Err()
	} else {
		err = s.rdb.HDel(ctx, s.key(clientID), names...).Err()
	}
	if err != nil {
		return fmt.Errorf("credentialStore.Delete: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
