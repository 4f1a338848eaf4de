// Package redis backs the draft Gateway with a Redis instance. Drafts are
// stored without a TTL; a draft lives until it is overwritten or reset.
package redis

import (
	"context"

	redis "github.com/redis/go-redis/v9"

	"receiptgen/backend/internal/store"
)

type Store struct {
	client *redis.Client
}

func New(addr string, password string, db int) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &Store{client: client}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Load(ctx context.Context, companyID string) ([]byte, error) {
	payload, err := s.client.Get(ctx, store.Key(companyID)).Bytes()
	if err == redis.Nil {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Store) Save(ctx context.Context, companyID string, payload []byte) error {
	if len(payload) == 0 {
		return store.ErrInvalidInput
	}
	return s.client.Set(ctx, store.Key(companyID), payload, 0).Err()
}

func (s *Store) Delete(ctx context.Context, companyID string) error {
	return s.client.Del(ctx, store.Key(companyID)).Err()
}
