/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuermetadatastore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/trustbloc/iowallet/pkg/issuer/cache"
)

const (
	keyPrefix = "issuer_metadata"
)

var _ cache.Store = (*Store)(nil)

// Store keeps serialized issuer metadata in redis with expiration.
type Store struct {
	api redisAPI
	ttl time.Duration
}

// New creates an issuer metadata store. A zero ttl keeps entries without expiration.
func New(api redisAPI, ttl time.Duration) *Store {
	return &Store{
		api: api,
		ttl: ttl,
	}
}

func (s *Store) Get(ctx context.Context, issuerURL string) ([]byte, error) {
	b, err := s.api.Get(ctx, s.resolveRedisKey(issuerURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, cache.ErrDataNotFound
		}

		return nil, fmt.Errorf("redis get issuer metadata: %w", err)
	}

	return b, nil
}

func (s *Store) Set(ctx context.Context, issuerURL string, value []byte) error {
	if err := s.api.Set(ctx, s.resolveRedisKey(issuerURL), string(value), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set issuer metadata: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, issuerURL string) error {
	if err := s.api.Del(ctx, s.resolveRedisKey(issuerURL)).Err(); err != nil {
		return fmt.Errorf("failed to delete issuer metadata of %s: %w", issuerURL, err)
	}

	return nil
}

func (s *Store) resolveRedisKey(issuerURL string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, issuerURL)
}
