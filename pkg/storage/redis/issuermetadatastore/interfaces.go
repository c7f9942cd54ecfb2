/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package issuermetadatastore

import (
	"context"
	"time"

	redisapi "github.com/redis/go-redis/v9"
)

//go:generate mockgen -destination interfaces_mocks_test.go -package issuermetadatastore_test -source=interfaces.go -mock_names redisAPI=MockRedisAPI

// redisAPI is the subset of redis.UniversalClient used by the store.
type redisAPI interface {
	Get(ctx context.Context, key string) *redisapi.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redisapi.StatusCmd
	Del(ctx context.Context, keys ...string) *redisapi.IntCmd
}
