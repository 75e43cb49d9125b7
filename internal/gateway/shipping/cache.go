package shipping

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheTTL = 24 * time.Hour

// Cache はRedisのbest-effortラッパー。Redisが落ちていても
// 見積もりはプロバイダ直叩きで動き続ける。
type Cache struct {
	rdb *redis.Client
	log *zap.Logger
}

// rdbはnil可（テストやRedisなし構成ではキャッシュ無効になるだけ）。
func NewCache(rdb *redis.Client, log *zap.Logger) *Cache {
	return &Cache{rdb: rdb, log: log}
}

func (c *Cache) Get(ctx context.Context, key string, out interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("shipping cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, key string, val interface{}) {
	if c == nil || c.rdb == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		c.log.Warn("shipping cache set failed", zap.String("key", key), zap.Error(err))
	}
}
