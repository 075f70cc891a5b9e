package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/milesync/milesync-backend/internal/logger"
	"github.com/milesync/milesync-backend/internal/utils"
)

// NewClient connects to redis and wraps it with a lock client. Returns an
// error when REDIS_ADDR is unset; callers treat the locker as optional and
// run unlocked without it.
func NewClient(log *logger.Logger) (*goredis.Client, *redislock.Client, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	clientLog := log.With("client", "RedisClient")

	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		clientLog.Error("Redis ping failed", "error", err)
		return nil, nil, fmt.Errorf("redis ping failed: %w", err)
	}

	clientLog.Info("Connected to redis", "addr", addr)
	return rdb, redislock.New(rdb), nil
}
