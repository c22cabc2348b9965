package cache

import (
	"context"
	"fmt"
	"strconv"

	"youtube-auto-post/infrastructure/configuration"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis and verifies the connection.
func NewCache(ctx context.Context, addr, username, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewCacheFromConfig returns nil, nil when Redis is not configured.
func NewCacheFromConfig(ctx context.Context, cfg configuration.RedisClient) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, nil
	}
	port := cfg.Port
	if port == "" {
		port = "6379"
	}
	db, _ := strconv.Atoi(cfg.DatabaseName)
	return NewCache(ctx, fmt.Sprintf("%s:%s", cfg.Host, port), cfg.Username, cfg.Password, db)
}
