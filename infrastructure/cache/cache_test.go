package cache_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"youtube-auto-post/infrastructure/cache"
	"youtube-auto-post/infrastructure/configuration"
)

func TestNewCacheFromConfig_NotConfigured(t *testing.T) {
	rdb, err := cache.NewCacheFromConfig(context.Background(), configuration.RedisClient{})
	assert.NoError(t, err)
	assert.Nil(t, rdb)
}
