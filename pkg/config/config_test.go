package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.Computation.Parallelism)
	assert.Equal(t, 5*time.Minute, cfg.Computation.LockTTL)
	assert.Equal(t, 30*time.Second, cfg.Computation.LockWait)
	assert.False(t, cfg.Computation.UseRedisLock)
	assert.Equal(t, 10*time.Minute, cfg.ReportCache.TTL)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 10*time.Minute, cfg.CORS.MaxAge)
	assert.Empty(t, cfg.Redis.URL)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("COMPUTE_PARALLELISM", 0)
	v.Set("COMPUTE_LOCK_TTL", "not-a-duration")
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	v.Set("COMPUTE_USE_REDIS_LOCK", true)
	v.Set("CORS_MAX_AGE", "90s")
	v.Set("REDIS_URL", "redis://cache:6380/2")

	cfg := fromViper(v)

	assert.Equal(t, 1, cfg.Computation.Parallelism)
	assert.Equal(t, 5*time.Minute, cfg.Computation.LockTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Computation.UseRedisLock)
	assert.Equal(t, 90*time.Second, cfg.CORS.MaxAge)
	assert.Equal(t, "redis://cache:6380/2", cfg.Redis.URL)
}
