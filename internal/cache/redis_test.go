package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jgoulah/envirolink/internal/config"
)

func TestNewRedis_Defaults(t *testing.T) {
	r := NewRedis(&config.Config{})
	defer r.Close()

	assert.Equal(t, "localhost:6379", r.client.Options().Addr)
	assert.Equal(t, time.Hour, r.ttl)
}

func TestRedis_UnreachableServerReturnsErrors(t *testing.T) {
	// Port 1 is reserved and never has a Redis server listening
	r := NewRedis(&config.Config{Redis: config.RedisConfig{Addr: "127.0.0.1:1", TTLMinutes: 5}})
	defer r.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, hit, err := r.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, r.Set(ctx, "k", "v"))
	assert.Error(t, r.Ping(ctx))
	assert.Equal(t, 5*time.Minute, r.ttl)
}
