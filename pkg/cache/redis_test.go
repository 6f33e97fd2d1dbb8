package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/suedwestenergie/contact/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{
		Host:         "redis.internal",
		Port:         6380,
		Password:     "pw",
		DB:           2,
		MaxPoolSize:  7,
		ConnTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 4,
	})

	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 5*time.Second, opts.DialTimeout)
	assert.Equal(t, 3*time.Second, opts.ReadTimeout)
	assert.Equal(t, 4*time.Second, opts.WriteTimeout)
}

func TestNew_UnreachableServer(t *testing.T) {
	_, err := New(config.RedisConfig{Host: "127.0.0.1", Port: 1, ConnTimeout: 1})
	assert.ErrorContains(t, err, "failed to connect to redis 127.0.0.1:1")
}
