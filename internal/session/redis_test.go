package session

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore_Close(t *testing.T) {
	ctx := context.Background()
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))
	require.NoError(t, s.Close())

	_, err := s.Contains(ctx, "tok")
	assert.ErrorIs(t, err, redis.ErrClosed)
	assert.ErrorIs(t, s.Add(ctx, "tok", time.Minute), redis.ErrClosed)
}
