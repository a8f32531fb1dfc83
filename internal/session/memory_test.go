package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	found, err := s.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Add(ctx, "tok", time.Hour))
	found, err = s.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, found)

	found, _ = s.Contains(ctx, "other")
	assert.False(t, found)
}

func TestMemoryStore_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Add(ctx, "tok", 20*time.Millisecond))
	time.Sleep(40 * time.Millisecond)

	found, err := s.Contains(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_IgnoresExpiredTokens(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Add(ctx, "tok", 0))
	found, _ := s.Contains(ctx, "tok")
	assert.False(t, found)
}

func TestFingerprint_IsStable(t *testing.T) {
	assert.Equal(t, fingerprint("a"), fingerprint("a"))
	assert.NotEqual(t, fingerprint("a"), fingerprint("b"))
	assert.Len(t, fingerprint("a"), 64)
}
