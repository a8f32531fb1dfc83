// Package session keeps the set of revoked access tokens so a logout takes
// effect before the token expires.
package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Store is a token blacklist.
type Store interface {
	// Add revokes token for ttl; a non-positive ttl is a no-op.
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
