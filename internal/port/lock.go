package port

import (
	"context"
	"time"
)

// Locker is a short-lived mutual-exclusion lock keyed by SKU. Ownership
// is proven by the token returned from TryAcquire; Release must only
// delete the lock when the stored token still matches.
type Locker interface {
	// TryAcquire sets the key to a fresh random token only if absent.
	// ok is false when the lock is already held by someone else.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)

	// Release deletes the lock only if it still holds the given token.
	// A mismatch (lock expired and re-acquired elsewhere) is not an error.
	Release(ctx context.Context, key, token string) error
}
