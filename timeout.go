package auth

import (
	"context"
	"time"
)

// DefaultStoreTimeout bounds every store round trip unless configured
// otherwise. A zero or negative timeout disables the bound.
const DefaultStoreTimeout = 5 * time.Second

func withStoreTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
