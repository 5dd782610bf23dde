package feed

import (
	"context"
	"errors"
	"time"
)

// ErrRateLimited signals that the posting platform throttled us. Unlike
// item-level errors it is global: the posting loop stops for the rest of the
// run and a cooldown window is persisted.
var ErrRateLimited = errors.New("poster rate limited")

// Renderer produces one snapshot of the feed page as ordered text blocks,
// newest-first.
type Renderer interface {
	Render(ctx context.Context) ([]RawBlock, error)
}

// Poster publishes one short text to the target platform.
// A nil error means the post was accepted. ErrRateLimited (possibly wrapped)
// means the platform throttled the account.
type Poster interface {
	Post(ctx context.Context, text string) error
}

// Hasher computes stable digests for item fingerprints.
type Hasher interface {
	Hash(data []byte) (string, error)
	Short(data []byte) (string, error)
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
