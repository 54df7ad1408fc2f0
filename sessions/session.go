// Package sessions keeps server-side login sessions. A session is a random id
// bound to a user id with an expiry; the id travels to the client inside a
// signed token (see Signer).
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrNotFound is returned for unknown, expired or deleted sessions.
var ErrNotFound = errors.New("session not found")

type Session struct {
	ID      string
	UserID  uint
	Expires time.Time
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.Expires)
}

type Store interface {
	Create(ctx context.Context, userID uint, ttl time.Duration) (*Session, error)
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// runPruner calls prune every interval until ctx is done.
func runPruner(ctx context.Context, interval time.Duration, prune func(context.Context) (int64, error)) {
	if interval <= 0 {
		interval = DefaultPruneInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := prune(ctx)
			if err != nil {
				log.Printf("sessions: prune failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sessions: pruned %d expired sessions", n)
			}
		}
	}
}
