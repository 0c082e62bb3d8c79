package watch

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"ballotdesk/go-client/pkg/models"
)

// KindLimiter holds a token bucket per event kind. When a bucket is
// drained it reports the wait until the next token, so the caller can
// defer a trailing resync instead of dropping it.
type KindLimiter struct {
	limit  rate.Limit
	burst  int
	mu     sync.Mutex
	byKind map[models.EventKind]*rate.Limiter
}

// NewKindLimiter creates a per-kind limiter; returns nil if args are
// invalid, and a nil limiter imposes no delay.
func NewKindLimiter(rps float64, burst int) *KindLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	return &KindLimiter{
		limit:  rate.Limit(rps),
		burst:  burst,
		byKind: make(map[models.EventKind]*rate.Limiter),
	}
}

// Delay consumes one token for the kind and reports how long the caller
// must wait before acting on it; zero means act now.
func (l *KindLimiter) Delay(kind models.EventKind, now time.Time) time.Duration {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	lim, ok := l.byKind[kind]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.byKind[kind] = lim
	}
	return lim.ReserveN(now, 1).DelayFrom(now)
}
