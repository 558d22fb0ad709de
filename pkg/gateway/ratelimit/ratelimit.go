// Package ratelimit throttles authenticated users: a token bucket for
// request rate and a semaphore for concurrent live call sessions. State is
// in-memory and per-process.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

type Config struct {
	RPS   float64
	Burst int

	// MaxLiveSessions caps concurrent /v1/live sessions per user.
	MaxLiveSessions int

	// Bounds for the in-memory user map.
	MaxEntries int
	EntryTTL   time.Duration
}

type Limiter struct {
	cfg Config

	mu sync.Mutex
	m  map[string]*userLimiter
}

type userLimiter struct {
	mu sync.Mutex

	tokens float64
	last   time.Time

	liveSem chan struct{}

	lastSeen time.Time
}

func New(cfg Config) *Limiter {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10_000
	}
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = 30 * time.Minute
	}
	return &Limiter{cfg: cfg, m: make(map[string]*userLimiter)}
}

// Permit releases a held concurrency slot. Release is idempotent.
type Permit struct {
	release func()
}

func (p *Permit) Release() {
	if p == nil || p.release == nil {
		return
	}
	p.release()
	p.release = nil
}

type Decision struct {
	Allowed    bool
	RetryAfter int
	Permit     *Permit
}

// AllowRequest consumes one token from the user's bucket.
func (l *Limiter) AllowRequest(uid string, now time.Time) Decision {
	if l.cfg.RPS <= 0 || l.cfg.Burst <= 0 {
		return Decision{Allowed: true}
	}
	ul := l.getOrCreate(uid, now)

	ul.mu.Lock()
	defer ul.mu.Unlock()
	ul.lastSeen = now

	capacity := float64(l.cfg.Burst)
	if ul.last.IsZero() {
		ul.tokens = capacity
		ul.last = now
	}
	elapsed := now.Sub(ul.last).Seconds()
	if elapsed > 0 {
		ul.tokens = math.Min(capacity, ul.tokens+elapsed*l.cfg.RPS)
		ul.last = now
	}
	if ul.tokens >= 1 {
		ul.tokens--
		return Decision{Allowed: true}
	}
	retryAfter := int(math.Ceil((1 - ul.tokens) / l.cfg.RPS))
	return Decision{Allowed: false, RetryAfter: max(retryAfter, 1)}
}

// AcquireLiveSession claims a live call slot; the permit must be released
// when the session ends.
func (l *Limiter) AcquireLiveSession(uid string, now time.Time) Decision {
	if l.cfg.MaxLiveSessions <= 0 {
		return Decision{Allowed: true, Permit: &Permit{release: func() {}}}
	}
	ul := l.getOrCreate(uid, now)
	ul.mu.Lock()
	ul.lastSeen = now
	ul.mu.Unlock()

	select {
	case ul.liveSem <- struct{}{}:
		return Decision{Allowed: true, Permit: &Permit{release: func() { <-ul.liveSem }}}
	default:
		return Decision{Allowed: false, RetryAfter: 1}
	}
}

func (l *Limiter) getOrCreate(uid string, now time.Time) *userLimiter {
	if uid == "" {
		uid = "anonymous"
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.m) >= l.cfg.MaxEntries {
		for k, v := range l.m {
			if now.Sub(v.lastSeen) > l.cfg.EntryTTL {
				delete(l.m, k)
			}
		}
		// Still full: drop an arbitrary entry; bounded memory wins.
		if len(l.m) >= l.cfg.MaxEntries {
			for k := range l.m {
				delete(l.m, k)
				break
			}
		}
	}

	if ul, ok := l.m[uid]; ok {
		return ul
	}
	ul := &userLimiter{
		liveSem:  make(chan struct{}, max(1, l.cfg.MaxLiveSessions)),
		lastSeen: now,
	}
	l.m[uid] = ul
	return ul
}
