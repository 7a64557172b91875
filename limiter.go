package nouvelles

import (
	"sync"
	"time"
)

// LoginLimiter rate-limits login attempts per IP address using a fixed
// window counter per IP.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*loginBucket
	max     int
	window  time.Duration
}

type loginBucket struct {
	count   int
	started time.Time
}

// NewLoginLimiter creates a LoginLimiter allowing max attempts per window.
func NewLoginLimiter(max int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		buckets: make(map[string]*loginBucket),
		max:     max,
		window:  window,
	}
}

// Allow records an attempt for ip and reports whether it is within the
// limit. Expired buckets reset on access; stale entries for other IPs are
// pruned opportunistically to keep the map bounded.
func (l *LoginLimiter) Allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buckets) > 1024 {
		for k, b := range l.buckets {
			if now.Sub(b.started) >= l.window {
				delete(l.buckets, k)
			}
		}
	}

	b, ok := l.buckets[ip]
	if !ok || now.Sub(b.started) >= l.window {
		l.buckets[ip] = &loginBucket{count: 1, started: now}
		return true
	}
	b.count++
	return b.count <= l.max
}
