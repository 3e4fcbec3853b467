package crashreports

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
)

// RateLimiter caps reports per user. The counter resets once more than a
// window has passed since the user's last accepted report.
//
// Every entry has its own lock. Attempts in flight hold a reservation that
// counts against the cap until it is committed or cancelled.
type RateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*rateEntry
}

type rateEntry struct {
	mu      sync.Mutex
	count   int
	pending int
	last    time.Time
	dead    bool
}

func NewRateLimiter(limit int, window time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{limit: limit, window: window, now: now, entries: make(map[string]*rateEntry)}
}

// lock returns the live, locked entry for user.
func (l *RateLimiter) lock(user string) *rateEntry {
	for {
		l.mu.Lock()
		e, ok := l.entries[user]
		if !ok {
			e = &rateEntry{}
			l.entries[user] = e
		}
		l.mu.Unlock()

		e.mu.Lock()
		if !e.dead {
			return e
		}
		e.mu.Unlock()
	}
}

func (e *rateEntry) resetIfStale(now time.Time, window time.Duration) {
	if !e.last.IsZero() && now.Sub(e.last) > window {
		e.count = 0
	}
}

// Reservation is a pending attempt.
type Reservation struct {
	limiter *RateLimiter
	entry   *rateEntry
	done    bool
}

// Reserve fails with common.ErrRateLimitExceeded when the user is at the cap.
func (l *RateLimiter) Reserve(user string) (*Reservation, error) {
	e := l.lock(user)
	defer e.mu.Unlock()

	e.resetIfStale(l.now(), l.window)
	if e.count+e.pending >= l.limit {
		return nil, common.ErrRateLimitExceeded
	}
	e.pending++
	return &Reservation{limiter: l, entry: e}, nil
}

// Commit counts the attempt as an accepted report.
func (r *Reservation) Commit() {
	e := r.entry
	e.mu.Lock()
	defer e.mu.Unlock()
	if r.done {
		return
	}
	r.done = true

	now := r.limiter.now()
	e.pending--
	e.resetIfStale(now, r.limiter.window)
	e.count++
	e.last = now
}

// Cancel releases the attempt without counting it. It is a no-op after
// Commit.
func (r *Reservation) Cancel() {
	e := r.entry
	e.mu.Lock()
	defer e.mu.Unlock()
	if r.done {
		return
	}
	r.done = true
	e.pending--
}

// Prune drops entries idle for longer than the window. Busy entries are
// skipped.
func (l *RateLimiter) Prune() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for user, e := range l.entries {
		if !e.mu.TryLock() {
			continue
		}
		if e.pending == 0 && (e.last.IsZero() || now.Sub(e.last) > l.window) {
			e.dead = true
			delete(l.entries, user)
			n++
		}
		e.mu.Unlock()
	}
	return n
}

func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Reset forgets every user.
func (l *RateLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.entries)
}
