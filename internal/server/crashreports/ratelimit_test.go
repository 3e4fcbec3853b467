package crashreports

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/launchserver/internal/common"
)

func TestRateLimiter_CapAndReset(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(3, time.Hour, clock.Now)

	for i := 0; i < 3; i++ {
		r, err := l.Reserve("alice")
		require.NoError(t, err)
		r.Commit()
		clock.Advance(time.Minute)
	}

	_, err := l.Reserve("alice")
	assert.ErrorIs(t, err, common.ErrRateLimitExceeded)

	// other users are independent
	r, err := l.Reserve("bob")
	require.NoError(t, err)
	r.Commit()

	// exactly one window after the last report is still inside it
	clock.Advance(time.Hour - time.Minute)
	_, err = l.Reserve("alice")
	assert.ErrorIs(t, err, common.ErrRateLimitExceeded)

	clock.Advance(time.Second)
	r, err = l.Reserve("alice")
	require.NoError(t, err)
	r.Commit()
}

func TestRateLimiter_PendingReservationsCount(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(2, time.Hour, clock.Now)

	r1, err := l.Reserve("alice")
	require.NoError(t, err)
	r2, err := l.Reserve("alice")
	require.NoError(t, err)

	_, err = l.Reserve("alice")
	assert.ErrorIs(t, err, common.ErrRateLimitExceeded)

	r1.Cancel()
	r1.Cancel()
	r1.Commit()

	r3, err := l.Reserve("alice")
	require.NoError(t, err)
	r2.Commit()
	r3.Commit()

	_, err = l.Reserve("alice")
	assert.ErrorIs(t, err, common.ErrRateLimitExceeded)
}

func TestRateLimiter_Prune(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(1, time.Hour, clock.Now)

	r, err := l.Reserve("alice")
	require.NoError(t, err)
	r.Commit()

	held, err := l.Reserve("bob")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, l.Prune(), "only alice is idle")
	assert.Equal(t, 1, l.Len())

	held.Cancel()
	assert.Equal(t, 1, l.Prune())
	assert.Equal(t, 0, l.Len())

	r, err = l.Reserve("alice")
	require.NoError(t, err)
	r.Commit()
	l.Reset()
	assert.Equal(t, 0, l.Len())
}

func TestRateLimiter_ConcurrentReservations(t *testing.T) {
	clock := newFakeClock()
	l := NewRateLimiter(10, time.Hour, clock.Now)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int64
	)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, err := l.Reserve("alice")
			if err != nil {
				return
			}
			r.Commit()
			accepted.Add(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(10), accepted.Load())
	_, err := l.Reserve("alice")
	assert.ErrorIs(t, err, common.ErrRateLimitExceeded)
}
