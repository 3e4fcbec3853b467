package crashreports

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/launchserver/internal/logging"
)

type recordingStorage struct {
	Storage
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (r *recordingStorage) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cutoffs = append(r.cutoffs, cutoff)
	return 1, r.err
}

func (r *recordingStorage) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cutoffs)
}

func TestSweeper_SweepOnce(t *testing.T) {
	clock := newFakeClock()
	st := &recordingStorage{}
	s := NewSweeper(st, 30*24*time.Hour, time.Hour, logging.NopLogger{}, clock.Now)

	assert.Equal(t, 1, s.SweepOnce(context.Background()))
	assert.Equal(t, []time.Time{clock.Now().Add(-30 * 24 * time.Hour)}, st.cutoffs)

	st.err = errors.New("permission denied")
	assert.Equal(t, 1, s.SweepOnce(context.Background()))
}

func TestSweeper_RunSweepsImmediately(t *testing.T) {
	st := &recordingStorage{err: errors.New("flaky")}
	s := NewSweeper(st, time.Hour, time.Millisecond, logging.NopLogger{}, time.Now)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return st.calls() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
