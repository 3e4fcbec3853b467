package crashreports

import (
	"bytes"
	"sync"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
)

type chunkKey struct {
	user      string
	requestID string
}

type chunkBuffer struct {
	mu      sync.Mutex
	data    bytes.Buffer
	touched time.Time
	// failed uploads swallow their remaining parts.
	failed bool
	dead   bool
}

// ChunkBuffers reassembles multi-part uploads keyed by user and request ID.
// Buffers that see no part for longer than the idle timeout are evicted.
type ChunkBuffers struct {
	maxSize int64
	idle    time.Duration
	now     func() time.Time

	mu      sync.Mutex
	buffers map[chunkKey]*chunkBuffer
}

func NewChunkBuffers(maxSize int64, idle time.Duration, now func() time.Time) *ChunkBuffers {
	return &ChunkBuffers{maxSize: maxSize, idle: idle, now: now, buffers: make(map[chunkKey]*chunkBuffer)}
}

func (c *ChunkBuffers) lock(key chunkKey) *chunkBuffer {
	for {
		c.mu.Lock()
		b, ok := c.buffers[key]
		if !ok {
			b = &chunkBuffer{}
			c.buffers[key] = b
		}
		c.mu.Unlock()

		b.mu.Lock()
		if !b.dead {
			return b
		}
		b.mu.Unlock()
	}
}

// drop removes a locked buffer from the map.
func (c *ChunkBuffers) drop(key chunkKey, b *chunkBuffer) {
	b.dead = true
	c.mu.Lock()
	if c.buffers[key] == b {
		delete(c.buffers, key)
	}
	c.mu.Unlock()
}

// Append adds part to the upload. On the last part it returns the whole
// content and forgets the buffer. An upload growing past the size ceiling is
// discarded: this and every later part of it fail with
// common.ErrPayloadTooLarge.
func (c *ChunkBuffers) Append(user, requestID string, part []byte, last bool) ([]byte, bool, error) {
	key := chunkKey{user: user, requestID: requestID}
	b := c.lock(key)
	defer b.mu.Unlock()

	b.touched = c.now()
	if !b.failed && int64(b.data.Len())+int64(len(part)) > c.maxSize {
		b.failed = true
		b.data = bytes.Buffer{}
	}
	if b.failed {
		if last {
			c.drop(key, b)
		}
		return nil, false, common.ErrPayloadTooLarge
	}
	b.data.Write(part)

	if !last {
		return nil, false, nil
	}
	content := bytes.Clone(b.data.Bytes())
	c.drop(key, b)
	return content, true, nil
}

// Evict removes buffers idle for longer than the idle timeout.
func (c *ChunkBuffers) Evict() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, b := range c.buffers {
		if !b.mu.TryLock() {
			continue
		}
		if now.Sub(b.touched) > c.idle {
			b.dead = true
			delete(c.buffers, key)
			n++
		}
		b.mu.Unlock()
	}
	return n
}

func (c *ChunkBuffers) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buffers)
}

// Reset discards every pending upload.
func (c *ChunkBuffers) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.buffers)
}
