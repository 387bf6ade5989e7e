package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/j-veylop/coinflip-tui/internal/logger"
)

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("write-behind saver closed")

// WriteBehind persists snapshots on a single background goroutine. Snapshots
// for the same key are coalesced so only the newest is written, and keys are
// written in the order they were first enqueued since the last write. A failed
// save is logged and dropped; in-memory state stays authoritative.
type WriteBehind struct {
	kv      KV
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	waiters []chan struct{}
	writing bool
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewWriteBehind starts the background writer. timeout bounds each save; zero
// means five seconds.
func NewWriteBehind(kv KV, timeout time.Duration) *WriteBehind {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	w := &WriteBehind{
		kv:      kv,
		timeout: timeout,
		pending: make(map[string][]byte),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}

	go w.run()

	return w
}

// Enqueue schedules data to be written under key. It never blocks on I/O.
func (w *WriteBehind) Enqueue(key string, data []byte) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		logger.Warn("dropping save after close", "key", key)
		return
	}
	if _, queued := w.pending[key]; !queued {
		w.order = append(w.order, key)
	}
	w.pending[key] = data
	w.mu.Unlock()

	w.signal()
}

// Flush blocks until everything enqueued before the call has been written or
// ctx is done.
func (w *WriteBehind) Flush(ctx context.Context) error {
	ch := make(chan struct{})

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if len(w.order) == 0 && !w.writing {
		w.mu.Unlock()
		return nil
	}
	w.waiters = append(w.waiters, ch)
	w.mu.Unlock()

	w.signal()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes and stops the background goroutine.
func (w *WriteBehind) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.signal()
	<-w.done
	return nil
}

func (w *WriteBehind) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *WriteBehind) run() {
	defer close(w.done)

	for range w.wake {
		w.drain()

		w.mu.Lock()
		closed := w.closed && len(w.order) == 0
		w.mu.Unlock()
		if closed {
			return
		}
	}
}

// drain writes until the queue is empty, then releases any flush waiters.
func (w *WriteBehind) drain() {
	for {
		w.mu.Lock()
		w.writing = false
		if len(w.order) == 0 {
			waiters := w.waiters
			w.waiters = nil
			w.mu.Unlock()
			for _, ch := range waiters {
				close(ch)
			}
			return
		}
		key := w.order[0]
		w.order = w.order[1:]
		data := w.pending[key]
		delete(w.pending, key)
		w.writing = true
		w.mu.Unlock()

		w.write(key, data)
	}
}

func (w *WriteBehind) write(key string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.kv.Save(ctx, key, data); err != nil {
		logger.Error("failed to persist state", "key", key, "error", err)
		return
	}
	logger.Debug("persisted state", "key", key, "bytes", len(data))
}
