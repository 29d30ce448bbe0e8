// Package carousel keeps the index of the featured item in a rotating list.
//
// Auto-advance is a single cooperative ticker goroutine owned by the
// Rotator. Changing the list length or stopping the rotator cancels the
// ticker, so it never advances against a stale length.
package carousel

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is how long each item stays featured.
const DefaultInterval = 6 * time.Second

// Rotator is safe for concurrent use.
type Rotator struct {
	mu       sync.Mutex
	index    int
	length   int
	interval time.Duration
	parent   context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// New returns a stopped Rotator over length items.
func New(length int, interval time.Duration) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if length < 0 {
		length = 0
	}
	return &Rotator{length: length, interval: interval}
}

// Current returns the featured index. It is 0 for an empty list.
func (r *Rotator) Current() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Len returns the current list length.
func (r *Rotator) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.length
}

// Next advances by one, wrapping to the start.
func (r *Rotator) Next() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step(1)
}

// Prev steps back by one, wrapping to the end.
func (r *Rotator) Prev() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step(-1)
}

// Select jumps to i. Out of range values are ignored.
func (r *Rotator) Select(i int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i >= 0 && i < r.length {
		r.index = i
	}
	return r.index
}

func (r *Rotator) step(delta int) int {
	if r.length == 0 {
		r.index = 0
		return 0
	}
	r.index = ((r.index+delta)%r.length + r.length) % r.length
	return r.index
}

// Start begins auto-advancing until ctx is done or Stop is called. Calling
// Start on a running rotator restarts its timer.
func (r *Rotator) Start(ctx context.Context) {
	r.mu.Lock()
	r.parent = ctx
	r.restartLocked()
	r.mu.Unlock()
}

// SetLength replaces the list length. The running timer is cancelled and,
// if the rotator was started, restarted from a full interval. The index is
// clamped into the new range.
func (r *Rotator) SetLength(n int) {
	if n < 0 {
		n = 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.length = n
	if r.index >= n {
		r.index = 0
	}
	if r.parent != nil {
		r.restartLocked()
	}
}

// Stop cancels auto-advance and waits for the ticker goroutine to exit.
func (r *Rotator) Stop() {
	r.mu.Lock()
	r.parent = nil
	done := r.stopLocked()
	r.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (r *Rotator) stopLocked() chan struct{} {
	if r.cancel == nil {
		return nil
	}
	r.cancel()
	done := r.done
	r.cancel, r.done = nil, nil
	return done
}

func (r *Rotator) restartLocked() {
	r.stopLocked()
	if r.parent == nil || r.parent.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(r.parent)
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go r.run(ctx, done)
}

func (r *Rotator) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.mu.Lock()
			// A cancelled timer must not advance even if its tick was
			// already pending.
			if ctx.Err() == nil {
				r.step(1)
			}
			r.mu.Unlock()
		}
	}
}
