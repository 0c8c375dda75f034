// Package carousel provides the scheduled rotation task shared by the
// guestbook and top-moments carousels.
package carousel

import (
	"context"
	"sync"
	"time"

	"ricordi/internal/observability"
)

// Rotator advances a display index on a fixed interval. It owns its timer
// goroutine outright: Arm cancels any previous timer before starting a new
// one, and Stop cancels unconditionally so the timer can never outlive the
// component that owns it.
//
// The rotator is Idle while the entry count is at or below the threshold and
// Rotating above it; count changes move it between the two states.
type Rotator struct {
	name      string
	interval  time.Duration
	threshold int
	positions func(count int) int

	mu     sync.Mutex
	index  int
	count  int
	cancel context.CancelFunc
}

// NewRotator creates a rotator that rotates when more than threshold entries
// are present. positions maps the entry count to the number of rotation
// positions the index cycles through.
func NewRotator(name string, interval time.Duration, threshold int, positions func(count int) int) *Rotator {
	return &Rotator{
		name:      name,
		interval:  interval,
		threshold: threshold,
		positions: positions,
	}
}

// Arm reconfigures the rotator for the given entry count. Any running timer
// is cancelled first; a new one is started only when the count is above the
// rotation threshold.
func (r *Rotator) Arm(count int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()
	r.count = count

	// Keep the index valid for the new count.
	if p := r.positionsFor(count); r.index >= p {
		r.index = 0
	}

	if count <= r.threshold {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.run(ctx)
}

// Stop cancels the timer if one is armed. Safe to call repeatedly.
func (r *Rotator) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

func (r *Rotator) stopLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}

// Index returns the current rotation index.
func (r *Rotator) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// Seek sets the rotation index directly (navigation dots). Out-of-range
// values are ignored.
func (r *Rotator) Seek(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index >= 0 && index < r.positionsFor(r.count) {
		r.index = index
	}
}

// Rotating reports whether a timer is currently armed.
func (r *Rotator) Rotating() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Rotator) positionsFor(count int) int {
	p := r.positions(count)
	if p < 1 {
		p = 1
	}
	return p
}

func (r *Rotator) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.advance()
		}
	}
}

func (r *Rotator) advance() {
	r.mu.Lock()
	r.index = (r.index + 1) % r.positionsFor(r.count)
	r.mu.Unlock()
	observability.CarouselRotations.WithLabelValues(r.name).Inc()
}
