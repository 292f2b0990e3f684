// Package debounce coalesces bursts of calls into a single invocation.
package debounce

import (
	"sync"
	"time"
)

// Option configures a Debouncer
type Option func(*config)

type config struct {
	immediate bool
}

// WithImmediate fires on the leading edge: the first call in a quiet period runs
// right away and later calls inside the window are dropped.
func WithImmediate() Option {
	return func(c *config) {
		c.immediate = true
	}
}

// Debouncer wraps fn so it runs at most once per quiet interval.
// The zero value is not usable; create one with New.
type Debouncer[T any] struct {
	fn        func(T)
	wait      time.Duration
	immediate bool

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64 // bumped whenever the pending timer is replaced or cancelled
	pending bool   // a trailing fire is scheduled
	lastArg T

	// running is read-held while fn executes; taken under mu so Wait sees every started call
	running sync.RWMutex
}

// New returns a Debouncer that invokes fn after wait has elapsed with no further calls
func New[T any](fn func(T), wait time.Duration, opts ...Option) *Debouncer[T] {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Debouncer[T]{
		fn:        fn,
		wait:      wait,
		immediate: cfg.immediate,
	}
}

// Call records arg and restarts the quiet window
func (d *Debouncer[T]) Call(arg T) {
	d.mu.Lock()

	callNow := d.immediate && d.timer == nil
	d.stopLocked()
	d.gen++
	gen := d.gen

	if d.immediate {
		// The timer only marks the end of the window
		d.timer = time.AfterFunc(d.wait, func() { d.expire(gen) })
		if !callNow {
			d.mu.Unlock()
			return
		}
		d.running.RLock()
		d.mu.Unlock()
		d.run(arg)
		return
	}

	d.lastArg = arg
	d.pending = true
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen) })
	d.mu.Unlock()
}

// fire runs the trailing call if it is still the current one
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	arg := d.lastArg
	d.clearLocked()
	d.running.RLock()
	d.mu.Unlock()

	d.run(arg)
}

// expire closes the leading-edge window
func (d *Debouncer[T]) expire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen == d.gen {
		d.timer = nil
	}
}

// Flush runs a pending trailing call now instead of waiting for the window
func (d *Debouncer[T]) Flush() {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return
	}
	d.stopLocked()
	d.gen++
	arg := d.lastArg
	d.clearLocked()
	d.running.RLock()
	d.mu.Unlock()

	d.run(arg)
}

// CleanUp cancels any pending call without running it. Call it before dropping
// a Debouncer whose fn captures state that is about to go stale.
func (d *Debouncer[T]) CleanUp() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.gen++
	d.clearLocked()
}

// Wait blocks until every call already handed to fn has returned.
// fn must not call Wait on its own Debouncer.
func (d *Debouncer[T]) Wait() {
	d.running.Lock()
	defer d.running.Unlock()
}

func (d *Debouncer[T]) run(arg T) {
	defer d.running.RUnlock()
	d.fn(arg)
}

// Pending reports whether a trailing call is scheduled
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer[T]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer[T]) clearLocked() {
	var zero T
	d.timer = nil
	d.pending = false
	d.lastArg = zero
}
