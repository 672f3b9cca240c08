// Package circuit guards calls to an external dependency with a
// consecutive-failure circuit breaker.
package circuit

import (
	"sync"
	"time"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half_open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// StateChange reports a transition caused by a Record call.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker opens after a run of failures and stays open for the cooldown.
// After the cooldown it is half-open: a run of successes closes it and a
// single failure opens it again.
type Breaker struct {
	name         string
	tripAfter    int
	recoverAfter int
	cooldown     time.Duration
	now          func() time.Time

	mu       sync.Mutex
	state    State
	streak   int // consecutive failures when closed, successes when half-open
	openedAt time.Time
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the circuit. Default 5.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.tripAfter = n
		}
	}
}

// WithSuccessThreshold sets how many half-open successes close the circuit. Default 3.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.recoverAfter = n
		}
	}
}

// WithCooldown sets how long the circuit stays open. Default 30s.
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:         name,
		tripAfter:    5,
		recoverAfter: 3,
		cooldown:     30 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

// Allow reports whether the dependency may be called now.
func (b *Breaker) Allow() bool {
	return b.State() != StateOpen
}

// State returns the current position, moving open to half-open once the
// cooldown has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current()
}

func (b *Breaker) current() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.cooldown {
		b.move(StateHalfOpen)
	}
	return b.state
}

func (b *Breaker) move(to State) {
	b.state = to
	b.streak = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
}

// RecordFailure counts a failed call.
func (b *Breaker) RecordFailure() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateHalfOpen:
		b.move(StateOpen)
		return StateChange{Opened: true}
	case StateClosed:
		if b.streak++; b.streak >= b.tripAfter {
			b.move(StateOpen)
			return StateChange{Opened: true}
		}
	}
	return StateChange{}
}

// RecordSuccess counts a successful call.
func (b *Breaker) RecordSuccess() StateChange {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.current() {
	case StateHalfOpen:
		if b.streak++; b.streak >= b.recoverAfter {
			b.move(StateClosed)
			return StateChange{Closed: true}
		}
	case StateClosed:
		b.streak = 0
	}
	return StateChange{}
}

// Reset closes the circuit and clears its counters.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.move(StateClosed)
}
