// Package circuit provides a minimal counting circuit breaker for optional
// collaborators. Callers record outcomes; the breaker answers whether to use
// the fallback path.
package circuit

import (
	"sync"
	"time"
)

// State of a breaker.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// StateChange reports a transition caused by the last recorded outcome.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker counts consecutive failures and successes. It opens after
// failureThreshold consecutive failures and closes again after
// successThreshold consecutive successes. While open, Allow permits trial
// calls once the open timeout has elapsed so a recovered backend can close
// the circuit without a restart.
type Breaker struct {
	mu               sync.Mutex
	name             string
	state            State
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration
	now              func() time.Time
	failures         int
	successes        int
	openedAt         time.Time
}

type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) { b.failureThreshold = n }
}

// WithSuccessThreshold sets how many consecutive successes close it again.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) { b.successThreshold = n }
}

// WithOpenTimeout sets how long the breaker stays open before Allow permits
// trial calls again.
func WithOpenTimeout(d time.Duration) Option {
	return func(b *Breaker) { b.openTimeout = d }
}

// WithClock overrides the time source. Tests use this to advance time
// without sleeping.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// New constructs a closed breaker. Defaults: 5 failures to open, 1 success
// to close, 30s open timeout.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:             name,
		state:            StateClosed,
		failureThreshold: 5,
		successThreshold: 1,
		openTimeout:      30 * time.Second,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsOpen reports whether the breaker is in the open state.
func (b *Breaker) IsOpen() bool {
	return b.State() == StateOpen
}

// Allow reports whether a call may proceed on the primary path. Closed
// breakers always allow; open breakers allow trial calls once the open
// timeout has elapsed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateClosed {
		return true
	}
	return b.now().Sub(b.openedAt) >= b.openTimeout
}

// RecordFailure notes a failed call. It returns whether the fallback should
// be used from now on and whether this failure changed the state. A failed
// trial call re-arms the open timeout.
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	if b.state == StateOpen {
		b.openedAt = b.now()
		return true, StateChange{}
	}

	b.failures++
	if b.failures >= b.failureThreshold {
		b.state = StateOpen
		b.failures = 0
		b.openedAt = b.now()
		return true, StateChange{Opened: true}
	}
	return false, StateChange{}
}

// RecordSuccess notes a successful call. It returns whether the primary path
// should be used and whether this success changed the state.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	if b.state == StateClosed {
		return true, StateChange{}
	}

	b.successes++
	if b.successes >= b.successThreshold {
		b.state = StateClosed
		b.successes = 0
		return true, StateChange{Closed: true}
	}
	return false, StateChange{}
}

// Reset forces the breaker closed and clears all counts.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
