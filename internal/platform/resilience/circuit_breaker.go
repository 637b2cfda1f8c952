package resilience

import (
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState string

const (
	CircuitStateClosed   CircuitState = "closed"
	CircuitStateOpen     CircuitState = "open"
	CircuitStateHalfOpen CircuitState = "half_open"
)

// CircuitBreaker guards an outbound dependency. Consecutive failures open
// the circuit; after openTimeout it admits up to trialLimit trial requests,
// and only a full run of successful trials closes it again.
type CircuitBreaker struct {
	mu sync.Mutex

	failureLimit int
	openTimeout  time.Duration
	trialLimit   int

	state          CircuitState
	failures       int
	openedAt       time.Time
	trialsInFlight int
	trialsPassed   int
	now            func() time.Time
}

// NewCircuitBreaker clamps nonsensical settings instead of rejecting them,
// so a zero-valued config still yields a working breaker.
func NewCircuitBreaker(failureLimit int, openTimeout time.Duration, trialLimit int) *CircuitBreaker {
	if failureLimit < 1 {
		failureLimit = 1
	}
	if openTimeout <= 0 {
		openTimeout = 15 * time.Second
	}
	if trialLimit < 1 {
		trialLimit = 1
	}

	return &CircuitBreaker{
		failureLimit: failureLimit,
		openTimeout:  openTimeout,
		trialLimit:   trialLimit,
		state:        CircuitStateClosed,
		now:          time.Now,
	}
}

// Allow reports whether a request may proceed. Every admitted request must be
// settled with RecordSuccess or RecordFailure.
func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen {
		if b.now().Sub(b.openedAt) < b.openTimeout {
			return ErrCircuitOpen
		}
		b.toHalfOpen()
	}

	if b.state == CircuitStateHalfOpen {
		if b.trialsInFlight >= b.trialLimit {
			return ErrCircuitOpen
		}
		b.trialsInFlight++
	}

	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		if b.trialsInFlight > 0 {
			b.trialsInFlight--
		}
		b.trialsPassed++
		if b.trialsPassed >= b.trialLimit && b.trialsInFlight == 0 {
			b.toClosed()
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.failureLimit {
			b.toOpen()
		}
	case CircuitStateHalfOpen:
		// One failed trial request re-opens immediately; no partial credit.
		if b.trialsInFlight > 0 {
			b.trialsInFlight--
		}
		b.toOpen()
	case CircuitStateOpen:
		b.openedAt = b.now()
	}
}

// State is advisory; it reports half_open once the open window has elapsed
// even before the first trial request arrives.
func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == CircuitStateOpen && b.now().Sub(b.openedAt) >= b.openTimeout {
		return CircuitStateHalfOpen
	}
	return b.state
}

func (b *CircuitBreaker) toClosed() {
	b.state = CircuitStateClosed
	b.failures = 0
	b.trialsInFlight = 0
	b.trialsPassed = 0
	b.openedAt = time.Time{}
}

func (b *CircuitBreaker) toOpen() {
	b.state = CircuitStateOpen
	b.openedAt = b.now()
	b.trialsInFlight = 0
	b.trialsPassed = 0
}

func (b *CircuitBreaker) toHalfOpen() {
	b.state = CircuitStateHalfOpen
	b.trialsInFlight = 0
	b.trialsPassed = 0
}
