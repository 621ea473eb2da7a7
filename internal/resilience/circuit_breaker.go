package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the breaker rejects a call outright.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	StateClosed   CircuitState = iota // normal operation
	StateOpen                         // calls fail immediately
	StateHalfOpen                     // probing whether the service recovered
)

// CircuitBreaker trips after a run of consecutive failures so that a dead
// collaborator fails fast instead of costing a full timeout per call.
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int

	mu            sync.Mutex
	state         CircuitState
	failureCount  int
	successCount  int
	halfOpenCalls int
	lastFailTime  time.Time
}

// NewCircuitBreaker creates a breaker that opens after maxFailures
// consecutive failures and probes again after resetTimeout.
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  3,
		state:        StateClosed,
	}
}

// Call executes fn under breaker protection. When the circuit is open the
// call is rejected with ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Call(fn func() error) error {
	if !cb.allow() {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err == nil)
	return err
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if time.Since(cb.lastFailTime) >= cb.resetTimeout {
			cb.state = StateHalfOpen
			cb.halfOpenCalls = 0
			cb.successCount = 0
			return true
		}
		return false
	case StateHalfOpen:
		if cb.halfOpenCalls < cb.halfOpenMax {
			cb.halfOpenCalls++
			return true
		}
		return false
	}
	return false
}

func (cb *CircuitBreaker) record(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if success {
		switch cb.state {
		case StateHalfOpen:
			cb.successCount++
			if cb.successCount >= cb.halfOpenMax {
				cb.state = StateClosed
				cb.failureCount = 0
			}
		case StateClosed:
			cb.failureCount = 0
		}
		return
	}

	cb.lastFailTime = time.Now()
	switch cb.state {
	case StateHalfOpen:
		cb.state = StateOpen
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.maxFailures {
			cb.state = StateOpen
		}
	}
}
