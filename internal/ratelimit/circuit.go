package ratelimit

import (
	"sync/atomic"
	"time"
)

// CircuitState represents breaker state.
type CircuitState int32

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitOptions configures breaker thresholds.
type CircuitOptions struct {
	FailureThreshold int64
	OpenDuration     time.Duration
	HalfOpenMaxCalls int64
}

// CircuitBreaker stops calls to the shared store after consecutive failures,
// then lets a few probes through once OpenDuration has passed. A nil breaker
// allows everything.
type CircuitBreaker struct {
	state            atomic.Int32
	openUntil        atomic.Int64
	failures         atomic.Int64
	halfOpenInFlight atomic.Int64
	opts             CircuitOptions
	now              func() time.Time
}

// NewCircuitBreaker constructs a breaker with defaults.
func NewCircuitBreaker(opts CircuitOptions) *CircuitBreaker {
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 3
	}
	if opts.OpenDuration <= 0 {
		opts.OpenDuration = time.Second
	}
	if opts.HalfOpenMaxCalls <= 0 {
		opts.HalfOpenMaxCalls = 1
	}
	cb := &CircuitBreaker{opts: opts, now: time.Now}
	cb.state.Store(int32(CircuitClosed))
	return cb
}

// State returns the current state.
func (cb *CircuitBreaker) State() CircuitState {
	if cb == nil {
		return CircuitClosed
	}
	return CircuitState(cb.state.Load())
}

// Allow reports whether the call should proceed. Every true result must be
// followed by OnSuccess or OnFailure.
func (cb *CircuitBreaker) Allow() bool {
	if cb == nil {
		return true
	}
	switch CircuitState(cb.state.Load()) {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if cb.now().UnixNano() < cb.openUntil.Load() {
			return false
		}
		if cb.state.CompareAndSwap(int32(CircuitOpen), int32(CircuitHalfOpen)) {
			cb.halfOpenInFlight.Store(1)
			return true
		}
		return cb.allowHalfOpen()
	case CircuitHalfOpen:
		return cb.allowHalfOpen()
	default:
		return true
	}
}

func (cb *CircuitBreaker) allowHalfOpen() bool {
	if cb.halfOpenInFlight.Add(1) <= cb.opts.HalfOpenMaxCalls {
		return true
	}
	cb.halfOpenInFlight.Add(-1)
	return false
}

// OnSuccess records a successful call.
func (cb *CircuitBreaker) OnSuccess() {
	if cb == nil {
		return
	}
	if CircuitState(cb.state.Load()) == CircuitHalfOpen {
		cb.halfOpenInFlight.Add(-1)
		cb.state.Store(int32(CircuitClosed))
	}
	cb.failures.Store(0)
}

// OnFailure records a failure and updates state.
func (cb *CircuitBreaker) OnFailure() {
	if cb == nil {
		return
	}
	if CircuitState(cb.state.Load()) == CircuitHalfOpen {
		cb.halfOpenInFlight.Add(-1)
		cb.trip()
		return
	}
	if cb.failures.Add(1) >= cb.opts.FailureThreshold {
		cb.trip()
	}
}

func (cb *CircuitBreaker) trip() {
	cb.openUntil.Store(cb.now().Add(cb.opts.OpenDuration).UnixNano())
	cb.state.Store(int32(CircuitOpen))
}
