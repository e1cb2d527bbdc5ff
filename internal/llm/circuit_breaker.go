package llm

import (
	"sync"
	"time"

	"github.com/wardenscan/warden/output"
)

// CircuitState is a per-provider circuit breaker state.
type CircuitState string

const (
	CircuitClosed   CircuitState = "closed"
	CircuitOpen     CircuitState = "open"
	CircuitHalfOpen CircuitState = "half_open"
)

type providerState struct {
	state           CircuitState
	failureCount    int
	successCount    int
	lastFailureTime time.Time
	hasFailed       bool
}

// ProviderCircuitBreaker is the orchestrator-level breaker that decides
// whether a provider is even attempted, separate from the per-call
// resilience wrapper's own retry/timeout logic. Ported from the original
// Python engine's ProviderCircuitBreaker: three states (closed / open /
// half_open), a consecutive-failure threshold that opens the circuit, a
// cooldown after which one probe is allowed through, and a
// success-threshold in half-open before the circuit closes again.
//
// State survives for the lifetime of the process, matching spec's
// requirement that the breaker persist across pipeline invocations.
type ProviderCircuitBreaker struct {
	mu              sync.Mutex
	states          map[string]*providerState
	failThreshold   int
	openDuration    time.Duration
	successThreshold int
	logger          *output.Logger
}

// NewProviderCircuitBreaker builds a breaker with spec's defaults
// (fail_threshold=3, open_duration=5m, success_threshold=1). Pass a
// logger to get the teacher-style Warning/Debug lines on transition;
// nil disables logging.
func NewProviderCircuitBreaker(logger *output.Logger) *ProviderCircuitBreaker {
	return &ProviderCircuitBreaker{
		states:            make(map[string]*providerState),
		failThreshold:     3,
		openDuration:      5 * time.Minute,
		successThreshold:  1,
		logger:            logger,
	}
}

func (b *ProviderCircuitBreaker) stateFor(provider string) *providerState {
	s, ok := b.states[provider]
	if !ok {
		s = &providerState{state: CircuitClosed}
		b.states[provider] = s
	}
	return s
}

func (b *ProviderCircuitBreaker) maybeTransitionToHalfOpen(provider string, s *providerState) {
	if s.state != CircuitOpen || !s.hasFailed {
		return
	}
	if time.Since(s.lastFailureTime) >= b.openDuration {
		s.state = CircuitHalfOpen
		s.successCount = 0
		if b.logger != nil {
			b.logger.Debug("provider %s circuit half-open after %s, allowing probe", provider, b.openDuration)
		}
	}
}

// GetState returns the current state for a provider, applying the
// time-based open->half_open transition first.
func (b *ProviderCircuitBreaker) GetState(provider string) CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stateFor(provider)
	b.maybeTransitionToHalfOpen(provider, s)
	return s.state
}

// IsOpen reports whether callers should skip this provider entirely.
// HALF_OPEN returns false so a single probe request is allowed through.
func (b *ProviderCircuitBreaker) IsOpen(provider string) bool {
	return b.GetState(provider) == CircuitOpen
}

// RecordFailure registers a failed attempt. In CLOSED it increments the
// failure count and opens the circuit once the threshold is reached; in
// HALF_OPEN a failed probe immediately re-opens it.
func (b *ProviderCircuitBreaker) RecordFailure(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stateFor(provider)
	s.failureCount++
	s.lastFailureTime = time.Now()
	s.hasFailed = true

	switch s.state {
	case CircuitClosed:
		if s.failureCount >= b.failThreshold {
			s.state = CircuitOpen
			if b.logger != nil {
				b.logger.Warning("provider %s circuit opened after %d consecutive failures, skipping for %s", provider, s.failureCount, b.openDuration)
			}
		}
	case CircuitHalfOpen:
		s.state = CircuitOpen
		if b.logger != nil {
			b.logger.Warning("provider %s half-open probe failed, circuit re-opened", provider)
		}
	}
}

// RecordSuccess registers a successful attempt. In CLOSED it resets the
// failure count; in HALF_OPEN it accumulates toward success_threshold
// and closes the circuit once reached.
func (b *ProviderCircuitBreaker) RecordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stateFor(provider)

	switch s.state {
	case CircuitClosed:
		s.failureCount = 0
	case CircuitHalfOpen:
		s.successCount++
		if s.successCount >= b.successThreshold {
			s.state = CircuitClosed
			s.failureCount = 0
			s.successCount = 0
			if b.logger != nil {
				b.logger.Debug("provider %s recovered, circuit closed", provider)
			}
		}
	}
}

// Reset forces a provider's circuit back to CLOSED, clearing all counts.
func (b *ProviderCircuitBreaker) Reset(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[provider] = &providerState{state: CircuitClosed}
}

// OpenProviders returns every provider currently in the OPEN state.
func (b *ProviderCircuitBreaker) OpenProviders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var open []string
	for p, s := range b.states {
		b.maybeTransitionToHalfOpen(p, s)
		if s.state == CircuitOpen {
			open = append(open, p)
		}
	}
	return open
}

// Summary returns every tracked provider's current state, keyed by name.
func (b *ProviderCircuitBreaker) Summary() map[string]CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]CircuitState, len(b.states))
	for p, s := range b.states {
		b.maybeTransitionToHalfOpen(p, s)
		out[p] = s.state
	}
	return out
}
