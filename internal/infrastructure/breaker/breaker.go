package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Prachi-Agarwal211/Aarya-Clothing-sub001/domain"
)

// State is the breaker position.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Config tunes a Breaker.
type Config struct {
	Name             string
	FailureThreshold int
	RecoveryTimeout  time.Duration
	// Now is injectable for tests; defaults to time.Now.
	Now    func() time.Time
	Logger zerolog.Logger
}

// Breaker isolates a failing dependency. Closed passes calls through and
// counts consecutive failures; Open short-circuits to ErrDependencyUnavailable;
// HalfOpen admits a single trial call after RecoveryTimeout.
//
// Errors are classified through domain.IsClientError: a business outcome
// (not-found and friends) proves the dependency answered and counts as a
// healthy call; only transport and availability failures trip the breaker.
type Breaker struct {
	name      string
	threshold int
	recovery  time.Duration
	now       func() time.Time
	logger    zerolog.Logger

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// New creates a Breaker in the closed state. Zero-value threshold and
// recovery fall back to 5 failures / 30s, the defaults the service ships with.
func New(cfg Config) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.RecoveryTimeout <= 0 {
		cfg.RecoveryTimeout = 30 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Breaker{
		name:      cfg.Name,
		threshold: cfg.FailureThreshold,
		recovery:  cfg.RecoveryTimeout,
		now:       cfg.Now,
		logger:    cfg.Logger,
		state:     StateClosed,
	}
}

// State returns the current position, applying the open->half-open timer.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.recovery {
		return StateHalfOpen
	}
	return b.state
}

// Execute runs op under the breaker. When the breaker is open the operation
// is never attempted and ErrDependencyUnavailable is returned so callers can
// fail closed.
func (b *Breaker) Execute(ctx context.Context, op func(ctx context.Context) error) error {
	if !b.admit() {
		return domain.ErrDependencyUnavailable
	}

	err := op(ctx)
	b.record(err)
	return err
}

func (b *Breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.recovery {
			return false
		}
		b.transition(StateHalfOpen)
		b.probing = true
		return true
	case StateHalfOpen:
		// One trial call at a time.
		if b.probing {
			return false
		}
		b.probing = true
		return true
	}
	return false
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil || domain.IsClientError(err) {
		if b.state == StateHalfOpen {
			b.transition(StateClosed)
		}
		b.failures = 0
		b.probing = false
		return
	}

	b.probing = false
	switch b.state {
	case StateHalfOpen:
		// Trial failed; back to open for a full recovery window.
		b.openedAt = b.now()
		b.transition(StateOpen)
	case StateClosed:
		b.failures++
		if b.failures >= b.threshold {
			b.openedAt = b.now()
			b.transition(StateOpen)
		}
	}
}

func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	b.logger.Warn().
		Str("breaker", b.name).
		Str("from", b.state.String()).
		Str("to", to.String()).
		Int("failures", b.failures).
		Msg("circuit breaker state change")
	b.state = to
	if to == StateClosed {
		b.failures = 0
	}
}
