package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned without calling the guarded function while the
// breaker is open or its half-open probes are taken.
var ErrOpen = errors.New("resilience: breaker open")

// State of a breaker
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Settings configures a Breaker
type Settings struct {
	// Failures in a row that open the breaker
	Threshold int
	// How long the breaker stays open before letting probes through
	Cooldown time.Duration
	// Successful probes needed to close again
	Probes int
	// Called outside the breaker lock; may be nil
	OnStateChange func(name string, from, to State)
}

// Breaker stops calling a failing remote after Threshold consecutive
// failures. Context cancellation by the caller is not counted as a failure.
type Breaker struct {
	name     string
	settings Settings
	now      func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	probes   int
	inFlight int
	openedAt time.Time
}

// New creates a breaker. Zero settings fall back to 5 failures, a 30s
// cooldown and a single probe.
func New(name string, settings Settings) *Breaker {
	if settings.Threshold <= 0 {
		settings.Threshold = 5
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = 30 * time.Second
	}
	if settings.Probes <= 0 {
		settings.Probes = 1
	}
	return &Breaker{name: name, settings: settings, now: time.Now}
}

// Name returns the breaker name
func (b *Breaker) Name() string { return b.name }

// State returns the current state, moving open to half-open once the
// cooldown has passed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()
	return b.state
}

// Execute runs fn unless the breaker is open.
func (b *Breaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err == nil || (errors.Is(err, context.Canceled) && ctx.Err() != nil))
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advance()

	switch b.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if b.inFlight >= b.settings.Probes {
			return ErrOpen
		}
	}
	b.inFlight++
	return nil
}

func (b *Breaker) record(success bool) {
	b.mu.Lock()
	b.inFlight--

	var from, to State
	changed := false
	switch {
	case success && b.state == StateHalfOpen:
		b.probes++
		if b.probes >= b.settings.Probes {
			from, to, changed = b.transition(StateClosed)
		}
	case success:
		b.failures = 0
	case b.state == StateHalfOpen:
		from, to, changed = b.transition(StateOpen)
	default:
		b.failures++
		if b.state == StateClosed && b.failures >= b.settings.Threshold {
			from, to, changed = b.transition(StateOpen)
		}
	}
	b.mu.Unlock()

	if changed && b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.name, from, to)
	}
}

// advance must be called with mu held.
func (b *Breaker) advance() {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.settings.Cooldown {
		from, to, _ := b.transition(StateHalfOpen)
		if b.settings.OnStateChange != nil {
			go b.settings.OnStateChange(b.name, from, to)
		}
	}
}

func (b *Breaker) transition(to State) (State, State, bool) {
	from := b.state
	if from == to {
		return from, to, false
	}
	b.state = to
	b.failures = 0
	b.probes = 0
	if to == StateOpen {
		b.openedAt = b.now()
	}
	return from, to, true
}
