package prompt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/logging"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// State is the session lifecycle state.
type State int

const (
	StateInit State = iota
	StateDisplaying
	StateGenerating
	StateAccepted
	StateBlurred
	StateError
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateDisplaying:
		return "displaying"
	case StateGenerating:
		return "generating"
	case StateAccepted:
		return "accepted"
	case StateBlurred:
		return "blurred"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateBlurred || s == StateError
}

// Driver runs prompt sessions against a renderer. Sessions started on the
// same SessionContext supersede each other.
type Driver struct {
	sc       *SessionContext
	flags    *Flags
	renderer Renderer
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewDriver creates a driver. sc and flags are shared with whoever starts
// sessions on the same host connection.
func NewDriver(renderer Renderer, sc *SessionContext, flags *Flags) *Driver {
	if sc == nil {
		sc = NewSessionContext()
	}
	if flags == nil {
		flags = NewFlags()
	}
	return &Driver{
		sc:       sc,
		flags:    flags,
		renderer: renderer,
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (d *Driver) WithLogger(logger *zap.Logger) *Driver {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// WithMetrics sets the metrics sink.
func (d *Driver) WithMetrics(metrics *monitoring.Metrics) *Driver {
	d.metrics = metrics
	return d
}

// Context returns the session context.
func (d *Driver) Context() *SessionContext { return d.sc }

// Flags returns the shared flag state.
func (d *Driver) Flags() *Flags { return d.flags }

// Renderer returns the render sink.
func (d *Driver) Renderer() Renderer { return d.renderer }

// Run starts a session and blocks until it settles. It returns the accepted
// value, or an error: ErrBlurred on blur, a *TransportError or
// *GeneratorError on fatal failures, or the context's cause when ctx ends
// first.
func (d *Driver) Run(ctx context.Context, src EventSource, cfg Config) (interface{}, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	tab := cfg.TabIndex
	if len(cfg.Tabs) == 0 || tab < 0 || tab >= len(cfg.Tabs) {
		tab = -1
	}
	version := d.sc.Begin(tab)

	s := &session{
		d:           d,
		ctx:         ctx,
		cfg:         cfg,
		id:          version.Session,
		source:      cfg.Source,
		src:         src,
		events:      make(chan sourceItem),
		completions: make(chan func()),
		cell:        newResultCell(),
		log:         logging.ForSession(d.logger, version.Session),
	}
	if tab >= 0 && cfg.Source.IsZero() {
		s.source = cfg.Tabs[tab].Source
	}

	d.metrics.SessionStarted()
	s.log.Debug("Session started", zap.Int("tab", tab), zap.String("source", s.source.Kind().String()))

	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		s.pump()
	}()

	s.loop(version)
	cancel(nil)
	<-pumpDone

	value, err := s.cell.get()
	d.metrics.SessionSettled(outcome(s.cell.state, err))
	return value, err
}

func outcome(state State, err error) string {
	switch {
	case state == StateAccepted:
		return "accepted"
	case state == StateBlurred:
		return "blurred"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// resultCell holds the single settlement of a session.
type resultCell struct {
	once  sync.Once
	done  chan struct{}
	state State
	value interface{}
	err   error
}

func newResultCell() *resultCell {
	return &resultCell{done: make(chan struct{})}
}

// set records the outcome; only the first call has any effect.
func (c *resultCell) set(state State, value interface{}, err error) bool {
	won := false
	c.once.Do(func() {
		c.state, c.value, c.err = state, value, err
		close(c.done)
		won = true
	})
	return won
}

func (c *resultCell) settled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *resultCell) get() (interface{}, error) {
	<-c.done
	return c.value, c.err
}

// session is the per-run state. Everything except the channels and cell is
// owned by the loop goroutine.
type session struct {
	d   *Driver
	ctx context.Context
	cfg Config
	id  uint64
	log *zap.Logger

	source  ChoiceSource
	display DisplayState
	state   State

	src         EventSource
	events      chan sourceItem
	completions chan func()
	cell        *resultCell

	// lastList is the channel of the latest CHOICES/NO_CHOICES event.
	lastList Channel

	focusSeq     uint64
	pendingFocus *Event
	focusVersion Version
	debounce     *time.Timer
	debounceC    <-chan time.Time

	submitSeq uint64
}

// pump forwards host events to the loop one at a time until ctx ends or the
// source fails. The hand-off is unbuffered, so the pump never holds more than
// the one event it is delivering; if the session ends first that event goes
// back to the source.
func (s *session) pump() {
	for {
		ev, err := s.src.Next(s.ctx)
		if err != nil && s.ctx.Err() != nil {
			return
		}
		select {
		case s.events <- sourceItem{ev: ev, err: err}:
		case <-s.ctx.Done():
			if err == nil {
				requeue(s.src, ev)
			}
			return
		}
		if err != nil {
			return
		}
	}
}

func requeue(src EventSource, ev Event) {
	if rq, ok := src.(Requeuer); ok {
		rq.Requeue(ev)
	}
}

// post hands a continuation to the loop. It is dropped once the session
// has ended.
func (s *session) post(fn func()) {
	select {
	case s.completions <- fn:
	case <-s.ctx.Done():
	}
}

func (s *session) loop(initial Version) {
	defer s.stopDebounce()

	s.resolve(s.source, "", initial)

	for !s.cell.settled() {
		if s.pendingFocus != nil && s.cfg.PreviewDebounce <= 0 {
			// Zero-delay debounce: take whatever the host already delivered
			// before computing the preview for the last focus.
			select {
			case it := <-s.events:
				s.dispatch(it)
			default:
				s.flushFocus()
			}
			continue
		}

		select {
		case it := <-s.events:
			s.dispatch(it)
		case fn := <-s.completions:
			fn()
		case <-s.debounceC:
			s.debounceC = nil
			s.flushFocus()
		case <-s.ctx.Done():
			s.settle(s.state, nil, context.Cause(s.ctx))
		}
	}
}

func (s *session) dispatch(it sourceItem) {
	if it.err != nil {
		s.fail(asTransportError(it.err))
		return
	}
	if s.d.sc.SessionID() != s.id {
		requeue(s.src, it.ev)
		s.settle(s.state, nil, ErrSuperseded)
		return
	}

	ev := it.ev
	s.log.Debug("Event received", zap.String("channel", string(ev.Channel)))

	switch ev.Channel {
	case ChannelTabChanged:
		s.switchTab(ev)
	case ChannelValueSubmitted:
		s.submit(ev)
	case ChannelGenerateChoices:
		s.generate(ev.Input)
	case ChannelPromptBlurred:
		s.blur()
	case ChannelChoices:
		s.lastList = ChannelChoices
		s.invoke("onChoices", s.cfg.OnChoices, ev.Input)
	case ChannelNoChoices:
		s.lastList = ChannelNoChoices
		s.invoke("onNoChoices", s.cfg.OnNoChoices, ev.Input)
	case ChannelChoiceFocused:
		s.focus(ev)
	default:
		s.fail(asTransportError(ev.Validate()))
	}
}

func (s *session) blur() {
	if s.cfg.IgnoreBlur {
		s.log.Debug("Blur ignored")
		return
	}
	s.settle(StateBlurred, nil, ErrBlurred)
}

func (s *session) accept(value interface{}) {
	s.settle(StateAccepted, value, nil)
}

func (s *session) fail(err error) {
	s.settle(StateError, nil, err)
}

func (s *session) settle(state State, value interface{}, err error) {
	if !s.cell.set(state, value, err) {
		return
	}
	s.state = state

	switch {
	case state == StateAccepted:
		s.log.Debug("Session accepted")
	case state == StateBlurred:
		s.log.Debug("Session blurred")
	case state == StateError:
		s.log.Error("Session failed", zap.Error(err))
	default:
		s.log.Debug("Session ended", zap.Error(err))
	}
}

// invoke runs a lifecycle callback without blocking the loop.
func (s *session) invoke(name string, cb Callback, input string) {
	if cb == nil {
		return
	}
	ctx, log := s.ctx, s.log
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error("Callback panicked", zap.String("callback", name), zap.Any("panic", r))
			}
		}()
		if err := cb(ctx, input); err != nil && ctx.Err() == nil {
			log.Warn("Callback failed", zap.String("callback", name), zap.Error(err))
		}
	}()
}

// recovered converts a panic value into an error.
func recovered(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
