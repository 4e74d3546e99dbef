package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/render"
	"github.com/dop251/goja"
	"go.uber.org/zap"
)

var (
	ErrTimeout  = errors.New("script: execution timeout exceeded")
	ErrPending  = errors.New("script: promise did not settle")
	ErrNoPrompt = errors.New("script: prompt is not an object")
)

// Config defines runtime configuration
type Config struct {
	Name     string         // Script name used in logs
	Timeout  time.Duration  // Limit for a single call into the script
	Renderer prompt.Renderer // Target of setPanel, setHint and setPreview
	Flags    *prompt.Flags  // Exposed to the script as `flag`
	Logger   *zap.Logger
}

// DefaultConfig returns the default runtime configuration
func DefaultConfig() Config {
	return Config{
		Name:    "script",
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	}
}

// Runtime wraps a goja VM running one prompt script. goja is not safe for
// concurrent use, so every call into the VM holds mu; generators,
// validators and previews invoked from different goroutines are serialized.
type Runtime struct {
	vm     *goja.Runtime
	config Config
	logger *zap.Logger
	mu     sync.Mutex
}

// New creates a runtime with the prompt globals installed.
func New(config Config) (*Runtime, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	if config.Flags == nil {
		config.Flags = prompt.NewFlags()
	}

	r := &Runtime{
		vm:     goja.New(),
		config: config,
		logger: config.Logger.With(zap.String("script", config.Name)),
	}
	r.vm.SetMaxCallStackSize(1024)

	if err := r.setupGlobals(); err != nil {
		return nil, err
	}
	return r, nil
}

// setupGlobals configures global objects and removes host access
func (r *Runtime) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	console := r.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error"} {
		if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
			return err
		}
	}

	globals := map[string]interface{}{
		"console":    console,
		"prompt":     r.vm.NewObject(),
		"setPanel":   r.makeRenderFunc(func(rd prompt.Renderer, html, classes string) { rd.SetPanel(html, classes) }),
		"setPreview": r.makeRenderFunc(func(rd prompt.Renderer, html, _ string) { rd.SetPreview(html) }),
		"setHint":    r.makeRenderFunc(func(rd prompt.Renderer, html, _ string) { rd.SetHint(html) }),
		"md": func(call goja.FunctionCall) goja.Value {
			out, err := render.Markdown(call.Argument(0).String())
			if err != nil {
				panic(r.vm.NewGoError(err))
			}
			return r.vm.ToValue(out)
		},
		// No event loop: timers are no-ops.
		"setTimeout":  func(goja.FunctionCall) goja.Value { return goja.Undefined() },
		"setInterval": func(goja.FunctionCall) goja.Value { return goja.Undefined() },
	}
	for name, v := range globals {
		if err := r.vm.Set(name, v); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return nil
}

// makeConsoleFunc routes console output to the logger
func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}
		msg := strings.Join(parts, " ")

		switch level {
		case "warn":
			r.logger.Warn(msg)
		case "error":
			r.logger.Error(msg)
		default:
			r.logger.Info(msg)
		}
		return goja.Undefined()
	}
}

func (r *Runtime) makeRenderFunc(fn func(rd prompt.Renderer, html, classes string)) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if r.config.Renderer == nil {
			return goja.Undefined()
		}
		classes := ""
		if present(call.Argument(1)) {
			classes = call.Argument(1).String()
		}
		fn(r.config.Renderer, call.Argument(0).String(), classes)
		return goja.Undefined()
	}
}

// watch interrupts the VM when ctx ends or the timeout passes. The returned
// func must be called once the VM call returns; it waits for the watcher to
// exit before clearing, so a late interrupt never leaks into the next call.
func (r *Runtime) watch(ctx context.Context) func() {
	timer := time.NewTimer(r.config.Timeout)
	done := make(chan struct{})
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		select {
		case <-timer.C:
			r.vm.Interrupt(ErrTimeout)
		case <-ctx.Done():
			r.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	return func() {
		close(done)
		<-exited
		timer.Stop()
		r.vm.ClearInterrupt()
	}
}

// Run executes source under the timeout and returns its completion value.
func (r *Runtime) Run(ctx context.Context, source string) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stop := r.watch(ctx)
	defer stop()

	val, err := r.vm.RunString(source)
	if err != nil {
		return nil, unwrapInterrupt(err)
	}
	val, err = r.settle(val)
	if err != nil {
		return nil, err
	}
	return export(val), nil
}

// invoke calls fn with args and hands the settled result to convert while
// still holding the VM.
func (r *Runtime) invoke(ctx context.Context, fn goja.Callable, convert func(goja.Value) error, args ...interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stop := r.watch(ctx)
	defer stop()

	if err := r.vm.Set("flag", r.config.Flags.Snapshot()); err != nil {
		return err
	}

	jsArgs := make([]goja.Value, len(args))
	for i, a := range args {
		jsArgs[i] = r.vm.ToValue(a)
	}

	val, err := fn(goja.Undefined(), jsArgs...)
	if err != nil {
		return unwrapInterrupt(err)
	}
	val, err = r.settle(val)
	if err != nil {
		return err
	}
	if convert == nil {
		return nil
	}
	return convert(val)
}

// settle unwraps a promise. There is no event loop, so a promise still
// pending after the call returns never settles.
func (r *Runtime) settle(val goja.Value) (goja.Value, error) {
	if !present(val) {
		return val, nil
	}
	p, ok := val.Export().(*goja.Promise)
	if !ok {
		return val, nil
	}
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return p.Result(), nil
	case goja.PromiseStateRejected:
		return nil, fmt.Errorf("script: promise rejected: %s", p.Result().String())
	default:
		return nil, ErrPending
	}
}

func unwrapInterrupt(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		if cause, ok := interrupted.Value().(error); ok {
			return cause
		}
	}
	return err
}

func present(v goja.Value) bool {
	return v != nil && !goja.IsUndefined(v) && !goja.IsNull(v)
}

// export converts goja value to Go value
func export(val goja.Value) interface{} {
	if !present(val) {
		return nil
	}
	return val.Export()
}
