package prompt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// recorder is a Renderer that keeps every call.
type recorder struct {
	mu       sync.Mutex
	choices  [][]Choice
	classes  []string
	panels   []string
	previews []string
	hints    []string
	modes    []Mode
	data     []PromptData
	inputs   []string
	blur     []bool
}

func (r *recorder) SetChoices(choices []Choice, className string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.choices = append(r.choices, choices)
	r.classes = append(r.classes, className)
}

func (r *recorder) SetPanel(html, className string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panels = append(r.panels, html)
}

func (r *recorder) SetPreview(html string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.previews = append(r.previews, html)
}

func (r *recorder) SetHint(html string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hints = append(r.hints, html)
}

func (r *recorder) SetMode(mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modes = append(r.modes, mode)
}

func (r *recorder) SetPromptData(data PromptData) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, data)
}

func (r *recorder) SetInput(input string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, input)
}

func (r *recorder) SetIgnoreBlur(ignore bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blur = append(r.blur, ignore)
}

func names(choices []Choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Name
	}
	return out
}

// lastNames returns the names of the most recently rendered list.
func (r *recorder) lastNames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.choices) == 0 {
		return nil
	}
	return names(r.choices[len(r.choices)-1])
}

// renderedName reports whether any rendered list ever contained name.
func (r *recorder) renderedName(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.choices {
		for _, c := range list {
			if c.Name == name {
				return true
			}
		}
	}
	return false
}

func (r *recorder) listCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.choices)
}

func (r *recorder) lastHint() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.hints) == 0 {
		return "", false
	}
	return r.hints[len(r.hints)-1], true
}

func (r *recorder) previewCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.previews...)
}

func (r *recorder) panelCalls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.panels...)
}

// calls collects callback inputs.
type calls struct {
	mu     sync.Mutex
	inputs []string
}

func (c *calls) callback() Callback {
	return func(_ context.Context, input string) error {
		c.mu.Lock()
		c.inputs = append(c.inputs, input)
		c.mu.Unlock()
		return nil
	}
}

func (c *calls) get() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.inputs...)
}

type outcomeResult struct {
	value interface{}
	err   error
}

type harness struct {
	rec     *recorder
	src     *ChanSource
	driver  *Driver
	metrics *monitoring.Metrics
}

func newHarness() *harness {
	rec := &recorder{}
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	return &harness{
		rec:     rec,
		src:     NewChanSource(16),
		driver:  NewDriver(rec, NewSessionContext(), NewFlags()).WithMetrics(metrics),
		metrics: metrics,
	}
}

func (h *harness) start(ctx context.Context, cfg Config) <-chan outcomeResult {
	out := make(chan outcomeResult, 1)
	go func() {
		v, err := h.driver.Run(ctx, h.src, cfg)
		out <- outcomeResult{value: v, err: err}
	}()
	return out
}

func (h *harness) stale() int64 {
	return h.metrics.Snapshot().StaleDiscarded
}

func await(t *testing.T, out <-chan outcomeResult) outcomeResult {
	t.Helper()
	select {
	case r := <-out:
		return r
	case <-time.After(waitFor):
		t.Fatal("session did not settle")
		return outcomeResult{}
	}
}

// gate blocks a generator until released with a result.
type gate struct {
	release chan Result
}

func newGate() *gate {
	return &gate{release: make(chan Result, 1)}
}

func (g *gate) wait(ctx context.Context) (Result, error) {
	select {
	case r := <-g.release:
		return r, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
