package kit

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/kitprompt/internal/render"
	"go.uber.org/zap"
)

// Default placeholders for the preset prompts.
const (
	DefaultArgPlaceholder    = "Type a value:"
	DefaultDropPlaceholder   = "Waiting for drop..."
	DefaultHotkeyPlaceholder = "Press a key combo:"
)

// Options configures one prompt. The zero value is an arg prompt with no
// choices.
type Options struct {
	UI          prompt.UI
	Placeholder string
	Hint        string
	Input       string
	Secret      bool
	Selected    string
	Type        string
	IgnoreBlur  bool
	Mode        prompt.Mode
	ClassName   string

	// Strict defaults to true when choices are present.
	Strict *bool

	// Preview renders the initial preview before the session starts.
	Preview func(ctx context.Context) (string, error)

	Choices     prompt.ChoiceSource
	Validator   prompt.Validator
	OnChoices   prompt.Callback
	OnNoChoices prompt.Callback

	// Tabs are alternate sources. Tab names the initially active one; when
	// empty the "tab" flag is consulted, then the first tab is used.
	Tabs []prompt.Tab
	Tab  string
}

// Kit is the script-facing prompt API for one host connection. It owns the
// state shared by consecutive prompts: session context, flags and the
// queue of positional arguments. Only one prompt is active at a time; a new
// prompt supersedes the previous one.
type Kit struct {
	driver   *prompt.Driver
	source   prompt.EventSource
	renderer prompt.Renderer
	logger   *zap.Logger

	script       string
	parentScript string
	debounce     time.Duration

	mu     sync.Mutex
	args   []string
	cancel context.CancelCauseFunc
	done   chan struct{}
}

// New creates a kit bound to a host connection.
func New(renderer prompt.Renderer, source prompt.EventSource, logger *zap.Logger, metrics *monitoring.Metrics) *Kit {
	if logger == nil {
		logger = zap.NewNop()
	}
	driver := prompt.NewDriver(renderer, prompt.NewSessionContext(), prompt.NewFlags()).
		WithLogger(logger).
		WithMetrics(metrics)

	return &Kit{
		driver:   driver,
		source:   source,
		renderer: renderer,
		logger:   logger,
	}
}

// SetScript records the running script name reported to the host.
func (k *Kit) SetScript(script, parent string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.script = script
	k.parentScript = parent
}

// SetPreviewDebounce sets the focus debounce window for later prompts.
func (k *Kit) SetPreviewDebounce(d time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.debounce = d
}

// Flags returns the shared flag state.
func (k *Kit) Flags() *prompt.Flags { return k.driver.Flags() }

// Renderer returns the host render sink.
func (k *Kit) Renderer() prompt.Renderer { return k.renderer }

// Context returns the session context shared by this kit's prompts.
func (k *Kit) Context() *prompt.SessionContext { return k.driver.Context() }

// Args returns the queued positional arguments.
func (k *Kit) Args() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.args...)
}

// Prompt shows a prompt and waits for its value.
func (k *Kit) Prompt(ctx context.Context, opts Options) (interface{}, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	done := k.activate(cancel)
	defer k.deactivate(done)

	opts = k.withDefaults(opts)
	tabIndex := k.tabIndex(opts)

	source := opts.Choices
	if source.IsZero() && tabIndex >= 0 {
		source = opts.Tabs[tabIndex].Source
	}
	if source.InputDriven() {
		opts.Mode = prompt.ModeGenerate
	}

	k.mu.Lock()
	data := prompt.PromptData{
		Tabs:         tabNames(opts.Tabs),
		TabIndex:     tabIndex,
		Placeholder:  render.StripANSI(opts.Placeholder),
		Script:       k.script,
		ParentScript: k.parentScript,
		Args:         strings.Join(k.args, " "),
		Secret:       opts.Secret,
		UI:           opts.UI,
		Strict:       *opts.Strict,
		Selected:     opts.Selected,
		Type:         opts.Type,
		IgnoreBlur:   opts.IgnoreBlur,
		HasPreview:   opts.Preview != nil,
	}
	debounce := k.debounce
	k.mu.Unlock()

	r := k.renderer
	r.SetMode(opts.Mode)
	r.SetPromptData(data)
	r.SetHint(opts.Hint)
	if opts.Input != "" {
		r.SetInput(opts.Input)
	}
	if opts.IgnoreBlur {
		r.SetIgnoreBlur(true)
	}
	if opts.Preview != nil {
		r.SetPreview(prompt.Preview(ctx, opts.Preview))
	}

	k.logger.Debug("Prompt started",
		zap.String("ui", string(opts.UI)),
		zap.String("mode", string(opts.Mode)),
		zap.Int("tabs", len(opts.Tabs)))

	return k.driver.Run(ctx, k.source, prompt.Config{
		Source:          opts.Choices,
		Validator:       opts.Validator,
		OnChoices:       opts.OnChoices,
		OnNoChoices:     opts.OnNoChoices,
		IgnoreBlur:      opts.IgnoreBlur,
		ClassName:       opts.ClassName,
		Tabs:            opts.Tabs,
		TabIndex:        tabIndex,
		PreviewDebounce: debounce,
	})
}

// activate supersedes the running prompt and waits for it to release the
// event source.
func (k *Kit) activate(cancel context.CancelCauseFunc) chan struct{} {
	k.mu.Lock()
	prevCancel, prevDone := k.cancel, k.done
	done := make(chan struct{})
	k.cancel, k.done = cancel, done
	k.mu.Unlock()

	if prevCancel != nil {
		prevCancel(prompt.ErrSuperseded)
		<-prevDone
	}
	return done
}

func (k *Kit) deactivate(done chan struct{}) {
	k.mu.Lock()
	if k.done == done {
		k.cancel, k.done = nil, nil
	}
	k.mu.Unlock()
	close(done)
}

func (k *Kit) withDefaults(opts Options) Options {
	if opts.UI == "" {
		opts.UI = prompt.UIArg
	}
	if opts.Type == "" {
		opts.Type = "text"
	}
	if opts.Strict == nil {
		strict := !opts.Choices.IsZero() || len(opts.Tabs) > 0
		opts.Strict = &strict
	}
	if opts.Mode == "" {
		opts.Mode = prompt.ModeFilter
	}
	if opts.OnNoChoices == nil {
		r := k.renderer
		opts.OnNoChoices = func(context.Context, string) error {
			r.SetPreview("<div/>")
			return nil
		}
	}
	return opts
}

func (k *Kit) tabIndex(opts Options) int {
	if len(opts.Tabs) == 0 {
		return -1
	}
	name := opts.Tab
	if name == "" {
		if v, ok := k.Flags().Get("tab"); ok {
			name, _ = v.(string)
		}
	}
	for i, t := range opts.Tabs {
		if t.Name == name {
			return i
		}
	}
	return 0
}

func tabNames(tabs []prompt.Tab) []string {
	names := make([]string, len(tabs))
	for i, t := range tabs {
		names[i] = t.Name
	}
	return names
}
