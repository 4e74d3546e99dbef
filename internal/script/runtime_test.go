package script

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panelRecorder struct {
	mu     sync.Mutex
	panels []string
	hints  []string
}

func (p *panelRecorder) SetChoices([]prompt.Choice, string) {}
func (p *panelRecorder) SetPreview(string)                  {}
func (p *panelRecorder) SetMode(prompt.Mode)                {}
func (p *panelRecorder) SetPromptData(prompt.PromptData)    {}
func (p *panelRecorder) SetInput(string)                    {}
func (p *panelRecorder) SetIgnoreBlur(bool)                 {}

func (p *panelRecorder) SetPanel(html, className string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panels = append(p.panels, className+":"+html)
}

func (p *panelRecorder) SetHint(html string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hints = append(p.hints, html)
}

func newRuntime(t *testing.T, rec prompt.Renderer) *Runtime {
	t.Helper()
	config := DefaultConfig()
	config.Name = "test"
	config.Timeout = 200 * time.Millisecond
	config.Renderer = rec
	rt, err := New(config)
	require.NoError(t, err)
	return rt
}

func TestRuntimeRun(t *testing.T) {
	rt := newRuntime(t, nil)

	tests := []struct {
		name    string
		script  string
		want    interface{}
		wantErr bool
	}{
		{name: "simple return", script: "40 + 2", want: int64(42)},
		{name: "string", script: "'kit'.toUpperCase()", want: "KIT"},
		{name: "console log", script: "console.log('hi'); true", want: true},
		{name: "resolved promise", script: "Promise.resolve('done')", want: "done"},
		{name: "rejected promise", script: "Promise.reject('nope')", wantErr: true},
		{name: "require blocked", script: "require('fs')", wantErr: true},
		{name: "syntax error", script: "let = ;", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rt.Run(context.Background(), tt.script)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRuntimeTimeout(t *testing.T) {
	rt := newRuntime(t, nil)

	_, err := rt.Run(context.Background(), "for (;;) {}")
	assert.ErrorIs(t, err, ErrTimeout)

	got, err := rt.Run(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestRuntimeContextCancel(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rt.Run(ctx, "for (;;) {}")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCancelledWatchDoesNotLeakIntoNextCall(t *testing.T) {
	rt := newRuntime(t, nil)

	for i := 0; i < 2000; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		rt.mu.Lock()
		stop := rt.watch(ctx)
		cancel()
		stop()
		rt.mu.Unlock()

		got, err := rt.Run(context.Background(), "1+1")
		require.NoError(t, err, "iteration %d", i)
		require.Equal(t, int64(2), got)
	}
}

func TestLoadStaticPrompt(t *testing.T) {
	rt := newRuntime(t, nil)
	exp, err := rt.Load(context.Background(), `
		prompt.placeholder = "Pick";
		prompt.ignoreBlur = true;
		prompt.choices = ["a", {name: "B", value: 2, description: "bee"}];
	`)
	require.NoError(t, err)

	assert.Equal(t, "Pick", exp.Placeholder)
	assert.True(t, exp.IgnoreBlur)
	assert.Equal(t, prompt.KindStaticList, exp.Choices.Kind())
	assert.Nil(t, exp.Validator)
}

func TestLoadGenerator(t *testing.T) {
	rec := &panelRecorder{}
	rt := newRuntime(t, rec)
	exp, err := rt.Load(context.Background(), `
		prompt.choices = async (input) => {
			if (!input) return { choices: [], hint: "type something" };
			setPanel("<p>" + input + "</p>", "wide");
			return [{ name: input, preview: (c) => "<b>" + c.name + c.index + "</b>" }];
		};
	`)
	require.NoError(t, err)
	require.True(t, exp.Choices.InputDriven())
	require.True(t, exp.Choices.IsAsync())

	// Drive the generator through a session.
	src := prompt.NewChanSource(4)
	rrec := &resultRecorder{panelRecorder: rec}
	driver := prompt.NewDriver(rrec, nil, nil)

	out := make(chan error, 1)
	go func() {
		_, err := driver.Run(context.Background(), src, prompt.Config{Source: exp.Choices})
		out <- err
	}()

	src.Send(prompt.Event{Channel: prompt.ChannelGenerateChoices, Input: "x"})
	assert.Eventually(t, func() bool { return len(rrec.lastList()) == 1 }, time.Second, 5*time.Millisecond)

	list := rrec.lastList()
	assert.Equal(t, "x", list[0].Name)
	html, err := list[0].Preview(context.Background(), prompt.FocusedChoice{Choice: list[0], Index: 3})
	require.NoError(t, err)
	assert.Equal(t, "<b>x3</b>", html)

	rec.mu.Lock()
	assert.Contains(t, rec.panels, "wide:<p>x</p>")
	assert.Contains(t, rec.hints, "type something")
	rec.mu.Unlock()

	src.Send(prompt.Event{Channel: prompt.ChannelPromptBlurred})
	assert.ErrorIs(t, <-out, prompt.ErrBlurred)
}

func TestParameterlessGeneratorFiltersLocally(t *testing.T) {
	rt := newRuntime(t, nil)
	exp, err := rt.Load(context.Background(), `prompt.choices = () => ["a", "b"];`)
	require.NoError(t, err)

	assert.Equal(t, prompt.KindGenerator, exp.Choices.Kind())
	assert.False(t, exp.Choices.InputDriven())
}

func TestValidatorVerdicts(t *testing.T) {
	rt := newRuntime(t, nil)
	flags := prompt.NewFlags()
	rt.config.Flags = flags

	exp, err := rt.Load(context.Background(), `
		prompt.validate = (v) => {
			if (flag.force) return true;
			if (v === "ok") return true;
			if (v === "zero") return 0;
			return "\u001b[31mno " + v + "\u001b[0m";
		};
	`)
	require.NoError(t, err)
	require.NotNil(t, exp.Validator)

	ctx := context.Background()
	v, err := exp.Validator(ctx, "ok")
	require.NoError(t, err)
	assert.True(t, v.Accepted())

	v, err = exp.Validator(ctx, "zero")
	require.NoError(t, err)
	assert.False(t, v.Accepted())
	_, hasHint := v.Message()
	assert.False(t, hasHint)

	v, err = exp.Validator(ctx, "bad")
	require.NoError(t, err)
	msg, hasHint := v.Message()
	assert.True(t, hasHint)
	assert.Equal(t, "\x1b[31mno bad\x1b[0m", msg)

	flags.Set("force", true)
	v, err = exp.Validator(ctx, "bad")
	require.NoError(t, err)
	assert.True(t, v.Accepted())
}

func TestLoadTabsAndPanel(t *testing.T) {
	rt := newRuntime(t, nil)
	exp, err := rt.Load(context.Background(), `
		prompt.choices = "<h1>Hello</h1>";
		prompt.tabs = [
			{ name: "Files", choices: ["one"] },
			{ name: "Search", choices: async (q) => [q] },
		];
	`)
	require.NoError(t, err)

	assert.Equal(t, prompt.KindPanel, exp.Choices.Kind())
	require.Len(t, exp.Tabs, 2)
	assert.Equal(t, "Files", exp.Tabs[0].Name)
	assert.True(t, exp.Tabs[1].Source.InputDriven())
}

func TestLoadRejectsBadChoices(t *testing.T) {
	rt := newRuntime(t, nil)
	_, err := rt.Load(context.Background(), `prompt.choices = 42;`)
	assert.Error(t, err)
}

// resultRecorder adds list capture to panelRecorder.
type resultRecorder struct {
	*panelRecorder
	mu    sync.Mutex
	lists [][]prompt.Choice
}

func (r *resultRecorder) SetChoices(choices []prompt.Choice, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists = append(r.lists, choices)
}

func (r *resultRecorder) lastList() []prompt.Choice {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.lists) == 0 {
		return nil
	}
	return r.lists[len(r.lists)-1]
}
