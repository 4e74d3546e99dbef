package kit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	modes    []prompt.Mode
	data     []prompt.PromptData
	hints    []string
	inputs   []string
	previews []string
	panels   []string
	blur     []bool
	lists    int
}

func (r *recorder) SetChoices([]prompt.Choice, string) {
	r.mu.Lock()
	r.lists++
	r.mu.Unlock()
}

func (r *recorder) SetPanel(html, _ string) {
	r.mu.Lock()
	r.panels = append(r.panels, html)
	r.mu.Unlock()
}

func (r *recorder) SetPreview(html string) {
	r.mu.Lock()
	r.previews = append(r.previews, html)
	r.mu.Unlock()
}

func (r *recorder) SetHint(html string) {
	r.mu.Lock()
	r.hints = append(r.hints, html)
	r.mu.Unlock()
}

func (r *recorder) SetMode(mode prompt.Mode) {
	r.mu.Lock()
	r.modes = append(r.modes, mode)
	r.mu.Unlock()
}

func (r *recorder) SetPromptData(data prompt.PromptData) {
	r.mu.Lock()
	r.data = append(r.data, data)
	r.mu.Unlock()
}

func (r *recorder) SetInput(input string) {
	r.mu.Lock()
	r.inputs = append(r.inputs, input)
	r.mu.Unlock()
}

func (r *recorder) SetIgnoreBlur(ignore bool) {
	r.mu.Lock()
	r.blur = append(r.blur, ignore)
	r.mu.Unlock()
}

func (r *recorder) lastData() (prompt.PromptData, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.data) == 0 {
		return prompt.PromptData{}, false
	}
	return r.data[len(r.data)-1], true
}

type result struct {
	value interface{}
	err   error
}

func run(fn func() (interface{}, error)) <-chan result {
	out := make(chan result, 1)
	go func() {
		v, err := fn()
		out <- result{v, err}
	}()
	return out
}

func wait(t *testing.T, out <-chan result) result {
	t.Helper()
	select {
	case r := <-out:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("prompt did not settle")
		return result{}
	}
}

func newKit() (*Kit, *recorder, *prompt.ChanSource) {
	rec := &recorder{}
	src := prompt.NewChanSource(8)
	return New(rec, src, nil, nil), rec, src
}

func TestPromptSendsPromptData(t *testing.T) {
	k, rec, src := newKit()
	k.SetScript("hello", "main")
	k.UpdateArgs([]string{"one", "two"})

	strict := false
	out := run(func() (interface{}, error) {
		return k.Prompt(context.Background(), Options{
			Placeholder: "\x1b[1mPick\x1b[0m",
			Hint:        "a hint",
			Input:       "pre",
			IgnoreBlur:  true,
			Secret:      true,
			Strict:      &strict,
			Preview: func(context.Context) (string, error) {
				return "<p>first</p>", nil
			},
			Choices: prompt.StaticList(prompt.Strings("a")...),
		})
	})

	require.Eventually(t, func() bool { _, ok := rec.lastData(); return ok }, time.Second, 5*time.Millisecond)
	data, _ := rec.lastData()
	assert.Equal(t, "Pick", data.Placeholder)
	assert.Equal(t, "hello", data.Script)
	assert.Equal(t, "main", data.ParentScript)
	assert.Equal(t, "one two", data.Args)
	assert.Equal(t, prompt.UIArg, data.UI)
	assert.Equal(t, "text", data.Type)
	assert.Equal(t, -1, data.TabIndex)
	assert.True(t, data.Secret)
	assert.False(t, data.Strict)
	assert.True(t, data.HasPreview)
	assert.True(t, data.IgnoreBlur)

	src.Send(prompt.Event{Channel: prompt.ChannelValueSubmitted, Value: "a"})
	res := wait(t, out)
	require.NoError(t, res.err)
	assert.Equal(t, "a", res.value)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []prompt.Mode{prompt.ModeFilter}, rec.modes)
	assert.Equal(t, []string{"a hint"}, rec.hints)
	assert.Equal(t, []string{"pre"}, rec.inputs)
	assert.Equal(t, []bool{true}, rec.blur)
	assert.Equal(t, []string{"<p>first</p>"}, rec.previews)
}

func TestGeneratorSwitchesToGenerateMode(t *testing.T) {
	k, rec, src := newKit()
	gen := prompt.SyncGenerator(func(input string) (prompt.Result, error) {
		return prompt.List(prompt.Strings(input)...), nil
	})

	out := run(func() (interface{}, error) {
		return k.Prompt(context.Background(), Options{Choices: gen})
	})
	src.Send(prompt.Event{Channel: prompt.ChannelValueSubmitted, Value: "x"})
	require.NoError(t, wait(t, out).err)

	rec.mu.Lock()
	assert.Equal(t, []prompt.Mode{prompt.ModeGenerate}, rec.modes)
	assert.True(t, rec.data[0].Strict)
	rec.mu.Unlock()
}

func TestFilterLocallyKeepsFilterMode(t *testing.T) {
	k, rec, src := newKit()
	gen := prompt.SyncGenerator(func(string) (prompt.Result, error) {
		return prompt.List(prompt.Strings("a", "b")...), nil
	}).FilterLocally()

	out := run(func() (interface{}, error) {
		return k.Prompt(context.Background(), Options{Choices: gen})
	})
	src.Send(prompt.Event{Channel: prompt.ChannelPromptBlurred})
	assert.ErrorIs(t, wait(t, out).err, prompt.ErrBlurred)

	rec.mu.Lock()
	assert.Equal(t, []prompt.Mode{prompt.ModeFilter}, rec.modes)
	rec.mu.Unlock()
}

func TestDefaultOnNoChoicesClearsPreview(t *testing.T) {
	k, rec, src := newKit()
	gen := prompt.SyncGenerator(func(string) (prompt.Result, error) {
		return prompt.List(), nil
	})

	out := run(func() (interface{}, error) {
		return k.Prompt(context.Background(), Options{Choices: gen})
	})
	src.Send(prompt.Event{Channel: prompt.ChannelGenerateChoices, Input: "nothing"})

	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.previews) == 1 && rec.previews[0] == "<div/>"
	}, time.Second, 5*time.Millisecond)

	src.Send(prompt.Event{Channel: prompt.ChannelPromptBlurred})
	wait(t, out)
}

func TestArgUsesQueuedArgument(t *testing.T) {
	k, rec, _ := newKit()
	k.UpdateArgs([]string{"first"})

	v, err := k.Arg(context.Background(), Options{})
	require.NoError(t, err)
	assert.Equal(t, "first", v)
	assert.Empty(t, k.Args())

	rec.mu.Lock()
	assert.Empty(t, rec.data)
	rec.mu.Unlock()
}

func TestArgRejectedQueuedArgumentPrompts(t *testing.T) {
	k, rec, src := newKit()
	k.UpdateArgs([]string{"bad"})

	validator := func(_ context.Context, v interface{}) (prompt.Verdict, error) {
		if v == "good" {
			return prompt.Valid(), nil
		}
		return prompt.Invalid(), nil
	}

	out := run(func() (interface{}, error) {
		return k.Arg(context.Background(), Options{Validator: validator})
	})

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.hints) > 0
	}, time.Second, 5*time.Millisecond)
	data, _ := rec.lastData()
	assert.Equal(t, DefaultArgPlaceholder, data.Placeholder)

	rec.mu.Lock()
	assert.Equal(t, "bad is not a valid value", rec.hints[0])
	rec.mu.Unlock()

	src.Send(prompt.Event{Channel: prompt.ChannelValueSubmitted, Value: "good"})
	res := wait(t, out)
	require.NoError(t, res.err)
	assert.Equal(t, "good", res.value)
}

func TestDivShowsWrappedPanel(t *testing.T) {
	k, rec, src := newKit()
	out := run(func() (interface{}, error) {
		return k.Div(context.Background(), "<h1>Hi</h1>", "p-4")
	})

	assert.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.panels) == 1
	}, time.Second, 5*time.Millisecond)

	rec.mu.Lock()
	assert.Equal(t, `<div class="p-4"><h1>Hi</h1></div>`, rec.panels[0])
	assert.Equal(t, prompt.UIDiv, rec.data[0].UI)
	rec.mu.Unlock()

	src.Send(prompt.Event{Channel: prompt.ChannelValueSubmitted, Value: nil})
	require.NoError(t, wait(t, out).err)
}

func TestDropIgnoresBlur(t *testing.T) {
	k, rec, src := newKit()
	out := run(func() (interface{}, error) {
		return k.Drop(context.Background(), "")
	})

	src.Send(prompt.Event{Channel: prompt.ChannelPromptBlurred})
	src.Send(prompt.Event{Channel: prompt.ChannelValueSubmitted, Value: "/tmp/file"})

	res := wait(t, out)
	require.NoError(t, res.err)
	assert.Equal(t, "/tmp/file", res.value)

	data, _ := rec.lastData()
	assert.Equal(t, DefaultDropPlaceholder, data.Placeholder)
	assert.Equal(t, prompt.UIDrop, data.UI)
}

func TestTabFlagSelectsInitialTab(t *testing.T) {
	k, rec, src := newKit()
	k.UpdateArgs([]string{"--tab", "Second"})

	out := run(func() (interface{}, error) {
		return k.Prompt(context.Background(), Options{
			Tabs: []prompt.Tab{
				{Name: "First", Source: prompt.StaticList(prompt.Strings("1")...)},
				{Name: "Second", Source: prompt.StaticList(prompt.Strings("2")...)},
			},
		})
	})

	require.Eventually(t, func() bool { _, ok := rec.lastData(); return ok }, time.Second, 5*time.Millisecond)
	data, _ := rec.lastData()
	assert.Equal(t, []string{"First", "Second"}, data.Tabs)
	assert.Equal(t, 1, data.TabIndex)

	src.Send(prompt.Event{Channel: prompt.ChannelValueSubmitted, Value: "2"})
	require.NoError(t, wait(t, out).err)
	assert.Equal(t, 1, k.Context().TabIndex())
}

func TestNewPromptSupersedesActive(t *testing.T) {
	k, _, src := newKit()

	first := run(func() (interface{}, error) {
		return k.Hotkey(context.Background(), "")
	})
	require.Eventually(t, func() bool { return k.Context().SessionID() != 0 }, time.Second, 5*time.Millisecond)

	second := run(func() (interface{}, error) {
		return k.Prompt(context.Background(), Options{Choices: prompt.StaticList(prompt.Strings("z")...)})
	})

	assert.ErrorIs(t, wait(t, first).err, prompt.ErrSuperseded)

	src.Send(prompt.Event{Channel: prompt.ChannelValueSubmitted, Value: "z"})
	res := wait(t, second)
	require.NoError(t, res.err)
	assert.Equal(t, "z", res.value)
}
