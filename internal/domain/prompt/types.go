package prompt

import (
	"context"
	"strconv"
	"time"
)

// PreviewFunc renders preview HTML for a focused choice.
type PreviewFunc func(ctx context.Context, c FocusedChoice) (string, error)

// Choice is one selectable item. Choices are recreated on every generation
// cycle; only the most recently displayed list is addressable by ID.
type Choice struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Value       interface{} `json:"value"`
	Description string      `json:"description,omitempty"`
	ClassName   string      `json:"className,omitempty"`
	Preview     PreviewFunc `json:"-"`
}

// FocusedChoice is the argument handed to a preview: the choice plus where
// the host had it when it was focused.
type FocusedChoice struct {
	Choice
	Index int
	Input string
}

// Strings builds choices whose name and value are the same string.
func Strings(values ...string) []Choice {
	choices := make([]Choice, len(values))
	for i, v := range values {
		choices[i] = Choice{Name: v, Value: v}
	}
	return choices
}

// normalize fills in missing IDs with the choice's position so every
// displayed choice can be focused.
func normalize(choices []Choice) []Choice {
	out := make([]Choice, len(choices))
	for i, c := range choices {
		if c.ID == "" {
			c.ID = strconv.Itoa(i)
		}
		out[i] = c
	}
	return out
}

// Result is what a generator produces for one input: panel text or a list,
// optionally with preview, panel and hint directives rendered before it.
type Result struct {
	Choices []Choice
	Text    string
	IsPanel bool

	Preview   string
	Panel     string
	Hint      string
	ClassName string
}

// List wraps choices as a generator result.
func List(choices ...Choice) Result {
	return Result{Choices: choices}
}

// PanelText wraps text that should be shown as a panel instead of a list.
func PanelText(text string) Result {
	return Result{Text: text, IsPanel: true}
}

// SourceKind tags the ChoiceSource variant.
type SourceKind int

const (
	KindStaticList SourceKind = iota
	KindPanel
	KindGenerator
)

// String returns the string representation of the kind
func (k SourceKind) String() string {
	switch k {
	case KindStaticList:
		return "static_list"
	case KindPanel:
		return "panel"
	case KindGenerator:
		return "generator"
	default:
		return "unknown"
	}
}

// GeneratorFunc produces choices for the current input.
type GeneratorFunc func(ctx context.Context, input string) (Result, error)

// ChoiceSource is the script-supplied origin of choices. The zero value is
// an empty static list.
type ChoiceSource struct {
	kind  SourceKind
	text  string
	list  []Choice
	gen   GeneratorFunc
	async bool
	local bool
}

// Panel shows text instead of a list.
func Panel(text string) ChoiceSource {
	return ChoiceSource{kind: KindPanel, text: text}
}

// StaticList shows a fixed list.
func StaticList(choices ...Choice) ChoiceSource {
	return ChoiceSource{kind: KindStaticList, list: choices}
}

// SyncGenerator wraps a generator that returns immediately. It runs on the
// session loop and its result is applied without a freshness check.
func SyncGenerator(fn func(input string) (Result, error)) ChoiceSource {
	return ChoiceSource{
		kind: KindGenerator,
		gen: func(_ context.Context, input string) (Result, error) {
			return fn(input)
		},
	}
}

// AsyncGenerator wraps a generator that may block. It runs on its own
// goroutine and its result is dropped if the session moved on meanwhile.
func AsyncGenerator(fn GeneratorFunc) ChoiceSource {
	return ChoiceSource{kind: KindGenerator, gen: fn, async: true}
}

// FilterLocally marks a generator as independent of the input: it runs once
// and the host filters the list itself instead of requesting regeneration.
func (s ChoiceSource) FilterLocally() ChoiceSource {
	s.local = true
	return s
}

// Kind reports the variant.
func (s ChoiceSource) Kind() SourceKind { return s.kind }

// IsAsync reports whether the source is an asynchronous generator.
func (s ChoiceSource) IsAsync() bool { return s.async }

// InputDriven reports whether the host should request regeneration as the
// input changes.
func (s ChoiceSource) InputDriven() bool {
	return s.kind == KindGenerator && !s.local
}

// IsZero reports whether the source is the empty default.
func (s ChoiceSource) IsZero() bool {
	return s.kind == KindStaticList && len(s.list) == 0
}

// Verdict is a validator's decision.
type Verdict struct {
	accepted bool
	hint     string
	hasHint  bool
}

// Valid accepts the submitted value.
func Valid() Verdict { return Verdict{accepted: true} }

// Invalid rejects the value with the generic "is not a valid value" hint.
func Invalid() Verdict { return Verdict{} }

// Hint rejects the value and shows message (ANSI colors allowed).
func Hint(message string) Verdict { return Verdict{hint: message, hasHint: true} }

// Accepted reports whether the verdict accepts the value.
func (v Verdict) Accepted() bool { return v.accepted }

// Message returns the rejection message, if the validator supplied one.
func (v Verdict) Message() (string, bool) { return v.hint, v.hasHint }

// Validator decides whether a submitted value resolves the session.
type Validator func(ctx context.Context, value interface{}) (Verdict, error)

// Callback is a lifecycle hook invoked with the input that produced a list.
type Callback func(ctx context.Context, input string) error

// Tab is a named alternate choice source selectable within one session.
type Tab struct {
	Name   string
	Source ChoiceSource
}

// Config is the immutable input to a session.
type Config struct {
	Source      ChoiceSource
	Validator   Validator
	OnChoices   Callback
	OnNoChoices Callback
	IgnoreBlur  bool
	ClassName   string

	// Tabs are matched by exact name on TAB_CHANGED; TabIndex is the tab
	// active when the session starts (-1 when there are no tabs).
	Tabs     []Tab
	TabIndex int

	// PreviewDebounce is the focus debounce window. Zero collapses bursts
	// already delivered by the host.
	PreviewDebounce time.Duration
}

// TabNames lists the configured tab names in order.
func (c Config) TabNames() []string {
	names := make([]string, len(c.Tabs))
	for i, t := range c.Tabs {
		names[i] = t.Name
	}
	return names
}
