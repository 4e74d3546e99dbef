package script

import (
	"context"
	"fmt"
	"strconv"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/dop251/goja"
)

// Exports is what a script declares on the global `prompt` object.
type Exports struct {
	Placeholder string
	Hint        string
	Input       string
	ClassName   string
	IgnoreBlur  bool
	Secret      bool

	Choices     prompt.ChoiceSource
	Validator   prompt.Validator
	OnChoices   prompt.Callback
	OnNoChoices prompt.Callback
	Tabs        []prompt.Tab
}

// Load runs the script source and reads the prompt it declared:
//
//	prompt.placeholder = "Pick a color"
//	prompt.choices = async input => colors.filter(c => c.includes(input))
//	prompt.validate = value => value !== "black" || "not black"
func (r *Runtime) Load(ctx context.Context, source string) (*Exports, error) {
	if _, err := r.Run(ctx, source); err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", r.config.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v := r.vm.Get("prompt")
	if !present(v) {
		return nil, ErrNoPrompt
	}
	obj := v.ToObject(r.vm)

	exp := &Exports{
		Placeholder: stringProp(obj, "placeholder"),
		Hint:        stringProp(obj, "hint"),
		Input:       stringProp(obj, "input"),
		ClassName:   stringProp(obj, "className"),
		IgnoreBlur:  boolProp(obj, "ignoreBlur"),
		Secret:      boolProp(obj, "secret"),
	}

	var err error
	if exp.Choices, err = r.source(obj.Get("choices")); err != nil {
		return nil, fmt.Errorf("choices: %w", err)
	}
	exp.Validator = r.validator(obj.Get("validate"))
	exp.OnChoices = r.callback(obj.Get("onChoices"))
	exp.OnNoChoices = r.callback(obj.Get("onNoChoices"))

	if tabs := obj.Get("tabs"); present(tabs) {
		if exp.Tabs, err = r.tabs(tabs.ToObject(r.vm)); err != nil {
			return nil, fmt.Errorf("tabs: %w", err)
		}
	}
	return exp, nil
}

func stringProp(obj *goja.Object, name string) string {
	v := obj.Get(name)
	if !present(v) {
		return ""
	}
	return v.String()
}

func boolProp(obj *goja.Object, name string) bool {
	v := obj.Get(name)
	return present(v) && v.ToBoolean()
}

func isArray(v goja.Value) bool {
	obj, ok := v.(*goja.Object)
	return ok && obj.ClassName() == "Array"
}

func elements(obj *goja.Object) []goja.Value {
	length := obj.Get("length")
	if !present(length) {
		return nil
	}
	n := int(length.ToInteger())
	out := make([]goja.Value, n)
	for i := 0; i < n; i++ {
		out[i] = obj.Get(strconv.Itoa(i))
	}
	return out
}

// source converts prompt.choices: a string is panel text, an array a static
// list, a function a generator. A generator declared without parameters
// does not depend on the input and is filtered by the host.
func (r *Runtime) source(v goja.Value) (prompt.ChoiceSource, error) {
	if !present(v) {
		return prompt.ChoiceSource{}, nil
	}
	if fn, ok := goja.AssertFunction(v); ok {
		src := prompt.AsyncGenerator(func(ctx context.Context, input string) (prompt.Result, error) {
			var res prompt.Result
			err := r.invoke(ctx, fn, func(out goja.Value) error {
				var err error
				res, err = r.result(out)
				return err
			}, input)
			return res, err
		})
		if v.ToObject(r.vm).Get("length").ToInteger() == 0 {
			src = src.FilterLocally()
		}
		return src, nil
	}
	if isArray(v) {
		choices, err := r.choices(v.ToObject(r.vm))
		if err != nil {
			return prompt.ChoiceSource{}, err
		}
		return prompt.StaticList(choices...), nil
	}
	if s, ok := v.Export().(string); ok {
		return prompt.Panel(s), nil
	}
	return prompt.ChoiceSource{}, fmt.Errorf("unsupported choices of type %T", v.Export())
}

// result converts what a generator returned: a string (panel), an array
// (list), or an object with choices plus preview/panel/hint directives.
func (r *Runtime) result(v goja.Value) (prompt.Result, error) {
	if !present(v) {
		return prompt.List(), nil
	}
	if s, ok := v.Export().(string); ok {
		return prompt.PanelText(s), nil
	}
	if isArray(v) {
		choices, err := r.choices(v.ToObject(r.vm))
		return prompt.List(choices...), err
	}

	obj := v.ToObject(r.vm)
	res := prompt.Result{
		Preview:   stringProp(obj, "preview"),
		Panel:     stringProp(obj, "panel"),
		Hint:      stringProp(obj, "hint"),
		ClassName: stringProp(obj, "className"),
	}
	if c := obj.Get("choices"); present(c) {
		if s, ok := c.Export().(string); ok {
			res.Text, res.IsPanel = s, true
			return res, nil
		}
		choices, err := r.choices(c.ToObject(r.vm))
		if err != nil {
			return prompt.Result{}, err
		}
		res.Choices = choices
	}
	return res, nil
}

func (r *Runtime) choices(arr *goja.Object) ([]prompt.Choice, error) {
	items := elements(arr)
	out := make([]prompt.Choice, 0, len(items))
	for i, item := range items {
		c, err := r.choice(item)
		if err != nil {
			return nil, fmt.Errorf("choice %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// choice converts a string or {name, value, description, className, id,
// preview} object.
func (r *Runtime) choice(v goja.Value) (prompt.Choice, error) {
	if !present(v) {
		return prompt.Choice{}, fmt.Errorf("empty choice")
	}
	if s, ok := v.Export().(string); ok {
		return prompt.Choice{Name: s, Value: s}, nil
	}

	obj := v.ToObject(r.vm)
	c := prompt.Choice{
		ID:          stringProp(obj, "id"),
		Name:        stringProp(obj, "name"),
		Description: stringProp(obj, "description"),
		ClassName:   stringProp(obj, "className"),
		Value:       export(obj.Get("value")),
	}
	if c.Value == nil {
		c.Value = c.Name
	}

	if pv := obj.Get("preview"); present(pv) {
		if fn, ok := goja.AssertFunction(pv); ok {
			c.Preview = r.preview(fn)
		} else {
			html := pv.String()
			c.Preview = func(context.Context, prompt.FocusedChoice) (string, error) { return html, nil }
		}
	}
	return c, nil
}

func (r *Runtime) preview(fn goja.Callable) prompt.PreviewFunc {
	return func(ctx context.Context, fc prompt.FocusedChoice) (string, error) {
		var html string
		arg := map[string]interface{}{
			"id":          fc.ID,
			"name":        fc.Name,
			"value":       fc.Value,
			"description": fc.Description,
			"index":       fc.Index,
			"input":       fc.Input,
		}
		err := r.invoke(ctx, fn, func(out goja.Value) error {
			if present(out) {
				html = out.String()
			}
			return nil
		}, arg)
		return html, err
	}
}

// validator converts prompt.validate: a string rejects with that hint, other
// truthy values accept, falsy values reject with the generic hint.
func (r *Runtime) validator(v goja.Value) prompt.Validator {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil
	}
	return func(ctx context.Context, value interface{}) (prompt.Verdict, error) {
		verdict := prompt.Invalid()
		err := r.invoke(ctx, fn, func(out goja.Value) error {
			if s, ok := export(out).(string); ok {
				verdict = prompt.Hint(s)
			} else if present(out) && out.ToBoolean() {
				verdict = prompt.Valid()
			}
			return nil
		}, value)
		return verdict, err
	}
}

func (r *Runtime) callback(v goja.Value) prompt.Callback {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return nil
	}
	return func(ctx context.Context, input string) error {
		return r.invoke(ctx, fn, nil, input)
	}
}

func (r *Runtime) tabs(arr *goja.Object) ([]prompt.Tab, error) {
	items := elements(arr)
	tabs := make([]prompt.Tab, 0, len(items))
	for i, item := range items {
		if !present(item) {
			continue
		}
		obj := item.ToObject(r.vm)
		src, err := r.source(obj.Get("choices"))
		if err != nil {
			return nil, fmt.Errorf("tab %d: %w", i, err)
		}
		tabs = append(tabs, prompt.Tab{Name: stringProp(obj, "name"), Source: src})
	}
	return tabs, nil
}
