package kit

import (
	"context"

	"github.com/GriffinCanCode/kitprompt/internal/domain/prompt"
	"github.com/GriffinCanCode/kitprompt/internal/render"
	"go.uber.org/zap"
)

// Arg returns the next queued positional argument when there is one, so
// scripts run non-interactively with the same code. A queued argument is
// still checked by the validator; if rejected the prompt opens with the
// rejection as its hint.
func (k *Kit) Arg(ctx context.Context, opts Options) (interface{}, error) {
	if first, ok := k.shiftArg(); ok {
		if opts.Validator == nil {
			return first, nil
		}

		verdict, err := opts.Validator(ctx, first)
		switch {
		case err != nil:
			k.logger.Warn("Validator failed for queued argument", zap.String("arg", first), zap.Error(err))
			opts.Hint = render.Hint(err.Error())
		case verdict.Accepted():
			return first, nil
		default:
			opts.Hint = prompt.RejectionHint(first, verdict)
		}
		return k.Arg(ctx, opts)
	}

	if opts.UI == "" {
		opts.UI = prompt.UIArg
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultArgPlaceholder
	}
	return k.Prompt(ctx, opts)
}

// Div shows html as a panel until the user submits or dismisses it.
func (k *Kit) Div(ctx context.Context, html, classes string) (interface{}, error) {
	return k.Prompt(ctx, Options{
		UI:      prompt.UIDiv,
		Choices: prompt.Panel(render.WrapHTML(html, classes)),
	})
}

// Drop waits for the user to drop something on the prompt.
func (k *Kit) Drop(ctx context.Context, placeholder string) (interface{}, error) {
	if placeholder == "" {
		placeholder = DefaultDropPlaceholder
	}
	return k.Prompt(ctx, Options{
		UI:          prompt.UIDrop,
		Placeholder: placeholder,
		IgnoreBlur:  true,
	})
}

// Hotkey waits for a key combination.
func (k *Kit) Hotkey(ctx context.Context, placeholder string) (interface{}, error) {
	if placeholder == "" {
		placeholder = DefaultHotkeyPlaceholder
	}
	return k.Prompt(ctx, Options{
		UI:          prompt.UIHotkey,
		Placeholder: placeholder,
	})
}

func (k *Kit) shiftArg() (string, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.args) == 0 {
		return "", false
	}
	first := k.args[0]
	k.args = k.args[1:]
	return first, true
}
