/*
Package kit is the script-facing prompt API.

A Kit binds one host connection (an event source plus a renderer) and
keeps the state that outlives a single prompt: the session context, the
shared flags and the queue of positional arguments parsed from the command
line.

Prompts:
  - Prompt: general prompt with choices, tabs, validator and callbacks
  - Arg: consumes a queued argument before asking
  - Div: shows HTML in a panel
  - Drop: waits for a drop, ignoring blur
  - Hotkey: waits for a key combination

Starting a prompt supersedes the one still running; the older call returns
prompt.ErrSuperseded.

Example:

	k := kit.New(renderer, source, logger, metrics)
	k.UpdateArgs(os.Args[1:])

	value, err := k.Arg(ctx, kit.Options{
		Placeholder: "Pick a fruit",
		Choices:     prompt.StaticList(prompt.Strings("apple", "pear")...),
	})
*/
package kit
