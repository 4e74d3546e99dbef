/*
Package script runs JavaScript prompt scripts with goja.

A script configures the global prompt object; Load runs it and converts
what it declared into prompt types:

	prompt.placeholder = "Pick a fruit"
	prompt.choices = async (input) => fruits.filter(f => f.startsWith(input))
	prompt.validate = (value) => value !== "durian" || "not that one"
	prompt.onNoChoices = (input) => setPanel(md("No **" + input + "**"))

Choice sources:
  - string: panel text
  - array: static list of strings or {name, value, description, preview}
  - function: generator; with no parameters it is input independent and the
    host filters its list

Globals available to scripts: console (logged through zap), setPanel,
setHint, setPreview, md (markdown to HTML) and flag (a snapshot of the
shared flags taken before each call).

Security Model:
  - require, process, module and exports are removed
  - every call into the VM is bounded by Config.Timeout and the caller's
    context
  - there is no event loop: timers are no-ops and a promise still pending
    when the call returns fails with ErrPending
*/
package script
