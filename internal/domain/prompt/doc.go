// Package prompt implements the prompt session controller.
//
// A session turns a stream of host events into one resolved value. Scripts
// supply a ChoiceSource (panel text, a static list, or a generator), an
// optional Validator, and optional lifecycle callbacks; the host renders what
// the controller decides and streams back events.
//
// Components:
//   - EventSource: ordered host events; an error ends the stream
//   - SessionContext: session id, tab index and generation cycle, the
//     version token every asynchronous result is checked against
//   - DisplayState: the last rendered list, panel, preview and hint
//   - Driver: one receive loop per session that resolves choices, gates
//     submissions, switches tabs, computes previews and settles once
//
// Concurrency:
//
// Events are handled strictly in arrival order on the session loop.
// Generators, validators and previews run on their own goroutines and post
// their results back to the loop, where a result is applied only if the
// version it captured is still current. Lifecycle callbacks are fire and
// forget; a Renderer must therefore be safe for concurrent use.
//
// Example Usage:
//
//	driver := prompt.NewDriver(renderer, prompt.NewSessionContext(), prompt.NewFlags())
//	value, err := driver.Run(ctx, source, prompt.Config{
//		Source: prompt.StaticList(prompt.Strings("apple", "banana")...),
//	})
//	if errors.Is(err, prompt.ErrBlurred) {
//		// user dismissed the prompt
//	}
package prompt
