package prompt

import (
	"context"

	"github.com/GriffinCanCode/kitprompt/internal/infrastructure/monitoring"
	"go.uber.org/zap"
)

// ModeFor returns the host mode matching a source: input-driven generators
// regenerate on every keystroke, everything else is filtered by the host.
func ModeFor(source ChoiceSource) Mode {
	if source.InputDriven() {
		return ModeGenerate
	}
	return ModeFilter
}

// generate starts a new generation cycle for input with the active source.
func (s *session) generate(input string) {
	s.resolve(s.source, input, s.d.sc.NextCycle())
}

// resolve renders source for input. Asynchronous generators complete on the
// loop and are dropped unless v is still current.
func (s *session) resolve(source ChoiceSource, input string, v Version) {
	switch source.Kind() {
	case KindPanel:
		s.display.setPanel(s.d.renderer, source.text, s.cfg.ClassName)
		s.state = StateDisplaying

	case KindStaticList:
		s.show(List(source.list...), input)

	case KindGenerator:
		if !source.async {
			res, err := runGenerator(s.ctx, source.gen, input)
			if err != nil {
				s.fail(&GeneratorError{Input: input, Err: err})
				return
			}
			s.show(res, input)
			return
		}

		s.state = StateGenerating
		timer := monitoring.NewTimer(s.d.metrics)
		gen := source.gen
		go func() {
			res, err := runGenerator(s.ctx, gen, input)
			s.post(func() {
				if !s.d.sc.Fresh(v) {
					timer.Stop("stale")
					s.d.metrics.StaleDiscarded("generation")
					s.log.Debug("Discarded stale generation",
						zap.String("input", input),
						zap.Uint64("cycle", v.Cycle))
					return
				}
				if err != nil {
					timer.Stop("error")
					s.fail(&GeneratorError{Input: input, Err: err})
					return
				}
				timer.Stop("ok")
				s.show(res, input)
			})
		}()
	}
}

func runGenerator(ctx context.Context, gen GeneratorFunc, input string) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return gen(ctx, input)
}

// show applies a generator result: directives first, then the panel or the
// list, then the matching lifecycle callback.
func (s *session) show(res Result, input string) {
	r := s.d.renderer

	if res.Preview != "" {
		s.display.setPanel(r, res.Preview, res.ClassName)
	}
	if res.Panel != "" {
		s.display.setPanel(r, res.Panel, res.ClassName)
	}
	if res.Hint != "" {
		s.display.setHint(r, res.Hint)
	}
	s.state = StateDisplaying

	if res.IsPanel {
		s.display.setPanel(r, res.Text, s.cfg.ClassName)
		return
	}

	choices := normalize(res.Choices)
	s.display.setChoices(r, choices, s.cfg.ClassName)

	switch {
	case len(choices) > 0:
		s.invoke("onChoices", s.cfg.OnChoices, input)
	case input != "":
		s.invoke("onNoChoices", s.cfg.OnNoChoices, input)
	}
}
